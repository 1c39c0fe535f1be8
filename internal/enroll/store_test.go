package enroll

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDirStore_SaveListRoundTrip(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "bob", []float32{0.5, -0.25, 1}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "alice", []float32{1, 2, 3}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	enrolled, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(enrolled) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(enrolled))
	}

	// Sorted by name regardless of save order.
	if enrolled[0].Name != "alice" || enrolled[1].Name != "bob" {
		t.Errorf("unexpected order: %s, %s", enrolled[0].Name, enrolled[1].Name)
	}
	want := []float32{0.5, -0.25, 1}
	for i, v := range enrolled[1].Embedding {
		if v != want[i] {
			t.Errorf("embedding value %d: expected %v, got %v", i, want[i], v)
		}
	}
}

func TestDirStore_SaveRejectsInvalid(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "", []float32{1}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := store.Save(ctx, "alice", nil); err == nil {
		t.Error("expected error for empty embedding")
	}
}

func TestDirStore_ListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "alice", []float32{1, 2}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}

	enrolled, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(enrolled) != 1 {
		t.Errorf("expected 1 identity, got %d", len(enrolled))
	}
}

func TestDirStore_ListRejectsCorruptVector(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mallory.vec"), []byte("0.5 oops 1"), 0o644); err != nil {
		t.Fatalf("write corrupt vector: %v", err)
	}

	if _, err := store.List(context.Background()); err == nil {
		t.Error("expected error for corrupt vector file")
	}
}

func TestDirStore_DeleteNormalizedName(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "Jiří Novák", []float32{1}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Operator types the ASCII dashed form; the accented file goes away.
	if err := store.Delete(ctx, "jiri-novak"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	enrolled, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(enrolled) != 0 {
		t.Errorf("expected empty store after delete, got %d", len(enrolled))
	}

	if err := store.Delete(ctx, "nobody"); err == nil {
		t.Error("expected error deleting unknown user")
	}
}

func TestDirStore_UsersReportsSizes(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	if err := store.Save(context.Background(), "alice", []float32{1, 2, 3}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	users, err := store.Users()
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(users) != 1 || users[0].Name != "alice" || users[0].Size == 0 {
		t.Errorf("unexpected users listing: %+v", users)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jiří Novák", "jiri novak"},
		{"jiri-novak", "jiri novak"},
		{"JIRI_NOVAK", "jiri novak"},
		{"  alice  ", "alice"},
		{"Łukasz", "łukasz"}, // stroke is not a combining mark
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
