// Package enroll manages the enrolled-identity store: one reference embedding
// per registered person, loaded once at startup and reused for the session.
package enroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kozaktomas/punchclock/internal/identity"
)

// Extension of per-identity embedding files. The filename minus the extension
// is the identity name; the contents are whitespace-separated vector values.
const Extension = ".vec"

// Store abstracts the enrollment backend so the directory layout and the
// PostgreSQL repository are interchangeable.
type Store interface {
	// List returns every enrolled identity in a stable order.
	List(ctx context.Context) ([]identity.Enrolled, error)
	// Save writes or replaces the reference embedding for a name.
	Save(ctx context.Context, name string, embedding []float32) error
	// Delete removes an identity. Name matching is normalization-insensitive.
	Delete(ctx context.Context, name string) error
}

// UserInfo describes one enrolled identity for listings.
type UserInfo struct {
	Name string
	Size int64 // stored embedding size in bytes
}

// DirStore keeps one embedding file per identity in a single directory.
type DirStore struct {
	dir string
}

// NewDirStore opens the store, creating the directory when missing.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create encoding directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// List loads all enrolled identities, sorted by name so that enrollment order
// (and therefore match tie-breaking) is deterministic.
func (s *DirStore) List(_ context.Context) ([]identity.Enrolled, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read encoding directory: %w", err)
	}

	var enrolled []identity.Enrolled
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), Extension)
		embedding, err := s.readVector(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load embedding for %s: %w", name, err)
		}
		enrolled = append(enrolled, identity.Enrolled{Name: name, Embedding: embedding})
	}

	sort.Slice(enrolled, func(i, j int) bool { return enrolled[i].Name < enrolled[j].Name })
	return enrolled, nil
}

// Users lists enrolled names with their stored file sizes, sorted by name.
func (s *DirStore) Users() ([]UserInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read encoding directory: %w", err)
	}

	var users []UserInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		users = append(users, UserInfo{
			Name: strings.TrimSuffix(entry.Name(), Extension),
			Size: info.Size(),
		})
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// Save writes the embedding as one value per line.
func (s *DirStore) Save(_ context.Context, name string, embedding []float32) error {
	if name == "" {
		return fmt.Errorf("identity name is required")
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding for %s is empty", name)
	}

	var sb strings.Builder
	for _, v := range embedding {
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		sb.WriteByte('\n')
	}

	path := filepath.Join(s.dir, name+Extension)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write embedding for %s: %w", name, err)
	}
	return nil
}

// Delete removes the identity whose normalized name matches the argument, so
// "jiri-novak" deletes the file stored as "Jiří Novák.vec".
func (s *DirStore) Delete(_ context.Context, name string) error {
	stored, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, stored+Extension)); err != nil {
		return fmt.Errorf("delete user %s: %w", stored, err)
	}
	return nil
}

// Resolve maps a possibly differently-spelled name to the stored identity
// name using normalized comparison.
func (s *DirStore) Resolve(name string) (string, error) {
	users, err := s.Users()
	if err != nil {
		return "", err
	}

	want := NormalizeName(name)
	for _, u := range users {
		if NormalizeName(u.Name) == want {
			return u.Name, nil
		}
	}
	return "", fmt.Errorf("user %q not found", name)
}

// readVector parses a whitespace-separated float vector file.
func (s *DirStore) readVector(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil, fmt.Errorf("vector file %s is empty", path)
	}

	vec := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("parse value %d in %s: %w", i, path, err)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}
