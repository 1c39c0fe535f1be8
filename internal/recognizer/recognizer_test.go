package recognizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func setupMockSidecar(t *testing.T, observation string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/v1/observe", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(observation))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNew_RejectsBadURL(t *testing.T) {
	if _, err := New("ftp://recognizer"); err == nil {
		t.Error("expected error for non-http scheme")
	}
	if _, err := New("://nope"); err == nil {
		t.Error("expected error for unparsable url")
	}
}

func TestObserve_SingleFace(t *testing.T) {
	server := setupMockSidecar(t, `{
		"faces": 1,
		"embedding": [0.5, -0.25, 1.0],
		"patch": {"width": 2, "height": 2, "pixels": [10, 20, 30, 40]}
	}`)

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	obs, err := client.Observe(context.Background())
	if err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	if obs.Faces != 1 {
		t.Errorf("expected 1 face, got %d", obs.Faces)
	}
	if len(obs.Embedding) != 3 || obs.Embedding[0] != 0.5 {
		t.Errorf("unexpected embedding: %v", obs.Embedding)
	}
	if obs.Patch.Width != 2 || obs.Patch.Height != 2 || len(obs.Patch.Pix) != 4 {
		t.Errorf("unexpected patch: %+v", obs.Patch)
	}
}

func TestObserve_NoFace(t *testing.T) {
	server := setupMockSidecar(t, `{"faces": 0}`)

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	obs, err := client.Observe(context.Background())
	if err != nil {
		t.Fatalf("Observe failed: %v", err)
	}

	if obs.Faces != 0 || obs.Embedding != nil {
		t.Errorf("expected empty observation, got %+v", obs)
	}
	if !obs.Patch.Empty() {
		t.Error("expected empty patch")
	}
}

func TestObserve_MalformedPatch(t *testing.T) {
	server := setupMockSidecar(t, `{
		"faces": 1,
		"patch": {"width": 4, "height": 4, "pixels": [1, 2, 3]}
	}`)

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Observe(context.Background()); err == nil {
		t.Error("expected error for pixel count mismatch")
	}
}

func TestObserve_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Observe(context.Background()); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestHealth(t *testing.T) {
	server := setupMockSidecar(t, `{"faces": 0}`)

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health failed: %v", err)
	}
}

func TestHealth_Degraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "loading"}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := client.Health(context.Background()); err == nil {
		t.Error("expected error for degraded status")
	}
}
