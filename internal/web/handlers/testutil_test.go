package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, want int) {
	t.Helper()
	if recorder.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, recorder.Code, recorder.Body.String())
	}
}

func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, want string) {
	t.Helper()
	got := recorder.Header().Get("Content-Type")
	if !strings.HasPrefix(got, want) {
		t.Errorf("expected content type %q, got %q", want, got)
	}
}

func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, recorder.Body.String())
	}
}
