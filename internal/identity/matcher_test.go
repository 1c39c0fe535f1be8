package identity

import (
	"math"
	"testing"

	"github.com/kozaktomas/punchclock/internal/config"
)

func newTestMatcher() *Matcher {
	return NewMatcher(config.Default().Recognition)
}

func TestMatch_NoFaces(t *testing.T) {
	r := newTestMatcher().Match(0, []float32{0.1, 0.2}, []Enrolled{{Name: "alice", Embedding: []float32{0.1, 0.2}}})

	if r.Kind != NoFace {
		t.Errorf("expected NoFace, got %v", r.Kind)
	}
	if r.Distance != 1.0 {
		t.Errorf("expected worst distance 1.0, got %g", r.Distance)
	}
	if r.Confidence != 0 {
		t.Errorf("expected zero confidence, got %g", r.Confidence)
	}
	if r.DisplayName() != "" {
		t.Errorf("expected empty display name, got '%s'", r.DisplayName())
	}
}

func TestMatch_MultipleFaces(t *testing.T) {
	enrolled := []Enrolled{{Name: "alice", Embedding: []float32{0.1, 0.2}}}

	// The embedding is a perfect match, but the scene is ambiguous.
	r := newTestMatcher().Match(2, []float32{0.1, 0.2}, enrolled)

	if r.Kind != MultipleFaces {
		t.Errorf("expected MultipleFaces, got %v", r.Kind)
	}
	if r.DisplayName() != SentinelMultipleFaces {
		t.Errorf("expected sentinel '%s', got '%s'", SentinelMultipleFaces, r.DisplayName())
	}
}

func TestMatch_MissingEmbedding(t *testing.T) {
	enrolled := []Enrolled{{Name: "alice", Embedding: []float32{0.1, 0.2}}}

	r := newTestMatcher().Match(1, nil, enrolled)

	if r.Kind != NoFace {
		t.Errorf("expected NoFace for missing embedding, got %v", r.Kind)
	}
}

func TestMatch_EmptyEnrollment(t *testing.T) {
	r := newTestMatcher().Match(1, []float32{0.1, 0.2}, nil)

	if r.Kind != Unknown {
		t.Errorf("expected Unknown, got %v", r.Kind)
	}
	if r.DisplayName() != SentinelUnknown {
		t.Errorf("expected sentinel '%s', got '%s'", SentinelUnknown, r.DisplayName())
	}
}

func TestMatch_ExactMatch(t *testing.T) {
	enrolled := []Enrolled{
		{Name: "alice", Embedding: []float32{0.5, 0.5, 0.5}},
		{Name: "bob", Embedding: []float32{0.9, 0.1, 0.3}},
	}

	r := newTestMatcher().Match(1, []float32{0.9, 0.1, 0.3}, enrolled)

	if r.Kind != Recognized {
		t.Fatalf("expected Recognized, got %v", r.Kind)
	}
	if r.Name != "bob" {
		t.Errorf("expected 'bob', got '%s'", r.Name)
	}
	if r.Distance != 0 {
		t.Errorf("expected zero distance, got %g", r.Distance)
	}
	if r.Confidence != 1 {
		t.Errorf("expected confidence 1, got %g", r.Confidence)
	}
}

func TestMatch_DoubleGate(t *testing.T) {
	// Distance 0.5 passes the recognition threshold (0.6) but the derived
	// confidence 0.5 fails the 0.55 confidence gate.
	m := newTestMatcher()

	enrolled := []Enrolled{{Name: "alice", Embedding: []float32{0.5, 0}}}

	r := m.Match(1, []float32{0, 0}, enrolled) // distance 0.5, confidence 0.5

	if r.Kind != Unknown {
		t.Errorf("expected Unknown when confidence gate fails, got %v (distance %g confidence %g)",
			r.Kind, r.Distance, r.Confidence)
	}
}

func TestMatch_DistanceGate(t *testing.T) {
	cfg := config.Default().Recognition
	cfg.RecognitionThreshold = 0.2
	m := NewMatcher(cfg)

	enrolled := []Enrolled{{Name: "alice", Embedding: []float32{0.3, 0}}}

	// Distance 0.3: confidence 0.7 passes, distance gate does not.
	r := m.Match(1, []float32{0, 0}, enrolled)

	if r.Kind != Unknown {
		t.Errorf("expected Unknown when distance gate fails, got %v", r.Kind)
	}
}

func TestMatch_TieBreakFirstWins(t *testing.T) {
	enrolled := []Enrolled{
		{Name: "first", Embedding: []float32{0.1, 0.1}},
		{Name: "second", Embedding: []float32{0.1, 0.1}},
	}

	r := newTestMatcher().Match(1, []float32{0.1, 0.1}, enrolled)

	if r.Kind != Recognized {
		t.Fatalf("expected Recognized, got %v", r.Kind)
	}
	if r.Name != "first" {
		t.Errorf("tie must resolve to enrollment order, got '%s'", r.Name)
	}
}

func TestMatch_CosineMetric(t *testing.T) {
	cfg := config.Default().Recognition
	cfg.Metric = config.MetricCosine
	m := NewMatcher(cfg)

	enrolled := []Enrolled{{Name: "alice", Embedding: []float32{1, 0, 0}}}

	r := m.Match(1, []float32{2, 0, 0}, enrolled) // same direction, cosine distance 0

	if r.Kind != Recognized || r.Name != "alice" {
		t.Errorf("expected alice via cosine metric, got %v '%s'", r.Kind, r.Name)
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"3-4-5", []float32{0, 0}, []float32{3, 4}, 5},
		{"length mismatch", []float32{1}, []float32{1, 2}, 1},
		{"empty", nil, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EuclideanDistance(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("EuclideanDistance = %g, want %g", got, tt.expected)
			}
		})
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 2},
		{"length mismatch", []float32{1}, []float32{1, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineDistance(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("CosineDistance = %g, want %g", got, tt.expected)
			}
		})
	}
}
