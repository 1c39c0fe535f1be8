// Package identity ranks an observed face embedding against the enrolled set
// and decides whether the best candidate is an acceptable match.
package identity

import (
	"github.com/kozaktomas/punchclock/internal/config"
)

// Kind classifies the outcome of a match attempt. Keeping this separate from
// the candidate name prevents a sentinel from ever being mistaken for an
// enrolled identity downstream.
type Kind int

const (
	NoFace Kind = iota // no face located, or embedding extraction failed
	Recognized
	Unknown       // a single face, but no enrolled identity within thresholds
	MultipleFaces // more than one face in the scene; attendance is never attempted
)

// Legacy sentinel names used on the CSV and display surfaces.
const (
	SentinelUnknown       = "UNKNOWN"
	SentinelMultipleFaces = "MULTIPLE_FACES"
)

// Enrolled is one registered identity with its reference embedding.
type Enrolled struct {
	Name      string
	Embedding []float32
}

// Result is the decision for one observed embedding.
type Result struct {
	Kind       Kind
	Name       string // set only when Kind == Recognized
	Distance   float64
	Confidence float64
}

// DisplayName renders the result the way the ledger and kiosk overlay expect:
// the matched name, a sentinel, or empty when no face was usable.
func (r Result) DisplayName() string {
	switch r.Kind {
	case Recognized:
		return r.Name
	case Unknown:
		return SentinelUnknown
	case MultipleFaces:
		return SentinelMultipleFaces
	default:
		return ""
	}
}

// Matcher applies the distance and confidence double-gate to candidate
// matches. Both thresholds must pass; borderline matches that satisfy only
// one criterion are rejected.
type Matcher struct {
	cfg      config.RecognitionConfig
	distance func(a, b []float32) float64
}

func NewMatcher(cfg config.RecognitionConfig) *Matcher {
	dist := EuclideanDistance
	if cfg.Metric == config.MetricCosine {
		dist = CosineDistance
	}
	return &Matcher{cfg: cfg, distance: dist}
}

// Match decides the identity for one frame observation. faces is the number
// of faces the external detector located; embedding is nil when extraction
// failed. Ties on minimum distance resolve to the first enrolled identity.
func (m *Matcher) Match(faces int, embedding []float32, enrolled []Enrolled) Result {
	if faces == 0 {
		return Result{Kind: NoFace, Distance: 1.0}
	}
	if faces > 1 {
		return Result{Kind: MultipleFaces, Distance: 1.0}
	}
	if len(embedding) == 0 {
		return Result{Kind: NoFace, Distance: 1.0}
	}
	if len(enrolled) == 0 {
		return Result{Kind: Unknown, Distance: 1.0}
	}

	minIndex := 0
	minDistance := m.distance(embedding, enrolled[0].Embedding)
	for i := 1; i < len(enrolled); i++ {
		if d := m.distance(embedding, enrolled[i].Embedding); d < minDistance {
			minDistance = d
			minIndex = i
		}
	}

	confidence := 1.0 - minDistance

	if minDistance < m.cfg.RecognitionThreshold && confidence > m.cfg.ConfidenceThreshold {
		return Result{
			Kind:       Recognized,
			Name:       enrolled[minIndex].Name,
			Distance:   minDistance,
			Confidence: confidence,
		}
	}

	return Result{Kind: Unknown, Distance: minDistance, Confidence: confidence}
}
