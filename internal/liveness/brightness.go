package liveness

import "github.com/kozaktomas/punchclock/internal/config"

// Brightness returns the mean intensity of a patch (0-255).
func Brightness(p *Patch) float64 {
	if p.Empty() {
		return 0
	}

	var sum float64
	n := p.Width * p.Height
	for i := 0; i < n; i++ {
		sum += float64(p.Pix[i])
	}
	return sum / float64(n)
}

// BrightnessStatus classifies a brightness level against the configured
// thresholds. Used by the kiosk overlay to warn about poor lighting.
func BrightnessStatus(brightness float64, cfg config.BrightnessConfig) string {
	switch {
	case brightness < cfg.LowThreshold:
		return "Low"
	case brightness < cfg.MediumThreshold:
		return "Medium"
	default:
		return "High"
	}
}
