// Package liveness decides whether an observed face belongs to a moving human
// or a static spoof (photo, replayed video). The metric is deliberately cheap:
// per-pixel frame differencing over a short sliding window, no optical flow.
package liveness

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/punchclock/internal/config"
)

// Patch is a grayscale crop of one detected face region in one frame.
// Pix holds Width*Height intensity values (0-255), row major.
type Patch struct {
	Width  int
	Height int
	Pix    []uint8
}

// Empty reports whether the patch carries no usable pixel data.
// Degenerate regions happen when the detector returns a box at the frame edge.
func (p *Patch) Empty() bool {
	return p == nil || p.Width <= 0 || p.Height <= 0 || len(p.Pix) < p.Width*p.Height
}

// PatchFromImage converts an image to a grayscale patch using the
// ITU-R BT.601 luma formula.
func PatchFromImage(img image.Image) *Patch {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	pix := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			pix[y*width+x] = uint8(luma)
		}
	}

	return &Patch{Width: width, Height: height, Pix: pix}
}

// gray wraps the patch pixels as an image.Gray without copying.
func (p *Patch) gray() *image.Gray {
	return &image.Gray{
		Pix:    p.Pix,
		Stride: p.Width,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// resize scales the patch to the given dimensions with bilinear interpolation.
func (p *Patch) resize(width, height int) *Patch {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), p.gray(), p.gray().Bounds(), draw.Src, nil)
	return &Patch{Width: width, Height: height, Pix: dst.Pix}
}

// motionPixels counts pixels whose absolute intensity difference between the
// two patches exceeds the threshold. Face boxes vary frame to frame, so the
// current patch is resized to match the previous one when shapes differ.
func motionPixels(prev, curr *Patch, threshold int) int {
	if prev.Width != curr.Width || prev.Height != curr.Height {
		curr = curr.resize(prev.Width, prev.Height)
	}

	count := 0
	n := prev.Width * prev.Height
	for i := 0; i < n; i++ {
		d := int(prev.Pix[i]) - int(curr.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > threshold {
			count++
		}
	}
	return count
}

// Verdict is the running liveness decision after an update.
type Verdict struct {
	Alive         bool
	AverageMotion float64
}

// Tracker keeps a sliding window of recent face patches and derives a
// liveness verdict from inter-frame motion. One tracker per camera stream;
// it is not safe for concurrent use.
type Tracker struct {
	cfg      config.LivenessConfig
	window   []*Patch
	presence int
	alive    bool
	motion   float64
}

func NewTracker(cfg config.LivenessConfig) *Tracker {
	return &Tracker{cfg: cfg}
}

// Update consumes the face patch for the current frame. A nil patch means no
// face is currently located and resets all state: liveness must be
// re-established whenever tracking is lost. Empty patches are skipped and
// leave the verdict unchanged. A verdict is only computed once the window
// holds at least three patches.
func (t *Tracker) Update(p *Patch) Verdict {
	if p == nil {
		t.Reset()
		return t.verdict()
	}
	if p.Empty() {
		return t.verdict()
	}

	t.presence++
	t.window = append(t.window, p)
	if len(t.window) > t.cfg.MotionHistorySize {
		t.window = t.window[1:]
	}

	if len(t.window) >= 3 {
		total := 0
		for i := 1; i < len(t.window); i++ {
			total += motionPixels(t.window[i-1], t.window[i], t.cfg.MotionPixelThreshold)
		}
		t.motion = float64(total) / float64(len(t.window)-1)
		t.alive = t.motion > t.cfg.LivenessThreshold
	}

	return t.verdict()
}

// Reset clears all tracker state. Used for operator-triggered re-checks;
// equivalent to an Update with a nil patch.
func (t *Tracker) Reset() {
	t.window = nil
	t.presence = 0
	t.alive = false
	t.motion = 0
}

// PresenceFrames returns how many consecutive frames a face has been tracked
// since the last reset.
func (t *Tracker) PresenceFrames() int {
	return t.presence
}

// WindowLen returns the current number of patches in the motion window.
func (t *Tracker) WindowLen() int {
	return len(t.window)
}

func (t *Tracker) verdict() Verdict {
	return Verdict{Alive: t.alive, AverageMotion: t.motion}
}
