package augment

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Transform mutates a window in place and returns it.
// Deterministic transforms ignore src.
type Transform interface {
	Apply(w *Window, src rand.Source) (*Window, error)
	String() string
}

// symmetric draws uniformly from [-bound, bound]
func symmetric(src rand.Source, bound float64) float64 {
	return distuv.Uniform{Min: -bound, Max: bound, Src: src}.Rand()
}

// MoveCenterPts simulates moving the centre points of hands and objects
// by shifting the distances of each frame independently.
type MoveCenterPts struct {
	handDistDelta float64
	objDistDelta  float64
	imW           float64
	imH           float64
	layout        VectorLayout
}

// NewMoveCenterPts creates new instance of MoveCenterPts.
// handDistDelta and objDistDelta are fractions of the image size giving the +- pixel bound of each shift.
func NewMoveCenterPts(handDistDelta, objDistDelta, imW, imH float64, layout VectorLayout) *MoveCenterPts {
	return &MoveCenterPts{
		handDistDelta: handDistDelta,
		objDistDelta:  objDistDelta,
		imW:           imW,
		imH:           imH,
		layout:        layout,
	}
}

// drawDeltas returns right hand, left hand and object shifts for one frame
func (t *MoveCenterPts) drawDeltas(src rand.Source) SpatialDelta {
	handX, handY := t.imW*t.handDistDelta, t.imH*t.handDistDelta
	objX, objY := t.imW*t.objDistDelta, t.imH*t.objDistDelta
	return SpatialDelta{
		RightHand: Delta2D{X: symmetric(src, handX), Y: symmetric(src, handY)},
		LeftHand:  Delta2D{X: symmetric(src, handX), Y: symmetric(src, handY)},
		Object:    Delta2D{X: symmetric(src, objX), Y: symmetric(src, objY)},
	}
}

// Apply shifts every frame by its own random deltas
func (t *MoveCenterPts) Apply(w *Window, src rand.Source) (*Window, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if err := checkFrames(w, t.layout); err != nil {
		return nil, err
	}
	for _, frame := range w.Frames {
		t.layout.ApplySpatialDelta(frame, t.drawDeltas(src))
	}
	return w, nil
}

func (t *MoveCenterPts) String() string {
	return fmt.Sprintf("MoveCenterPts(hand_dist_delta=%v, obj_dist_delta=%v, im_w=%v, im_h=%v, feat_version=%d)",
		t.handDistDelta, t.objDistDelta, t.imW, t.imH, featVersionOf(t.layout))
}

// ActivationDelta shifts the activation of every detected class by +-confDelta.
// One delta is drawn per call and shared by all frames of the window.
type ActivationDelta struct {
	confDelta float64
	layout    VectorLayout
}

// NewActivationDelta creates new instance of ActivationDelta
func NewActivationDelta(confDelta float64, layout VectorLayout) *ActivationDelta {
	return &ActivationDelta{
		confDelta: confDelta,
		layout:    layout,
	}
}

// Apply jitters nonzero activations and clips them to [0, 1]
func (t *ActivationDelta) Apply(w *Window, src rand.Source) (*Window, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if err := checkFrames(w, t.layout); err != nil {
		return nil, err
	}
	delta := symmetric(src, t.confDelta)
	for _, frame := range w.Frames {
		t.layout.ApplyConfidenceDelta(frame, delta)
	}
	return w, nil
}

func (t *ActivationDelta) String() string {
	return fmt.Sprintf("ActivationDelta(conf_delta=%v, feat_version=%d)", t.confDelta, featVersionOf(t.layout))
}

// NormalizePixelPts divides hand distances by the image size. Applies to versions 2 and 5.
// Not idempotent: every call divides again.
type NormalizePixelPts struct {
	imW    float64
	imH    float64
	layout VectorLayout
}

// NewNormalizePixelPts creates new instance of NormalizePixelPts
func NewNormalizePixelPts(imW, imH float64, layout VectorLayout) *NormalizePixelPts {
	return &NormalizePixelPts{
		imW:    imW,
		imH:    imH,
		layout: layout,
	}
}

// Apply normalizes every frame
func (t *NormalizePixelPts) Apply(w *Window, _ rand.Source) (*Window, error) {
	if err := checkFrames(w, t.layout); err != nil {
		return nil, err
	}
	for _, frame := range w.Frames {
		t.layout.NormalizePixelPts(frame, t.imW, t.imH)
	}
	return w, nil
}

func (t *NormalizePixelPts) String() string {
	return fmt.Sprintf("NormalizePixelPts(im_w=%v, im_h=%v, feat_version=%d)", t.imW, t.imH, featVersionOf(t.layout))
}

// NormalizeFromCenter divides distances measured from the image centre by half the image size.
// Applies to version 3. Not idempotent: every call divides again.
type NormalizeFromCenter struct {
	imW    float64
	imH    float64
	layout VectorLayout
}

// NewNormalizeFromCenter creates new instance of NormalizeFromCenter
func NewNormalizeFromCenter(imW, imH float64, layout VectorLayout) *NormalizeFromCenter {
	return &NormalizeFromCenter{
		imW:    imW,
		imH:    imH,
		layout: layout,
	}
}

// Apply normalizes every frame
func (t *NormalizeFromCenter) Apply(w *Window, _ rand.Source) (*Window, error) {
	if err := checkFrames(w, t.layout); err != nil {
		return nil, err
	}
	for _, frame := range w.Frames {
		t.layout.NormalizeFromCenter(frame, t.imW/2, t.imH/2)
	}
	return w, nil
}

func (t *NormalizeFromCenter) String() string {
	return fmt.Sprintf("NormalizeFromCenter(im_w=%v, im_h=%v, feat_version=%d)", t.imW, t.imH, featVersionOf(t.layout))
}
