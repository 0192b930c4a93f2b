package augment

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Window is one training example: consecutive feature vectors of equal length.
// Transforms mutate Frames in place.
type Window struct {
	ID     uuid.UUID
	Frames [][]float32
}

// NewWindow wraps frames into a window with a fresh identifier.
// Frames are not copied.
func NewWindow(frames [][]float32) (*Window, error) {
	for i := 1; i < len(frames); i++ {
		if len(frames[i]) != len(frames[0]) {
			return nil, errors.Wrapf(ErrVectorLengthMismatch, "frame %d has %d values, frame 0 has %d", i, len(frames[i]), len(frames[0]))
		}
	}
	return &Window{
		ID:     uuid.New(),
		Frames: frames,
	}, nil
}

// Size returns number of frames
func (w *Window) Size() int {
	return len(w.Frames)
}

// VectorLength returns length of every frame (zero for an empty window)
func (w *Window) VectorLength() int {
	if len(w.Frames) == 0 {
		return 0
	}
	return len(w.Frames[0])
}

// Clone returns a deep copy sharing the identifier
func (w *Window) Clone() *Window {
	frames := make([][]float32, len(w.Frames))
	for i := range w.Frames {
		frames[i] = make([]float32, len(w.Frames[i]))
		copy(frames[i], w.Frames[i])
	}
	return &Window{ID: w.ID, Frames: frames}
}

// checkFrames verifies every frame is long enough for the layout
func checkFrames(w *Window, layout VectorLayout) error {
	if layout == nil {
		return ErrNilLayout
	}
	minLength := layout.MinLength()
	for i, frame := range w.Frames {
		if len(frame) < minLength {
			return errors.Wrapf(ErrVectorLengthMismatch, "frame %d has %d values, feat_version %d needs at least %d",
				i, len(frame), layout.FeatVersion(), minLength)
		}
	}
	return nil
}

// featVersionOf reports the layout version, zero when no layout is set
func featVersionOf(layout VectorLayout) int {
	if layout == nil {
		return 0
	}
	return layout.FeatVersion()
}
