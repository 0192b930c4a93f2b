package augment

import "github.com/pkg/errors"

var (
	// ErrUnsupportedVersion is returned for a feat_version without a known layout
	ErrUnsupportedVersion = errors.New("unsupported feature version")
	// ErrVectorLengthMismatch is returned when frames are too short for the layout or differ in length within a window
	ErrVectorLengthMismatch = errors.New("vector length mismatch")
	// ErrWindowSizeMismatch is returned when a window does not hold the configured number of frames
	ErrWindowSizeMismatch = errors.New("window size mismatch")
	// ErrNilLayout is returned when a transform is applied without a feature layout
	ErrNilLayout = errors.New("nil feature layout")
	// ErrNilSource is returned when a randomized transform is applied without a random source
	ErrNilSource = errors.New("nil random source")
)
