package vectorize

import "github.com/pkg/errors"

var (
	// ErrVectorLengthMismatch is returned when the number of written values differs from the declared vector length
	ErrVectorLengthMismatch = errors.New("vector length mismatch")
	// ErrInvalidArgument is returned for out-of-range vectorizer options
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedFrameData is returned when parallel arrays of a frame disagree in length
	ErrMalformedFrameData = errors.New("malformed frame data")
)
