package augment

import (
	"github.com/pkg/errors"
)

// Supported feature layouts
const (
	FeatVersion1 = 1
	FeatVersion2 = 2
	FeatVersion3 = 3
	FeatVersion5 = 5
)

// Delta2D is an (x, y) offset in pixels
type Delta2D struct {
	X float64
	Y float64
}

// SpatialDelta holds the per-frame offsets drawn by MoveCenterPts
type SpatialDelta struct {
	RightHand Delta2D
	LeftHand  Delta2D
	Object    Delta2D
}

// VectorLayout knows where the semantic sub-ranges of one feature version live
// and how each transform treats them. Every transform resolves offsets through
// its layout, so they agree by construction.
type VectorLayout interface {
	// FeatVersion returns the layout's feature version
	FeatVersion() int
	// MinLength returns the shortest frame the layout can address
	MinLength() int
	// ActivationIndices returns confidence entries of a frame with given length
	ActivationIndices(length int) []int
	ApplySpatialDelta(frame []float32, d SpatialDelta)
	ApplyConfidenceDelta(frame []float32, delta float64)
	NormalizePixelPts(frame []float32, imW, imH float64)
	NormalizeFromCenter(frame []float32, halfW, halfH float64)
}

// LayoutFor resolves the layout of a feature version.
// numObjClasses counts object classes including both hands; only versions 2 and 5 use it.
func LayoutFor(featVersion, numObjClasses int) (VectorLayout, error) {
	switch featVersion {
	case FeatVersion1:
		return activationsLayout{}, nil
	case FeatVersion2, FeatVersion5:
		if numObjClasses < 2 {
			return nil, errors.Errorf("feat_version %d needs num_obj_classes >= 2 (hands included), got %d", featVersion, numObjClasses)
		}
		return newHandObjectLayout(featVersion, numObjClasses), nil
	case FeatVersion3:
		return centeredLayout{}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedVersion, "unhandled version '%d'", featVersion)
	}
}

// pairRange covers interleaved (x, y) entries: x at start, y at start+1, then every stride
// while the y index stays below end.
type pairRange struct {
	start  int
	end    int
	stride int
}

func (r pairRange) each(fn func(xi, yi int)) {
	for xi := r.start; xi+1 < r.end; xi += r.stride {
		fn(xi, xi+1)
	}
}

// shiftPairs adds d to every pair. When guarded, zero entries mean "absent" and stay untouched.
func shiftPairs(frame []float32, r pairRange, d Delta2D, guarded bool) {
	r.each(func(xi, yi int) {
		if !guarded || frame[xi] != 0 {
			frame[xi] = float32(float64(frame[xi]) + d.X)
		}
		if !guarded || frame[yi] != 0 {
			frame[yi] = float32(float64(frame[yi]) + d.Y)
		}
	})
}

// dividePairs divides x by w and y by h for every pair, zeros included.
func dividePairs(frame []float32, r pairRange, w, h float64) {
	r.each(func(xi, yi int) {
		frame[xi] = float32(float64(frame[xi]) / w)
		frame[yi] = float32(float64(frame[yi]) / h)
	})
}

func jitterActivations(frame []float32, idxs []int, delta float64) {
	for _, i := range idxs {
		if frame[i] == 0 {
			// No detection, must not gain confidence
			continue
		}
		frame[i] = float32(clipFloat64(float64(frame[i])+delta, 0, 1))
	}
}

func indexRange(start, end, step int) []int {
	if start >= end {
		return nil
	}
	idxs := make([]int, 0, (end-start+step-1)/step)
	for i := start; i < end; i += step {
		idxs = append(idxs, i)
	}
	return idxs
}

// activationsLayout is version 1: every entry is an activation, there are no distances.
type activationsLayout struct{}

func (activationsLayout) FeatVersion() int { return FeatVersion1 }
func (activationsLayout) MinLength() int   { return 0 }

func (activationsLayout) ActivationIndices(length int) []int {
	return indexRange(0, length, 1)
}

func (activationsLayout) ApplySpatialDelta(frame []float32, d SpatialDelta) {}

func (l activationsLayout) ApplyConfidenceDelta(frame []float32, delta float64) {
	jitterActivations(frame, l.ActivationIndices(len(frame)), delta)
}

func (activationsLayout) NormalizePixelPts(frame []float32, imW, imH float64)      {}
func (activationsLayout) NormalizeFromCenter(frame []float32, halfW, halfH float64) {}

// handObjectLayout is versions 2 and 5:
//
//	0                   right hand activation
//	[1, P+1)            right hand to object (x, y) pairs
//	P+1                 left hand activation
//	[P+2, 2P+2)         left hand to object (x, y) pairs
//	2P+2, 2P+3          right hand to left hand (x, y)
//	actStart..          object activations every actStride
//
// where P = 2*(num_obj_classes-2). Zero distances are treated as absent by the spatial jitter.
type handObjectLayout struct {
	version     int
	rightHand   pairRange
	leftHand    pairRange
	betweenHand pairRange
	leftAct     int
	actStart    int
	actStride   int
}

func newHandObjectLayout(version, numObjClasses int) handObjectLayout {
	// Hands are not counted as objects
	numObjPoints := (numObjClasses - 2) * 2
	leftStart := numObjPoints + 2
	handsIdx := leftStart + numObjPoints
	l := handObjectLayout{
		version:     version,
		rightHand:   pairRange{start: 1, end: numObjPoints + 1, stride: 2},
		leftHand:    pairRange{start: leftStart, end: handsIdx, stride: 2},
		betweenHand: pairRange{start: handsIdx, end: handsIdx + 2, stride: 2},
		leftAct:     numObjPoints + 1,
		actStart:    handsIdx + 2,
		actStride:   1,
	}
	if version == FeatVersion5 {
		l.actStart++
		l.actStride = 3
	}
	return l
}

func (l handObjectLayout) FeatVersion() int { return l.version }
func (l handObjectLayout) MinLength() int   { return l.betweenHand.end }

func (l handObjectLayout) ActivationIndices(length int) []int {
	return append([]int{0, l.leftAct}, indexRange(l.actStart, length, l.actStride)...)
}

func (l handObjectLayout) ApplySpatialDelta(frame []float32, d SpatialDelta) {
	// The object delta is shared by both hands: one object position per frame
	right := Delta2D{X: d.RightHand.X + d.Object.X, Y: d.RightHand.Y + d.Object.Y}
	left := Delta2D{X: d.LeftHand.X + d.Object.X, Y: d.LeftHand.Y + d.Object.Y}
	shiftPairs(frame, l.rightHand, right, true)
	shiftPairs(frame, l.leftHand, left, true)
	hands := Delta2D{X: d.RightHand.X + d.LeftHand.X, Y: d.RightHand.Y + d.LeftHand.Y}
	shiftPairs(frame, l.betweenHand, hands, true)
}

func (l handObjectLayout) ApplyConfidenceDelta(frame []float32, delta float64) {
	jitterActivations(frame, l.ActivationIndices(len(frame)), delta)
}

func (l handObjectLayout) NormalizePixelPts(frame []float32, imW, imH float64) {
	dividePairs(frame, l.rightHand, imW, imH)
	dividePairs(frame, l.leftHand, imW, imH)
	dividePairs(frame, l.betweenHand, imW, imH)
}

// Distances are already relative to the image size
func (handObjectLayout) NormalizeFromCenter(frame []float32, halfW, halfH float64) {}

// centeredLayout is version 3:
//
//	0            right hand activation
//	1, 2         right hand (x, y)
//	3            left hand activation
//	4, 5         left hand (x, y)
//	7, 12, ...   object activations
//	10, 11 ...   object (x, y), stride 5
//
// Missing objects are encoded as (2, 2) after centre normalization, so no entry is
// treated as absent by the spatial jitter.
type centeredLayout struct{}

var (
	centeredRightHand = pairRange{start: 1, end: 3, stride: 2}
	centeredLeftHand  = pairRange{start: 4, end: 6, stride: 2}
)

const (
	centeredObjStart  = 10
	centeredObjStride = 5
	centeredActStart  = 7
)

func centeredObjects(length int) pairRange {
	return pairRange{start: centeredObjStart, end: length, stride: centeredObjStride}
}

func (centeredLayout) FeatVersion() int { return FeatVersion3 }
func (centeredLayout) MinLength() int   { return centeredLeftHand.end }

func (centeredLayout) ActivationIndices(length int) []int {
	return append([]int{0, 3}, indexRange(centeredActStart, length, centeredObjStride)...)
}

func (centeredLayout) ApplySpatialDelta(frame []float32, d SpatialDelta) {
	shiftPairs(frame, centeredRightHand, d.RightHand, false)
	shiftPairs(frame, centeredLeftHand, d.LeftHand, false)
	shiftPairs(frame, centeredObjects(len(frame)), d.Object, false)
}

func (l centeredLayout) ApplyConfidenceDelta(frame []float32, delta float64) {
	jitterActivations(frame, l.ActivationIndices(len(frame)), delta)
}

// Distances are measured from the image centre
func (centeredLayout) NormalizePixelPts(frame []float32, imW, imH float64) {}

func (centeredLayout) NormalizeFromCenter(frame []float32, halfW, halfH float64) {
	dividePairs(frame, centeredRightHand, halfW, halfH)
	dividePairs(frame, centeredLeftHand, halfW, halfH)
	dividePairs(frame, centeredObjects(len(frame)), halfW, halfH)
}
