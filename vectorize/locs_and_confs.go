package vectorize

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// NumPoseJoints is the fixed joint count of the pose estimator.
const NumPoseJoints = 22

const (
	// Values written per object instance: conf, x, y, w, h
	objectSlotWidth = 5
)

// FeatureVector is a flat per-frame feature vector.
type FeatureVector []float32

// LocsAndConfs encodes detections and the most confident pose into a fixed-length vector.
//
// Layout:
//
//	[conf, x, y, w, h] * top_k for each class 0..num_classes-1
//	pose score
//	[joint conf (optional), joint x, joint y] * NumPoseJoints
//	[|joint x - obj x|, |joint y - obj y|] * top_k*num_classes for each joint (optional)
type LocsAndConfs struct {
	topK               int
	numClasses         int
	useJointConfs      bool
	usePixelNorm       bool
	useJointObjOffsets bool
	vectorLength       int
}

// LocsAndConfsOption configures LocsAndConfs
type LocsAndConfsOption func(*LocsAndConfs)

// WithJointConfs toggles per-joint confidences (changes vector length)
func WithJointConfs(use bool) LocsAndConfsOption {
	return func(v *LocsAndConfs) {
		v.useJointConfs = use
	}
}

// WithPixelNorm toggles division of pixel coordinates by frame width and height (keeps vector length)
func WithPixelNorm(use bool) LocsAndConfsOption {
	return func(v *LocsAndConfs) {
		v.usePixelNorm = use
	}
}

// WithJointObjOffsets toggles absolute joint-to-object offsets (changes vector length)
func WithJointObjOffsets(use bool) LocsAndConfsOption {
	return func(v *LocsAndConfs) {
		v.useJointObjOffsets = use
	}
}

// NewLocsAndConfsDefault creates vectorizer with top_k=1, num_classes=7, joint confidences and pixel normalization on
func NewLocsAndConfsDefault() *LocsAndConfs {
	v, _ := NewLocsAndConfs(1, 7)
	return v
}

// NewLocsAndConfs creates new instance of LocsAndConfs.
// Joint confidences and pixel normalization are enabled unless overridden by options.
func NewLocsAndConfs(topK, numClasses int, options ...LocsAndConfsOption) (*LocsAndConfs, error) {
	if topK <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "top_k must be positive, got %d", topK)
	}
	if numClasses <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "num_classes must be positive, got %d", numClasses)
	}
	v := &LocsAndConfs{
		topK:          topK,
		numClasses:    numClasses,
		useJointConfs: true,
		usePixelNorm:  true,
	}
	for _, option := range options {
		option(v)
	}
	v.vectorLength = v.DetermineVectorLength()
	diagf("LocsAndConfs: top_k=%d num_classes=%d joint_confs=%t pixel_norm=%t joint_obj_offsets=%t length=%d",
		v.topK, v.numClasses, v.useJointConfs, v.usePixelNorm, v.useJointObjOffsets, v.vectorLength)
	return v, nil
}

// ObjectBlockLength returns number of values used by per-class object slots
func (v *LocsAndConfs) ObjectBlockLength() int {
	return objectSlotWidth * v.topK * v.numClasses
}

// PoseBlockLength returns number of values used by the pose score and its joints
func (v *LocsAndConfs) PoseBlockLength() int {
	return 1 + NumPoseJoints*v.rowsPerJoint()
}

// OffsetsBlockLength returns number of values used by joint-object offsets (zero when disabled)
func (v *LocsAndConfs) OffsetsBlockLength() int {
	if !v.useJointObjOffsets {
		return 0
	}
	return 2 * NumPoseJoints * v.topK * v.numClasses
}

// DetermineVectorLength returns declared length of every vector produced by Vectorize
func (v *LocsAndConfs) DetermineVectorLength() int {
	return v.ObjectBlockLength() + v.PoseBlockLength() + v.OffsetsBlockLength()
}

func (v *LocsAndConfs) rowsPerJoint() int {
	if v.useJointConfs {
		return 3
	}
	return 2
}

// String mirrors the constructor arguments
func (v *LocsAndConfs) String() string {
	return fmt.Sprintf("LocsAndConfs(top_k=%d, num_classes=%d, use_joint_confs=%t, use_pixel_norm=%t, use_joint_obj_offsets=%t)",
		v.topK, v.numClasses, v.useJointConfs, v.usePixelNorm, v.useJointObjOffsets)
}

// vectorWriter appends values sequentially and counts every write, including overflowing ones.
type vectorWriter struct {
	data  FeatureVector
	count int
}

func (w *vectorWriter) append(value float64) {
	if w.count < len(w.data) {
		w.data[w.count] = float32(value)
	}
	w.count++
}

func (w *vectorWriter) zeros(n int) {
	for i := 0; i < n; i++ {
		w.append(0)
	}
}

// Vectorize converts one frame into a feature vector of DetermineVectorLength() values
func (v *LocsAndConfs) Vectorize(frame *FrameData) (FeatureVector, error) {
	if frame == nil {
		return nil, errors.Wrap(ErrMalformedFrameData, "nil frame")
	}
	if err := frame.Validate(); err != nil {
		opsf("Vectorize: %v", err)
		return nil, err
	}
	norm := scale{w: 1, h: 1}
	// An empty frame divides nothing, so its size is irrelevant
	if v.usePixelNorm && (frame.ObjectDetections.Len() > 0 || frame.Poses.Len() > 0) {
		if frame.Size.Width <= 0 || frame.Size.Height <= 0 {
			err := errors.Wrapf(ErrMalformedFrameData, "frame size must be positive for pixel normalization, got %vx%v", frame.Size.Width, frame.Size.Height)
			opsf("Vectorize: %v", err)
			return nil, err
		}
		norm = scale{w: frame.Size.Width, h: frame.Size.Height}
	}

	writer := &vectorWriter{data: make(FeatureVector, v.vectorLength)}
	dets := frame.ObjectDetections

	// Normalized object boxes per slot, kept for joint-object offsets
	slots := make([]*Rectangle, 0, v.topK*v.numClasses)

	// Assumption: class labels are [0, 1, 2,... num_classes-1]
	for label := 0; label < v.numClasses; label++ {
		topK := topKIndexesOfClass(dets, v.topK, label)
		for _, idx := range topK {
			box := norm.rect(dets.Boxes[idx])
			writer.append(dets.Scores[idx])
			writer.append(box.X)
			writer.append(box.Y)
			writer.append(box.Width)
			writer.append(box.Height)
			slots = append(slots, &box)
		}
		for k := len(topK); k < v.topK; k++ {
			writer.zeros(objectSlotWidth)
			slots = append(slots, nil)
		}
	}

	var joints []Point
	if frame.Poses.Len() > 0 {
		// Most confident body detection
		poseIdx := floats.MaxIdx(frame.Poses.Scores)
		writer.append(frame.Poses.Scores[poseIdx])
		joints = make([]Point, NumPoseJoints)
		for j := 0; j < NumPoseJoints; j++ {
			if v.useJointConfs {
				writer.append(frame.Poses.JointScores[poseIdx][j])
			}
			joints[j] = norm.point(frame.Poses.JointPositions[poseIdx][j])
			writer.append(joints[j].X)
			writer.append(joints[j].Y)
		}
	} else {
		writer.zeros(v.PoseBlockLength())
	}

	if v.useJointObjOffsets {
		for j := 0; j < NumPoseJoints; j++ {
			for _, box := range slots {
				if joints == nil || box == nil {
					writer.zeros(2)
					continue
				}
				writer.append(absFloat64(joints[j].X - box.X))
				writer.append(absFloat64(joints[j].Y - box.Y))
			}
		}
	}

	if writer.count != v.vectorLength {
		return nil, errors.Wrapf(ErrVectorLengthMismatch, "wrote %d values, declared %d", writer.count, v.vectorLength)
	}
	tracef("Vectorize: %d detections, %d poses -> %d values", dets.Len(), frame.Poses.Len(), writer.count)
	return writer.data, nil
}
