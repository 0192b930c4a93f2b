package vectorize

import (
	"github.com/pkg/errors"
)

// ObjectDetections holds one frame's detector output as parallel arrays,
// one entry per detected object instance.
type ObjectDetections struct {
	Labels []int
	Scores []float64
	Boxes  []Rectangle
}

// Len returns number of detections
func (d ObjectDetections) Len() int {
	return len(d.Labels)
}

// Poses holds pose-estimator candidates for one frame.
// JointPositions and JointScores are indexed [pose][joint].
type Poses struct {
	Scores         []float64
	JointPositions [][]Point
	JointScores    [][]float64
}

// Len returns number of pose candidates
func (p *Poses) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Scores)
}

// FrameData is one frame's raw perception output. Poses may be nil.
type FrameData struct {
	Size             Size
	ObjectDetections ObjectDetections
	Poses            *Poses
}

// Validate checks the parallel-array invariants of the frame.
func (f *FrameData) Validate() error {
	dets := f.ObjectDetections
	if len(dets.Scores) != len(dets.Labels) || len(dets.Boxes) != len(dets.Labels) {
		return errors.Wrapf(ErrMalformedFrameData,
			"object detections length mismatch: labels=%d scores=%d boxes=%d",
			len(dets.Labels), len(dets.Scores), len(dets.Boxes))
	}
	if f.Poses == nil {
		return nil
	}
	numPoses := len(f.Poses.Scores)
	if len(f.Poses.JointPositions) != numPoses || len(f.Poses.JointScores) != numPoses {
		return errors.Wrapf(ErrMalformedFrameData,
			"pose count mismatch: scores=%d joint_positions=%d joint_scores=%d",
			numPoses, len(f.Poses.JointPositions), len(f.Poses.JointScores))
	}
	for i := 0; i < numPoses; i++ {
		if len(f.Poses.JointPositions[i]) != NumPoseJoints || len(f.Poses.JointScores[i]) != NumPoseJoints {
			return errors.Wrapf(ErrMalformedFrameData,
				"pose %d: expected %d joints, got positions=%d scores=%d",
				i, NumPoseJoints, len(f.Poses.JointPositions[i]), len(f.Poses.JointScores[i]))
		}
	}
	return nil
}
