package postprocess

import "github.com/chewxy/math32"

// Rescorer is the pluggable suppression strategy consulted once a box has
// been kept: for every remaining candidate it receives the candidate's IoU
// with the kept box and the candidate's current score, and answers with the
// candidate's new score plus whether the candidate stays in the running.
//
// HardRescorer reproduces classic greedy NMS; the soft variants decay scores
// instead of eliminating outright, so heavily overlapped boxes can still be
// kept if nothing better claims their spot.
type Rescorer interface {
	Rescore(iou, score float32) (float32, bool)
}

// HardRescorer eliminates any candidate whose IoU with a kept box exceeds
// IoUThreshold. Scores are never changed. This is the default strategy.
type HardRescorer struct {
	IoUThreshold float32
}

// Rescore returns the score unchanged and rejects the candidate when the
// overlap exceeds the threshold.
func (r HardRescorer) Rescore(iou, score float32) (float32, bool) {
	return score, iou <= r.IoUThreshold
}

// LinearRescorer implements linear soft-NMS: candidates overlapping a kept
// box beyond IoUThreshold have their score decayed by (1 - IoU) instead of
// being removed, and are only dropped once the decayed score falls to or
// below MinScore.
type LinearRescorer struct {
	IoUThreshold float32
	MinScore     float32
}

// Rescore applies the linear decay.
func (r LinearRescorer) Rescore(iou, score float32) (float32, bool) {
	if iou > r.IoUThreshold {
		score *= 1 - iou
	}
	return score, score > r.MinScore
}

// GaussianRescorer implements gaussian soft-NMS: every candidate overlapping
// a kept box decays by exp(-IoU²/Sigma), and is dropped once its score falls
// to or below MinScore.
type GaussianRescorer struct {
	Sigma    float32
	MinScore float32
}

// Rescore applies the gaussian decay.
func (r GaussianRescorer) Rescore(iou, score float32) (float32, bool) {
	if iou > 0 {
		score *= math32.Exp(-iou * iou / r.Sigma)
	}
	return score, score > r.MinScore
}
