package postprocess

import "github.com/nvr-ai/go-nms/boxes"

// NMS filters overlapping detections with greedy Non-Maximum Suppression.
//
// Arguments:
//   - flatBoxes: N boxes as a flat [x1, y1, x2, y2, ...] slice of length N*4.
//   - scores: N confidence scores, index-aligned with the boxes.
//   - opts: suppression parameters, see Options.
//
// Returns:
//   - dets: kept detections as a flat K*5 slice, each row the 4 box
//     coordinates followed by the post-suppression score, in descending
//     score order.
//   - indices: the K kept positions in the original input arrays, in the
//     same order as dets.
//   - An ErrInvalidArgument-wrapped error when the preconditions are
//     violated; empty input is not an error and yields empty results.
//
// Ties in score are deterministic: equal scores keep their relative input
// order.
func NMS(flatBoxes, scores []float32, opts Options) ([]float32, []int, error) {
	n, err := validateInputs(flatBoxes, scores, opts.Offset)
	if err != nil {
		return nil, nil, err
	}

	rescorer := opts.Rescorer
	if rescorer == nil {
		rescorer = HardRescorer{IoUThreshold: opts.IoUThreshold}
	}

	// Score filtering happens before suppression. validInds maps positions
	// in the filtered arrays back to positions in the caller's arrays.
	candBoxes, candScores := flatBoxes, scores
	var validInds []int
	if opts.ScoreThreshold > 0 {
		validInds = make([]int, 0, n)
		candBoxes = make([]float32, 0, len(flatBoxes))
		candScores = make([]float32, 0, n)
		for i := 0; i < n; i++ {
			if scores[i] > opts.ScoreThreshold {
				validInds = append(validInds, i)
				candBoxes = append(candBoxes, flatBoxes[i*4:i*4+4]...)
				candScores = append(candScores, scores[i])
			}
		}
	}

	keep, keptScores := suppress(candBoxes, candScores, float32(opts.Offset), rescorer)

	if opts.MaxNum > 0 && len(keep) > opts.MaxNum {
		keep = keep[:opts.MaxNum]
		keptScores = keptScores[:opts.MaxNum]
	}

	indices := make([]int, len(keep))
	dets := make([]float32, 0, len(keep)*5)
	for k, idx := range keep {
		if validInds != nil {
			idx = validInds[idx]
		}
		indices[k] = idx
		dets = append(dets, flatBoxes[idx*4:idx*4+4]...)
		dets = append(dets, keptScores[k])
	}
	return dets, indices, nil
}

// suppress runs the greedy selection loop: repeatedly keep the live box with
// the highest working score, then let the rescorer decide the fate of every
// remaining box against it. Working scores only ever decrease, so the kept
// scores come out non-increasing. Equal working scores resolve to the earlier
// position, which keeps ties in input order.
//
// Returns kept positions into the candidate arrays and their
// post-suppression scores.
func suppress(flat, scores []float32, offset float32, rescorer Rescorer) ([]int, []float32) {
	n := len(scores)
	working := make([]float32, n)
	copy(working, scores)
	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}

	keep := make([]int, 0, n)
	keptScores := make([]float32, 0, n)

	for {
		best := -1
		for i := 0; i < n; i++ {
			if alive[i] && (best == -1 || working[i] > working[best]) {
				best = i
			}
		}
		if best == -1 {
			break
		}
		alive[best] = false
		keep = append(keep, best)
		keptScores = append(keptScores, working[best])

		anchor := boxes.At(flat, best)
		for j := 0; j < n; j++ {
			if !alive[j] {
				continue
			}
			iou := anchor.IoU(boxes.At(flat, j), offset)
			score, keepJ := rescorer.Rescore(iou, working[j])
			working[j] = score
			if !keepJ {
				alive[j] = false
			}
		}
	}
	return keep, keptScores
}
