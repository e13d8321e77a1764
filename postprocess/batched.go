package postprocess

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// BatchedNMS performs Non-Maximum Suppression independently per group.
//
// Each group id (typically the predicted class) gets its own suppression
// scope: unless running class-agnostic, every box is displaced by
// groupID * (maxCoordinate + 1) before suppression, which moves different
// groups into disjoint coordinate ranges so cross-group IoU is always zero
// while within-group geometry is unchanged.
//
// Inputs below cfg.SplitThreshold boxes run a single suppression pass over
// the displaced boxes. Larger inputs run suppression per group, in ascending
// group-id order, and merge the survivors with a global sort by
// post-suppression score; this bounds peak work when N is very large.
// Both paths keep the same set of boxes.
//
// Arguments:
//   - flatBoxes: N boxes as a flat N*4 slice of raw (non-displaced)
//     coordinates.
//   - scores: N confidence scores.
//   - groupIDs: N group labels; suppression never crosses groups unless
//     class-agnostic.
//   - cfg: grouped-suppression parameters, see BatchedConfig.
//   - classAgnostic: ignore group ids for geometry. cfg.ClassAgnostic, when
//     set, overrides this argument.
//
// Returns kept detections (flat K*5, raw coordinates plus post-suppression
// score) and the kept positions in the input arrays.
func BatchedNMS(
	flatBoxes, scores []float32,
	groupIDs []int,
	cfg BatchedConfig,
	classAgnostic bool,
) ([]float32, []int, error) {
	n, err := validateInputs(flatBoxes, scores, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(groupIDs) != n {
		return nil, nil, errors.Wrapf(ErrInvalidArgument,
			"got %d boxes but %d group ids", n, len(groupIDs))
	}

	if cfg.ClassAgnostic != nil {
		classAgnostic = *cfg.ClassAgnostic
	}
	splitThr := cfg.SplitThreshold
	if splitThr <= 0 {
		splitThr = DefaultSplitThreshold
	}

	forNMS := flatBoxes
	if !classAgnostic && n > 0 {
		forNMS = displaceByGroup(flatBoxes, groupIDs)
	}

	opts := Options{
		IoUThreshold: cfg.IoUThreshold,
		MaxNum:       -1,
		Rescorer:     cfg.Rescorer,
	}

	if n < splitThr {
		dets, keep, err := NMS(forNMS, scores, opts)
		if err != nil {
			return nil, nil, err
		}
		// Gather output rows from the raw coordinates; the displaced boxes
		// only exist for suppression.
		out := make([]float32, 0, len(keep)*5)
		for k, idx := range keep {
			out = append(out, flatBoxes[idx*4:idx*4+4]...)
			out = append(out, dets[k*5+4])
		}
		return out, keep, nil
	}

	// Per-group path. totalMask and scoresAfter are call-local accumulators
	// sized to the full input, filled group by group.
	totalMask := make([]bool, n)
	scoresAfter := make([]float32, n)

	for _, id := range distinctSorted(groupIDs) {
		var members []int
		for i, g := range groupIDs {
			if g == id {
				members = append(members, i)
			}
		}

		groupBoxes := make([]float32, 0, len(members)*4)
		groupScores := make([]float32, 0, len(members))
		for _, i := range members {
			groupBoxes = append(groupBoxes, forNMS[i*4:i*4+4]...)
			groupScores = append(groupScores, scores[i])
		}

		dets, keep, err := NMS(groupBoxes, groupScores, opts)
		if err != nil {
			return nil, nil, err
		}
		for k, local := range keep {
			global := members[local]
			totalMask[global] = true
			scoresAfter[global] = dets[k*5+4]
		}
	}

	kept := make([]int, 0, n)
	for i, ok := range totalMask {
		if ok {
			kept = append(kept, i)
		}
	}
	// Stable sort over ascending indices: equal scores keep ascending global
	// index, so the merge stays deterministic regardless of group order.
	sort.SliceStable(kept, func(i, j int) bool {
		return scoresAfter[kept[i]] > scoresAfter[kept[j]]
	})
	if cfg.MaxNum > 0 && len(kept) > cfg.MaxNum {
		kept = kept[:cfg.MaxNum]
	}

	out := make([]float32, 0, len(kept)*5)
	for _, g := range kept {
		out = append(out, flatBoxes[g*4:g*4+4]...)
		out = append(out, scoresAfter[g])
	}
	return out, kept, nil
}

// displaceByGroup shifts every box by groupID * (maxCoordinate + 1) on all
// four coordinates.
func displaceByGroup(flatBoxes []float32, groupIDs []int) []float32 {
	maxCoordinate := flatBoxes[0]
	for _, c := range flatBoxes[1:] {
		maxCoordinate = math32.Max(maxCoordinate, c)
	}

	displaced := make([]float32, len(flatBoxes))
	for i, g := range groupIDs {
		shift := float32(g) * (maxCoordinate + 1)
		for c := 0; c < 4; c++ {
			displaced[i*4+c] = flatBoxes[i*4+c] + shift
		}
	}
	return displaced
}

// distinctSorted returns the distinct group ids in ascending order.
func distinctSorted(groupIDs []int) []int {
	seen := make(map[int]struct{}, len(groupIDs))
	ids := make([]int, 0, len(groupIDs))
	for _, g := range groupIDs {
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			ids = append(ids, g)
		}
	}
	sort.Ints(ids)
	return ids
}
