package postprocess

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupedFixture returns an 8-box workload spread over three groups, with
// within-group overlap in every group. At IoU threshold 0.5 the expected
// survivors are boxes 0, 2, 3, 5 and 7.
func groupedFixture() (flatBoxes, scores []float32, groupIDs []int) {
	flatBoxes = []float32{
		0, 0, 10, 10, // 0: group 0
		1, 1, 10, 10, // 1: group 0, IoU 0.81 with box 0
		50, 50, 60, 60, // 2: group 0, isolated
		0, 0, 10, 10, // 3: group 1, same geometry as box 0
		0, 0, 10, 9, // 4: group 1, IoU 0.9 with box 3
		20, 20, 30, 30, // 5: group 2
		20, 20, 30, 29, // 6: group 2, IoU 0.9 with box 5
		100, 100, 110, 110, // 7: group 2, isolated
	}
	scores = []float32{0.9, 0.8, 0.7, 0.85, 0.6, 0.95, 0.5, 0.4}
	groupIDs = []int{0, 0, 0, 1, 1, 2, 2, 2}
	return flatBoxes, scores, groupIDs
}

// TestBatchedNMSCrossGroupIsolation verifies that geometrically identical
// boxes in different groups never suppress each other.
//
// @example
// go test -v -run TestBatchedNMSCrossGroupIsolation
func TestBatchedNMSCrossGroupIsolation(t *testing.T) {
	flatBoxes := []float32{
		0, 0, 10, 10,
		0, 0, 10, 10,
	}
	scores := []float32{0.9, 0.8}
	groupIDs := []int{0, 1}

	cfg := DefaultBatchedConfig()
	cfg.IoUThreshold = 0.5

	dets, indices, err := BatchedNMS(flatBoxes, scores, groupIDs, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indices)

	// Output rows carry the raw coordinates, not the displaced ones.
	assert.Equal(t, flatBoxes[0:4], dets[0:4])
	assert.Equal(t, flatBoxes[4:8], dets[5:9])
}

// TestBatchedNMSClassAgnostic verifies that class-agnostic mode compares all
// boxes regardless of group.
func TestBatchedNMSClassAgnostic(t *testing.T) {
	flatBoxes := []float32{
		0, 0, 10, 10,
		0, 0, 10, 10,
	}
	scores := []float32{0.9, 0.8}
	groupIDs := []int{0, 1}

	cfg := DefaultBatchedConfig()
	cfg.IoUThreshold = 0.5

	_, indices, err := BatchedNMS(flatBoxes, scores, groupIDs, cfg, true)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, indices)
}

// TestBatchedNMSConfigOverridesClassAgnostic verifies that a set
// cfg.ClassAgnostic wins over the explicit argument.
func TestBatchedNMSConfigOverridesClassAgnostic(t *testing.T) {
	flatBoxes := []float32{
		0, 0, 10, 10,
		0, 0, 10, 10,
	}
	scores := []float32{0.9, 0.8}
	groupIDs := []int{0, 1}

	agnostic := true
	cfg := DefaultBatchedConfig()
	cfg.IoUThreshold = 0.5
	cfg.ClassAgnostic = &agnostic

	_, indices, err := BatchedNMS(flatBoxes, scores, groupIDs, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, indices)
}

// TestBatchedNMSWithinGroupSuppression verifies the full fixture on the
// default (single pass) path.
func TestBatchedNMSWithinGroupSuppression(t *testing.T) {
	flatBoxes, scores, groupIDs := groupedFixture()

	cfg := DefaultBatchedConfig()
	cfg.IoUThreshold = 0.5

	dets, indices, err := BatchedNMS(flatBoxes, scores, groupIDs, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 0, 3, 2, 7}, indices)

	for k, idx := range indices {
		assert.Equal(t, flatBoxes[idx*4:idx*4+4], dets[k*5:k*5+4])
		assert.Equal(t, scores[idx], dets[k*5+4])
	}
}

// TestBatchedNMSPathAgreement verifies that the single-pass path and the
// per-group path keep the same boxes for the same input, by driving the
// split threshold below and above the input size.
func TestBatchedNMSPathAgreement(t *testing.T) {
	flatBoxes, scores, groupIDs := groupedFixture()

	small := DefaultBatchedConfig()
	small.IoUThreshold = 0.5

	large := DefaultBatchedConfig()
	large.IoUThreshold = 0.5
	large.SplitThreshold = 1 // forces the per-group path

	_, smallKept, err := BatchedNMS(flatBoxes, scores, groupIDs, small, false)
	require.NoError(t, err)
	_, largeKept, err := BatchedNMS(flatBoxes, scores, groupIDs, large, false)
	require.NoError(t, err)

	smallSet := append([]int(nil), smallKept...)
	largeSet := append([]int(nil), largeKept...)
	sort.Ints(smallSet)
	sort.Ints(largeSet)
	assert.Equal(t, smallSet, largeSet, "both paths must keep the same set")
}

// TestBatchedNMSMaxNumPerGroupPath verifies MaxNum truncation after the
// per-group merge: only the top-scoring survivors remain.
func TestBatchedNMSMaxNumPerGroupPath(t *testing.T) {
	flatBoxes, scores, groupIDs := groupedFixture()

	cfg := DefaultBatchedConfig()
	cfg.IoUThreshold = 0.5
	cfg.SplitThreshold = 1
	cfg.MaxNum = 2

	_, indices, err := BatchedNMS(flatBoxes, scores, groupIDs, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 0}, indices)
}

// TestBatchedNMSMaxNumIgnoredOnSinglePass verifies that MaxNum is only
// consulted on the per-group path.
func TestBatchedNMSMaxNumIgnoredOnSinglePass(t *testing.T) {
	flatBoxes, scores, groupIDs := groupedFixture()

	cfg := DefaultBatchedConfig()
	cfg.IoUThreshold = 0.5
	cfg.MaxNum = 2

	_, indices, err := BatchedNMS(flatBoxes, scores, groupIDs, cfg, false)
	require.NoError(t, err)
	assert.Len(t, indices, 5)
}

// TestBatchedNMSValidation verifies the group-ids length precondition.
func TestBatchedNMSValidation(t *testing.T) {
	flatBoxes := []float32{0, 0, 10, 10}
	scores := []float32{0.9}

	_, _, err := BatchedNMS(flatBoxes, scores, []int{0, 1}, DefaultBatchedConfig(), false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// TestBatchedNMSEmptyInput verifies that zero boxes yield empty results.
func TestBatchedNMSEmptyInput(t *testing.T) {
	dets, indices, err := BatchedNMS(nil, nil, nil, DefaultBatchedConfig(), false)
	require.NoError(t, err)
	assert.Empty(t, dets)
	assert.Empty(t, indices)
}
