package postprocess

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// The tensor adapters preserve the container symmetry contract: callers that
// hand in tensors get tensors back, callers on the slice API stay on slices.
// The core only ever sees flat float32 slices.

// NMSTensor runs single-group NMS over tensor inputs.
//
// Arguments:
//   - boxesT: float32 tensor of shape (N, 4).
//   - scoresT: float32 tensor of shape (N).
//   - opts: suppression parameters, see Options.
//
// Returns a (K, 5) float32 dets tensor and a (K) int indices tensor.
func NMSTensor(boxesT, scoresT *tensor.Dense, opts Options) (*tensor.Dense, *tensor.Dense, error) {
	flatBoxes, scores, err := tensorInputs(boxesT, scoresT)
	if err != nil {
		return nil, nil, err
	}
	dets, indices, err := NMS(flatBoxes, scores, opts)
	if err != nil {
		return nil, nil, err
	}
	return tensorOutputs(dets, indices)
}

// BatchedNMSTensor runs grouped NMS over tensor inputs.
//
// Arguments:
//   - boxesT: float32 tensor of shape (N, 4), raw coordinates.
//   - scoresT: float32 tensor of shape (N).
//   - groupsT: int tensor of shape (N) carrying the group ids.
//   - cfg, classAgnostic: as in BatchedNMS.
//
// Returns a (K, 5) float32 dets tensor and a (K) int indices tensor.
func BatchedNMSTensor(
	boxesT, scoresT, groupsT *tensor.Dense,
	cfg BatchedConfig,
	classAgnostic bool,
) (*tensor.Dense, *tensor.Dense, error) {
	flatBoxes, scores, err := tensorInputs(boxesT, scoresT)
	if err != nil {
		return nil, nil, err
	}
	if groupsT.Dims() != 1 || groupsT.Dtype() != tensor.Int {
		return nil, nil, errors.Wrapf(ErrInvalidArgument,
			"group ids must be a 1-D int tensor, got %v of %v",
			groupsT.Shape(), groupsT.Dtype())
	}
	groupIDs, ok := groupsT.Data().([]int)
	if !ok {
		// A scalar-shaped (N=1) dense backs its data as a bare int.
		if id, single := groupsT.Data().(int); single {
			groupIDs = []int{id}
		} else {
			return nil, nil, errors.Wrap(ErrInvalidArgument,
				"group id tensor has no int backing")
		}
	}

	dets, indices, err := BatchedNMS(flatBoxes, scores, groupIDs, cfg, classAgnostic)
	if err != nil {
		return nil, nil, err
	}
	return tensorOutputs(dets, indices)
}

// tensorInputs validates the boxes/scores tensors and exposes their flat
// float32 backings. Shape-level preconditions are checked here so failures
// surface before any data is copied out.
func tensorInputs(boxesT, scoresT *tensor.Dense) ([]float32, []float32, error) {
	if boxesT.Dims() != 2 || boxesT.Shape()[1] != 4 {
		return nil, nil, errors.Wrapf(ErrInvalidArgument,
			"boxes tensor must have shape (N, 4), got %v", boxesT.Shape())
	}
	if scoresT.Dims() != 1 {
		return nil, nil, errors.Wrapf(ErrInvalidArgument,
			"scores tensor must have shape (N), got %v", scoresT.Shape())
	}
	if boxesT.Dtype() != tensor.Float32 || scoresT.Dtype() != tensor.Float32 {
		return nil, nil, errors.Wrapf(ErrInvalidArgument,
			"boxes and scores must be float32 tensors, got %v and %v",
			boxesT.Dtype(), scoresT.Dtype())
	}
	if boxesT.Shape()[0] != scoresT.Shape()[0] {
		return nil, nil, errors.Wrapf(ErrInvalidArgument,
			"got %d boxes but %d scores", boxesT.Shape()[0], scoresT.Shape()[0])
	}

	flatBoxes, ok := boxesT.Data().([]float32)
	if !ok {
		return nil, nil, errors.Wrap(ErrInvalidArgument,
			"boxes tensor has no float32 backing")
	}
	scores, ok := scoresT.Data().([]float32)
	if !ok {
		if s, single := scoresT.Data().(float32); single {
			scores = []float32{s}
		} else {
			return nil, nil, errors.Wrap(ErrInvalidArgument,
				"scores tensor has no float32 backing")
		}
	}
	return flatBoxes, scores, nil
}

// tensorOutputs wraps the slice results back into dense tensors.
func tensorOutputs(dets []float32, indices []int) (*tensor.Dense, *tensor.Dense, error) {
	k := len(indices)
	detsT := tensor.New(
		tensor.WithShape(k, 5),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(dets),
	)
	indicesT := tensor.New(
		tensor.WithShape(k),
		tensor.Of(tensor.Int),
		tensor.WithBacking(indices),
	)
	return detsT, indicesT, nil
}
