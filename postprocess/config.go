package postprocess

// DefaultSplitThreshold is the input size at which BatchedNMS switches from
// one suppression pass over all boxes to a per-group pass with a merge step.
const DefaultSplitThreshold = 10000

// Options configures single-group Non-Maximum Suppression.
//
// The zero value is usable: no score filter, half-open pixel convention,
// no kept-count cap, hard greedy elimination at IoUThreshold 0.
type Options struct {
	// IoUThreshold is the overlap above which a lower-scoring box is
	// suppressed by a kept box.
	IoUThreshold float32
	// Offset selects the pixel convention: box width is x2 - x1 + Offset.
	// Must be 0 or 1.
	Offset int
	// ScoreThreshold, when positive, drops boxes scoring at or below it
	// before suppression. Kept indices still refer to the original arrays.
	ScoreThreshold float32
	// MaxNum caps the number of kept boxes when positive. -1 (or 0) keeps
	// all survivors.
	MaxNum int
	// Rescorer decides the fate of boxes overlapping a kept box. nil means
	// hard greedy elimination at IoUThreshold.
	Rescorer Rescorer
}

// DefaultOptions returns the documented defaults for single-group NMS.
func DefaultOptions() Options {
	return Options{MaxNum: -1}
}

// BatchedConfig configures grouped Non-Maximum Suppression.
//
// Every field is optional. Zero-value fields take their documented defaults,
// so a caller-built config never gets rejected for carrying settings this
// package does not know about; it simply has no field for them.
type BatchedConfig struct {
	// IoUThreshold is the suppression threshold handed to single-group NMS.
	// Defaults to 0.
	IoUThreshold float32
	// SplitThreshold is the input size at which processing switches to the
	// memory-bounded per-group path. Zero or negative means
	// DefaultSplitThreshold.
	SplitThreshold int
	// MaxNum caps the merged kept set when positive. Only consulted on the
	// per-group path. Defaults to -1 (no cap).
	MaxNum int
	// ClassAgnostic, when set, overrides the classAgnostic argument of
	// BatchedNMS. nil leaves the argument in charge.
	ClassAgnostic *bool
	// Rescorer is handed through to single-group NMS. nil means hard greedy
	// elimination.
	Rescorer Rescorer
}

// DefaultBatchedConfig returns the documented defaults for grouped NMS.
func DefaultBatchedConfig() BatchedConfig {
	return BatchedConfig{
		SplitThreshold: DefaultSplitThreshold,
		MaxNum:         -1,
	}
}
