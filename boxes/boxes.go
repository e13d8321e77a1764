// Package boxes - axis-aligned bounding box geometry for detection postprocessing.
package boxes

import "github.com/chewxy/math32"

// Box is an axis-aligned rectangle in (x1, y1, x2, y2) corner form.
// Callers guarantee X2 >= X1 and Y2 >= Y1; coordinates are not validated.
type Box struct {
	X1, Y1, X2, Y2 float32
}

// At reads the i-th box out of a flat [x1, y1, x2, y2, x1, y1, ...] slice.
func At(flat []float32, i int) Box {
	return Box{
		X1: flat[i*4+0],
		Y1: flat[i*4+1],
		X2: flat[i*4+2],
		Y2: flat[i*4+3],
	}
}

// Area returns the box area under the given pixel convention.
//
// offset is 1 when the pixel-inclusive convention is used, so width is
// computed as x2 - x1 + 1; it is 0 for the half-open convention.
func (b Box) Area(offset float32) float32 {
	return (b.X2 - b.X1 + offset) * (b.Y2 - b.Y1 + offset)
}

// Intersection returns the overlap area between b and o under the given
// pixel convention, or 0 when the boxes do not overlap.
func (b Box) Intersection(o Box, offset float32) float32 {
	w := math32.Min(b.X2, o.X2) - math32.Max(b.X1, o.X1) + offset
	h := math32.Min(b.Y2, o.Y2) - math32.Max(b.Y1, o.Y1) + offset
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU (Intersection over Union) measures the extent of overlap between two
// boxes as intersection area divided by union area. The union is computed
// with the inclusion-exclusion principle so the overlap is not counted twice.
//
// Returns:
//   - A value in [0, 1]: 0 means no overlap, 1 means identical boxes.
func (b Box) IoU(o Box, offset float32) float32 {
	intersection := b.Intersection(o, offset)
	if intersection == 0 {
		return 0
	}
	union := b.Area(offset) + o.Area(offset) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}
