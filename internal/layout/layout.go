package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/wapangaji/kiganjani/internal/geometry"
	"github.com/wapangaji/kiganjani/pkg/metrics"
)

// Floor layout types.
const (
	TypeRectangular = "rectangular"
	TypeLShaped     = "l_shaped"
	TypeUShaped     = "u_shaped"
	TypeCustom      = "custom"
)

// Layout creation methods.
const (
	MethodAuto     = "auto"
	MethodManual   = "manual"
	MethodUpload   = "upload"
	MethodTemplate = "template"
)

var (
	ErrUnknownType = errors.New("unknown layout type")
	// ErrUnsupportedMethod covers the floor-plan upload path: extracting unit
	// outlines from a scanned plan needs a vision pipeline this service does
	// not carry. Clients fall back to auto or manual layouts.
	ErrUnsupportedMethod = errors.New("unsupported layout creation method")
	ErrNoUnits           = errors.New("total units must be positive")
)

// ValidType reports whether t is a known layout type.
func ValidType(t string) bool {
	switch t {
	case TypeRectangular, TypeLShaped, TypeUShaped, TypeCustom:
		return true
	}
	return false
}

// ValidMethod reports whether m is a known creation method.
func ValidMethod(m string) bool {
	switch m {
	case MethodAuto, MethodManual, MethodUpload, MethodTemplate:
		return true
	}
	return false
}

// Generate places totalUnits unit footprints inside the property boundary
// according to the layout type. Rectangular, L and U layouts always return
// exactly totalUnits polygons; the custom packer may return fewer when the
// boundary cannot fit that many grid cells, never more.
func Generate(layoutType string, boundary geometry.Polygon, totalUnits int) ([]geometry.Polygon, error) {
	if totalUnits <= 0 {
		return nil, ErrNoUnits
	}
	if err := boundary.Validate(); err != nil {
		return nil, fmt.Errorf("boundary: %w", err)
	}

	var units []geometry.Polygon
	switch layoutType {
	case TypeRectangular:
		units = generateRectangular(boundary, totalUnits)
	case TypeLShaped:
		units = generateLShaped(boundary, totalUnits)
	case TypeUShaped:
		units = generateUShaped(boundary, totalUnits)
	case TypeCustom:
		units = generateCustom(boundary, totalUnits)
	default:
		return nil, ErrUnknownType
	}

	metrics.LayoutsGenerated.WithLabelValues(layoutType).Inc()
	return units, nil
}

// generateRectangular fills the boundary's bounding box with a near-square
// grid sized by the box aspect ratio.
func generateRectangular(boundary geometry.Polygon, total int) []geometry.Polygon {
	b := boundary.Bounds()
	width, height := b.Width(), b.Height()

	cols := 1
	if height > 0 {
		cols = int(math.Sqrt(float64(total) * width / height))
		if cols < 1 {
			cols = 1
		}
	}
	rows := int(math.Ceil(float64(total) / float64(cols)))

	unitW := width / float64(cols)
	unitH := height / float64(rows)

	units := make([]geometry.Polygon, 0, total)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if len(units) >= total {
				break
			}
			units = append(units, geometry.Box(
				b.MinX+float64(j)*unitW,
				b.MinY+float64(i)*unitH,
				b.MinX+float64(j+1)*unitW,
				b.MinY+float64(i+1)*unitH,
			))
		}
	}
	return units
}

// generateLShaped stacks half the units along the left wing (40% of the
// width) and spreads the rest along the bottom wing (40% of the height).
func generateLShaped(boundary geometry.Polygon, total int) []geometry.Polygon {
	if total < 2 {
		return generateRectangular(boundary, total)
	}
	b := boundary.Bounds()
	width, height := b.Width(), b.Height()

	vertical := total / 2
	horizontal := total - vertical

	units := make([]geometry.Polygon, 0, total)

	vHeight := height / float64(vertical)
	for i := 0; i < vertical; i++ {
		units = append(units, geometry.Box(
			b.MinX,
			b.MinY+float64(i)*vHeight,
			b.MinX+width*0.4,
			b.MinY+float64(i+1)*vHeight,
		))
	}

	hWidth := width / float64(horizontal)
	for i := 0; i < horizontal; i++ {
		units = append(units, geometry.Box(
			b.MinX+float64(i)*hWidth,
			b.MinY,
			b.MinX+float64(i+1)*hWidth,
			b.MinY+height*0.4,
		))
	}
	return units
}

// generateUShaped places a third of the units on each vertical wing (20% of
// the width each) and the remainder along the bottom (20% of the height).
func generateUShaped(boundary geometry.Polygon, total int) []geometry.Polygon {
	if total < 3 {
		return generateRectangular(boundary, total)
	}
	b := boundary.Bounds()
	width, height := b.Width(), b.Height()

	perVertical := total / 3
	remaining := total - 2*perVertical

	units := make([]geometry.Polygon, 0, total)

	vHeight := height / float64(perVertical)
	for i := 0; i < perVertical; i++ {
		units = append(units, geometry.Box(
			b.MinX,
			b.MinY+float64(i)*vHeight,
			b.MinX+width*0.2,
			b.MinY+float64(i+1)*vHeight,
		))
	}
	for i := 0; i < perVertical; i++ {
		units = append(units, geometry.Box(
			b.MaxX-width*0.2,
			b.MinY+float64(i)*vHeight,
			b.MaxX,
			b.MinY+float64(i+1)*vHeight,
		))
	}

	hWidth := (width - 2*(width*0.2)) / float64(remaining)
	for i := 0; i < remaining; i++ {
		units = append(units, geometry.Box(
			b.MinX+width*0.2+float64(i)*hWidth,
			b.MinY,
			b.MinX+width*0.2+float64(i+1)*hWidth,
			b.MinY+height*0.2,
		))
	}
	return units
}

// generateCustom rasterises the boundary into a grid of candidate cells and
// greedily picks the cells whose area is closest to the per-unit target,
// penalising overlap with already-selected cells.
func generateCustom(boundary geometry.Polygon, total int) []geometry.Polygon {
	b := boundary.Bounds()

	gridSize := int(math.Sqrt(float64(total * 2)))
	if gridSize < 1 {
		gridSize = 1
	}
	cellW := b.Width() / float64(gridSize)
	cellH := b.Height() / float64(gridSize)

	var candidates []geometry.Rect
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			cell := geometry.Rect{
				MinX: b.MinX + float64(j)*cellW,
				MinY: b.MinY + float64(i)*cellH,
				MaxX: b.MinX + float64(j+1)*cellW,
				MaxY: b.MinY + float64(i+1)*cellH,
			}
			if boundary.ContainsRect(cell) {
				candidates = append(candidates, cell)
			}
		}
	}

	targetArea := boundary.Area() / float64(total)

	var selected []geometry.Rect
	for len(selected) < total && len(candidates) > 0 {
		bestIdx := -1
		bestScore := math.Inf(1)
		for idx, cand := range candidates {
			score := math.Abs(cand.Area() - targetArea)
			for _, s := range selected {
				score += cand.Intersection(s).Area() * 2
			}
			if score < bestScore {
				bestScore = score
				bestIdx = idx
			}
		}
		if bestIdx < 0 {
			break
		}
		selected = append(selected, candidates[bestIdx])
		candidates = append(candidates[:bestIdx], candidates[bestIdx+1:]...)
	}

	units := make([]geometry.Polygon, 0, len(selected))
	for _, r := range selected {
		units = append(units, geometry.Box(r.MinX, r.MinY, r.MaxX, r.MaxY))
	}
	return units
}
