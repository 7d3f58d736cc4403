package layout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wapangaji/kiganjani/internal/geometry"
)

var ErrBadDrawing = errors.New("invalid drawing data")

// manualLayout mirrors what the mobile drawing screen sends: a list of
// GeoJSON-style polygon features, one per unit.
type manualLayout struct {
	Units []manualUnit `json:"units"`
}

type manualUnit struct {
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates [][][2]float64  `json:"coordinates"`
	} `json:"geometry"`
}

// ParseManualUnits extracts unit footprints from hand-drawn layout data.
// Only the exterior ring of each polygon is used.
func ParseManualUnits(raw json.RawMessage) ([]geometry.Polygon, error) {
	if len(raw) == 0 {
		return nil, ErrBadDrawing
	}
	var ml manualLayout
	if err := json.Unmarshal(raw, &ml); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDrawing, err)
	}
	if len(ml.Units) == 0 {
		return nil, fmt.Errorf("%w: no units drawn", ErrBadDrawing)
	}

	units := make([]geometry.Polygon, 0, len(ml.Units))
	for i, u := range ml.Units {
		if len(u.Geometry.Coordinates) == 0 {
			return nil, fmt.Errorf("%w: unit %d has no ring", ErrBadDrawing, i)
		}
		ring := u.Geometry.Coordinates[0]
		poly := make(geometry.Polygon, 0, len(ring))
		for _, c := range ring {
			poly = append(poly, geometry.Point{X: c[0], Y: c[1]})
		}
		// drop the closing vertex GeoJSON repeats
		if len(poly) > 1 && poly[0] == poly[len(poly)-1] {
			poly = poly[:len(poly)-1]
		}
		if err := poly.Validate(); err != nil {
			return nil, fmt.Errorf("%w: unit %d: %v", ErrBadDrawing, i, err)
		}
		units = append(units, poly)
	}
	return units, nil
}
