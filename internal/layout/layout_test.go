package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wapangaji/kiganjani/internal/geometry"
)

func square(size float64) geometry.Polygon {
	return geometry.Box(0, 0, size, size)
}

func TestGenerateRectangular(t *testing.T) {
	units, err := Generate(TypeRectangular, square(20), 6)
	require.NoError(t, err)
	require.Len(t, units, 6)

	// grid units tile (a subset of) the bounding box without overlap,
	// so summed area can't exceed the boundary area
	var total float64
	for _, u := range units {
		require.Greater(t, u.Area(), 0.0)
		total += u.Area()
	}
	require.LessOrEqual(t, total, square(20).Area()+1e-6)
}

func TestGenerateRectangular_SingleUnit(t *testing.T) {
	units, err := Generate(TypeRectangular, square(10), 1)
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.InDelta(t, 100, units[0].Area(), 1e-9)
}

func TestGenerateLShaped(t *testing.T) {
	units, err := Generate(TypeLShaped, square(30), 7)
	require.NoError(t, err)
	require.Len(t, units, 7)

	// first 3 units form the vertical wing: capped at 40% of the width
	b := square(30).Bounds()
	for _, u := range units[:3] {
		ub := u.Bounds()
		require.InDelta(t, b.MinX, ub.MinX, 1e-9)
		require.InDelta(t, b.MinX+b.Width()*0.4, ub.MaxX, 1e-9)
	}
}

func TestGenerateLShaped_TinyCountFallsBack(t *testing.T) {
	units, err := Generate(TypeLShaped, square(10), 1)
	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestGenerateUShaped(t *testing.T) {
	units, err := Generate(TypeUShaped, square(30), 9)
	require.NoError(t, err)
	require.Len(t, units, 9)

	// 3 left, 3 right, 3 bottom
	b := square(30).Bounds()
	left := units[0].Bounds()
	right := units[3].Bounds()
	require.InDelta(t, b.MinX, left.MinX, 1e-9)
	require.InDelta(t, b.MaxX, right.MaxX, 1e-9)
}

func TestGenerateCustom_RespectsBoundary(t *testing.T) {
	// L-shaped plot: units must never land in the cut-out quadrant
	l := geometry.Polygon{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 20}, {X: 0, Y: 20}}
	units, err := Generate(TypeCustom, l, 6)
	require.NoError(t, err)
	require.NotEmpty(t, units)
	require.LessOrEqual(t, len(units), 6)
	for _, u := range units {
		require.True(t, l.ContainsRect(u.Bounds()), "unit %+v escapes boundary", u)
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate("hexagonal", square(10), 4)
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = Generate(TypeRectangular, square(10), 0)
	require.ErrorIs(t, err, ErrNoUnits)

	_, err = Generate(TypeRectangular, geometry.Polygon{{X: 0, Y: 0}}, 4)
	require.Error(t, err)
}

func TestValidTypeAndMethod(t *testing.T) {
	require.True(t, ValidType(TypeCustom))
	require.False(t, ValidType("round"))
	require.True(t, ValidMethod(MethodManual))
	require.False(t, ValidMethod("scan"))
}

func TestParseManualUnits(t *testing.T) {
	raw := json.RawMessage(`{"units":[{"geometry":{"type":"Polygon","coordinates":[[[0,0],[5,0],[5,4],[0,4],[0,0]]]}}]}`)
	units, err := ParseManualUnits(raw)
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Len(t, units[0], 4) // closing vertex stripped
	require.InDelta(t, 20, units[0].Area(), 1e-9)
}

func TestParseManualUnits_Invalid(t *testing.T) {
	_, err := ParseManualUnits(nil)
	require.ErrorIs(t, err, ErrBadDrawing)

	_, err = ParseManualUnits(json.RawMessage(`{"units":[]}`))
	require.ErrorIs(t, err, ErrBadDrawing)

	_, err = ParseManualUnits(json.RawMessage(`{"units":[{"geometry":{"coordinates":[[[0,0],[1,1]]]}}]}`))
	require.ErrorIs(t, err, ErrBadDrawing)
}
