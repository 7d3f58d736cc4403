package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolygonArea(t *testing.T) {
	sq := Box(0, 0, 10, 10)
	require.InDelta(t, 100, sq.Area(), 1e-9)

	tri := Polygon{{0, 0}, {4, 0}, {0, 3}}
	require.InDelta(t, 6, tri.Area(), 1e-9)

	require.Zero(t, Polygon{{0, 0}, {1, 1}}.Area())
}

func TestPolygonBounds(t *testing.T) {
	p := Polygon{{2, 3}, {7, 1}, {5, 9}}
	b := p.Bounds()
	require.Equal(t, Rect{MinX: 2, MinY: 1, MaxX: 7, MaxY: 9}, b)
	require.InDelta(t, 5, b.Width(), 1e-9)
	require.InDelta(t, 8, b.Height(), 1e-9)
}

func TestPolygonContains(t *testing.T) {
	sq := Box(0, 0, 10, 10)
	require.True(t, sq.Contains(Point{5, 5}))
	require.False(t, sq.Contains(Point{15, 5}))
	require.False(t, sq.Contains(Point{-1, -1}))
}

func TestContainsRect(t *testing.T) {
	// L-shaped boundary: big square minus top-right quadrant
	l := Polygon{{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 10}, {0, 10}}
	require.True(t, l.ContainsRect(Rect{MinX: 1, MinY: 1, MaxX: 4, MaxY: 4}))
	require.False(t, l.ContainsRect(Rect{MinX: 6, MinY: 6, MaxX: 9, MaxY: 9}))
}

func TestRectIntersection(t *testing.T) {
	a := Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := Rect{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}
	require.InDelta(t, 25, a.Intersection(b).Area(), 1e-9)

	c := Rect{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30}
	require.Zero(t, a.Intersection(c).Area())
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Polygon{{0, 0}, {1, 1}}.Validate(), ErrDegenerate)
	require.NoError(t, Box(0, 0, 1, 1).Validate())
}
