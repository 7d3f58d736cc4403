package geometry

import (
	"errors"
	"math"
)

// Planar geometry helpers for floor/unit footprints. Coordinates are plain
// x/y values in whatever unit the client drew them in (typically metres);
// there is no CRS or projection handling here.

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Polygon is a simple ring of vertices. The ring is treated as closed; the
// first vertex does not need to be repeated at the end.
type Polygon []Point

var ErrDegenerate = errors.New("polygon needs at least 3 vertices")

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }
func (r Rect) Area() float64   { return r.Width() * r.Height() }

// Intersection returns the overlapping rectangle of r and o. The zero Rect
// is returned when they do not overlap.
func (r Rect) Intersection(o Rect) Rect {
	minX := math.Max(r.MinX, o.MinX)
	minY := math.Max(r.MinY, o.MinY)
	maxX := math.Min(r.MaxX, o.MaxX)
	maxY := math.Min(r.MaxY, o.MaxY)
	if minX >= maxX || minY >= maxY {
		return Rect{}
	}
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Box builds a rectangular polygon from corner coordinates.
func Box(minX, minY, maxX, maxY float64) Polygon {
	return Polygon{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}

// Validate returns ErrDegenerate for rings that cannot enclose area.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return ErrDegenerate
	}
	return nil
}

// Area computes the enclosed area with the shoelace formula.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return math.Abs(sum) / 2
}

// Bounds returns the axis-aligned bounding rectangle.
func (p Polygon) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	r := Rect{MinX: p[0].X, MinY: p[0].Y, MaxX: p[0].X, MaxY: p[0].Y}
	for _, pt := range p[1:] {
		r.MinX = math.Min(r.MinX, pt.X)
		r.MinY = math.Min(r.MinY, pt.Y)
		r.MaxX = math.Max(r.MaxX, pt.X)
		r.MaxY = math.Max(r.MaxY, pt.Y)
	}
	return r
}

// Contains reports whether pt lies inside the polygon (ray casting; points
// exactly on an edge count as inside for our placement purposes).
func (p Polygon) Contains(pt Point) bool {
	if len(p) < 3 {
		return false
	}
	inside := false
	n := len(p)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p[i], p[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xCross := (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if pt.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsRect reports whether the rectangle sits fully inside the polygon.
// Corner + centre membership is a sufficient test for the convex-ish grid
// cells the layout generator produces.
func (p Polygon) ContainsRect(r Rect) bool {
	pts := []Point{
		{X: r.MinX, Y: r.MinY},
		{X: r.MaxX, Y: r.MinY},
		{X: r.MaxX, Y: r.MaxY},
		{X: r.MinX, Y: r.MaxY},
		{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2},
	}
	for _, pt := range pts {
		if !p.Contains(pt) {
			return false
		}
	}
	return true
}

// Centroid returns the vertex average (sufficient for labelling/sorting).
func (p Polygon) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	var c Point
	for _, pt := range p {
		c.X += pt.X
		c.Y += pt.Y
	}
	c.X /= float64(len(p))
	c.Y /= float64(len(p))
	return c
}
