package geom

// Triangle is a triangle defined by three vertex positions.
type Triangle [3]Vec3

// Centroid returns the arithmetic mean of the three vertices.
func (t Triangle) Centroid() Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3.0)
}

// Translate returns the triangle shifted by offset.
func (t Triangle) Translate(offset Vec3) Triangle {
	return Triangle{t[0].Add(offset), t[1].Add(offset), t[2].Add(offset)}
}

// Normal returns the (unnormalized) face normal.
func (t Triangle) Normal() Vec3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return 0.5 * t.Normal().Length()
}

// Bounds returns the axis-aligned bounding box of the triangle.
func (t Triangle) Bounds() AABB {
	return AABB{
		Min: t[0].Min(t[1]).Min(t[2]),
		Max: t[0].Max(t[1]).Max(t[2]),
	}
}

// Distinct reports whether the three vertices are pairwise distinct points.
func (t Triangle) Distinct() bool {
	return t[0] != t[1] && t[1] != t[2] && t[0] != t[2]
}
