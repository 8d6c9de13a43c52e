package geom

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns a box that contains nothing; any Union with it
// yields the other operand.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{1e300, 1e300, 1e300},
		Max: Vec3{-1e300, -1e300, -1e300},
	}
}

// Union returns the smallest box containing both a and other.
func (a AABB) Union(other AABB) AABB {
	return AABB{Min: a.Min.Min(other.Min), Max: a.Max.Max(other.Max)}
}

// Expand grows the box by point p.
func (a AABB) Expand(p Vec3) AABB {
	return AABB{Min: a.Min.Min(p), Max: a.Max.Max(p)}
}

// Grow returns the box inflated by margin on every side.
func (a AABB) Grow(margin float64) AABB {
	m := Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Overlaps reports whether the two boxes intersect (touching counts).
func (a AABB) Overlaps(other AABB) bool {
	if a.Max.X < other.Min.X || a.Min.X > other.Max.X {
		return false
	}
	if a.Max.Y < other.Min.Y || a.Min.Y > other.Max.Y {
		return false
	}
	if a.Max.Z < other.Min.Z || a.Min.Z > other.Max.Z {
		return false
	}
	return true
}

// Center returns the box center point.
func (a AABB) Center() Vec3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the largest extent.
func (a AABB) LongestAxis() int {
	ext := a.Max.Sub(a.Min)
	axis := 0
	if ext.Y > ext.X {
		axis = 1
	}
	if ext.Z > ext.Component(axis) {
		axis = 2
	}
	return axis
}
