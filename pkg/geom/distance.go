package geom

import "math"

const distEps = 1e-12

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SegmentDistance returns the minimum distance between segments [p1,q1] and [p2,q2].
func SegmentDistance(p1, q1, p2, q2 Vec3) float64 {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= distEps && e <= distEps:
		return p1.Distance(p2)
	case a <= distEps:
		s = 0
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= distEps {
			t = 0
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}

	c1 := p1.Add(d1.Scale(s))
	c2 := p2.Add(d2.Scale(t))
	return c1.Distance(c2)
}

// PointTriangleDistance returns the distance from p to the closest point on tri.
func PointTriangleDistance(p Vec3, tri Triangle) float64 {
	a, b, c := tri[0], tri[1], tri[2]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return p.Distance(a)
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return p.Distance(b)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return p.Distance(a.Add(ab.Scale(v)))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return p.Distance(c)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return p.Distance(a.Add(ac.Scale(w)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return p.Distance(b.Add(c.Sub(b).Scale(w)))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return p.Distance(a.Add(ab.Scale(v)).Add(ac.Scale(w)))
}

// SegmentIntersectsTriangle reports whether segment [p,q] pierces tri.
// Coplanar segments are not reported here; coplanar contact shows up as a
// zero feature distance instead.
func SegmentIntersectsTriangle(p, q Vec3, tri Triangle) bool {
	dir := q.Sub(p)
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	pv := dir.Cross(e2)
	det := e1.Dot(pv)
	if math.Abs(det) < distEps {
		return false
	}
	inv := 1.0 / det
	tv := p.Sub(tri[0])
	u := tv.Dot(pv) * inv
	if u < -distEps || u > 1+distEps {
		return false
	}
	qv := tv.Cross(e1)
	v := dir.Dot(qv) * inv
	if v < -distEps || u+v > 1+distEps {
		return false
	}
	t := e2.Dot(qv) * inv
	return t >= -distEps && t <= 1+distEps
}

// TriangleDistance returns the minimum distance between two triangles.
// Piercing triangles yield zero.
func TriangleDistance(a, b Triangle) float64 {
	for i := 0; i < 3; i++ {
		if SegmentIntersectsTriangle(a[i], a[(i+1)%3], b) {
			return 0
		}
		if SegmentIntersectsTriangle(b[i], b[(i+1)%3], a) {
			return 0
		}
	}

	min := math.Inf(1)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := SegmentDistance(a[i], a[(i+1)%3], b[j], b[(j+1)%3])
			if d < min {
				min = d
			}
		}
	}
	for i := 0; i < 3; i++ {
		if d := PointTriangleDistance(a[i], b); d < min {
			min = d
		}
		if d := PointTriangleDistance(b[i], a); d < min {
			min = d
		}
	}
	return min
}

// TrianglesTouch reports whether two triangles intersect or come within tol
// of each other.
func TrianglesTouch(a, b Triangle, tol float64) bool {
	return TriangleDistance(a, b) <= tol
}
