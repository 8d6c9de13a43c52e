package geom

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	if l := n.Length(); math.Abs(l-1) > 1e-12 {
		t.Errorf("Normalize().Length() = %v, want 1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("Normalize of zero vector = %v, want zero", z)
	}
}

func TestTriangleArea(t *testing.T) {
	tri := Triangle{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if a := tri.Area(); math.Abs(a-0.5) > 1e-12 {
		t.Errorf("Area() = %v, want 0.5", a)
	}
}

func TestTriangleCentroid(t *testing.T) {
	tri := Triangle{{0, 0, 0}, {3, 0, 0}, {0, 3, 0}}
	want := Vec3{1, 1, 0}
	if got := tri.Centroid(); got.Distance(want) > 1e-12 {
		t.Errorf("Centroid() = %v, want %v", got, want)
	}
}

func TestTriangleDistinct(t *testing.T) {
	ok := Triangle{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if !ok.Distinct() {
		t.Error("Distinct() = false for a proper triangle")
	}
	dup := Triangle{{0, 0, 0}, {0, 0, 0}, {0, 1, 0}}
	if dup.Distinct() {
		t.Error("Distinct() = true for a collapsed triangle")
	}
}

func TestAABBOverlaps(t *testing.T) {
	a := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	b := AABB{Min: Vec3{0.5, 0.5, 0.5}, Max: Vec3{2, 2, 2}}
	c := AABB{Min: Vec3{2.5, 0, 0}, Max: Vec3{3, 1, 1}}
	if !a.Overlaps(b) {
		t.Error("expected overlap for intersecting boxes")
	}
	if a.Overlaps(c) {
		t.Error("expected no overlap for disjoint boxes")
	}
	if !a.Overlaps(AABB{Min: Vec3{1, 0, 0}, Max: Vec3{2, 1, 1}}) {
		t.Error("touching boxes should overlap")
	}
}

func TestSegmentDistance(t *testing.T) {
	tests := []struct {
		name           string
		p1, q1, p2, q2 Vec3
		want           float64
	}{
		{"parallel", Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{1, 1, 0}, 1},
		{"crossing", Vec3{-1, 0, 0}, Vec3{1, 0, 0}, Vec3{0, -1, 0}, Vec3{0, 1, 0}, 0},
		{"skew", Vec3{-1, 0, 0}, Vec3{1, 0, 0}, Vec3{0, -1, 2}, Vec3{0, 1, 2}, 2},
		{"endpoint", Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{2, 0, 0}, Vec3{3, 0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegmentDistance(tt.p1, tt.q1, tt.p2, tt.q2)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SegmentDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointTriangleDistance(t *testing.T) {
	tri := Triangle{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	tests := []struct {
		name string
		p    Vec3
		want float64
	}{
		{"above interior", Vec3{0.5, 0.5, 3}, 3},
		{"at vertex", Vec3{0, 0, 0}, 0},
		{"beyond vertex", Vec3{-1, 0, 0}, 1},
		{"beyond edge", Vec3{1, -2, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointTriangleDistance(tt.p, tri)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PointTriangleDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriangleDistancePiercing(t *testing.T) {
	a := Triangle{{-1, -1, 0}, {1, -1, 0}, {0, 2, 0}}
	// edge of b passes through the interior of a
	b := Triangle{{0, 0, -1}, {0, 0, 1}, {3, 0, 1}}
	if d := TriangleDistance(a, b); d != 0 {
		t.Errorf("TriangleDistance() = %v for piercing triangles, want 0", d)
	}
}

func TestTriangleDistanceParallel(t *testing.T) {
	a := Triangle{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	b := a.Translate(Vec3{0, 0, 0.25})
	if d := TriangleDistance(a, b); math.Abs(d-0.25) > 1e-9 {
		t.Errorf("TriangleDistance() = %v, want 0.25", d)
	}
	if !TrianglesTouch(a, b, 0.25) {
		t.Error("TrianglesTouch() = false at exact tolerance")
	}
	if TrianglesTouch(a, b, 0.2) {
		t.Error("TrianglesTouch() = true below tolerance")
	}
}

func TestTriangleDistanceCoplanarOverlap(t *testing.T) {
	a := Triangle{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	b := Triangle{{0.5, 0.5, 0}, {1.5, 0.5, 0}, {0.5, 1.5, 0}}
	if d := TriangleDistance(a, b); d != 0 {
		t.Errorf("TriangleDistance() = %v for coplanar overlap, want 0", d)
	}
}

func TestBuildBVHEmpty(t *testing.T) {
	if _, err := BuildBVH(nil); err != ErrNoTriangles {
		t.Errorf("BuildBVH(nil) error = %v, want ErrNoTriangles", err)
	}
}

func TestBVHCollide(t *testing.T) {
	var tris []Triangle
	// row of disjoint triangles along X
	for i := 0; i < 32; i++ {
		x := float64(i) * 10
		tris = append(tris, Triangle{{x, 0, 0}, {x + 1, 0, 0}, {x, 1, 0}})
	}
	bvh, err := BuildBVH(tris)
	if err != nil {
		t.Fatalf("BuildBVH() error = %v", err)
	}

	hit := Triangle{{150, 0.2, -1}, {150.5, 0.2, 1}, {150.2, 0.8, 1}}
	if !bvh.Collide(hit, 0, nil) {
		t.Error("expected collision with triangle at x=150")
	}

	miss := Triangle{{5, 0, 0}, {6, 0, 0}, {5, 1, 0}}
	if bvh.Collide(miss, 0, nil) {
		t.Error("expected no collision in the gap between triangles")
	}

	// proximity within tolerance
	near := Triangle{{150, 0, 0.3}, {151, 0, 0.3}, {150, 1, 0.3}}
	if !bvh.Collide(near, 0.5, nil) {
		t.Error("expected tolerance collision at distance 0.3")
	}
	if bvh.Collide(near, 0.1, nil) {
		t.Error("expected no collision with tolerance below distance")
	}
}

func TestBVHCollideSkip(t *testing.T) {
	tris := []Triangle{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}
	bvh, err := BuildBVH(tris)
	if err != nil {
		t.Fatalf("BuildBVH() error = %v", err)
	}
	probe := tris[0]
	if !bvh.Collide(probe, 0, nil) {
		t.Error("identical triangle should collide")
	}
	if bvh.Collide(probe, 0, func(i int) bool { return i == 0 }) {
		t.Error("skipped triangle should not collide")
	}
}
