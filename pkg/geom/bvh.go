package geom

import (
	"errors"
	"sort"
)

// BVH build errors.
var (
	ErrNoTriangles = errors.New("cannot build BVH over zero triangles")
)

const bvhLeafSize = 4

// BVH is a bounding-volume hierarchy over a fixed set of triangles,
// supporting broad-phase collision queries of a probe triangle against
// the whole set.
type BVH struct {
	tris  []Triangle
	nodes []bvhNode
}

type bvhNode struct {
	bounds AABB
	// leaf triangles, nil for interior nodes
	items []int
	left  int
	right int
}

// BuildBVH constructs a hierarchy over tris. The slice is retained.
func BuildBVH(tris []Triangle) (*BVH, error) {
	if len(tris) == 0 {
		return nil, ErrNoTriangles
	}

	b := &BVH{tris: tris}
	items := make([]int, len(tris))
	for i := range items {
		items[i] = i
	}
	b.build(items)
	return b, nil
}

// build appends a subtree over items and returns its node index.
func (b *BVH) build(items []int) int {
	bounds := EmptyAABB()
	for _, i := range items {
		bounds = bounds.Union(b.tris[i].Bounds())
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, bvhNode{bounds: bounds})

	if len(items) <= bvhLeafSize {
		b.nodes[idx].items = items
		return idx
	}

	axis := bounds.LongestAxis()
	sort.Slice(items, func(x, y int) bool {
		cx := b.tris[items[x]].Centroid().Component(axis)
		cy := b.tris[items[y]].Centroid().Component(axis)
		return cx < cy
	})

	mid := len(items) / 2
	left := b.build(items[:mid])
	right := b.build(items[mid:])
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	return idx
}

// Collide reports whether probe intersects or comes within tol of any
// triangle in the set. skip, if non-nil, excludes triangles by index
// from the narrow phase.
func (b *BVH) Collide(probe Triangle, tol float64, skip func(i int) bool) bool {
	query := probe.Bounds().Grow(tol)

	stack := []int{0}
	for len(stack) > 0 {
		n := &b.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !n.bounds.Overlaps(query) {
			continue
		}
		if n.items == nil {
			stack = append(stack, n.left, n.right)
			continue
		}
		for _, i := range n.items {
			if skip != nil && skip(i) {
				continue
			}
			if TrianglesTouch(probe, b.tris[i], tol) {
				return true
			}
		}
	}
	return false
}

// Bounds returns the bounding box of the whole set.
func (b *BVH) Bounds() AABB {
	return b.nodes[0].bounds
}
