// Package mesh provides a triangle-mesh representation with derived
// geometric attributes and an OBJ interchange codec.
package mesh

import (
	"fmt"

	"github.com/Faultbox/meshscreen/pkg/geom"
)

// Face references three vertex indices.
type Face [3]int

// Mesh is a polygonal surface as a vertex position array plus a
// triangular face index array. A mesh with zero faces is representable
// but never valid.
type Mesh struct {
	Vertices []geom.Vec3
	Faces    []Face
}

// FaceCount returns the number of triangular faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CheckIndices verifies every face references valid vertex indices.
func (m *Mesh) CheckIndices() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= n {
				return fmt.Errorf("face %d references vertex %d of %d", i, vi, n)
			}
		}
	}
	return nil
}

// Triangle returns the vertex positions of face i.
// Face indices must be valid; see CheckIndices.
func (m *Mesh) Triangle(i int) geom.Triangle {
	f := m.Faces[i]
	return geom.Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Triangles returns the positions of every face.
func (m *Mesh) Triangles() []geom.Triangle {
	tris := make([]geom.Triangle, len(m.Faces))
	for i := range m.Faces {
		tris[i] = m.Triangle(i)
	}
	return tris
}

// FaceAreas returns the area of every face.
func (m *Mesh) FaceAreas() []float64 {
	areas := make([]float64, len(m.Faces))
	for i := range m.Faces {
		areas[i] = m.Triangle(i).Area()
	}
	return areas
}

// FaceNormals returns the unit normal of every face. Degenerate faces
// yield the zero vector.
func (m *Mesh) FaceNormals() []geom.Vec3 {
	normals := make([]geom.Vec3, len(m.Faces))
	for i := range m.Faces {
		normals[i] = m.Triangle(i).Normal().Normalize()
	}
	return normals
}

// VertexNormals returns per-vertex normals as the normalized sum of the
// adjacent face normals, area-weighted by using unnormalized face normals.
func (m *Mesh) VertexNormals() []geom.Vec3 {
	normals := make([]geom.Vec3, len(m.Vertices))
	for i := range m.Faces {
		n := m.Triangle(i).Normal()
		for _, vi := range m.Faces[i] {
			normals[vi] = normals[vi].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// Bounds returns the axis-aligned bounding box over all vertices.
func (m *Mesh) Bounds() geom.AABB {
	b := geom.EmptyAABB()
	for _, v := range m.Vertices {
		b = b.Expand(v)
	}
	return b
}

// EdgeLengths returns the length of every unique undirected edge.
func (m *Mesh) EdgeLengths() []float64 {
	seen := make(map[[2]int]struct{})
	var lengths []float64
	for _, f := range m.Faces {
		for e := 0; e < 3; e++ {
			a, b := f[e], f[(e+1)%3]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			lengths = append(lengths, m.Vertices[key[0]].Distance(m.Vertices[key[1]]))
		}
	}
	return lengths
}
