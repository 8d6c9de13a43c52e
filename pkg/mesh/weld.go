package mesh

import "github.com/Faultbox/meshscreen/pkg/geom"

// Weld merges vertices whose positions coincide within epsilon and
// remaps faces accordingly, returning a new mesh. Flat-shaded exports
// duplicate every vertex once per face; welding restores the shared
// topology the validator's adjacency checks rely on.
func (m *Mesh) Weld(epsilon float64) *Mesh {
	if epsilon <= 0 || len(m.Vertices) == 0 {
		return &Mesh{Vertices: append([]geom.Vec3(nil), m.Vertices...), Faces: append([]Face(nil), m.Faces...)}
	}

	// Quantized position map, same scheme as vertex-normal smoothing:
	// vertices landing in the same cell are considered coincident.
	cells := make(map[[3]int64]int)
	remap := make([]int, len(m.Vertices))
	var verts []geom.Vec3

	for i, v := range m.Vertices {
		key := [3]int64{
			int64(v.X / epsilon),
			int64(v.Y / epsilon),
			int64(v.Z / epsilon),
		}
		if j, ok := cells[key]; ok {
			remap[i] = j
			continue
		}
		cells[key] = len(verts)
		remap[i] = len(verts)
		verts = append(verts, v)
	}

	faces := make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		faces[i] = Face{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
	return &Mesh{Vertices: verts, Faces: faces}
}
