package validate

import "github.com/Faultbox/meshscreen/pkg/mesh"

// windingConsistent reports whether the mesh has a single globally
// consistent face orientation: every edge shared by exactly two faces
// must be traversed in opposite directions by those faces.
func windingConsistent(m *mesh.Mesh) bool {
	type traversal struct {
		forward  int
		backward int
	}
	edges := make(map[[2]int]traversal)

	for _, f := range m.Faces {
		for e := 0; e < 3; e++ {
			a, b := f[e], f[(e+1)%3]
			if a == b {
				continue
			}
			key := [2]int{a, b}
			fwd := true
			if a > b {
				key = [2]int{b, a}
				fwd = false
			}
			t := edges[key]
			if fwd {
				t.forward++
			} else {
				t.backward++
			}
			edges[key] = t
		}
	}

	for _, t := range edges {
		if t.forward+t.backward != 2 {
			continue
		}
		if t.forward != 1 {
			return false
		}
	}
	return true
}
