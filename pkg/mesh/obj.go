package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshscreen/pkg/geom"
)

// OBJ codec errors.
var (
	ErrMalformedOBJ = errors.New("malformed OBJ data")
)

// EncodeOBJ writes the mesh as Wavefront OBJ. Vertex normals are emitted
// so downstream consumers get shading without recomputation.
func (m *Mesh) EncodeOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)

	normals := m.VertexNormals()
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, n := range normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}
	for _, f := range m.Faces {
		// OBJ indices are 1-based
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n",
			f[0]+1, f[0]+1, f[1]+1, f[1]+1, f[2]+1, f[2]+1)
	}
	return bw.Flush()
}

// WriteOBJ exports the mesh to path.
func (m *Mesh) WriteOBJ(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.EncodeOBJ(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DecodeOBJ parses a Wavefront OBJ stream into a mesh. Only vertex
// positions and triangular faces are read; faces with more than three
// vertices are fan-triangulated.
func DecodeOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: short vertex", ErrMalformedOBJ, line)
			}
			var v geom.Vec3
			var err error
			if v.X, err = strconv.ParseFloat(fields[1], 64); err == nil {
				if v.Y, err = strconv.ParseFloat(fields[2], 64); err == nil {
					v.Z, err = strconv.ParseFloat(fields[3], 64)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, line, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: short face", ErrMalformedOBJ, line)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				vi, err := parseFaceIndex(tok, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, line, err)
				}
				idx = append(idx, vi)
			}
			for i := 1; i+1 < len(idx); i++ {
				m.Faces = append(m.Faces, Face{idx[0], idx[i], idx[i+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := m.CheckIndices(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOBJ, err)
	}
	return m, nil
}

// ReadOBJ loads a mesh from an OBJ file.
func ReadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeOBJ(f)
}

// parseFaceIndex resolves one "v", "v/vt", or "v//vn" face token to a
// zero-based vertex index. Negative OBJ indices count from the end.
func parseFaceIndex(tok string, vertexCount int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	vi, err := strconv.Atoi(tok)
	if err != nil {
		return 0, err
	}
	if vi < 0 {
		vi = vertexCount + vi
	} else {
		vi--
	}
	if vi < 0 || vi >= vertexCount {
		return 0, fmt.Errorf("face index %s out of range", tok)
	}
	return vi, nil
}
