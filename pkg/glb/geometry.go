package glb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/meshscreen/pkg/geom"
	"github.com/Faultbox/meshscreen/pkg/mesh"
)

// Geometry extraction errors.
var (
	ErrExternalBuffer  = errors.New("external buffer URIs are not supported in GLB assets")
	ErrAccessorBounds  = errors.New("accessor range exceeds buffer view")
	ErrMissingPosition = errors.New("primitive has no POSITION attribute")
)

// GeometryKind discriminates extracted geometry representations.
type GeometryKind int

const (
	// KindTriangles is a polygonal surface.
	KindTriangles GeometryKind = iota
	// KindPolyline is a curve/path representation, not a surface.
	KindPolyline
)

// Geometry is one extracted geometry: either a triangle mesh or a polyline.
type Geometry struct {
	Name     string
	Kind     GeometryKind
	Mesh     *mesh.Mesh
	Polyline []geom.Vec3
	// Closed is set for polylines whose primitives form loops.
	Closed bool
}

// Geometries extracts one geometry per glTF mesh entry. Triangle
// primitives of a mesh merge into a single surface; meshes made solely
// of line primitives come back as polylines.
func (d *Document) Geometries() ([]Geometry, error) {
	geoms := make([]Geometry, 0, len(d.Meshes))
	for mi := range d.Meshes {
		g, err := d.extractMesh(mi)
		if err != nil {
			return nil, fmt.Errorf("mesh %d (%s): %w", mi, d.Meshes[mi].Name, err)
		}
		geoms = append(geoms, *g)
	}
	return geoms, nil
}

func (d *Document) extractMesh(mi int) (*Geometry, error) {
	def := &d.Meshes[mi]

	out := &mesh.Mesh{}
	var line []geom.Vec3
	lineClosed := true
	var triangles, lines int

	for pi := range def.Primitives {
		prim := &def.Primitives[pi]
		positions, err := d.primitivePositions(prim)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", pi, err)
		}
		indices, err := d.primitiveIndices(prim, len(positions))
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", pi, err)
		}

		mode := prim.ModeOrDefault()
		switch mode {
		case ModeTriangles, ModeTriangleStrip, ModeTriangleFan:
			triangles++
			base := len(out.Vertices)
			out.Vertices = append(out.Vertices, positions...)
			for _, f := range assembleTriangles(mode, indices) {
				out.Faces = append(out.Faces, mesh.Face{f[0] + base, f[1] + base, f[2] + base})
			}
		case ModeLines, ModeLineStrip, ModeLineLoop:
			lines++
			for _, i := range indices {
				line = append(line, positions[i])
			}
			if mode != ModeLineLoop {
				lineClosed = false
			}
		default:
			return nil, fmt.Errorf("unsupported primitive mode %d", mode)
		}
	}

	if triangles > 0 && lines > 0 {
		return nil, fmt.Errorf("mixed triangle and line primitives")
	}
	if lines > 0 {
		return &Geometry{Name: def.Name, Kind: KindPolyline, Polyline: line, Closed: lineClosed}, nil
	}
	return &Geometry{Name: def.Name, Kind: KindTriangles, Mesh: out}, nil
}

// assembleTriangles converts an index stream to faces for the given mode.
func assembleTriangles(mode int, indices []int) []mesh.Face {
	var faces []mesh.Face
	switch mode {
	case ModeTriangles:
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, mesh.Face{indices[i], indices[i+1], indices[i+2]})
		}
	case ModeTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				faces = append(faces, mesh.Face{indices[i], indices[i+1], indices[i+2]})
			} else {
				faces = append(faces, mesh.Face{indices[i+1], indices[i], indices[i+2]})
			}
		}
	case ModeTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			faces = append(faces, mesh.Face{indices[0], indices[i], indices[i+1]})
		}
	}
	return faces
}

// primitivePositions decodes the POSITION accessor.
func (d *Document) primitivePositions(p *Primitive) ([]geom.Vec3, error) {
	ai, ok := p.Attributes["POSITION"]
	if !ok {
		return nil, ErrMissingPosition
	}
	acc, data, stride, err := d.accessorData(ai)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != ComponentFloat || acc.Type != "VEC3" {
		return nil, fmt.Errorf("POSITION accessor must be float VEC3, got %d %s", acc.ComponentType, acc.Type)
	}
	elem := 12
	if stride == 0 {
		stride = elem
	}
	if err := checkAccessorRange(acc.Count, stride, elem, len(data)); err != nil {
		return nil, err
	}

	out := make([]geom.Vec3, acc.Count)
	for i := 0; i < acc.Count; i++ {
		b := data[i*stride:]
		out[i] = geom.Vec3{
			X: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))),
			Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))),
			Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:12]))),
		}
	}
	return out, nil
}

// primitiveIndices decodes the index accessor, or synthesizes the
// identity index stream for non-indexed primitives.
func (d *Document) primitiveIndices(p *Primitive, vertexCount int) ([]int, error) {
	if p.Indices == nil {
		out := make([]int, vertexCount)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	acc, data, stride, err := d.accessorData(*p.Indices)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("index accessor must be SCALAR, got %s", acc.Type)
	}

	var elem int
	switch acc.ComponentType {
	case ComponentUnsignedByte:
		elem = 1
	case ComponentUnsignedShort:
		elem = 2
	case ComponentUnsignedInt:
		elem = 4
	default:
		return nil, fmt.Errorf("unsupported index component type %d", acc.ComponentType)
	}
	if stride == 0 {
		stride = elem
	}
	if err := checkAccessorRange(acc.Count, stride, elem, len(data)); err != nil {
		return nil, err
	}

	out := make([]int, acc.Count)
	for i := 0; i < acc.Count; i++ {
		b := data[i*stride:]
		var v int
		switch elem {
		case 1:
			v = int(b[0])
		case 2:
			v = int(binary.LittleEndian.Uint16(b[0:2]))
		case 4:
			v = int(binary.LittleEndian.Uint32(b[0:4]))
		}
		if v >= vertexCount {
			return nil, fmt.Errorf("index %d out of range (%d vertices)", v, vertexCount)
		}
		out[i] = v
	}
	return out, nil
}

// accessorData resolves an accessor to its backing bytes and stride.
func (d *Document) accessorData(ai int) (*Accessor, []byte, int, error) {
	if ai < 0 || ai >= len(d.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", ai)
	}
	acc := &d.Accessors[ai]
	if acc.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("accessor %d has no buffer view", ai)
	}
	bvi := *acc.BufferView
	if bvi < 0 || bvi >= len(d.BufferViews) {
		return nil, nil, 0, fmt.Errorf("buffer view %d out of range", bvi)
	}
	bv := &d.BufferViews[bvi]
	if bv.Buffer < 0 || bv.Buffer >= len(d.Buffers) {
		return nil, nil, 0, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	if d.Buffers[bv.Buffer].URI != "" {
		return nil, nil, 0, ErrExternalBuffer
	}
	start := bv.ByteOffset + acc.ByteOffset
	end := bv.ByteOffset + bv.ByteLength
	if start > end || end > len(d.bin) {
		return nil, nil, 0, ErrAccessorBounds
	}
	return acc, d.bin[start:end], bv.ByteStride, nil
}

func checkAccessorRange(count, stride, elem, avail int) error {
	if count == 0 {
		return nil
	}
	need := (count-1)*stride + elem
	if need > avail {
		return ErrAccessorBounds
	}
	return nil
}
