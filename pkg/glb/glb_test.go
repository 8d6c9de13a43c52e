package glb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/Faultbox/meshscreen/pkg/geom"
)

// buildGLB assembles a GLB byte stream from a glTF JSON document and an
// optional binary chunk.
func buildGLB(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	jsonChunk, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshaling test document: %v", err)
	}
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	total := headerSize + chunkHeaderSize + len(jsonChunk)
	if len(bin) > 0 {
		total += chunkHeaderSize + len(bin)
	}

	out := make([]byte, 0, total)
	var u [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(u[:], v)
		out = append(out, u[:]...)
	}
	put(glbMagic)
	put(glbVersion)
	put(uint32(total))
	put(uint32(len(jsonChunk)))
	put(chunkTypeJSON)
	out = append(out, jsonChunk...)
	if len(bin) > 0 {
		put(uint32(len(bin)))
		put(chunkTypeBIN)
		out = append(out, bin...)
	}
	return out
}

// triangleDoc builds a document with a single indexed triangle.
func triangleDoc() (map[string]any, []byte) {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	indices := []uint16{0, 1, 2}

	bin := make([]byte, 0, len(positions)*4+len(indices)*2)
	for _, f := range positions {
		var u [4]byte
		binary.LittleEndian.PutUint32(u[:], math.Float32bits(f))
		bin = append(bin, u[:]...)
	}
	idxOffset := len(bin)
	for _, i := range indices {
		var u [2]byte
		binary.LittleEndian.PutUint16(u[:], i)
		bin = append(bin, u[:]...)
	}

	doc := map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"meshes": []any{
			map[string]any{
				"name": "tri",
				"primitives": []any{
					map[string]any{
						"attributes": map[string]any{"POSITION": 0},
						"indices":    1,
					},
				},
			},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": ComponentFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": ComponentUnsignedShort, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": idxOffset},
			map[string]any{"buffer": 0, "byteOffset": idxOffset, "byteLength": len(indices) * 2},
		},
		"buffers": []any{
			map[string]any{"byteLength": len(bin)},
		},
	}
	return doc, bin
}

func TestParseContainerErrors(t *testing.T) {
	doc, bin := triangleDoc()
	valid := buildGLB(t, doc, bin)

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[4:8], 1)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic[0:4], "XXXX")

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"valid", valid, nil},
		{"empty", nil, ErrTruncatedGLB},
		{"short header", valid[:8], ErrTruncatedGLB},
		{"truncated chunk", valid[:20], ErrTruncatedGLB},
		{"bad magic", badMagic, ErrInvalidGLBMagic},
		{"bad version", badVersion, ErrUnsupportedGLBVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Parse() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseMissingJSONChunk(t *testing.T) {
	data := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(data[0:4], glbMagic)
	binary.LittleEndian.PutUint32(data[4:8], glbVersion)
	binary.LittleEndian.PutUint32(data[8:12], headerSize)
	if _, err := Parse(data); !errors.Is(err, ErrMissingJSONChunk) {
		t.Errorf("Parse() error = %v, want ErrMissingJSONChunk", err)
	}
}

func TestGeometriesTriangle(t *testing.T) {
	docMap, bin := triangleDoc()
	doc, err := Parse(buildGLB(t, docMap, bin))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	geoms, err := doc.Geometries()
	if err != nil {
		t.Fatalf("Geometries() error = %v", err)
	}
	if len(geoms) != 1 {
		t.Fatalf("len(geoms) = %d, want 1", len(geoms))
	}
	g := geoms[0]
	if g.Kind != KindTriangles {
		t.Fatalf("Kind = %v, want KindTriangles", g.Kind)
	}
	if g.Mesh.VertexCount() != 3 || g.Mesh.FaceCount() != 1 {
		t.Errorf("mesh = %d vertices / %d faces, want 3/1", g.Mesh.VertexCount(), g.Mesh.FaceCount())
	}
	want := geom.Vec3{X: 1, Y: 0, Z: 0}
	if g.Mesh.Vertices[1].Distance(want) > 1e-9 {
		t.Errorf("vertex[1] = %v, want %v", g.Mesh.Vertices[1], want)
	}
}

func TestGeometriesNonIndexed(t *testing.T) {
	docMap, bin := triangleDoc()
	meshes := docMap["meshes"].([]any)
	prim := meshes[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)
	delete(prim, "indices")

	doc, err := Parse(buildGLB(t, docMap, bin))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	geoms, err := doc.Geometries()
	if err != nil {
		t.Fatalf("Geometries() error = %v", err)
	}
	if geoms[0].Mesh.FaceCount() != 1 {
		t.Errorf("face count = %d, want 1", geoms[0].Mesh.FaceCount())
	}
}

func TestGeometriesPolyline(t *testing.T) {
	docMap, bin := triangleDoc()
	meshes := docMap["meshes"].([]any)
	prim := meshes[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)
	prim["mode"] = ModeLineStrip

	doc, err := Parse(buildGLB(t, docMap, bin))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	geoms, err := doc.Geometries()
	if err != nil {
		t.Fatalf("Geometries() error = %v", err)
	}
	if geoms[0].Kind != KindPolyline {
		t.Fatalf("Kind = %v, want KindPolyline", geoms[0].Kind)
	}
	if len(geoms[0].Polyline) != 3 {
		t.Errorf("polyline length = %d, want 3", len(geoms[0].Polyline))
	}
	if geoms[0].Closed {
		t.Error("line strip should not be marked closed")
	}
}

func TestGeometriesIndexOutOfRange(t *testing.T) {
	docMap, bin := triangleDoc()
	// corrupt the first index to reference a missing vertex
	idxOffset := 3 * 3 * 4
	binary.LittleEndian.PutUint16(bin[idxOffset:idxOffset+2], 99)

	doc, err := Parse(buildGLB(t, docMap, bin))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := doc.Geometries(); err == nil {
		t.Error("Geometries() = nil error for out-of-range index")
	}
}

func TestGeometriesAccessorBounds(t *testing.T) {
	docMap, bin := triangleDoc()
	accs := docMap["accessors"].([]any)
	accs[0].(map[string]any)["count"] = 1000

	doc, err := Parse(buildGLB(t, docMap, bin))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := doc.Geometries(); !errors.Is(err, ErrAccessorBounds) {
		t.Errorf("Geometries() error = %v, want ErrAccessorBounds", err)
	}
}

func TestMaterialsDecode(t *testing.T) {
	docMap, bin := triangleDoc()
	docMap["materials"] = []any{
		map[string]any{
			"name": "painted",
			"pbrMetallicRoughness": map[string]any{
				"baseColorTexture": map[string]any{"index": 0},
				"metallicFactor":   0.25,
			},
		},
		map[string]any{"name": "bare"},
	}
	docMap["textures"] = []any{map[string]any{"source": 0}}
	docMap["images"] = []any{map[string]any{"name": "albedo"}}

	doc, err := Parse(buildGLB(t, docMap, bin))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Materials) != 2 {
		t.Fatalf("len(Materials) = %d, want 2", len(doc.Materials))
	}
	pbr := doc.Materials[0].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil || pbr.BaseColorTexture.Index != 0 {
		t.Errorf("material 0 base color texture not decoded: %+v", pbr)
	}
	if pbr.MetallicFactor == nil || *pbr.MetallicFactor != 0.25 {
		t.Errorf("material 0 metallic factor not decoded: %+v", pbr.MetallicFactor)
	}
	if pbr.MetallicRoughnessTexture != nil {
		t.Error("material 0 metallic-roughness texture should be absent")
	}
	if doc.Materials[1].PBRMetallicRoughness != nil {
		t.Error("material 1 should have no PBR block")
	}
}
