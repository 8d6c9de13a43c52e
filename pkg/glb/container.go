// Package glb parses the GLB binary container and the glTF 2.0 JSON
// subset needed for geometry and material-graph extraction.
package glb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// GLB container errors.
var (
	ErrInvalidGLBMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedGLBVersion = errors.New("unsupported GLB container version")
	ErrTruncatedGLB          = errors.New("truncated GLB data")
	ErrMissingJSONChunk      = errors.New("GLB has no JSON chunk")
)

const (
	glbMagic      = 0x46546C67 // "glTF"
	glbVersion    = 2
	chunkTypeJSON = 0x4E4F534A // "JSON"
	chunkTypeBIN  = 0x004E4942 // "BIN\0"

	headerSize      = 12
	chunkHeaderSize = 8
)

// Parse decodes a GLB byte stream into a Document.
func Parse(data []byte) (*Document, error) {
	if len(data) < headerSize {
		return nil, ErrTruncatedGLB
	}
	if binary.LittleEndian.Uint32(data[0:4]) != glbMagic {
		return nil, ErrInvalidGLBMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != glbVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedGLBVersion, version)
	}
	total := binary.LittleEndian.Uint32(data[8:12])
	if int(total) > len(data) {
		return nil, ErrTruncatedGLB
	}

	var jsonChunk, binChunk []byte
	off := headerSize
	for off < int(total) {
		if off+chunkHeaderSize > len(data) {
			return nil, ErrTruncatedGLB
		}
		length := int(binary.LittleEndian.Uint32(data[off : off+4]))
		ctype := binary.LittleEndian.Uint32(data[off+4 : off+8])
		off += chunkHeaderSize
		if off+length > len(data) {
			return nil, ErrTruncatedGLB
		}
		switch ctype {
		case chunkTypeJSON:
			jsonChunk = data[off : off+length]
		case chunkTypeBIN:
			binChunk = data[off : off+length]
		}
		off += length
	}

	if jsonChunk == nil {
		return nil, ErrMissingJSONChunk
	}

	doc := &Document{}
	if err := json.Unmarshal(jsonChunk, doc); err != nil {
		return nil, fmt.Errorf("decoding glTF JSON: %w", err)
	}
	doc.bin = binChunk
	return doc, nil
}

// Load reads and parses a GLB file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
