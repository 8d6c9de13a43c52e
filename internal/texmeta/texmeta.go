// Package texmeta extracts per-material PBR texture metadata from a
// parsed material graph. It is informational only and never gates
// validation.
package texmeta

import (
	"encoding/json"
	"os"

	"github.com/Faultbox/meshscreen/pkg/glb"
)

// noTextureMarker marks a texture slot that a material declares but
// does not resolve to an image source.
const noTextureMarker = "No Texture"

// TextureRef is a tri-state texture slot value: absent from the JSON
// when the material never declares the slot, the "No Texture" marker
// when declared but unresolved, or the image source index.
type TextureRef struct {
	Source *int
}

// MarshalJSON emits either the image source index or the marker string.
func (r TextureRef) MarshalJSON() ([]byte, error) {
	if r.Source == nil {
		return json.Marshal(noTextureMarker)
	}
	return json.Marshal(*r.Source)
}

// UnmarshalJSON accepts either form.
func (r *TextureRef) UnmarshalJSON(data []byte) error {
	var idx int
	if err := json.Unmarshal(data, &idx); err == nil {
		r.Source = &idx
		return nil
	}
	r.Source = nil
	var s string
	return json.Unmarshal(data, &s)
}

// MaterialTextureInfo is the per-material metadata record. Every field
// is optional; nil pointers are omitted from the sidecar.
type MaterialTextureInfo struct {
	BaseColorTexture         *TextureRef `json:"base_color_texture,omitempty"`
	MetallicRoughnessTexture *TextureRef `json:"metallic_roughness_texture,omitempty"`
	RoughnessFactor          *float64    `json:"roughness_factor,omitempty"`
	MetallicFactor           *float64    `json:"metallic_factor,omitempty"`
	NormalTexture            *TextureRef `json:"normal_texture,omitempty"`
}

// Extract returns one record per material in declaration order.
func Extract(doc *glb.Document) []MaterialTextureInfo {
	infos := make([]MaterialTextureInfo, 0, len(doc.Materials))
	for i := range doc.Materials {
		mat := &doc.Materials[i]
		var info MaterialTextureInfo

		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			info.BaseColorTexture = resolveTexture(doc, pbr.BaseColorTexture)
			info.MetallicRoughnessTexture = resolveTexture(doc, pbr.MetallicRoughnessTexture)
			info.RoughnessFactor = factorOrDefault(pbr.RoughnessFactor)
			info.MetallicFactor = factorOrDefault(pbr.MetallicFactor)
		}
		if mat.NormalTexture != nil {
			info.NormalTexture = resolveTexture(doc, mat.NormalTexture)
		} else {
			// the normal slot is declared per material in the graph,
			// unresolved when no texture is attached
			info.NormalTexture = &TextureRef{}
		}

		infos = append(infos, info)
	}
	return infos
}

// resolveTexture maps a texture reference to its image source index.
func resolveTexture(doc *glb.Document, ref *glb.TextureInfo) *TextureRef {
	if ref == nil {
		return &TextureRef{}
	}
	if ref.Index < 0 || ref.Index >= len(doc.Textures) {
		return &TextureRef{}
	}
	return &TextureRef{Source: doc.Textures[ref.Index].Source}
}

// factorOrDefault applies the glTF metallic-roughness default of 1.0
// when the asset leaves a factor unset.
func factorOrDefault(f *float64) *float64 {
	if f != nil {
		return f
	}
	def := 1.0
	return &def
}

// WriteSidecar writes the ordered records as an indented JSON array.
func WriteSidecar(path string, infos []MaterialTextureInfo) error {
	data, err := json.MarshalIndent(infos, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
