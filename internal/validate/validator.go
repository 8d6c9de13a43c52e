package validate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshscreen/pkg/mesh"
)

// Check names as they appear in Report.ChecksRun.
const (
	CheckFaceCount        = "face_count"
	CheckEmptyMesh        = "empty_mesh"
	CheckDegenerateFaces  = "degenerate_faces"
	CheckSelfIntersection = "self_intersection"
	CheckEdgeLength       = "edge_length"
	CheckAspectRatio      = "aspect_ratio"
	CheckWinding          = "winding_consistency"
)

// Validator runs the fixed check battery against meshes. Every enabled
// check executes regardless of earlier failures so a report carries all
// defects at once.
type Validator struct {
	cfg Config
	log *zap.Logger
}

// New returns a validator with the given tunables. A nil logger is
// replaced with a no-op one.
func New(cfg Config, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{cfg: cfg, log: log}
}

// Validate runs every enabled check in fixed order and accumulates all
// failures. ctx bounds the self-intersection scan.
func (v *Validator) Validate(ctx context.Context, assetID string, m *mesh.Mesh) Report {
	r := Report{AssetID: assetID}

	ok, reason := v.checkFaceCount(m)
	r.record(CheckFaceCount, ok, reason)

	ok, reason = v.checkEmptyMesh(m)
	r.record(CheckEmptyMesh, ok, reason)

	ok, reason = v.checkDegenerateFaces(m)
	r.record(CheckDegenerateFaces, ok, reason)

	ok, reason = v.detectSelfIntersections(ctx, assetID, m)
	r.record(CheckSelfIntersection, ok, reason)

	if v.cfg.CheckEdgeLength {
		ok, reason = v.checkEdgeLengths(m)
		r.record(CheckEdgeLength, ok, reason)
	}
	if v.cfg.CheckAspectRatio {
		ok, reason = v.checkAspectRatio(m)
		r.record(CheckAspectRatio, ok, reason)
	}

	ok, reason = v.checkWinding(m)
	r.record(CheckWinding, ok, reason)

	r.Passed = len(r.Reasons) == 0
	return r
}

func (v *Validator) checkFaceCount(m *mesh.Mesh) (bool, string) {
	if n := m.FaceCount(); n > v.cfg.MaxFaceCount {
		return false, fmt.Sprintf("too many faces (%d)", n)
	}
	return true, ""
}

func (v *Validator) checkEmptyMesh(m *mesh.Mesh) (bool, string) {
	if m.FaceCount() == 0 {
		return false, "mesh has no faces"
	}
	return true, ""
}

func (v *Validator) checkDegenerateFaces(m *mesh.Mesh) (bool, string) {
	for _, area := range m.FaceAreas() {
		if area < v.cfg.DegenerateAreaEps {
			return false, "mesh has degenerate faces"
		}
	}
	return true, ""
}

func (v *Validator) checkEdgeLengths(m *mesh.Mesh) (bool, string) {
	lengths := m.EdgeLengths()
	if len(lengths) == 0 {
		return true, ""
	}
	min, max := lengths[0], lengths[0]
	for _, l := range lengths[1:] {
		if l < min {
			min = l
		}
		if l > max {
			max = l
		}
	}
	if min < v.cfg.MinEdgeLength {
		return false, "mesh has extremely short edges"
	}
	if max > v.cfg.MaxEdgeLength {
		return false, "mesh has extremely long edges"
	}
	return true, ""
}

func (v *Validator) checkAspectRatio(m *mesh.Mesh) (bool, string) {
	lengths := m.EdgeLengths()
	if len(lengths) == 0 {
		return true, ""
	}
	maxEdge := lengths[0]
	for _, l := range lengths[1:] {
		if l > maxEdge {
			maxEdge = l
		}
	}
	if maxEdge == 0 {
		return true, ""
	}
	for _, area := range m.FaceAreas() {
		if area/(maxEdge*maxEdge) < v.cfg.MinAspectRatio {
			return false, "mesh contains faces with high aspect ratios (thin or stretched)"
		}
	}
	return true, ""
}

func (v *Validator) checkWinding(m *mesh.Mesh) (bool, string) {
	if !windingConsistent(m) {
		return false, "mesh has inconsistent face winding orientations"
	}
	return true, ""
}
