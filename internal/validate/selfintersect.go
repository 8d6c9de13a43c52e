package validate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshscreen/pkg/geom"
	"github.com/Faultbox/meshscreen/pkg/mesh"
)

// detectSelfIntersections flags meshes whose surface self-overlaps
// extensively. Each face is perturbed off its own plane by its centroid
// scaled with OffsetScale and probed against a BVH over the whole mesh;
// the check fails when the intersecting-face ratio exceeds
// SeverityThreshold.
//
// This is an approximation by construction: it under-detects when the
// perturbation is tiny relative to the mesh scale, and over-detects for
// index-disjoint geometry packed within the perturbation distance.
// Exact intersection testing would change acceptance behavior for the
// screened corpus and is deliberately avoided.
func (v *Validator) detectSelfIntersections(ctx context.Context, assetID string, m *mesh.Mesh) (bool, string) {
	if v.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.ScanTimeout)
		defer cancel()
	}

	// Structural failures here escalate to a whole-check failure; this
	// is the only path where the check fails without a ratio.
	if err := m.CheckIndices(); err != nil {
		return false, fmt.Sprintf("error detecting self-intersections: %v", err)
	}
	bvh, err := geom.BuildBVH(m.Triangles())
	if err != nil {
		return false, fmt.Sprintf("error detecting self-intersections: %v", err)
	}

	intersecting := 0
	for i := range m.Faces {
		if err := ctx.Err(); err != nil {
			return false, fmt.Sprintf("error detecting self-intersections: scan aborted: %v", err)
		}

		tri := m.Triangle(i)
		if !tri.Distinct() {
			// Malformed face vertex data: diagnostic only, the scan
			// continues over the remaining faces.
			v.log.Warn("skipping face with coincident vertices",
				zap.String("asset", assetID),
				zap.Int("face", i))
			continue
		}

		offset := tri.Centroid().Scale(v.cfg.OffsetScale)
		probe := tri.Translate(offset)
		tol := offset.Length()

		face := m.Faces[i]
		if bvh.Collide(probe, tol, func(j int) bool {
			return j == i || trivialNeighbors(face, m.Faces[j])
		}) {
			intersecting++
		}
	}

	if ratio := float64(intersecting) / float64(m.FaceCount()); ratio > v.cfg.SeverityThreshold {
		return false, fmt.Sprintf("severe self-intersections detected: %d faces", intersecting)
	}
	return true, ""
}

// trivialNeighbors reports whether two faces share one or two vertex
// indices. Contact with such edge/vertex neighbors is expected and must
// not register; faces sharing all three indices are duplicates and stay
// in the query.
func trivialNeighbors(a, b mesh.Face) bool {
	shared := 0
	for _, va := range a {
		if va == b[0] || va == b[1] || va == b[2] {
			shared++
		}
	}
	return shared == 1 || shared == 2
}
