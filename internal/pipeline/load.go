package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshscreen/pkg/geom"
	"github.com/Faultbox/meshscreen/pkg/glb"
	"github.com/Faultbox/meshscreen/pkg/mesh"
)

// weldEpsilon merges vertices duplicated by flat-shaded exports so that
// shared-vertex neighbor detection sees the real topology.
const weldEpsilon = 1e-9

var errNoGeometry = errors.New("asset contains no geometry")

// Loader normalizes an asset file into a single polygonal mesh.
type Loader struct {
	log *zap.Logger
}

// NewLoader builds a Loader. A nil logger disables diagnostics.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Load parses the asset at path and returns its document together with
// the normalized mesh. Containers holding more than one geometry are
// rejected with MultipleObjectsError; a lone curve geometry is converted
// to a surface when it bounds a planar region, and rejected with
// InvalidTypeError otherwise.
func (l *Loader) Load(path string) (*glb.Document, *mesh.Mesh, error) {
	doc, err := glb.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading asset: %w", err)
	}

	geoms, err := doc.Geometries()
	if err != nil {
		return nil, nil, fmt.Errorf("extracting geometry: %w", err)
	}

	switch {
	case len(geoms) == 0:
		return nil, nil, errNoGeometry
	case len(geoms) > 1:
		return nil, nil, &MultipleObjectsError{Count: len(geoms)}
	}

	g := geoms[0]

	var m *mesh.Mesh
	if g.Kind == glb.KindPolyline {
		m, err = polylineToMesh(g.Polyline, g.Closed)
		if err != nil {
			l.log.Debug("path-to-mesh conversion failed",
				zap.String("geometry", g.Name),
				zap.Error(err))
			return nil, nil, &InvalidTypeError{Actual: "polyline"}
		}
	} else {
		m = g.Mesh
	}

	return doc, m.Weld(weldEpsilon), nil
}

// polylineToMesh fan-triangulates a closed planar polyline. Open or
// non-planar curves have no surface to validate and are refused.
func polylineToMesh(points []geom.Vec3, closed bool) (*mesh.Mesh, error) {
	// A trailing repeat of the first point also closes the loop.
	if len(points) > 1 && points[0].Distance(points[len(points)-1]) < weldEpsilon {
		points = points[:len(points)-1]
		closed = true
	}
	if !closed {
		return nil, errors.New("polyline is not closed")
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("polyline has only %d points", len(points))
	}

	normal, origin := newellPlane(points)
	if normal.Length() == 0 {
		return nil, errors.New("polyline is degenerate")
	}
	normal = normal.Normalize()

	scale := polylineScale(points)
	for _, p := range points {
		if d := p.Sub(origin).Dot(normal); d > 1e-6*scale || d < -1e-6*scale {
			return nil, errors.New("polyline is not planar")
		}
	}

	m := &mesh.Mesh{Vertices: points}
	for i := 1; i < len(points)-1; i++ {
		m.Faces = append(m.Faces, mesh.Face{0, i, i + 1})
	}
	return m, nil
}

// newellPlane computes the loop's plane by Newell's method, which stays
// stable for near-degenerate loops where a single cross product does not.
func newellPlane(points []geom.Vec3) (normal, origin geom.Vec3) {
	for i, p := range points {
		q := points[(i+1)%len(points)]
		normal.X += (p.Y - q.Y) * (p.Z + q.Z)
		normal.Y += (p.Z - q.Z) * (p.X + q.X)
		normal.Z += (p.X - q.X) * (p.Y + q.Y)
		origin = origin.Add(p)
	}
	return normal, origin.Scale(1 / float64(len(points)))
}

func polylineScale(points []geom.Vec3) float64 {
	box := geom.EmptyAABB()
	for _, p := range points {
		box = box.Expand(p)
	}
	s := box.Max.Sub(box.Min).Length()
	if s == 0 {
		return 1
	}
	return s
}
