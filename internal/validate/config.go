// Package validate runs the mesh check battery and the approximate
// self-intersection detector.
package validate

import "time"

// Config holds the validator tunables. Zero values are not meaningful;
// start from DefaultConfig.
type Config struct {
	// MaxFaceCount fails meshes with more faces than this.
	MaxFaceCount int `yaml:"max_face_count"`
	// DegenerateAreaEps is the face-area floor below which a face counts
	// as degenerate.
	DegenerateAreaEps float64 `yaml:"degenerate_area_eps"`
	// SeverityThreshold is the intersecting-face ratio above which the
	// self-intersection check fails.
	SeverityThreshold float64 `yaml:"severity_threshold"`
	// OffsetScale scales each face centroid to form the probe
	// perturbation offset.
	OffsetScale float64 `yaml:"offset_scale"`
	// ScanTimeout bounds the self-intersection scan. Zero disables it.
	ScanTimeout time.Duration `yaml:"scan_timeout"`

	// MinEdgeLength / MaxEdgeLength bound the edge-length check.
	MinEdgeLength float64 `yaml:"min_edge_length"`
	MaxEdgeLength float64 `yaml:"max_edge_length"`
	// MinAspectRatio is the area-to-longest-edge-squared floor for the
	// aspect-ratio check.
	MinAspectRatio float64 `yaml:"min_aspect_ratio"`

	// CheckEdgeLength and CheckAspectRatio enable the optional checks.
	// Both are off in the default screening configuration.
	CheckEdgeLength  bool `yaml:"check_edge_length"`
	CheckAspectRatio bool `yaml:"check_aspect_ratio"`
}

// DefaultConfig returns the screening defaults.
func DefaultConfig() Config {
	return Config{
		MaxFaceCount:      64000,
		DegenerateAreaEps: 1e-10,
		SeverityThreshold: 0.7,
		OffsetScale:       5e-5,
		ScanTimeout:       2 * time.Minute,
		MinEdgeLength:     1e-6,
		MaxEdgeLength:     10,
		MinAspectRatio:    1e-3,
	}
}
