// Package pipeline coordinates per-asset acquisition, validation, and
// export across a parallel worker pool.
package pipeline

import "strings"

// Status is an asset's lifecycle state within one run. Transitions are
// monotone: an asset never reverts to an earlier status.
type Status int

const (
	StatusPending Status = iota
	StatusAcquired
	StatusAcquisitionFailed
	StatusValid
	StatusInvalid
	StatusExported
	StatusExportFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAcquired:
		return "acquired"
	case StatusAcquisitionFailed:
		return "acquisition_failed"
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusExported:
		return "exported"
	case StatusExportFailed:
		return "export_failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further stage applies to the asset.
func (s Status) Terminal() bool {
	switch s {
	case StatusAcquisitionFailed, StatusInvalid, StatusExported, StatusExportFailed:
		return true
	}
	return false
}

// Asset tracks one catalogued asset through the run. Each asset is owned
// by exactly one worker at a time; the slices below are never shared.
type Asset struct {
	ID        string
	Source    string
	LocalPath string
	Dir       string
	Status    Status
	Reasons   []string
}

// advance moves the asset forward. Backward transitions are ignored so a
// stage bug cannot resurrect a terminal asset.
func (a *Asset) advance(to Status) {
	if to > a.Status {
		a.Status = to
	}
}

// fail moves the asset to a terminal failure status with its reasons.
func (a *Asset) fail(to Status, reasons ...string) {
	a.advance(to)
	a.Reasons = append(a.Reasons, reasons...)
}

// sanitizeID makes an asset id safe to use as a directory name.
func sanitizeID(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}
