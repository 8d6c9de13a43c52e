package validate

// Report is the outcome of running the check battery against one mesh.
// Passed is true iff Reasons is empty; Reasons preserves check
// execution order.
type Report struct {
	AssetID   string
	Passed    bool
	Reasons   []string
	ChecksRun []string
}

func (r *Report) record(check string, ok bool, reason string) {
	r.ChecksRun = append(r.ChecksRun, check)
	if !ok {
		r.Reasons = append(r.Reasons, reason)
	}
}

// Ran reports whether the named check executed.
func (r *Report) Ran(check string) bool {
	for _, c := range r.ChecksRun {
		if c == check {
			return true
		}
	}
	return false
}
