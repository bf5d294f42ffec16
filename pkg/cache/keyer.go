package cache

// Keyer generates cache keys.
type Keyer interface {
	// ReportKey returns the key of the report for a scene hash and options.
	ReportKey(sceneHash string, opts ReportKeyOpts) string
}

// ReportKeyOpts lists the options that change an optimization report.
type ReportKeyOpts struct {
	ApplyUnchanged bool   `json:"apply_unchanged"`
	Panel          string `json:"panel,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey hashes the scene hash together with the options.
func (DefaultKeyer) ReportKey(sceneHash string, opts ReportKeyOpts) string {
	return hashKey("report", sceneHash, opts)
}
