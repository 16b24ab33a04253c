package config

// SourceConfig represents a calendar source declaration loaded from a YAML file
type SourceConfig struct {
	Source SourceInfo `yaml:"source"`
	Active *bool      `yaml:"active"`
}

// SourceInfo contains the calendar feed location
type SourceInfo struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// IsActive reports whether the source should be synced. Sources are active
// unless the configuration disables them explicitly.
func (c *SourceConfig) IsActive() bool {
	if c.Active == nil {
		return true
	}
	return *c.Active
}
