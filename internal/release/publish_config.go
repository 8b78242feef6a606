package release

// PublishConfig is the optional per-target "publish" config part.
type PublishConfig struct {
	// Summary is the path the publish summary YAML is written to. Empty
	// disables the summary.
	Summary string `mapstructure:"summary"`
	// Branches restricts dev publishes to branches matching one of the
	// glob patterns. Empty allows any branch.
	Branches []string `mapstructure:"branches"`
}
