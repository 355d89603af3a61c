package stats

// Config holds configuration for the stat normalizer.
type Config struct {
	// DatasetPath points to a JSON affix dataset. Empty uses the embedded one.
	DatasetPath string `mapstructure:"dataset_path" default:""`
}
