package items

// Config holds configuration for the base type classifier.
type Config struct {
	// BasesPath points to a JSON base table. Empty uses the embedded table.
	BasesPath string `mapstructure:"bases_path" default:""`
}
