package types

// Config represents the overall application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server" toml:"server" json:"server"`
	Storage      StorageConfig      `yaml:"storage" toml:"storage" json:"storage"`
	Segmentation SegmentationConfig `yaml:"segmentation" toml:"segmentation" json:"segmentation"`
	Render       RenderConfig       `yaml:"render" toml:"render" json:"render"`
	Log          LogConfig          `yaml:"log" toml:"log" json:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" toml:"host" json:"host"`
	Port         int    `yaml:"port" toml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" toml:"read_timeout" json:"read_timeout"`    // seconds
	WriteTimeout int    `yaml:"write_timeout" toml:"write_timeout" json:"write_timeout"` // seconds
	MaxScriptKB  int    `yaml:"max_script_kb" toml:"max_script_kb" json:"max_script_kb"`
}

// StorageConfig defines where generated decks are kept
type StorageConfig struct {
	Adapter string           `yaml:"adapter" toml:"adapter" json:"adapter"` // "local" or "s3"
	Local   LocalStorageOpts `yaml:"local" toml:"local" json:"local"`
	S3      S3StorageOpts    `yaml:"s3" toml:"s3" json:"s3"`
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" toml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" toml:"region" json:"region"`
	Bucket          string `yaml:"bucket" toml:"bucket" json:"bucket"`
	Prefix          string `yaml:"prefix" toml:"prefix" json:"prefix"`
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id" json:"-"`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key" json:"-"`
}

// SegmentationConfig selects the slide word budget.
// A named preset is applied first; explicit thresholds override it.
type SegmentationConfig struct {
	Preset     string     `yaml:"preset" toml:"preset" json:"preset"`
	Thresholds Thresholds `yaml:"thresholds" toml:"thresholds" json:"thresholds"`
}

// RenderConfig holds output settings
type RenderConfig struct {
	Format string `yaml:"format" toml:"format" json:"format"` // "zip", "html", "txt", "ndjson"
	Title  string `yaml:"title" toml:"title" json:"title"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" toml:"format" json:"format"` // "json" or "text"
}
