package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "gene-atlas/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the resilient outbound client shared by
// all source adapters.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// MinInterval is the minimum spacing between outbound calls. Zero means
	// the interval is derived from APIKey presence (340ms without a key,
	// 100ms with one, matching the NCBI E-utilities rate ceilings).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// MaxRetries is the number of automatic retries on transient server
	// errors (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// APIKey is an optional NCBI API key. When present it is appended to
	// every E-utilities request and raises the allowed request rate.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// AnnotateConfig holds settings for the batch annotation stage.
type AnnotateConfig struct {
	ClientConfig `yaml:",inline"`

	// MaxLiterature is the per-gene cap on PubMed results (default 5).
	// Zero disables literature retrieval entirely.
	MaxLiterature int `json:"max_literature" yaml:"max_literature"`

	// Workers is the resolver worker count used when literature retrieval
	// is disabled (default 3). With literature enabled genes are always
	// processed one at a time.
	Workers int `json:"workers" yaml:"workers"`

	// CacheDir is the directory holding the on-disk result cache.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// ReportFormat selects the export format for batch results.
type ReportFormat string

const (
	FormatExcel ReportFormat = "xlsx"
	FormatJSON  ReportFormat = "json"
	FormatYAML  ReportFormat = "yaml"
	FormatTable ReportFormat = "table"
)

// ReportConfig holds settings for the report sink.
type ReportConfig struct {
	// Output is the report file path (xlsx format only).
	Output string `json:"output" yaml:"output"`

	// Format selects the export format: xlsx, json, yaml, or table.
	Format ReportFormat `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Annotate AnnotateConfig `json:"annotate" yaml:"annotate"`
	Report   ReportConfig   `json:"report" yaml:"report"`
}
