package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/terrane-data/curvetrace/internal/edges"
	"github.com/terrane-data/curvetrace/internal/trend"
)

// DefaultConfigPath is the path to the canonical service defaults file.
// This is the single source of truth for all default service values.
const DefaultConfigPath = "config/curvetrace.defaults.json"

// ServiceConfig is the root configuration for curvetraced and the
// command-line tools. The detection fields match the /api/detect request
// overrides, so the same JSON fragments work for startup configuration
// and per-request tuning. All fields are optional; the Get* accessors and
// the *Params builders supply defaults for anything unset, so partial
// configs are safe.
type ServiceConfig struct {
	// Server
	ListenAddr     *string `json:"listen_addr,omitempty"`
	RequestTimeout *string `json:"request_timeout,omitempty"` // duration string like "60s"
	DatabasePath   *string `json:"database_path,omitempty"`
	ExportDir      *string `json:"export_dir,omitempty"`
	EnableAdmin    *bool   `json:"enable_admin,omitempty"`

	// Trend pipeline defaults
	MaxDistance      *float64 `json:"max_distance,omitempty"`
	MinEdges         *int     `json:"min_edges,omitempty"`
	Damping          *float64 `json:"damping,omitempty"`
	Azimuth          *float64 `json:"azimuth,omitempty"`
	AzimuthTolerance *float64 `json:"azimuth_tol,omitempty"`

	// Raster pipeline defaults
	Sigma        *float64 `json:"sigma,omitempty"`
	LowQuantile  *float64 `json:"low_quantile,omitempty"`
	HighQuantile *float64 `json:"high_quantile,omitempty"`
	Threshold    *int     `json:"threshold,omitempty"`
	LineLength   *int     `json:"line_length,omitempty"`
	LineGap      *int     `json:"line_gap,omitempty"`
	WindowSize   *int     `json:"window_size,omitempty"`
	MergeLength  *float64 `json:"merge_length,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyServiceConfig returns a ServiceConfig with all fields set to nil.
// Use LoadConfig to load actual values from a file.
func EmptyServiceConfig() *ServiceConfig {
	return &ServiceConfig{}
}

// LoadConfig loads a ServiceConfig from a JSON file. The file must have a
// .json extension and stay under the max file size. Fields omitted from
// the JSON keep their defaults, so partial configs are safe.
func LoadConfig(path string) (*ServiceConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyServiceConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories. Panics
// if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ServiceConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ServiceConfig) Validate() error {
	if c.RequestTimeout != nil && *c.RequestTimeout != "" {
		if _, err := time.ParseDuration(*c.RequestTimeout); err != nil {
			return fmt.Errorf("invalid request_timeout '%s': %w", *c.RequestTimeout, err)
		}
	}
	if c.MaxDistance != nil && *c.MaxDistance <= 0 {
		return fmt.Errorf("max_distance must be positive, got %v", *c.MaxDistance)
	}
	if c.MinEdges != nil && *c.MinEdges < 1 {
		return fmt.Errorf("min_edges must be at least 1, got %d", *c.MinEdges)
	}
	if c.Damping != nil && (*c.Damping < 0 || *c.Damping > 1) {
		return fmt.Errorf("damping must be between 0 and 1, got %v", *c.Damping)
	}
	if c.AzimuthTolerance != nil && c.Azimuth == nil {
		return fmt.Errorf("azimuth_tol is set but azimuth is not")
	}
	if c.Sigma != nil && *c.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %v", *c.Sigma)
	}
	if c.LowQuantile != nil && (*c.LowQuantile < 0 || *c.LowQuantile > 1) {
		return fmt.Errorf("low_quantile must be between 0 and 1, got %v", *c.LowQuantile)
	}
	if c.HighQuantile != nil && (*c.HighQuantile < 0 || *c.HighQuantile > 1) {
		return fmt.Errorf("high_quantile must be between 0 and 1, got %v", *c.HighQuantile)
	}
	if c.LowQuantile != nil && c.HighQuantile != nil && *c.LowQuantile > *c.HighQuantile {
		return fmt.Errorf("low_quantile %v exceeds high_quantile %v", *c.LowQuantile, *c.HighQuantile)
	}
	if c.Threshold != nil && *c.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1, got %d", *c.Threshold)
	}
	if c.LineLength != nil && *c.LineLength < 1 {
		return fmt.Errorf("line_length must be at least 1, got %d", *c.LineLength)
	}
	if c.LineGap != nil && *c.LineGap < 0 {
		return fmt.Errorf("line_gap must not be negative, got %d", *c.LineGap)
	}
	if c.WindowSize != nil && *c.WindowSize < 0 {
		return fmt.Errorf("window_size must not be negative, got %d", *c.WindowSize)
	}
	if c.MergeLength != nil && *c.MergeLength < 0 {
		return fmt.Errorf("merge_length must not be negative, got %v", *c.MergeLength)
	}
	return nil
}

// GetListenAddr returns the listen address or the default.
func (c *ServiceConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8765"
	}
	return *c.ListenAddr
}

// GetRequestTimeout parses and returns the RequestTimeout as a
// time.Duration.
func (c *ServiceConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout == nil || *c.RequestTimeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(*c.RequestTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetDatabasePath returns the SQLite database path or the default.
func (c *ServiceConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "curvetrace.db"
	}
	return *c.DatabasePath
}

// GetExportDir returns the export directory. Empty means the temp-dir
// anchor in internal/surveyio.
func (c *ServiceConfig) GetExportDir() string {
	if c.ExportDir == nil {
		return ""
	}
	return *c.ExportDir
}

// GetEnableAdmin reports whether the admin SQL console is enabled.
func (c *ServiceConfig) GetEnableAdmin() bool {
	if c.EnableAdmin == nil {
		return false
	}
	return *c.EnableAdmin
}

// TrendParams builds the point pipeline parameters from the config,
// falling back to the package defaults for unset fields.
func (c *ServiceConfig) TrendParams() trend.Params {
	p := trend.DefaultParams()
	if c.MaxDistance != nil {
		p.MaxDistance = *c.MaxDistance
	}
	if c.MinEdges != nil {
		p.MinEdges = *c.MinEdges
	}
	if c.Damping != nil {
		p.Damping = *c.Damping
	}
	if c.Azimuth != nil {
		v := *c.Azimuth
		p.AzimuthTarget = &v
		tol := 10.0
		if c.AzimuthTolerance != nil {
			tol = *c.AzimuthTolerance
		}
		p.AzimuthTolerance = &tol
	}
	return p
}

// EdgesParams builds the raster pipeline parameters from the config,
// falling back to the package defaults for unset fields.
func (c *ServiceConfig) EdgesParams() edges.Params {
	p := edges.DefaultParams()
	if c.Sigma != nil {
		p.Sigma = *c.Sigma
	}
	if c.LowQuantile != nil {
		p.LowQuantile = *c.LowQuantile
	}
	if c.HighQuantile != nil {
		p.HighQuantile = *c.HighQuantile
	}
	if c.Threshold != nil {
		p.Threshold = *c.Threshold
	}
	if c.LineLength != nil {
		p.LineLength = *c.LineLength
	}
	if c.LineGap != nil {
		p.LineGap = *c.LineGap
	}
	if c.WindowSize != nil {
		p.WindowSize = *c.WindowSize
	}
	if c.MergeLength != nil {
		p.MergeLength = *c.MergeLength
	}
	return p
}
