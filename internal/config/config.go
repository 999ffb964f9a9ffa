package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/crawler/internal/crawler"
	"github.com/nao1215/crawler/internal/fetcher"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "crawler"

	// DefaultMaxDepth is the default recursion-depth limit.
	DefaultMaxDepth = crawler.DefaultMaxDepth

	// DefaultMaxHostVisits caps in-flight tasks per host. It is a constant of
	// the tool rather than a flag.
	DefaultMaxHostVisits = crawler.DefaultMaxHostVisits

	// DefaultTaskTimeout bounds each page or resource request.
	DefaultTaskTimeout = crawler.DefaultTaskTimeout

	// DefaultResourceDir is where downloaded resources are written.
	DefaultResourceDir = crawler.DefaultResourceDir

	// DefaultMaxBodySize limits the response body size to read.
	DefaultMaxBodySize = fetcher.DefaultMaxBodySize
)

// Config holds all configuration options for one crawl.
// It is populated from defaults, the config file and CLI flags, then passed
// down explicitly; there is no global configuration state.
type Config struct {
	// Seeds are the URLs the crawl starts from, validated by ParseSeeds.
	Seeds []string

	// MaxDepth is the recursion-depth limit. Pages are re-queued only while
	// their depth is strictly below it, so 0 crawls the seeds alone.
	MaxDepth int

	// MaxHostVisits is the per-host in-flight ceiling.
	MaxHostVisits int

	// TaskTimeout bounds every spider and fetch task.
	TaskTimeout time.Duration

	// ResourceDir is where downloaded resources are written.
	ResourceDir string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgents is the pool the User-Agent is drawn from.
	// Empty means the fetcher's built-in pool.
	UserAgents []string

	// MaxBodySize is the maximum response body size in bytes.
	// Set to 0 to use the default.
	MaxBodySize int64

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// File is the loaded configuration file, if any.
	File *File

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport and MarkdownReport select the summary format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string

	// LogDir is the directory receiving one log file per run.
	LogDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxDepth:      DefaultMaxDepth,
		MaxHostVisits: DefaultMaxHostVisits,
		TaskTimeout:   DefaultTaskTimeout,
		ResourceDir:   DefaultResourceDir,
		MaxBodySize:   DefaultMaxBodySize,
		SaveHistory:   true,
		DBDir:         XDGDataDir(),
		LogDir:        XDGLogDir(),
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// On Linux: ~/.local/share/crawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
// On Linux: ~/.config/crawler
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGLogDir returns the directory for per-run log files.
// On Linux: ~/.local/state/crawler/logs
func XDGLogDir() string {
	return filepath.Join(xdg.StateHome, AppName, "logs")
}

// ApplyFile copies the values set in f into c, except those whose flag the
// user set explicitly. changed reports whether a flag was set; its names
// are "depth", "resource-dir" and "proxy".
func (c *Config) ApplyFile(f *File, changed func(flag string) bool) {
	c.File = f
	if f == nil {
		return
	}
	if f.Depth != nil && !changed("depth") {
		c.MaxDepth = *f.Depth
	}
	if f.ResourceDir != "" && !changed("resource-dir") {
		c.ResourceDir = f.ResourceDir
	}
	if f.Proxy != "" && !changed("proxy") {
		c.ProxyAddress = f.Proxy
	}
	if len(f.UserAgents) > 0 {
		c.UserAgents = f.UserAgents
	}
	if f.MaxBodySize != 0 {
		c.MaxBodySize = f.MaxBodySize
	}
}

// Validate checks if the configuration is valid and returns the first
// problem found. Seeds are checked separately by ParseSeeds.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxHostVisits < 1 {
		return ErrInvalidMaxHostVisits
	}
	if c.TaskTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ResourceDir == "" {
		return ErrEmptyResourceDir
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// FetcherOptions returns the fetcher options this configuration implies.
func (c *Config) FetcherOptions() ([]fetcher.Option, error) {
	opts := []fetcher.Option{fetcher.WithUserAgents(c.UserAgents)}
	if c.MaxBodySize > 0 {
		opts = append(opts, fetcher.WithMaxBodySize(c.MaxBodySize))
	}
	if c.ProxyAddress != "" {
		opts = append(opts, fetcher.WithProxy(c.ProxyAddress))
	}
	if c.File != nil {
		hosts, err := c.File.HostHeaders()
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			fetcher.WithDefaultHeaders(c.File.DefaultHeaders()),
			fetcher.WithHostHeaders(hosts),
		)
	}
	return opts, nil
}
