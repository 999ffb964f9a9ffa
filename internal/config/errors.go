package config

import "errors"

// Configuration validation errors returned by Config.Validate and ParseSeeds.
// They are sentinels so callers can branch with errors.Is.
var (
	// ErrNoSeed is returned when no seed URL is given.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrInvalidDepth is returned when the depth limit is negative.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidMaxHostVisits is returned when the per-host ceiling is below one.
	// A zero ceiling would never admit anything.
	ErrInvalidMaxHostVisits = errors.New("invalid max host visits: must be positive")

	// ErrInvalidTimeout is returned when the task timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrEmptyResourceDir is returned when no resource directory is set.
	ErrEmptyResourceDir = errors.New("resource directory must not be empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrMissingScheme is returned for a seed without a scheme ("example.test").
	ErrMissingScheme = errors.New("missing scheme")

	// ErrMissingHost is returned for a seed without a host ("https:///path").
	ErrMissingHost = errors.New("missing host")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
