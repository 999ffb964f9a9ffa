package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/nao1215/crawler/internal/model"
)

// InvalidURLError reports a seed that cannot start a crawl.
type InvalidURLError struct {
	// Raw is the seed as the user typed it.
	Raw string

	// Err is the parse error, ErrMissingScheme or ErrMissingHost.
	Err error
}

// Error implements the error interface.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("Invalid URL %q: %v", e.Raw, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidURLError) Unwrap() error {
	return e.Err
}

// ParseSeeds validates raw seed URLs and returns them in canonical form.
//
// A seed must parse, have a scheme, and have a host name. Every invalid seed is
// reported as an *InvalidURLError, all of them aggregated in one
// *multierror.Error, so the user can fix the whole command line at once.
// No seed is returned when any of them is invalid.
func ParseSeeds(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, ErrNoSeed
	}

	var errs *multierror.Error
	seeds := make([]string, 0, len(raw))
	for _, r := range raw {
		u, err := url.Parse(strings.TrimSpace(r))
		switch {
		case err != nil:
			errs = multierror.Append(errs, &InvalidURLError{Raw: r, Err: err})
		case u.Scheme == "":
			errs = multierror.Append(errs, &InvalidURLError{Raw: r, Err: ErrMissingScheme})
		default:
			if _, err := model.HostOfURL(u); err != nil {
				errs = multierror.Append(errs, &InvalidURLError{Raw: r, Err: ErrMissingHost})
				continue
			}
			seeds = append(seeds, u.String())
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return seeds, nil
}
