package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrLayoutChanged = errors.New("it seems the website's layout has been altered")
	ErrFetch         = errors.New("fetch failed")
	ErrParse         = errors.New("parse failed")
)

// StatusError reports a non-2xx response. It matches ErrFetch.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrFetch
}

func layoutChanged(what, url string) error {
	return fmt.Errorf("%w: %s not found on %s", ErrLayoutChanged, what, url)
}

// Kind names the failure class of err for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrLayoutChanged):
		return "layout_changed"
	case errors.Is(err, ErrFetch):
		return "fetch_failure"
	case errors.Is(err, ErrParse):
		return "parse_failure"
	}
	return "internal"
}
