package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Page is a limit/offset window. Windows slide over newest-first order; the
// caller reverses each page to chronological order before returning it.
type Page struct {
	Limit  int
	Offset int
}

// FromQuery parses limit/offset query parameters, clamping out-of-range or
// malformed values to safe defaults.
func FromQuery(q url.Values) Page {
	p := Page{Limit: DefaultLimit, Offset: 0}

	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Offset = n
		}
	}

	return p
}

// Clamp normalizes a programmatically built page the same way FromQuery does.
func Clamp(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
