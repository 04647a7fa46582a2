package util

import (
	"strconv"
	"time"
)

// MustParseUint converts a string to uint, returning 0 when it does not
// parse.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParseDatePtr parses a YYYY-MM-DD string into a *time.Time. An empty
// string yields nil without error.
func ParseDatePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
