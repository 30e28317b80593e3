package core

import (
	"strings"
	"time"
)

// NowFunc is the clock used for every timestamp written by the services (mockable).
var NowFunc = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// StringInSlice reports whether s is one of list.
func StringInSlice(s string, list []string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
