package api

import (
	"net/url"
	"strings"
)

// ValidationError means the target URL was rejected before the pipeline ran.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateTargetURL checks that raw is an absolute https URL under the
// allow-listed prefix.
func ValidateTargetURL(raw, allowedPrefix string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Reason: "url query parameter is required"}
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", &ValidationError{Reason: "url is not a valid absolute URL"}
	}
	if u.Scheme != "https" {
		return "", &ValidationError{Reason: "url must use https"}
	}
	if !strings.HasPrefix(raw, allowedPrefix) {
		return "", &ValidationError{Reason: "url must start with " + allowedPrefix}
	}
	return raw, nil
}
