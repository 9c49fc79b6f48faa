package apicommon

import (
	"errors"
	"fmt"
)

// VersionManifest is the body served by the version endpoint and parsed by
// the update client. Servers may add fields; clients only rely on version.
type VersionManifest struct {
	Version string `json:"version"`
	Sha256  string `json:"sha256,omitempty"`
}

// APIError wraps around the actual error for easier JSON parsing.
type APIError struct {
	InnerError APIErrorInner `json:"error"`
}

func (a APIError) Error() string {
	return a.InnerError.Error()
}

// APIErrorInner represents an error from the release API.
type APIErrorInner struct {
	Code         int    `json:"code"`
	Message      string `json:"message,omitempty"`
	ErrorContext string `json:"context,omitempty"`
}

func (a APIErrorInner) Error() string {
	return fmt.Sprintf("server responded with error: status code: %v, message: %q, context: %q", a.Code, a.Message, a.ErrorContext)
}

// Is allows errors.Is() on APIError for better error handling.
func (a APIError) Is(target error) bool {
	var t APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return a.InnerError.Message == t.InnerError.Message && a.InnerError.ErrorContext == t.InnerError.ErrorContext
}
