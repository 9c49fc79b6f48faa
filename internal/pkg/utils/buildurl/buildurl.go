// Package buildurl constructs URLs from a base path, path elements and query
// parameters. The updater uses it to derive artifact download URLs from a
// version string and to address the release API.
package buildurl

import (
	"net/url"
	"strings"
)

// URLBuilder holds the components of the URL being built.
type URLBuilder struct {
	basePath     string
	pathElements []string
	queryParams  url.Values
}

// Option configures a URLBuilder.
type Option func(*URLBuilder)

// NewURLBuilder creates a new URLBuilder with the given options.
func NewURLBuilder(options ...Option) *URLBuilder {
	ub := &URLBuilder{
		queryParams: url.Values{},
	}
	for _, option := range options {
		option(ub)
	}
	return ub
}

// WithBasePath sets the base path of the URL.
func WithBasePath(basePath string) Option {
	return func(ub *URLBuilder) {
		ub.basePath = strings.TrimSuffix(basePath, "/")
	}
}

// WithPathElement adds a path element to the URL.
func WithPathElement(element string) Option {
	return func(ub *URLBuilder) {
		ub.pathElements = append(ub.pathElements, element)
	}
}

// WithQueryParam adds a query parameter to the URL.
func WithQueryParam(key, value string) Option {
	return func(ub *URLBuilder) {
		ub.queryParams.Add(key, value)
	}
}

// Build constructs the final URL string.
func (ub *URLBuilder) Build() string {
	var sb strings.Builder
	_, _ = sb.WriteString(ub.basePath)
	if len(ub.pathElements) > 0 {
		_, _ = sb.WriteString("/")
		_, _ = sb.WriteString(strings.Join(ub.pathElements, "/"))
	}
	if len(ub.queryParams) > 0 {
		_, _ = sb.WriteString("?")
		_, _ = sb.WriteString(ub.queryParams.Encode())
	}
	return sb.String()
}

// New constructs a URL string directly from the provided options.
func New(options ...Option) string {
	return NewURLBuilder(options...).Build()
}
