package openapi

import "context"

// DefaultPermissionsMarker introduces the permissions section inside an
// operation description.
const DefaultPermissionsMarker = "**Permissions:**"

// Parser turns a raw Document into the typed Contract model.
type Parser interface {
	Parse(ctx context.Context, doc Document) (*Contract, error)
}

// ParserOptions exposes parsing toggles.
type ParserOptions struct {
	// PermissionsMarker is the line prefix splitting an operation description
	// from its permissions section. Empty disables the split.
	PermissionsMarker string

	// AllowEmptyPaths accepts documents without any paths, such as
	// component-only libraries.
	AllowEmptyPaths bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithPermissionsMarker overrides the permissions delimiter.
func WithPermissionsMarker(marker string) ParserOption {
	return func(opts *ParserOptions) {
		opts.PermissionsMarker = marker
	}
}

// WithEmptyPaths toggles support for documents that declare no paths.
func WithEmptyPaths(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowEmptyPaths = enabled
	}
}

// NewParserOptions applies options over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		PermissionsMarker: DefaultPermissionsMarker,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}
