package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// fileSource points at a contract document on local disk.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source for a contract file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource names an entry inside the loader's configured fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source for a contract stored in an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// urlSource names a contract served over HTTP(S).
type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL validates raw and returns a Source for it.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// MustSourceFromURL is SourceFromURL for static configuration; it panics on a
// malformed URL.
func MustSourceFromURL(raw string) Source {
	src, err := SourceFromURL(raw)
	if err != nil {
		panic(err)
	}
	return src
}
