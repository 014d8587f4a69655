package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	internalParser "github.com/goliatone/go-apicontract/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-apicontract/pkg/openapi"
)

// LoadDocument reads a fixture and builds an openapi.Document using a file
// source. Failures abort the calling test.
func LoadDocument(t *testing.T, path string) pkgopenapi.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadDocumentFromPath(path string) (pkgopenapi.Document, error) {
	if path == "" {
		return pkgopenapi.Document{}, errors.New("testsupport: document path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFile(path), data)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return doc, nil
}

// LoadContract reads and parses a fixture with default parser options.
func LoadContract(t *testing.T, path string, options ...pkgopenapi.ParserOption) *pkgopenapi.Contract {
	t.Helper()
	return ParseDocument(t, LoadDocument(t, path), options...)
}

// ParseContract parses inline YAML or JSON. The document is labelled
// "inline.yaml" in parse errors.
func ParseContract(t *testing.T, src string, options ...pkgopenapi.ParserOption) *pkgopenapi.Contract {
	t.Helper()

	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFS("inline.yaml"), []byte(src))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return ParseDocument(t, doc, options...)
}

// ParseDocument parses doc and fails the test on error.
func ParseDocument(t *testing.T, doc pkgopenapi.Document, options ...pkgopenapi.ParserOption) *pkgopenapi.Contract {
	t.Helper()

	parser := internalParser.New(pkgopenapi.NewParserOptions(options...))
	contract, err := parser.Parse(Context(), doc)
	if err != nil {
		t.Fatalf("parse contract: %v", err)
	}
	return contract
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// AssertGolden compares got with the golden file at path, rewriting it first
// when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := MustReadGolden(t, path)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden mismatch for %s (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
