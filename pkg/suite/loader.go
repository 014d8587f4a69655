package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the suite at file. A relative contract location is resolved
// against the suite's directory.
func Load(file string) (*Suite, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("suite: read %s: %w", file, err)
	}
	s, err := Parse(data, file)
	if err != nil {
		return nil, err
	}
	if s.Contract != "" && !filepath.IsAbs(s.Contract) && !isURL(s.Contract) {
		s.Contract = filepath.Join(filepath.Dir(file), s.Contract)
	}
	return s, nil
}

// LoadFS walks fsys and parses every YAML or JSON suite file in lexical
// order. Contract locations are resolved relative to each file inside fsys.
func LoadFS(fsys fs.FS) ([]*Suite, error) {
	if fsys == nil {
		return nil, nil
	}

	var suites []*Suite
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSuiteFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("suite: read %s: %w", name, err)
		}
		s, err := Parse(data, name)
		if err != nil {
			return err
		}
		if s.Contract != "" && !isURL(s.Contract) && !path.IsAbs(s.Contract) {
			s.Contract = path.Join(path.Dir(name), s.Contract)
		}
		suites = append(suites, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return suites, nil
}

// Parse decodes a suite document. Unknown keys are rejected.
func Parse(data []byte, source string) (*Suite, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("suite: file %s is empty", source)
	}

	var raw suiteFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("suite: file %s is empty", source)
		}
		return nil, fmt.Errorf("suite: parse %s: %w", source, err)
	}

	s := &Suite{
		Name:       strings.TrimSpace(raw.Name),
		Source:     source,
		Contract:   strings.TrimSpace(raw.Contract),
		Integrity:  raw.Integrity,
		Structure:  raw.Structure,
		Paths:      raw.Paths,
		Ordering:   raw.Ordering,
		Operations: raw.Operations,
		Schemas:    raw.Schemas,
		Parity:     raw.Parity,
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(path.Base(filepath.ToSlash(source)), path.Ext(source))
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("suite: %s: %w", source, err)
	}
	return s, nil
}

func (s *Suite) validate() error {
	var errs []error
	for i, p := range s.Paths {
		if p.Path == "" {
			errs = append(errs, fmt.Errorf("paths[%d]: path is required", i))
		}
	}
	for i, o := range s.Ordering {
		if o.Path == "" {
			errs = append(errs, fmt.Errorf("ordering[%d]: path is required", i))
		}
	}
	for i, op := range s.Operations {
		if op.Path == "" || op.Method == "" {
			errs = append(errs, fmt.Errorf("operations[%d]: path and method are required", i))
		}
		for j, resp := range op.Responses {
			if resp.Status == "" {
				errs = append(errs, fmt.Errorf("operations[%d].responses[%d]: status is required", i, j))
			}
		}
	}
	for i, sc := range s.Schemas {
		if err := sc.LocatorSpec.validate(); err != nil {
			errs = append(errs, fmt.Errorf("schemas[%d]: %w", i, err))
		}
		for j, prop := range sc.Properties {
			if prop.Name == "" {
				errs = append(errs, fmt.Errorf("schemas[%d].properties[%d]: name is required", i, j))
			}
		}
	}
	for i, p := range s.Parity {
		if err := p.Left.validate(); err != nil {
			errs = append(errs, fmt.Errorf("parity[%d].left: %w", i, err))
		}
		if err := p.Right.validate(); err != nil {
			errs = append(errs, fmt.Errorf("parity[%d].right: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (l LocatorSpec) validate() error {
	switch {
	case l.Component != "" && (l.Path != "" || l.Method != ""):
		return errors.New("component cannot be combined with path or method")
	case l.Component == "" && (l.Path == "" || l.Method == ""):
		return errors.New("component or path and method are required")
	}
	return nil
}

func isSuiteFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
