package family

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for dataset files whose extension is neither
// JSON nor YAML.
var ErrUnknownFormat = errors.New("family: unknown dataset format")

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Parse decodes a dataset. The order of records is preserved and duplicate
// ids are kept as they appear; consumers decide how to resolve them.
func Parse(r io.Reader, format Format) ([]Person, error) {
	var people []Person
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&people); err != nil {
			return nil, fmt.Errorf("family: decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&people); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("family: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return people, nil
}

// Load reads a dataset file.
func Load(path string) ([]Person, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("family: open dataset: %w", err)
	}
	defer f.Close()
	return Parse(f, format)
}

// Index maps ids to the first record carrying them.
func Index(people []Person) map[ID]Person {
	byID := make(map[ID]Person, len(people))
	for _, p := range people {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}
	return byID
}

// Relatives are the resolved direct relations of a person. References to
// ids missing from the dataset are skipped.
type Relatives struct {
	Father   *Person
	Mother   *Person
	Spouses  []Person
	Children []Person
}

// RelativesOf resolves the relations of p against byID.
func RelativesOf(p Person, byID map[ID]Person) Relatives {
	var r Relatives
	if f, ok := byID[p.Rels.Father]; ok && p.Rels.Father != "" {
		r.Father = &f
	}
	if m, ok := byID[p.Rels.Mother]; ok && p.Rels.Mother != "" {
		r.Mother = &m
	}
	for _, id := range p.Rels.Spouses {
		if s, ok := byID[id]; ok {
			r.Spouses = append(r.Spouses, s)
		}
	}
	for _, id := range p.Rels.Children {
		if c, ok := byID[id]; ok {
			r.Children = append(r.Children, c)
		}
	}
	return r
}
