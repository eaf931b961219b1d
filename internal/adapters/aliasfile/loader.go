// Package aliasfile reads curated alias vocabularies from a YAML file:
//
//	replace: false
//	domestic:
//	  강남역: seoul
//	overseas:
//	  big apple: newyork
//
// With replace unset the file's rows are laid over the built-in tables.
package aliasfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stay_search/internal/search"
)

type document struct {
	Replace  bool              `yaml:"replace"`
	Domestic map[string]string `yaml:"domestic"`
	Overseas map[string]string `yaml:"overseas"`
}

type Loader struct {
	Path string
	Base search.Tables
}

// New returns a loader over the built-in vocabulary.
func New(path string) Loader {
	return Loader{Path: path, Base: search.DefaultTables()}
}

// Load re-reads the file on every call so a reload picks up edits. An empty
// path serves Base unchanged.
func (l Loader) Load(ctx context.Context) (search.Tables, error) {
	if err := ctx.Err(); err != nil {
		return search.Tables{}, err
	}
	if l.Path == "" {
		return l.Base, nil
	}
	b, err := os.ReadFile(l.Path)
	if err != nil {
		return search.Tables{}, fmt.Errorf("read alias file: %w", err)
	}
	return Parse(b, l.Base)
}

// Parse decodes a YAML document and applies it to base.
func Parse(b []byte, base search.Tables) (search.Tables, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return search.Tables{}, fmt.Errorf("parse alias file: %w", err)
	}
	file := search.Tables{
		Domestic: search.NewTable(doc.Domestic),
		Overseas: search.NewTable(doc.Overseas),
	}
	if doc.Replace {
		return file, nil
	}
	return base.Overlay(file), nil
}
