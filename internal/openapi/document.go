// Package openapi extracts the parts of an OpenAPI (or Swagger 2.0) document
// that matter when reporting a spec change: title, version and the set of
// operations.
package openapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// httpMethods are the path-item keys that declare an operation.
var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

// Document is a summary of a parsed spec document.
type Document struct {
	// OpenAPI is the "openapi" field, or "swagger" for 2.0 documents.
	OpenAPI string
	Title   string
	Version string
	// Operations holds "METHOD /path" entries, sorted.
	Operations []string
}

type rawDocument struct {
	OpenAPI string `yaml:"openapi"`
	Swagger string `yaml:"swagger"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

// Parse decodes a JSON or YAML spec document.
func Parse(data []byte) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("empty document")
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding spec document: %w", err)
	}

	doc := &Document{
		OpenAPI: raw.OpenAPI,
		Title:   raw.Info.Title,
		Version: raw.Info.Version,
	}

	if doc.OpenAPI == "" {
		doc.OpenAPI = raw.Swagger
	}

	if doc.OpenAPI == "" {
		return nil, errors.New("not an OpenAPI document: missing openapi/swagger field")
	}

	for path, item := range raw.Paths {
		for key := range item {
			if httpMethods[strings.ToLower(key)] {
				doc.Operations = append(doc.Operations, strings.ToUpper(key)+" "+path)
			}
		}
	}

	sort.Strings(doc.Operations)

	return doc, nil
}

// String returns "Title vVersion (openapi X, N operations)".
func (d *Document) String() string {
	title := d.Title
	if title == "" {
		title = "untitled"
	}

	return fmt.Sprintf("%s v%s (openapi %s, %d operations)", title, d.Version, d.OpenAPI, len(d.Operations))
}
