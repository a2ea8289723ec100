// Package schemas embeds the JSON Schema documents that gate fabr's
// configuration surfaces and compiles them on first use.
package schemas

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed *.schema.json
var schemaFS embed.FS

const (
	// Registry names the schema for template registry documents.
	Registry = "registry"
	// Project names the schema for per-project fabr.config.json files.
	Project = "project"
)

var (
	compileOnce sync.Once
	compiler    *jsonschema.Compiler
	compileErr  error
)

func getCompiler() (*jsonschema.Compiler, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for _, name := range []string{Registry, Project} {
			data, err := schemaFS.ReadFile(schemaPath(name))
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("decode schema %s: %w", name, err)
				return
			}
			if err := c.AddResource(schemaURL(name), doc); err != nil {
				compileErr = fmt.Errorf("register schema %s: %w", name, err)
				return
			}
		}
		compiler = c
	})
	return compiler, compileErr
}

func schemaPath(name string) string {
	return fmt.Sprintf("%s.schema.json", name)
}

func schemaURL(name string) string {
	return fmt.Sprintf("mem://schemas/%s.schema.json", name)
}

// Compile returns the compiled schema registered under name.
func Compile(name string) (*jsonschema.Schema, error) {
	c, err := getCompiler()
	if err != nil {
		return nil, err
	}
	s, err := c.Compile(schemaURL(name))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return s, nil
}

// Validate checks a JSON document against the named schema.
func Validate(name string, data []byte) error {
	schema, err := Compile(name)
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(bytes.TrimSpace(data), &instance); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("document does not match %s schema: %w", name, err)
	}
	return nil
}
