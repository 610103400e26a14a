package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "dynoteam://team.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaError reports the first schema violation found in a team file.
type SchemaError struct {
	Path    string // dotted location in the file, empty for the root
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "team file: " + e.Message
	}
	return e.Path + ": " + e.Message
}

func teamSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Validate checks the config against the team file schema, then makes sure
// no two spawned remote agents share a port. Graph-level
// problems (duplicates, unknown prerequisites, cycles) are reported when the
// team is built.
func (c *Config) Validate() error {
	schema, err := teamSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return c.checkPorts()
}

// checkPorts rejects two spawned remote agents listening on the same port.
func (c *Config) checkPorts() error {
	owner := make(map[int]string)
	for i, ac := range c.Agents {
		if ac.Kind != KindRemote || ac.URL != "" || ac.Port == 0 {
			continue
		}
		if prev, ok := owner[ac.Port]; ok {
			return &SchemaError{
				Path:    fmt.Sprintf("agents[%d].port", i),
				Message: fmt.Sprintf("port %d is already used by agent %s", ac.Port, prev),
			}
		}
		owner[ac.Port] = ac.Name
	}
	return nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &SchemaError{Message: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &SchemaError{Path: pointerToPath(leaf.InstanceLocation), Message: leaf.Message}
}

// pointerToPath turns "/agents/0/name" into "agents[0].name".
func pointerToPath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if part == "" {
			continue
		}
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
