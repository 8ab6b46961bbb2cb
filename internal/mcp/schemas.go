package mcp

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// paramSchemas holds one compiled schema per method, keyed by method name.
type paramSchemas map[string]*jsonschema.Schema

func compileSchemas() (paramSchemas, error) {
	names, err := fs.Glob(schemaFS, "schemas/*.schema.json")
	if err != nil {
		return nil, fmt.Errorf("listing schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	urls := make(map[string]string, len(names))
	for _, name := range names {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", name, err)
		}
		method := strings.TrimSuffix(path.Base(name), ".schema.json")
		url := "https://stardust.dev/schemas/" + method + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", name, err)
		}
		urls[method] = url
	}

	out := make(paramSchemas, len(urls))
	for method, url := range urls {
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", method, err)
		}
		out[method] = schema
	}
	return out, nil
}

// mustCompileSchemas panics on a broken embedded schema; the files ship
// with the binary, so this only fails on a bad build.
func mustCompileSchemas() paramSchemas {
	schemas, err := compileSchemas()
	if err != nil {
		panic(err)
	}
	return schemas
}

// validate checks params against the method's schema. Empty params are
// validated as an empty object.
func (p paramSchemas) validate(method string, params json.RawMessage) error {
	schema, ok := p[method]
	if !ok {
		return &APIError{Code: CodeUnknownMethod, Message: fmt.Sprintf("unknown method: %s", method)}
	}
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		params = json.RawMessage(`{}`)
	}

	var doc any
	if err := json.Unmarshal(params, &doc); err != nil {
		return &APIError{Code: CodeInvalidParams, Message: "params are not valid JSON", RecoveryHint: "Send params as a JSON object"}
	}
	if err := schema.Validate(doc); err != nil {
		return &APIError{
			Code:         CodeInvalidParams,
			Message:      fmt.Sprintf("invalid params for %s", method),
			Details:      validationDetails(err),
			RecoveryHint: "Check the parameter names and types for this method",
		}
	}
	return nil
}

func validationDetails(err error) any {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var causes []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			causes = append(causes, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return causes
}
