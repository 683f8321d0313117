package api

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/JaimeStill/image-lab/pkg/decode"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Request body schemas.
const (
	schemaGeneration = "generation.json"
	schemaImprove    = "improve.json"
	schemaCredential = "credential.json"
	schemaDelete     = "delete.json"
)

var errBodyTooLarge = errors.New("request body too large")

type schemas map[string]*jsonschema.Schema

func compileSchemas() (schemas, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	c := jsonschema.NewCompiler()
	for _, e := range entries {
		f, err := schemaFS.Open(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("open schema %s: %w", e.Name(), err)
		}
		err = c.AddResource(e.Name(), f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("schema resource %s: %w", e.Name(), err)
		}
	}

	compiled := make(schemas, len(entries))
	for _, e := range entries {
		s, err := c.Compile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		compiled[e.Name()] = s
	}
	return compiled, nil
}

// bind reads a JSON body of at most limit bytes, validates it against the
// named schema, and decodes it into T.
func bind[T any](s schemas, name string, w http.ResponseWriter, r *http.Request, limit int64) (T, error) {
	var zero T

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return zero, errBodyTooLarge
		}
		return zero, fmt.Errorf("read body: %w", err)
	}

	doc, err := decode.Document(raw)
	if err != nil {
		return zero, err
	}

	if err := s[name].Validate(doc); err != nil {
		return zero, fmt.Errorf("invalid request: %w", err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return zero, fmt.Errorf("invalid request: expected object")
	}
	return decode.FromMap[T](obj)
}
