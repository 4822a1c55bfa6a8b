package payloadschema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

// Schema names one embedded request schema.
type Schema string

const (
	TextTranslate      Schema = "text_translate.schema.json"
	Speech             Schema = "speech.schema.json"
	Register           Schema = "register.schema.json"
	Login              Schema = "login.schema.json"
	DetectLanguage     Schema = "detect_language.schema.json"
	SaveConversation   Schema = "save_conversation.schema.json"
	Favorite           Schema = "favorite.schema.json"
	PhrasebookDownload Schema = "phrasebook_download.schema.json"
)

var allSchemas = []Schema{
	TextTranslate,
	Speech,
	Register,
	Login,
	DetectLanguage,
	SaveConversation,
	Favorite,
	PhrasebookDownload,
}

// ValidationError lists the offending fields of a rejected payload.
type ValidationError struct {
	Schema Schema
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(parts, "; "))
}

var (
	compileOnce     sync.Once
	compiledSchemas map[Schema]*jsonschema.Schema
	compileErr      error
)

// Decode validates raw against the named schema and unmarshals it into dst.
// An empty body is treated as an empty object so handlers can report
// their own missing-field messages.
func Decode(name Schema, raw []byte, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}

	value, err := decodeStrictJSON(trimmed)
	if err != nil {
		return &ValidationError{Schema: name, Fields: map[string]string{"body": "must be a valid JSON object"}}
	}

	schema, err := loadSchema(name)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ValidationError{Schema: name, Fields: fieldErrors(ve)}
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

func loadSchema(name Schema) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		for _, schema := range allSchemas {
			raw, err := schemaFiles.ReadFile("schemas/" + string(schema))
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", schema, err)
				return
			}
			if err := compiler.AddResource(string(schema), bytes.NewReader(raw)); err != nil {
				compileErr = fmt.Errorf("add schema resource %s: %w", schema, err)
				return
			}
		}

		compiled := make(map[Schema]*jsonschema.Schema, len(allSchemas))
		for _, schema := range allSchemas {
			s, err := compiler.Compile(string(schema))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", schema, err)
				return
			}
			compiled[schema] = s
		}
		compiledSchemas = compiled
	})

	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiledSchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return schema, nil
}

func fieldErrors(ve *jsonschema.ValidationError) map[string]string {
	out := map[string]string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			if field == "" {
				field = "body"
			}
			if _, seen := out[field]; !seen {
				out[field] = e.Message
			}
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return out
}

func decodeStrictJSON(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
