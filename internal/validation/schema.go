// Package validation performs shape validation of collaborator documents
// against embedded JSON Schemas. A document that fails here is malformed
// input and aborts the run; everything past this boundary can assume the
// documented shapes.
package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Document kinds understood by Validate.
const (
	KindVideoData          = "video_data"
	KindEntityVerification = "entity_verification"
	KindDeepAnalysis       = "deep_analysis"
	KindDraft              = "draft"
)

//go:embed schemas/video_data.schema.json
var videoDataSchemaJSON string

//go:embed schemas/entity_verification.schema.json
var entityVerificationSchemaJSON string

//go:embed schemas/deep_analysis.schema.json
var deepAnalysisSchemaJSON string

//go:embed schemas/draft.schema.json
var draftSchemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var schemasByKind map[string]*jsonschema.Schema

func init() {
	schemasByKind = map[string]*jsonschema.Schema{
		KindVideoData:          mustCompileSchema(videoDataSchemaJSON, KindVideoData+".schema.json"),
		KindEntityVerification: mustCompileSchema(entityVerificationSchemaJSON, KindEntityVerification+".schema.json"),
		KindDeepAnalysis:       mustCompileSchema(deepAnalysisSchemaJSON, KindDeepAnalysis+".schema.json"),
		KindDraft:              mustCompileSchema(draftSchemaJSON, KindDraft+".schema.json"),
	}
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// MalformedInputError reports a required document with a missing field or
// the wrong shape. It is a hard failure: the stage aborts instead of
// producing a verdict.
type MalformedInputError struct {
	Document string
	Problems []string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s document: %s", e.Document, strings.Join(e.Problems, "; "))
}

// Validate checks raw JSON bytes against the schema for the given document
// kind and unmarshals into out on success.
func Validate(kind string, data []byte, out any) error {
	sch, ok := schemasByKind[kind]
	if !ok {
		return fmt.Errorf("unknown document kind %q", kind)
	}

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return &MalformedInputError{Document: kind, Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}

	if err := sch.Validate(instance); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return &MalformedInputError{Document: kind, Problems: []string{err.Error()}}
		}
		var problems []string
		collectSchemaErrors(ve, &problems)
		return &MalformedInputError{Document: kind, Problems: problems}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &MalformedInputError{Document: kind, Problems: []string{err.Error()}}
		}
	}
	return nil
}

func collectSchemaErrors(ve *jsonschema.ValidationError, problems *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*problems = append(*problems, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, problems)
	}
}
