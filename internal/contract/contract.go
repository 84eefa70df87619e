// Package contract validates the result payloads emitted by the
// executables under test against an embedded CUE schema.
package contract

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed result.cue
var schemaSource string

// Validator checks result payloads against the #Result definition in
// result.cue.
type Validator struct {
	schema cue.Value
}

// NewValidator compiles the embedded result schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("result.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling result schema: %w", err)
	}

	schema := v.LookupPath(cue.ParsePath("#Result"))
	if !schema.Exists() {
		return nil, fmt.Errorf("result schema has no #Result definition")
	}
	return &Validator{schema: schema}, nil
}

// Validate checks one JSON payload against the result contract. Violations
// come back as a *SchemaError carrying input position where the evaluator
// provides one.
func (v *Validator) Validate(payload []byte) error {
	if err := cuejson.Validate(payload, v.schema); err != nil {
		return schemaError(err)
	}
	return nil
}

// SchemaError reports a contract violation in the result payload.
type SchemaError struct {
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// schemaError converts a CUE error list into a single SchemaError, keeping
// the first error's position info.
func schemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	se := &SchemaError{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	return se
}
