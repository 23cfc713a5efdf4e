// Package validate implements the structural and semantic validators
// and the schema-inclusion cycle detector. Findings accumulate into a
// Result wrapping go-openapi/errors.CompositeError so
// every finding surfaces together rather than failing fast on the
// first one.
package validate

import (
	"fmt"
	"reflect"

	openapierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	govalidate "github.com/go-openapi/validate"

	"github.com/oaspec/oaspec/errdefs"
	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/scanner"
	"github.com/oaspec/oaspec/specmodel"
)

var (
	swaggerType = reflect.TypeOf((*specmodel.Swagger)(nil))
	openAPIType = reflect.TypeOf((*specmodel.OpenAPI)(nil))
	schemaType  = reflect.TypeOf((*specmodel.Schema)(nil))
)

// childHolder is satisfied by every concrete spec-object type (Base
// promotes Child); used to read a child slot without the scanner's
// generic Handler signature needing to know the concrete type.
type childHolder interface {
	Child(string) (interface{}, bool)
}

// Kind classifies one finding.
type Kind string

const (
	KindStructural Kind = "structural"
	KindSemantic   Kind = "semantic"
	KindCycle      Kind = "cycle"
)

// Finding is one (pointer, kind, message) tuple.
type Finding struct {
	Pointer jsonref.Pointer
	Kind    Kind
	Message string
}

func (f Finding) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.Pointer, f.Kind, f.Message)
}

// Result accumulates findings across every validator run against one
// document, exposing them as a single composite error the way
// go-openapi/validate's Result.AsError does, via
// go-openapi/errors.CompositeError.
type Result struct {
	findings []Finding
}

// NewResult creates an empty accumulator.
func NewResult() *Result { return &Result{} }

// Add records one finding.
func (r *Result) Add(f Finding) { r.findings = append(r.findings, f) }

// Findings returns every recorded finding, in the order validators
// raised them.
func (r *Result) Findings() []Finding { return r.findings }

// Merge appends every finding from other onto r, used by App.Prepare to
// fold the cycle detector's findings into the same accumulation the
// structural validator reports through.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.findings = append(r.findings, other.findings...)
}

// HasErrors reports whether any finding was recorded.
func (r *Result) HasErrors() bool { return len(r.findings) > 0 }

// Err returns a single composite error over every finding, or nil if
// none were recorded. Strict-mode callers raise on a non-empty
// accumulation only after every validator has run.
func (r *Result) Err() error {
	if len(r.findings) == 0 {
		return nil
	}
	errs := make([]error, len(r.findings))
	for i, f := range r.findings {
		errs[i] = f
	}
	return errdefs.Validation(openapierrors.CompositeValidationError(errs...))
}

// Validate runs the structural validator route over root, recording
// every finding into the returned Result. The route is the same for
// every version; version is not consulted.
func Validate(root specmodel.Object, version specmodel.Version) *Result {
	result := NewResult()
	route := structuralRoute(result, version)
	s := scanner.New(scanner.Options{})
	_ = s.Walk(root, route, result)
	return result
}

func structuralRoute(result *Result, version specmodel.Version) scanner.Route {
	return scanner.NewRoute(
		scanner.Visitor{
			Name:       "required-info",
			ExactTypes: []reflect.Type{swaggerType, openAPIType},
			Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
				holder := node.(childHolder)
				if _, ok := holder.Child("info"); !ok {
					result.Add(Finding{Pointer: ptr, Kind: KindStructural, Message: "missing required \"info\" object"})
				}
				return scanner.Continue, nil
			},
		},
		scanner.Visitor{
			Name:       "schema-constraints",
			ExactTypes: []reflect.Type{schemaType},
			Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
				schema := node.(*specmodel.Schema)
				validateSchemaFormat(ptr, schema, result)
				validateSchemaDefault(ptr, schema, result)
				return scanner.Continue, nil
			},
		},
	)
}

// validateSchemaDefault checks a Schema's own declared "default" literal
// against its declared bounds, reusing go-openapi/validate's primitive
// constraint checks rather than reimplementing them (they are building
// blocks here, not a general instance validator).
func validateSchemaDefault(ptr jsonref.Pointer, schema *specmodel.Schema, result *Result) {
	def, ok := schema.Field("default")
	if !ok {
		return
	}
	path := ptr.String()
	switch v := def.(type) {
	case string:
		if n, ok := intField(schema, "minLength"); ok {
			if err := govalidate.MinLength(path, "body", v, n); err != nil {
				result.Add(Finding{Pointer: ptr, Kind: KindSemantic, Message: err.Error()})
			}
		}
		if n, ok := intField(schema, "maxLength"); ok {
			if err := govalidate.MaxLength(path, "body", v, n); err != nil {
				result.Add(Finding{Pointer: ptr, Kind: KindSemantic, Message: err.Error()})
			}
		}
		if p, ok := schema.Field("pattern"); ok {
			if ps, ok := p.(string); ok {
				if err := govalidate.Pattern(path, "body", v, ps); err != nil {
					result.Add(Finding{Pointer: ptr, Kind: KindSemantic, Message: err.Error()})
				}
			}
		}
	case float64:
		if m, ok := floatField(schema, "maximum"); ok {
			if err := govalidate.Maximum(path, "body", v, m, boolField(schema, "exclusiveMaximum")); err != nil {
				result.Add(Finding{Pointer: ptr, Kind: KindSemantic, Message: err.Error()})
			}
		}
		if m, ok := floatField(schema, "minimum"); ok {
			if err := govalidate.Minimum(path, "body", v, m, boolField(schema, "exclusiveMinimum")); err != nil {
				result.Add(Finding{Pointer: ptr, Kind: KindSemantic, Message: err.Error()})
			}
		}
		if m, ok := floatField(schema, "multipleOf"); ok {
			if err := govalidate.MultipleOf(path, "body", v, m); err != nil {
				result.Add(Finding{Pointer: ptr, Kind: KindSemantic, Message: err.Error()})
			}
		}
	}
}

func intField(schema *specmodel.Schema, key string) (int64, bool) {
	v, ok := schema.Field(key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return int64(f), ok
}

func floatField(schema *specmodel.Schema, key string) (float64, bool) {
	v, ok := schema.Field(key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func boolField(schema *specmodel.Schema, key string) bool {
	v, ok := schema.Field(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func validateSchemaFormat(ptr jsonref.Pointer, schema *specmodel.Schema, result *Result) {
	format, ok := schema.Field("format")
	if !ok {
		return
	}
	example, hasExample := schema.Field("example")
	if !hasExample {
		return
	}
	exStr, ok := example.(string)
	if !ok {
		return
	}
	if !formatValidates(fmt.Sprint(format), exStr) {
		result.Add(Finding{
			Pointer: ptr, Kind: KindSemantic,
			Message: fmt.Sprintf("example %q does not satisfy format %q", exStr, format),
		})
	}
}

// formatValidates leans on go-openapi/strfmt's seeded registry for the
// primitive format checks (email, uuid, date-time, hostname, ...).
// Formats the registry does not know are passed through as valid, since
// OpenAPI allows arbitrary format strings.
func formatValidates(format, value string) bool {
	if !strfmt.Default.ContainsName(format) {
		return true
	}
	return strfmt.Default.Validates(format, value)
}
