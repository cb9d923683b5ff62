package gopdm

import (
	"slices"

	js "github.com/reoring/gopdm/jsonschema"
)

// Validator checks a candidate field value. Validate returns nil when the
// value is accepted; the error text becomes the issue message.
type Validator[T any] interface {
	Validate(v T) error
	Severity() Severity
}

// Named is optionally implemented by validators to label the issues they
// produce. If it is not implemented, the rule name is left empty.
type Named interface {
	Name() string
}

// SchemaDecorator is optionally implemented by validators and codecs to add
// constraints (minimum, enum, ...) to exported field schemas.
type SchemaDecorator interface {
	DecorateSchema(s *js.Schema)
}

// Validation is the capability holding a field's validators.
type Validation[T any] struct {
	validators []Validator[T]
	owner      Capable
}

func (v *Validation[T]) Attach(owner Capable) { v.owner = owner }

// Validators returns the validators in the order they run.
func (v *Validation[T]) Validators() []Validator[T] { return slices.Clone(v.validators) }

// Check runs every validator and reports the failures.
func (v *Validation[T]) Check(x T) Issues {
	var iss Issues
	for _, val := range v.validators {
		err := val.Validate(x)
		if err == nil {
			continue
		}
		it := Issue{Path: "/", Code: CodeValidation, Message: err.Error(), Severity: val.Severity(), Cause: err}
		if n, ok := val.(Named); ok {
			it.Rule = n.Name()
		}
		iss = AppendIssues(iss, it)
	}
	return iss
}

// DecorateSchema lets each validator describe its constraint.
func (v *Validation[T]) DecorateSchema(s *js.Schema) {
	for _, val := range v.validators {
		if d, ok := val.(SchemaDecorator); ok {
			d.DecorateSchema(s)
		}
	}
}
