// Package rules provides ready-made field validators. Every rule carries a
// severity (Error unless changed) and describes its constraint in exported
// schemas.
package rules

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/reoring/gopdm"
	js "github.com/reoring/gopdm/jsonschema"
)

// Number is the set of types Range, Min and Max accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Rule is a named validator built from a check function.
type Rule[T any] struct {
	name     string
	severity gopdm.Severity
	check    func(T) error
	decorate func(*js.Schema)
}

// Func wraps an arbitrary check as a Rule.
func Func[T any](name string, check func(T) error) *Rule[T] {
	if check == nil {
		panic("rules.Func: check must not be nil")
	}
	return &Rule[T]{name: name, severity: gopdm.Error, check: check}
}

func (r *Rule[T]) Validate(v T) error         { return r.check(v) }
func (r *Rule[T]) Severity() gopdm.Severity { return r.severity }
func (r *Rule[T]) Name() string             { return r.name }

func (r *Rule[T]) DecorateSchema(s *js.Schema) {
	if r.decorate != nil {
		r.decorate(s)
	}
}

// WithSeverity returns a copy of the rule reporting sev.
func (r *Rule[T]) WithSeverity(sev gopdm.Severity) *Rule[T] {
	c := *r
	c.severity = sev
	return &c
}

// AsWarning returns a copy whose failures are logged instead of rejected.
func (r *Rule[T]) AsWarning() *Rule[T] { return r.WithSeverity(gopdm.Warn) }

// Range accepts values within [min, max].
func Range[T Number](min, max T) *Rule[T] {
	if min > max {
		panic(fmt.Sprintf("rules.Range: min %v is greater than max %v", min, max))
	}
	return &Rule[T]{
		name:     "range",
		severity: gopdm.Error,
		check: func(v T) error {
			if v < min || v > max {
				return fmt.Errorf("The value %v is outside the limits [%v, %v]", v, min, max)
			}
			return nil
		},
		decorate: func(s *js.Schema) {
			s.Minimum = js.Ptr(float64(min))
			s.Maximum = js.Ptr(float64(max))
		},
	}
}

// Min accepts values greater than or equal to min.
func Min[T Number](min T) *Rule[T] {
	return &Rule[T]{
		name:     "min",
		severity: gopdm.Error,
		check: func(v T) error {
			if v < min {
				return fmt.Errorf("The value %v is below the minimum %v", v, min)
			}
			return nil
		},
		decorate: func(s *js.Schema) { s.Minimum = js.Ptr(float64(min)) },
	}
}

// Max accepts values less than or equal to max.
func Max[T Number](max T) *Rule[T] {
	return &Rule[T]{
		name:     "max",
		severity: gopdm.Error,
		check: func(v T) error {
			if v > max {
				return fmt.Errorf("The value %v is above the maximum %v", v, max)
			}
			return nil
		},
		decorate: func(s *js.Schema) { s.Maximum = js.Ptr(float64(max)) },
	}
}

// VectorSize accepts slices whose length is within [min, max]. A negative
// max leaves the upper bound open.
func VectorSize[E any](min, max int) *Rule[[]E] {
	return &Rule[[]E]{
		name:     "vectorSize",
		severity: gopdm.Error,
		check: func(v []E) error {
			n := len(v)
			if n < min || (max >= 0 && n > max) {
				if max < 0 {
					return fmt.Errorf("The vector size %d is below the minimum %d", n, min)
				}
				return fmt.Errorf("The vector size %d is outside the limits [%d, %d]", n, min, max)
			}
			return nil
		},
		decorate: func(s *js.Schema) {
			s.MinItems = js.Ptr(min)
			if max >= 0 {
				s.MaxItems = js.Ptr(max)
			}
		},
	}
}

var errNonEmpty = errors.New("The value must not be empty")

// NonEmpty rejects the empty string.
func NonEmpty() *Rule[string] {
	return &Rule[string]{
		name:     "nonEmpty",
		severity: gopdm.Error,
		check: func(v string) error {
			if v == "" {
				return errNonEmpty
			}
			return nil
		},
		decorate: func(s *js.Schema) { s.MinLength = js.Ptr(1) },
	}
}

// Pattern accepts strings matching the regular expression expr. It panics
// when expr does not compile.
func Pattern(expr string) *Rule[string] {
	re := regexp.MustCompile(expr)
	return &Rule[string]{
		name:     "pattern",
		severity: gopdm.Error,
		check: func(v string) error {
			if !re.MatchString(v) {
				return fmt.Errorf("The value %q does not match %s", v, expr)
			}
			return nil
		},
		decorate: func(s *js.Schema) { s.Pattern = expr },
	}
}

// OneOf accepts only the listed values.
func OneOf[T comparable](values ...T) *Rule[T] {
	allowed := append([]T(nil), values...)
	return &Rule[T]{
		name:     "oneOf",
		severity: gopdm.Error,
		check: func(v T) error {
			for _, a := range allowed {
				if a == v {
					return nil
				}
			}
			return fmt.Errorf("The value %v is not one of %v", v, allowed)
		},
		decorate: func(s *js.Schema) {
			s.Enum = s.Enum[:0]
			for _, a := range allowed {
				s.Enum = append(s.Enum, a)
			}
		},
	}
}
