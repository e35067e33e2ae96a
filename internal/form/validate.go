package form

import (
	"fmt"
	"strings"
)

// ValidationError is a failed rule on one field.
type ValidationError struct {
	Field   string
	Rule    RuleKind
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds at most one error per field, in schema order.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors reports whether any field failed.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ByField returns the message for field, or "".
func (e ValidationErrors) ByField(field string) string {
	for _, err := range e {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

// Fields lists the failing field names.
func (e ValidationErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, err := range e {
		out = append(out, err.Field)
	}
	return out
}

// AsMap returns field name to message.
func (e ValidationErrors) AsMap() map[string]string {
	out := make(map[string]string, len(e))
	for _, err := range e {
		out[err.Field] = err.Message
	}
	return out
}

// Validate checks fields against schema. It performs no I/O. The result is
// empty when every field passes; otherwise it carries the first failing rule
// of each failing field. Values for undeclared names are ignored.
func Validate(fields Fields, schema Schema) ValidationErrors {
	var errs ValidationErrors
	for _, fs := range schema {
		v := fields[fs.Name]
		if fs.Optional && v.IsEmpty() {
			continue
		}
		for _, rule := range fs.Rules {
			if !rule.check(v) {
				errs = append(errs, ValidationError{Field: fs.Name, Rule: rule.Kind, Message: rule.message()})
				break
			}
		}
	}
	return errs
}
