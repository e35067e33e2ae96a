package form

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// RuleKind tags a validation rule.
type RuleKind string

const (
	KindRequired  RuleKind = "required"
	KindMinLength RuleKind = "minLength"
	KindEmail     RuleKind = "email"
	KindEnum      RuleKind = "enum"
	KindFileType  RuleKind = "fileType"
)

// Rule is one tagged check. Only the parameter matching Kind is read.
type Rule struct {
	Kind    RuleKind
	Min     int
	Strict  bool
	Allowed []string
	MIME    string
	Message string
}

// Required fails on empty or whitespace-only text.
func Required(msg string) Rule {
	return Rule{Kind: KindRequired, Message: msg}
}

// MinLength fails when the text has fewer than n characters.
func MinLength(n int, msg string) Rule {
	return Rule{Kind: KindMinLength, Min: n, Message: msg}
}

// Email accepts anything containing "@".
func Email(msg string) Rule {
	return Rule{Kind: KindEmail, Message: msg}
}

// StrictEmail applies the full address grammar.
func StrictEmail(msg string) Rule {
	return Rule{Kind: KindEmail, Strict: true, Message: msg}
}

// OneOf fails unless the text equals one of allowed. An empty allowed list
// rejects every value.
func OneOf(msg string, allowed ...string) Rule {
	return Rule{Kind: KindEnum, Allowed: allowed, Message: msg}
}

// FileType requires a file whose declared and sniffed types both match mimeType.
func FileType(mimeType, msg string) Rule {
	return Rule{Kind: KindFileType, MIME: mimeType, Message: msg}
}

var validate = validator.New()

func (r Rule) check(v Value) bool {
	switch r.Kind {
	case KindRequired:
		return v.File != nil || strings.TrimSpace(v.Text) != ""
	case KindMinLength:
		return utf8.RuneCountInString(v.Text) >= r.Min
	case KindEmail:
		if r.Strict {
			return validate.Var(v.Text, "required,email") == nil
		}
		return strings.Contains(v.Text, "@")
	case KindEnum:
		for _, a := range r.Allowed {
			if v.Text == a {
				return true
			}
		}
		return false
	case KindFileType:
		return matchesType(v.File, r.MIME)
	default:
		return false
	}
}

func matchesType(f *File, want string) bool {
	if f == nil || len(f.Data) == 0 {
		return false
	}
	if f.ContentType != "" {
		declared, _, err := mime.ParseMediaType(f.ContentType)
		if err != nil || !strings.EqualFold(declared, want) {
			return false
		}
	}
	return mimetype.Detect(f.Data).Is(want)
}

func (r Rule) message() string {
	if r.Message != "" {
		return r.Message
	}
	switch r.Kind {
	case KindRequired:
		return "is required"
	case KindMinLength:
		return fmt.Sprintf("must be at least %d characters", r.Min)
	case KindEmail:
		return "must be a valid email"
	case KindEnum:
		return "must be one of the listed options"
	case KindFileType:
		return fmt.Sprintf("must be a %s file", r.MIME)
	default:
		return "is invalid"
	}
}

// FieldSpec declares one field. An Optional field with an empty value skips
// its rules.
type FieldSpec struct {
	Name     string
	Optional bool
	Rules    []Rule
}

// Schema is the ordered list of declared fields. Encoding follows this order.
type Schema []FieldSpec

// Names returns the declared field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Field looks up a declared field by name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// IsFile reports whether the field carries a fileType rule.
func (f FieldSpec) IsFile() bool {
	for _, r := range f.Rules {
		if r.Kind == KindFileType {
			return true
		}
	}
	return false
}
