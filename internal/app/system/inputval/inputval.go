// Package inputval validates decoded JSON request bodies with
// waffle/pantry/validate and turns the first failure into the French
// message returned in {"error": ...}.
//
//	type contactInput struct {
//	    FirstName string `json:"firstName" validate:"required,max=100" label:"Le prénom"`
//	    Email     string `json:"email" validate:"required,email,max=254" label:"L'email"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.BadRequest(w, res.First())
//	    return
//	}
//
// Beyond the pantry rules (required, email, oneof, min, max) the package
// registers category, status, httpurl and objectid. The custom rules
// accept an empty string; pair them with required when the field is mandatory.
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/chinavoyage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All returns every message joined with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// rule is a string-only check registered with the validator.
type rule struct {
	name    string
	check   func(string) bool
	message func(label string) string
}

var rules = []rule{
	{
		name:  "category",
		check: func(s string) bool { return models.IsValidBlogCategory(strings.TrimSpace(s)) },
		message: func(label string) string {
			return label + " doit être l'une des valeurs : " + strings.Join(models.AllBlogCategoryValues(), ", ") + "."
		},
	},
	{
		name:    "status",
		check:   func(s string) bool { return models.IsValidRequestStatus(strings.ToLower(strings.TrimSpace(s))) },
		message: func(label string) string { return label + ` doit être "new" ou "processed".` },
	},
	{
		name:    "httpurl",
		check:   IsValidHTTPURL,
		message: func(label string) string { return label + " doit être une URL commençant par http:// ou https://." },
	},
	{
		name:    "objectid",
		check:   IsValidObjectID,
		message: func(label string) string { return label + " n'est pas un identifiant valide." },
	},
}

var validator = sync.OnceValue(func() *validate.Validator {
	v := validate.New(validate.WithStopOnFirstError())
	for _, r := range rules {
		v.RegisterRuleFunc(r.name, func(value any) bool {
			s, ok := value.(string)
			return ok && (s == "" || r.check(s))
		}, r.name)
	}
	return v
})

// field describes one struct field as the messages need it.
type field struct {
	label   string
	numeric bool
}

var fieldCache sync.Map // reflect.Type -> map[string]field

// fieldsOf maps the JSON name of each field of s to its label and kind.
func fieldsOf(s any) map[string]field {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string]field)
	}

	out := make(map[string]field, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := sf.Name
		if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		label := sf.Tag.Get("label")
		if label == "" {
			label = sf.Name
		}
		out[name] = field{label: label, numeric: isNumeric(ft.Kind())}
	}
	fieldCache.Store(t, out)
	return out
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Validate checks s against its validate tags. Labels come from the
// label tag and fall back to the Go field name.
func Validate(s any) *Result {
	result := &Result{}
	err := validator().Struct(s)
	if err == nil {
		return result
	}
	errs, ok := err.(validate.Errors)
	if !ok {
		return result
	}

	fields := fieldsOf(s)
	for _, e := range errs {
		f, ok := fields[e.Field]
		if !ok {
			f = field{label: e.Field}
		}
		result.Errors = append(result.Errors, FieldError{
			Field:   e.Field,
			Label:   f.label,
			Message: message(f, e.Rule, e.Param),
		})
	}
	return result
}

// message renders the French text for a failed rule.
func message(f field, ruleName, param string) string {
	label := f.label
	switch ruleName {
	case "required":
		return label + " est requis."
	case "email":
		return "Adresse email invalide."
	case "oneof", "enum":
		return label + " doit être l'une des valeurs : " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		if f.numeric {
			return label + " doit être au moins " + param + "."
		}
		return label + " doit contenir au moins " + param + " caractères."
	case "max":
		if f.numeric {
			return label + " doit être au plus " + param + "."
		}
		return label + " doit contenir au plus " + param + " caractères."
	}
	for _, r := range rules {
		if r.name == ruleName {
			return r.message(label)
		}
	}
	return label + " est invalide."
}

// IsValidHTTPURL reports whether s is an absolute http:// or https:// URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// IsValidObjectID reports whether s is a MongoDB ObjectID in hex.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
