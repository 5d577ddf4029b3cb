// Package validation decodes request input against closed schemas and
// reports failures as field-path/message pairs.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError is one failed rule. Path is the JSON field name, or empty for
// errors about the payload as a whole.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is returned for any input rejected before it reaches a handler's
// business logic.
type Error struct {
	Details []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Details))
	for i, d := range e.Details {
		if d.Path == "" {
			msgs[i] = d.Message
		} else {
			msgs[i] = d.Path + ": " + d.Message
		}
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newError(path, format string, args ...any) *Error {
	return &Error{Details: []FieldError{{Path: path, Message: fmt.Sprintf(format, args...)}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct runs the struct's validate tags.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Details = append(out.Details, FieldError{Path: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Param() == "1" {
			return fmt.Sprintf("%s cannot be empty", field)
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// Normalizer is implemented by payloads that clean up their input (trimming,
// case folding) before validation.
type Normalizer interface {
	Normalize()
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing data, normalizes it and validates it. An empty body decodes as {}.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return decodeError(err)
	}
	if dec.More() {
		return newError("", "Request body must contain a single JSON object")
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return Struct(dst)
}

func decodeError(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return newError(typeErr.Field, "%s must be a %s", typeErr.Field, typeErr.Type.Kind())
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return newError("", "Request body must be valid JSON")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return newError(field, "Unrecognized field %q", field)
	}
	return newError("", "Request body must be a JSON object")
}

// Query checks that values only carries allowed keys, each at most once.
func Query(values url.Values, allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &Error{}
	for _, k := range keys {
		switch {
		case !ok[k]:
			out.Details = append(out.Details, FieldError{Path: k, Message: fmt.Sprintf("Unrecognized query parameter %q", k)})
		case len(values[k]) > 1:
			out.Details = append(out.Details, FieldError{Path: k, Message: fmt.Sprintf("%s must be given at most once", k)})
		}
	}
	if len(out.Details) > 0 {
		return out
	}
	return nil
}

// UUID parses an id taken from the path or query.
func UUID(path, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, newError(path, "%s must be a valid UUID", path)
	}
	return id, nil
}

// Fail builds an Error for a single rule checked outside struct tags.
func Fail(path, msg string) error {
	return &Error{Details: []FieldError{{Path: path, Message: msg}}}
}
