// Package validation evaluates declarative field rules against a request's
// path parameters and JSON body, collecting every violation.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Location is where a field is read from.
type Location string

const (
	Params Location = "params"
	Body   Location = "body"
)

// MsgInvalidJSON is reported when a body cannot be decoded as a JSON object.
const MsgInvalidJSON = "JSON no válido"

const bodyLocalsKey = "validation.body"

var validate = newValidator()

// decimalRegex accepts an optional sign, optional integer part and digits
// after an optional dot: "5", "-2.5", ".5". Exponents are rejected.
var decimalRegex = regexp.MustCompile(`^[+-]?([0-9]*[.])?[0-9]+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		_, err := strconv.ParseInt(fl.Field().String(), 10, 64)
		return err == nil
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		return decimalRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bool01", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "true", "false", "1", "0":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("gt0", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && f > 0
	})
	return v
}

// Rule is a single named check with the message reported when it fails.
type Rule struct {
	Tag     string
	Message string
}

// NotEmpty fails for absent fields and empty strings.
func NotEmpty(msg string) Rule { return Rule{Tag: "required", Message: msg} }

// Numeric fails unless the value is a decimal number; a leading dot is allowed.
func Numeric(msg string) Rule { return Rule{Tag: "decimal", Message: msg} }

// Integer fails unless the value is a base-10 integer.
func Integer(msg string) Rule { return Rule{Tag: "integer", Message: msg} }

// Boolean fails unless the value is true, false, 1 or 0.
func Boolean(msg string) Rule { return Rule{Tag: "bool01", Message: msg} }

// Positive fails unless the value is a number strictly greater than zero.
func Positive(msg string) Rule { return Rule{Tag: "gt0", Message: msg} }

// Field binds a rule list to one request field.
type Field struct {
	Name  string
	In    Location
	Rules []Rule
}

// Param declares rules for a path parameter.
func Param(name string, rules ...Rule) Field {
	return Field{Name: name, In: Params, Rules: rules}
}

// BodyField declares rules for a top-level JSON body field.
func BodyField(name string, rules ...Rule) Field {
	return Field{Name: name, In: Body, Rules: rules}
}

// Schema is the rule table of one route.
type Schema []Field

// FieldError describes one violated rule.
type FieldError struct {
	Type     string   `json:"type"`
	Value    any      `json:"value,omitempty"`
	Msg      string   `json:"msg"`
	Path     string   `json:"path,omitempty"`
	Location Location `json:"location"`
}

// Request is the input a schema is evaluated against.
type Request struct {
	Params map[string]string
	Body   map[string]any
}

// Validate runs every rule of every field, without stopping at the first
// failure, and returns the violations in declaration order.
func (s Schema) Validate(req Request) []FieldError {
	var errs []FieldError
	for _, f := range s {
		raw, present := lookup(req, f)
		text := Stringify(raw)
		for _, r := range f.Rules {
			if validate.Var(text, r.Tag) == nil {
				continue
			}
			fe := FieldError{Type: "field", Msg: r.Message, Path: f.Name, Location: f.In}
			if present {
				fe.Value = raw
			}
			errs = append(errs, fe)
		}
	}
	return errs
}

func (s Schema) hasBody() bool {
	for _, f := range s {
		if f.In == Body {
			return true
		}
	}
	return false
}

func lookup(req Request, f Field) (any, bool) {
	switch f.In {
	case Params:
		v, ok := req.Params[f.Name]
		return v, ok
	default:
		v, ok := req.Body[f.Name]
		return v, ok && v != nil
	}
}

// Stringify renders a decoded JSON value the way rules see it.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// DecodeBody parses a JSON object, keeping numbers in their textual form.
// An empty body decodes to an empty object; trailing data is an error.
func DecodeBody(raw []byte) (map[string]any, error) {
	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode body: unexpected data after the JSON object")
	}
	return body, nil
}

// Middleware evaluates schema against the request and answers 400 with
// every violation; otherwise the decoded body is stored for the handler.
func Middleware(schema Schema) fiber.Handler {
	withBody := schema.hasBody()
	return func(c *fiber.Ctx) error {
		req := Request{Params: c.AllParams(), Body: map[string]any{}}
		if withBody {
			body, err := DecodeBody(c.Body())
			if err != nil {
				return reject(c, []FieldError{{Type: "field", Msg: MsgInvalidJSON, Location: Body}})
			}
			req.Body = body
		}

		if errs := schema.Validate(req); len(errs) > 0 {
			return reject(c, errs)
		}

		c.Locals(bodyLocalsKey, Values(req.Body))
		return c.Next()
	}
}

// ErrorsResponse is the 400 body listing every violation.
type ErrorsResponse struct {
	OK     bool         `json:"ok" example:"false"`
	Errors []FieldError `json:"errors"`
}

func reject(c *fiber.Ctx, errs []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorsResponse{OK: false, Errors: errs})
}

// Values is a validated JSON body.
type Values map[string]any

// BodyValues returns the body stored by Middleware, or an empty set.
func BodyValues(c *fiber.Ctx) Values {
	if v, ok := c.Locals(bodyLocalsKey).(Values); ok {
		return v
	}
	return Values{}
}

// String returns the field rendered as text.
func (v Values) String(name string) string {
	return Stringify(v[name])
}

// Float returns the field as a float64, or zero when it is not numeric.
func (v Values) Float(name string) float64 {
	f, _ := strconv.ParseFloat(v.String(name), 64)
	return f
}

// Bool returns the field as a bool, or false when it is not boolean.
func (v Values) Bool(name string) bool {
	b, _ := strconv.ParseBool(v.String(name))
	return b
}
