package commands

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/algebnaly/xdr-brk-enum/internal/cli/output"
	"github.com/algebnaly/xdr-brk-enum/internal/logger"
	"github.com/algebnaly/xdr-brk-enum/pkg/union"
	"github.com/google/uuid"
)

// ============================================================================
// JSON Input
// ============================================================================

// parseValue builds a value of variant from JSON field input.
//
// The input is one of:
//   - empty, for unit variants
//   - a JSON array holding the fields in declaration order
//   - a JSON object keyed by field name, for struct variants
//   - a single JSON scalar, for variants with one field
//
// A field of a nested union is written {"variant": "Name", "fields": ...}
// where fields takes the same forms. Opaque fields are hex strings, as
// decode prints them.
func parseValue(u *union.Resolved, variant, input string) (union.Value, error) {
	if strings.TrimSpace(input) == "" {
		return union.Value{Variant: variant}, nil
	}

	raw, err := decodeJSON(input)
	if err != nil {
		return union.Value{}, err
	}
	return valueFromJSON(u, variant, raw)
}

func valueFromJSON(u *union.Resolved, variant string, raw any) (union.Value, error) {
	var fields []union.Field
	rv, known := u.Variant(variant)
	if known {
		fields = rv.Payload.Fields()
	}

	if obj, ok := raw.(map[string]any); ok && known && rv.Payload.Kind() == union.KindStruct {
		byName := make(map[string]any, len(obj))
		for name, v := range obj {
			var ft union.FieldType
			for _, f := range fields {
				if f.Name == name {
					ft = f.Type
				}
			}
			converted, err := fromJSONAs(ft, v)
			if err != nil {
				return union.Value{}, fmt.Errorf("field %s: %w", name, err)
			}
			byName[name] = converted
		}
		return u.NewValue(variant, byName)
	}

	if list, ok := raw.([]any); ok {
		values := make([]any, len(list))
		for i, v := range list {
			converted, err := fromJSONAs(fieldTypeAt(fields, i), v)
			if err != nil {
				return union.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			values[i] = converted
		}
		return union.Value{Variant: variant, Fields: values}, nil
	}

	field, err := fromJSONAs(fieldTypeAt(fields, 0), raw)
	if err != nil {
		return union.Value{}, err
	}
	return union.Value{Variant: variant, Fields: []any{field}}, nil
}

func fieldTypeAt(fields []union.Field, i int) union.FieldType {
	if i < len(fields) {
		return fields[i].Type
	}
	return nil
}

// fromJSONAs converts a decoded JSON value for a field of type t. A nil t
// falls back to the untyped conversion.
func fromJSONAs(t union.FieldType, v any) (any, error) {
	if t == nil || v == nil {
		return fromJSON(v)
	}

	if union.IsOpaque(t) {
		s, ok := v.(string)
		if !ok {
			return fromJSON(v)
		}
		b, err := output.ParseHex(s)
		if err != nil {
			return nil, fmt.Errorf("opaque data: %w", err)
		}
		return b, nil
	}

	if nested, ok := union.NestedUnion(t); ok {
		obj, ok := v.(map[string]any)
		if !ok {
			return fromJSON(v)
		}
		name, ok := obj["variant"].(string)
		if !ok {
			return nil, fmt.Errorf("nested union value needs a \"variant\" name")
		}
		switch fields := obj["fields"].(type) {
		case nil:
			return union.Value{Variant: name}, nil
		case []any, map[string]any:
			val, err := valueFromJSON(nested, name, fields)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", name, err)
			}
			return val, nil
		}
		return nil, fmt.Errorf("variant %s: fields must be a list or an object", name)
	}

	elem, ok := union.Elem(t)
	if !ok {
		return fromJSON(v)
	}
	if union.IsOptional(t) {
		return fromJSONAs(elem, v)
	}
	list, ok := v.([]any)
	if !ok {
		return fromJSON(v)
	}
	out := make([]any, len(list))
	for i, e := range list {
		converted, err := fromJSONAs(elem, e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = converted
	}
	return out, nil
}

func decodeJSON(input string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON fields: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid JSON fields: unexpected data after the first value")
	}
	return raw, nil
}

// fromJSON converts a decoded JSON value to the Go types the field
// encoders accept, without knowing the field type.
func fromJSON(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u, nil
		}
		return x.Float64()
	case []any:
		return fromJSONList(x)
	case map[string]any:
		name, ok := x["variant"].(string)
		if !ok {
			return nil, fmt.Errorf("nested union value needs a \"variant\" name")
		}
		val := union.Value{Variant: name}
		switch fields := x["fields"].(type) {
		case nil:
		case []any:
			list, err := fromJSONList(fields)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", name, err)
			}
			val.Fields = list
		default:
			return nil, fmt.Errorf("variant %s: fields must be a list", name)
		}
		return val, nil
	}
	return v, nil
}

func fromJSONList(list []any) ([]any, error) {
	out := make([]any, len(list))
	for i, v := range list {
		converted, err := fromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = converted
	}
	return out, nil
}

// errorAttrs returns the log attributes for a failed codec call that
// started at start.
func errorAttrs(err error, start time.Time) []any {
	attrs := []any{logger.Err(err), logger.DurationMs(logger.Duration(start))}
	var ue *union.Error
	if errors.As(err, &ue) {
		attrs = append(attrs, logger.ErrorCode(ue.Code.String()))
		if ue.Field != "" {
			attrs = append(attrs, logger.Field(ue.Field))
		}
	}
	return attrs
}

// ============================================================================
// Output Views
// ============================================================================

// valueView is a decoded value as printed by the CLI.
type valueView struct {
	Union        string      `json:"union" yaml:"union"`
	Variant      string      `json:"variant" yaml:"variant"`
	Discriminant uint32      `json:"discriminant" yaml:"discriminant"`
	DefaultArm   bool        `json:"default_arm,omitempty" yaml:"default_arm,omitempty"`
	Fields       []fieldView `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type fieldView struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// nestedView is a union value embedded in another one.
type nestedView struct {
	Variant string `json:"variant" yaml:"variant"`
	Fields  []any  `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func newValueView(u *union.Resolved, v union.Value) valueView {
	view := valueView{Union: u.Name(), Variant: v.Variant}

	rv, ok := u.Variant(v.Variant)
	if !ok {
		return view
	}
	view.DefaultArm = rv.DefaultArm
	view.Discriminant = discriminantOf(u, v)

	fields := rv.Payload.Fields()
	for i, fv := range v.Fields {
		f := fieldView{Name: strconv.Itoa(i), Value: display(fv)}
		if i < len(fields) {
			if fields[i].Name != "" {
				f.Name = fields[i].Name
			}
			f.Type = fields[i].Type.Name()
		}
		view.Fields = append(view.Fields, f)
	}
	return view
}

// discriminantOf returns the wire discriminant of v. The default arm
// carries it as its only field.
func discriminantOf(u *union.Resolved, v union.Value) uint32 {
	if d, ok := u.Discriminant(v.Variant); ok {
		return d
	}
	if len(v.Fields) == 1 {
		if d, ok := v.Fields[0].(uint32); ok {
			return d
		}
	}
	return 0
}

// display converts a decoded field to something every output format can
// render: opaque data becomes hex, nested unions become nestedView.
func display(v any) any {
	switch x := v.(type) {
	case []byte:
		return hex.EncodeToString(x)
	case uuid.UUID:
		return x.String()
	case union.Value:
		nested := nestedView{Variant: x.Variant}
		for _, f := range x.Fields {
			nested.Fields = append(nested.Fields, display(f))
		}
		return nested
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = display(e)
		}
		return out
	}
	return v
}

// Headers implements output.TableRenderer.
func (v valueView) Headers() []string {
	return []string{"FIELD", "TYPE", "VALUE"}
}

// Rows implements output.TableRenderer.
func (v valueView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		rows = append(rows, []string{f.Name, f.Type, cell(f.Value)})
	}
	return rows
}

// cell renders a value for a table cell. Strings are printed as-is,
// anything else as compact JSON.
func cell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// payloadString describes a variant's payload, e.g. "(int32, string)" or
// "{x int32, y float64}".
func payloadString(shape union.Shape) string {
	fields := shape.Fields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.Name != "" {
			parts[i] = f.Name + " " + f.Type.Name()
		} else {
			parts[i] = f.Type.Name()
		}
	}

	switch shape.Kind() {
	case union.KindTuple:
		return "(" + strings.Join(parts, ", ") + ")"
	case union.KindStruct:
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "-"
}
