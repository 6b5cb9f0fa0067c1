// Package schema builds resolved unions from configuration.
//
// Constants are defined first, in file order, then every union is turned
// into a union.Spec and registered. Field types are written as names:
//
//	int32 | int               uint32 | unsigned
//	int64 | hyper             uint64 | unsigned hyper
//	float32 | float           float64 | double
//	bool  string  opaque  uuid
//	opaque[N]                 fixed-length opaque, N a constant expression
//	T[]                       variable-length array of T
//	T?                        optional T (T itself not optional)
//	Name                      a union defined earlier in the file
package schema

import (
	"fmt"
	"strings"

	"github.com/algebnaly/xdr-brk-enum/internal/logger"
	"github.com/algebnaly/xdr-brk-enum/pkg/config"
	"github.com/algebnaly/xdr-brk-enum/pkg/union"
	"github.com/algebnaly/xdr-brk-enum/pkg/union/consteval"
	"github.com/algebnaly/xdr-brk-enum/pkg/xdr"
)

// maxFixedOpaque bounds opaque[N] to what a variable-length opaque allows.
const maxFixedOpaque = xdr.MaxOpaqueLength

// Schema is the result of building a configuration.
type Schema struct {
	// Registry holds every union, resolved.
	Registry *union.Registry

	// Constants holds every named constant.
	Constants *consteval.Evaluator
}

// Build defines cfg's constants and resolves its unions. The options are
// applied to every union after the constant evaluator, so WithMetrics can
// be passed here.
//
// The first failing constant or union aborts the build.
func Build(cfg *config.Config, opts ...union.ResolveOption) (*Schema, error) {
	eval := consteval.New(nil)
	for _, c := range cfg.Constants {
		v, err := eval.Define(c.Name, c.Value)
		if err != nil {
			return nil, err
		}
		logger.Debug("Constant defined", logger.Constant(c.Name), "value", v)
	}

	reg := union.NewRegistry(append([]union.ResolveOption{union.WithEvaluator(eval)}, opts...)...)
	s := &Schema{Registry: reg, Constants: eval}

	for i := range cfg.Unions {
		uc := &cfg.Unions[i]
		spec, err := s.specFor(uc)
		if err != nil {
			return nil, fmt.Errorf("union %s: %w", uc.Name, err)
		}
		r, err := reg.Register(spec)
		if err != nil {
			return nil, err
		}
		for _, rv := range r.Variants() {
			if rv.DefaultArm {
				logger.Debug("Default arm resolved", logger.Union(r.Name()), logger.Variant(rv.Name))
				continue
			}
			logger.Debug("Variant resolved",
				logger.Union(r.Name()),
				logger.Variant(rv.Name),
				logger.Discriminant(rv.Discriminant))
		}
	}

	return s, nil
}

// Union returns a resolved union by name.
func (s *Schema) Union(name string) (*union.Resolved, error) {
	return s.Registry.Get(name)
}

// specFor converts a union definition into a union.Spec.
func (s *Schema) specFor(uc *config.UnionConfig) (*union.Spec, error) {
	spec := &union.Spec{
		Name:     uc.Name,
		Variants: make([]union.VariantSpec, 0, len(uc.Variants)),
	}

	for _, vc := range uc.Variants {
		payload, err := s.payloadFor(vc)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", vc.Name, err)
		}

		vs := union.VariantSpec{
			Name:       vc.Name,
			Payload:    payload,
			DefaultArm: vc.DefaultArm,
		}
		if vc.Discriminant != "" {
			vs.Discriminant = union.Expression(vc.Discriminant)
		}
		spec.Variants = append(spec.Variants, vs)
	}

	return spec, nil
}

func (s *Schema) payloadFor(vc config.VariantConfig) (union.Shape, error) {
	switch {
	case len(vc.Struct) > 0:
		fields := make(union.Struct, 0, len(vc.Struct))
		for _, fc := range vc.Struct {
			ft, err := s.ParseType(fc.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fc.Name, err)
			}
			fields = append(fields, union.Field{Name: fc.Name, Type: ft})
		}
		return fields, nil

	case len(vc.Fields) > 0:
		tuple := make(union.Tuple, 0, len(vc.Fields))
		for i, name := range vc.Fields {
			ft, err := s.ParseType(name)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			tuple = append(tuple, ft)
		}
		return tuple, nil
	}

	return union.Unit{}, nil
}

// builtinTypes maps type names and their XDR aliases to field types.
var builtinTypes = map[string]union.FieldType{
	"int32":          union.Int32,
	"int":            union.Int32,
	"uint32":         union.Uint32,
	"unsigned":       union.Uint32,
	"unsigned int":   union.Uint32,
	"int64":          union.Int64,
	"hyper":          union.Int64,
	"uint64":         union.Uint64,
	"unsigned hyper": union.Uint64,
	"bool":           union.Bool,
	"float32":        union.Float32,
	"float":          union.Float32,
	"float64":        union.Float64,
	"double":         union.Float64,
	"string":         union.String,
	"opaque":         union.Opaque,
	"uuid":           union.UUID,
}

// ParseType parses a field type name. Union names resolve against the
// unions already registered in the schema.
func (s *Schema) ParseType(name string) (union.FieldType, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, fmt.Errorf("empty type name")
	}

	if inner, ok := strings.CutSuffix(name, "?"); ok {
		if strings.HasSuffix(strings.TrimSpace(inner), "?") {
			return nil, fmt.Errorf("type %q: optional of optional is not allowed", name)
		}
		elem, err := s.ParseType(inner)
		if err != nil {
			return nil, err
		}
		return union.Optional(elem), nil
	}

	if inner, ok := strings.CutSuffix(name, "[]"); ok {
		elem, err := s.ParseType(inner)
		if err != nil {
			return nil, err
		}
		return union.Array(elem), nil
	}

	if size, ok := strings.CutPrefix(name, "opaque["); ok {
		expr, ok := strings.CutSuffix(size, "]")
		if !ok {
			return nil, fmt.Errorf("malformed type %q", name)
		}
		n, err := s.Constants.Eval(expr)
		if err != nil {
			return nil, fmt.Errorf("opaque size: %w", err)
		}
		if n < 0 || n > int64(maxFixedOpaque) {
			return nil, fmt.Errorf("opaque size %d out of range", n)
		}
		return union.FixedOpaque(uint32(n)), nil
	}

	if ft, ok := builtinTypes[name]; ok {
		return ft, nil
	}

	if r, err := s.Registry.Get(name); err == nil {
		return union.Nested(r), nil
	}

	return nil, fmt.Errorf("unknown type %q", name)
}
