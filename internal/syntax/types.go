package syntax

import (
	"fmt"
	"strings"

	"github.com/Alb-O/ruskel/internal/ir"
)

// Path renders a type or trait path with its generic arguments. $crate::
// prefixes come from unexpanded macros and are stripped.
func Path(p *ir.Path) string {
	out := strings.ReplaceAll(p.String(), "$crate::", "")
	if p.Args != nil {
		out += GenericArgs(p.Args)
	}
	return out
}

// Type renders a type without surrounding context.
func Type(t *ir.Type) string {
	return typeInner(t, false)
}

// typeInner renders a type, tracking nesting so that compound dyn/impl trait
// types get parenthesized where Rust requires it.
func typeInner(t *ir.Type, nested bool) string {
	switch {
	case t.ResolvedPath != nil:
		return Path(t.ResolvedPath)
	case t.DynTrait != nil:
		return dynTrait(t.DynTrait, nested)
	case t.Generic != nil:
		return *t.Generic
	case t.Primitive != nil:
		return *t.Primitive
	case t.FunctionPointer != nil:
		return functionPointer(t.FunctionPointer)
	case t.Tuple != nil:
		parts := make([]string, len(t.Tuple))
		for i := range t.Tuple {
			parts[i] = typeInner(&t.Tuple[i], true)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case t.Slice != nil:
		return "[" + typeInner(t.Slice, true) + "]"
	case t.Array != nil:
		return fmt.Sprintf("[%s; %s]", typeInner(&t.Array.Type, true), t.Array.Len)
	case t.ImplTrait != nil:
		bounds := GenericBounds(t.ImplTrait)
		if nested && strings.Contains(bounds, " + ") {
			return "(impl " + bounds + ")"
		}
		return "impl " + bounds
	case t.Infer:
		return "_"
	case t.RawPointer != nil:
		mutability := "const"
		if t.RawPointer.IsMutable {
			mutability = "mut"
		}
		return fmt.Sprintf("*%s %s", mutability, typeInner(&t.RawPointer.Type, true))
	case t.BorrowedRef != nil:
		return borrowedRef(t.BorrowedRef)
	case t.QualifiedPath != nil:
		return qualifiedPath(t.QualifiedPath)
	case t.Pat:
		return "/* pattern */"
	default:
		return ""
	}
}

func dynTrait(dt *ir.DynTrait, nested bool) string {
	traits := make([]string, len(dt.Traits))
	for i := range dt.Traits {
		traits[i] = PolyTrait(&dt.Traits[i])
	}
	joined := strings.Join(traits, " + ")

	inner := "dyn " + joined
	if dt.Lifetime != nil {
		inner += " + " + *dt.Lifetime
	}
	if nested && (dt.Lifetime != nil || len(dt.Traits) > 1 || strings.Contains(joined, " + ")) {
		return "(" + inner + ")"
	}
	return inner
}

func borrowedRef(br *ir.BorrowedRef) string {
	var b strings.Builder
	b.WriteString("&")
	if br.Lifetime != nil {
		b.WriteString(*br.Lifetime)
		b.WriteString(" ")
	}
	if br.IsMutable {
		b.WriteString("mut ")
	}
	b.WriteString(typeInner(&br.Type, true))
	return b.String()
}

func qualifiedPath(qp *ir.QualifiedPath) string {
	selfType := typeInner(&qp.SelfType, true)
	args := ""
	if qp.Args != nil {
		args = GenericArgs(qp.Args)
	}
	if qp.Trait != nil {
		if traitPath := Path(qp.Trait); traitPath != "" {
			return fmt.Sprintf("<%s as %s>::%s%s", selfType, traitPath, qp.Name, args)
		}
	}
	return fmt.Sprintf("%s::%s%s", selfType, qp.Name, args)
}

func functionPointer(fp *ir.FunctionPointer) string {
	return fmt.Sprintf("fn(%s)%s", FunctionArgs(&fp.Sig), ReturnType(&fp.Sig))
}

// FunctionArgs renders a parameter list, using Rust's self shorthand forms.
func FunctionArgs(sig *ir.FunctionSignature) string {
	parts := make([]string, 0, len(sig.Inputs))
	for i := range sig.Inputs {
		in := &sig.Inputs[i]
		if in.Name == "self" {
			parts = append(parts, selfParam(&in.Type))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", in.Name, Type(&in.Type)))
	}
	return strings.Join(parts, ", ")
}

func selfParam(t *ir.Type) string {
	switch {
	case t.BorrowedRef != nil:
		prefix := "&"
		if t.BorrowedRef.Lifetime != nil {
			prefix += *t.BorrowedRef.Lifetime + " "
		}
		if t.BorrowedRef.IsMutable {
			prefix += "mut "
		}
		return prefix + "self"
	case t.Generic != nil && *t.Generic == "Self":
		return "self"
	case t.ResolvedPath != nil && t.ResolvedPath.String() == "Self" && t.ResolvedPath.Args == nil:
		return "self"
	default:
		return "self: " + Type(t)
	}
}

// ReturnType renders the -> separator and return type when present.
func ReturnType(sig *ir.FunctionSignature) string {
	if sig.Output == nil || sig.Output.IsZero() {
		return ""
	}
	return " -> " + Type(sig.Output)
}
