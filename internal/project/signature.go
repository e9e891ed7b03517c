package project

import (
	"strings"

	"github.com/Alb-O/ruskel/internal/graph"
	"github.com/Alb-O/ruskel/internal/ir"
	"github.com/Alb-O/ruskel/internal/syntax"
)

// Signature renders a compact one-line declaration for an item, used as the
// searchable signature text and in listings. It omits visibility, bodies,
// and doc comments.
func Signature(item *graph.Item) string {
	name := syntax.EscapeName(item.Name)
	switch inner := item.Inner.(type) {
	case *ir.Function:
		return functionSignature(name, inner)
	case *ir.Struct:
		return "struct " + name + syntax.Generics(&inner.Generics) + syntax.WhereClause(&inner.Generics)
	case *ir.Enum:
		return "enum " + name + syntax.Generics(&inner.Generics) + syntax.WhereClause(&inner.Generics)
	case *ir.Trait:
		var b strings.Builder
		if inner.IsUnsafe {
			b.WriteString("unsafe ")
		}
		b.WriteString("trait ")
		b.WriteString(name)
		b.WriteString(syntax.Generics(&inner.Generics))
		if bounds := syntax.GenericBounds(inner.Bounds); bounds != "" {
			b.WriteString(": ")
			b.WriteString(bounds)
		}
		b.WriteString(syntax.WhereClause(&inner.Generics))
		return b.String()
	case *ir.TypeAlias:
		return "type " + name + syntax.Generics(&inner.Generics) + " = " + syntax.Type(&inner.Type)
	case *ir.Constant:
		return "const " + name + ": " + syntax.Type(&inner.Type)
	case *ir.AssocConst:
		return "const " + name + ": " + syntax.Type(&inner.Type)
	case *ir.AssocType:
		s := "type " + name + syntax.Generics(&inner.Generics)
		if bounds := syntax.GenericBounds(inner.Bounds); bounds != "" {
			s += ": " + bounds
		}
		if inner.Type != nil {
			s += " = " + syntax.Type(inner.Type)
		}
		return s
	case *ir.StructField:
		return name + ": " + syntax.Type(&inner.Type)
	case *ir.Variant:
		return name
	case *ir.Module:
		return "mod " + name
	case *ir.Use:
		if inner.IsGlob {
			return "use " + inner.Source + "::*"
		}
		return "use " + inner.Source
	case *ir.Impl:
		return implSignature(inner)
	case *ir.ProcMacro:
		return name + "!"
	case string:
		// macro_rules source; the first line is the declaration.
		if i := strings.IndexByte(inner, '\n'); i >= 0 {
			return strings.TrimSpace(inner[:i])
		}
		return strings.TrimSpace(inner)
	default:
		return name
	}
}

func functionSignature(name string, fn *ir.Function) string {
	var b strings.Builder
	if fn.Header.IsConst {
		b.WriteString("const ")
	}
	if fn.Header.IsAsync {
		b.WriteString("async ")
	}
	if fn.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("fn ")
	b.WriteString(name)
	b.WriteString(syntax.Generics(&fn.Generics))
	b.WriteString("(")
	b.WriteString(syntax.FunctionArgs(&fn.Sig))
	b.WriteString(")")
	b.WriteString(syntax.ReturnType(&fn.Sig))
	b.WriteString(syntax.WhereClause(&fn.Generics))
	return b.String()
}

func implSignature(impl *ir.Impl) string {
	var b strings.Builder
	if impl.IsUnsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("impl")
	b.WriteString(syntax.Generics(&impl.Generics))
	b.WriteString(" ")
	if impl.Trait != nil {
		b.WriteString(syntax.Path(impl.Trait))
		b.WriteString(" for ")
	}
	b.WriteString(syntax.Type(&impl.For))
	b.WriteString(syntax.WhereClause(&impl.Generics))
	return b.String()
}
