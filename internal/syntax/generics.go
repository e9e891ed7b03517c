package syntax

import (
	"fmt"
	"strings"

	"github.com/Alb-O/ruskel/internal/ir"
)

// Generics renders the angle-bracketed parameter list for an item, or an
// empty string when there are no renderable parameters.
func Generics(g *ir.Generics) string {
	var params []string
	for i := range g.Params {
		if p := GenericParamDef(&g.Params[i]); p != "" {
			params = append(params, p)
		}
	}
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// GenericParamDef renders an individual generic parameter definition.
// Synthetic type parameters (from impl Trait in argument position) render
// as empty strings and are skipped by callers.
func GenericParamDef(param *ir.GenericParamDef) string {
	switch {
	case param.Kind.Lifetime != nil:
		out := param.Name
		if len(param.Kind.Lifetime.Outlives) > 0 {
			out += ": " + strings.Join(param.Kind.Lifetime.Outlives, " + ")
		}
		return out
	case param.Kind.Type != nil:
		tp := param.Kind.Type
		if tp.IsSynthetic {
			return ""
		}
		out := param.Name
		if b := GenericBounds(tp.Bounds); b != "" {
			out += ": " + b
		}
		if tp.Default != nil {
			out += " = " + Type(tp.Default)
		}
		return out
	case param.Kind.Const != nil:
		cp := param.Kind.Const
		out := fmt.Sprintf("const %s: %s", param.Name, Type(&cp.Type))
		if cp.Default != nil {
			out += " = " + *cp.Default
		}
		return out
	default:
		return ""
	}
}

// GenericBound renders one bound. Precise-capturing use<...> bounds are
// omitted to keep the output parseable on stable Rust.
func GenericBound(bound *ir.GenericBound) string {
	switch {
	case bound.TraitBound != nil:
		tb := bound.TraitBound
		poly := PolyTrait(&ir.PolyTrait{Trait: tb.Trait, GenericParams: tb.GenericParams})
		switch tb.Modifier {
		case "maybe":
			return "?" + poly
		case "maybe_const":
			return "~const " + poly
		default:
			return poly
		}
	case bound.Outlives != nil:
		return *bound.Outlives
	default:
		return ""
	}
}

// GenericBounds renders a + separated bound list.
func GenericBounds(bounds []ir.GenericBound) string {
	var parts []string
	for i := range bounds {
		if b := GenericBound(&bounds[i]); strings.TrimSpace(b) != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, " + ")
}

// PolyTrait renders a trait reference with any for<...> quantifier.
func PolyTrait(pt *ir.PolyTrait) string {
	prefix := ""
	if len(pt.GenericParams) > 0 {
		var params []string
		for i := range pt.GenericParams {
			if p := GenericParamDef(&pt.GenericParams[i]); p != "" {
				params = append(params, p)
			}
		}
		if len(params) > 0 {
			prefix = "for<" + strings.Join(params, ", ") + "> "
		}
	}
	return prefix + Path(&pt.Trait)
}

// GenericArgs renders concrete generic arguments used in a path.
func GenericArgs(args *ir.GenericArgs) string {
	switch {
	case args.AngleBracketed != nil:
		ab := args.AngleBracketed
		if len(ab.Args) == 0 && len(ab.Constraints) == 0 {
			return ""
		}
		var parts []string
		for i := range ab.Args {
			parts = append(parts, genericArg(&ab.Args[i]))
		}
		for i := range ab.Constraints {
			parts = append(parts, assocConstraint(&ab.Constraints[i]))
		}
		return "<" + strings.Join(parts, ", ") + ">"
	case args.Parenthesized != nil:
		p := args.Parenthesized
		inputs := make([]string, len(p.Inputs))
		for i := range p.Inputs {
			inputs[i] = Type(&p.Inputs[i])
		}
		out := "(" + strings.Join(inputs, ", ") + ")"
		if p.Output != nil && !p.Output.IsZero() {
			out += " -> " + Type(p.Output)
		}
		return out
	default:
		return ""
	}
}

func genericArg(arg *ir.GenericArg) string {
	switch {
	case arg.Lifetime != nil:
		return *arg.Lifetime
	case arg.Type != nil:
		return Type(arg.Type)
	case arg.Const != nil:
		// Expressions with $ come from unexpanded macros and would produce
		// invalid syntax.
		if strings.Contains(arg.Const.Expr, "$") {
			return "/* macro expression */"
		}
		return arg.Const.Expr
	default:
		return "_"
	}
}

func assocConstraint(c *ir.AssocItemConstraint) string {
	switch {
	case c.Binding.Equality != nil:
		return fmt.Sprintf("%s = %s", c.Name, Term(c.Binding.Equality))
	case c.Binding.Constraint != nil:
		if b := GenericBounds(c.Binding.Constraint); b != "" {
			return c.Name + ": " + b
		}
		return c.Name
	default:
		return c.Name
	}
}

// Term renders a type or constant in an equality position.
func Term(t *ir.Term) string {
	switch {
	case t.Type != nil:
		return Type(t.Type)
	case t.Constant != nil:
		return t.Constant.Expr
	default:
		return ""
	}
}

// WhereClause renders the where clause for a generics block, including the
// leading space, or an empty string when no predicates survive.
func WhereClause(g *ir.Generics) string {
	var predicates []string
	for i := range g.WherePredicates {
		if p := wherePredicate(&g.WherePredicates[i]); p != "" {
			predicates = append(predicates, p)
		}
	}
	if len(predicates) == 0 {
		return ""
	}
	return " where " + strings.Join(predicates, ", ")
}

func wherePredicate(pred *ir.WherePredicate) string {
	switch {
	case pred.Bound != nil:
		bp := pred.Bound
		// Predicates on synthetic parameters would duplicate the impl Trait
		// rendered inline at the use site.
		if bp.Type.Generic != nil {
			for i := range bp.GenericParams {
				if tp := bp.GenericParams[i].Kind.Type; tp != nil && tp.IsSynthetic {
					return ""
				}
			}
		}
		hrtb := ""
		if len(bp.GenericParams) > 0 {
			var params []string
			for i := range bp.GenericParams {
				if p := GenericParamDef(&bp.GenericParams[i]); p != "" {
					params = append(params, p)
				}
			}
			if len(params) > 0 {
				hrtb = "for<" + strings.Join(params, ", ") + "> "
			}
		}
		bounds := GenericBounds(bp.Bounds)
		if bounds == "" {
			return ""
		}
		return fmt.Sprintf("%s%s: %s", hrtb, Type(&bp.Type), bounds)
	case pred.Lifetime != nil:
		lp := pred.Lifetime
		if len(lp.Outlives) == 0 {
			return lp.Lifetime
		}
		return fmt.Sprintf("%s: %s", lp.Lifetime, strings.Join(lp.Outlives, " + "))
	case pred.Eq != nil:
		return fmt.Sprintf("%s = %s", Type(&pred.Eq.LHS), Term(&pred.Eq.RHS))
	default:
		return ""
	}
}
