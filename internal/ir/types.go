package ir

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// ID identifies an item within one rustdoc JSON document. IDs are only
// meaningful relative to the document they came from.
type ID int32

// NoID marks an absent parent or target reference.
const NoID ID = -1

// Crate is the top-level structure of rustdoc JSON output.
type Crate struct {
	Root           ID                    `json:"root"`
	CrateVersion   *string               `json:"crate_version"`
	Index          map[ID]*Item          `json:"index"`
	Paths          map[ID]ItemSummary    `json:"paths"`
	ExternalCrates map[int]ExternalCrate `json:"external_crates"`
	FormatVersion  int                   `json:"format_version"`
}

// ExternalCrateName resolves a crate_id to the name of a dependency crate.
func (c *Crate) ExternalCrateName(crateID int) string {
	if ext, ok := c.ExternalCrates[crateID]; ok {
		return ext.Name
	}
	return ""
}

// ExternalCrate identifies a dependency crate by name.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// ItemSummary provides the full path and kind for an item, including items
// defined in dependency crates.
type ItemSummary struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Item is a single entry in the rustdoc index. Inner is kept raw and decoded
// on demand so one malformed item cannot poison the whole document.
type Item struct {
	ID         ID              `json:"id"`
	CrateID    int             `json:"crate_id"`
	Name       *string         `json:"name"`
	Docs       *string         `json:"docs"`
	Attrs      []string        `json:"attrs"`
	Visibility Visibility      `json:"visibility"`
	Inner      json.RawMessage `json:"inner"`
}

// Visibility of an item: public, default (private), crate, or restricted to
// a named module path.
type Visibility struct {
	Kind       string
	Restricted string // module path when Kind == "restricted"
}

// IsPublic reports whether the item is visible outside its crate.
func (v Visibility) IsPublic() bool {
	return v.Kind == "public"
}

// UnmarshalJSON accepts both the plain-string forms ("public", "default",
// "crate") and the {"restricted": {...}} object form.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Kind = s
		return nil
	}
	var obj struct {
		Restricted struct {
			Path string `json:"path"`
		} `json:"restricted"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized visibility %s", data)
	}
	v.Kind = "restricted"
	v.Restricted = obj.Restricted.Path
	return nil
}

// Module groups a set of child items.
type Module struct {
	IsCrate    bool `json:"is_crate"`
	Items      []ID `json:"items"`
	IsStripped bool `json:"is_stripped"`
}

// Struct declaration. Impls lists implementation blocks targeting it.
type Struct struct {
	Kind     StructKind `json:"kind"`
	Generics Generics   `json:"generics"`
	Impls    []ID       `json:"impls"`
}

// StructKind distinguishes unit, tuple, and plain structs. Exactly one of
// the three representations is populated.
type StructKind struct {
	Unit  bool
	Tuple []*ID // nil entries are stripped private fields
	Plain *PlainFields
}

// PlainFields lists named struct fields in declaration order.
type PlainFields struct {
	Fields            []ID `json:"fields"`
	HasStrippedFields bool `json:"has_stripped_fields"`
}

func (k *StructKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "unit" {
			return fmt.Errorf("unrecognized struct kind %q", s)
		}
		k.Unit = true
		return nil
	}
	var obj struct {
		Tuple *[]*ID       `json:"tuple"`
		Plain *PlainFields `json:"plain"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized struct kind: %w", err)
	}
	switch {
	case obj.Tuple != nil:
		k.Tuple = *obj.Tuple
	case obj.Plain != nil:
		k.Plain = obj.Plain
	default:
		return fmt.Errorf("empty struct kind %s", data)
	}
	return nil
}

// StructField wraps the field's type.
type StructField struct {
	Type Type
}

func (f *StructField) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &f.Type)
}

// Enum declaration.
type Enum struct {
	Generics Generics `json:"generics"`
	Variants []ID     `json:"variants"`
	Impls    []ID     `json:"impls"`
}

// Variant of an enum.
type Variant struct {
	Kind         VariantKind   `json:"kind"`
	Discriminant *Discriminant `json:"discriminant"`
}

// VariantKind mirrors StructKind for enum variants.
type VariantKind struct {
	Plain  bool
	Tuple  []*ID
	Struct *PlainFields
}

func (k *VariantKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "plain" {
			return fmt.Errorf("unrecognized variant kind %q", s)
		}
		k.Plain = true
		return nil
	}
	var obj struct {
		Tuple  *[]*ID       `json:"tuple"`
		Struct *PlainFields `json:"struct"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized variant kind: %w", err)
	}
	switch {
	case obj.Tuple != nil:
		k.Tuple = *obj.Tuple
	case obj.Struct != nil:
		k.Struct = obj.Struct
	default:
		return fmt.Errorf("empty variant kind %s", data)
	}
	return nil
}

// Discriminant is an explicit enum variant value.
type Discriminant struct {
	Expr  string `json:"expr"`
	Value string `json:"value"`
}

// Trait declaration.
type Trait struct {
	IsAuto          bool           `json:"is_auto"`
	IsUnsafe        bool           `json:"is_unsafe"`
	Items           []ID           `json:"items"`
	Generics        Generics       `json:"generics"`
	Bounds          []GenericBound `json:"bounds"`
	Implementations []ID           `json:"implementations"`
}

// Function covers free functions, associated functions, and methods.
type Function struct {
	Sig      FunctionSignature `json:"sig"`
	Generics Generics          `json:"generics"`
	Header   FunctionHeader    `json:"header"`
	HasBody  bool              `json:"has_body"`
}

// FunctionHeader carries the const/unsafe/async qualifiers.
type FunctionHeader struct {
	IsConst  bool `json:"is_const"`
	IsUnsafe bool `json:"is_unsafe"`
	IsAsync  bool `json:"is_async"`
}

// FunctionSignature is the parameter list and return type.
type FunctionSignature struct {
	Inputs      []FunctionInput `json:"inputs"`
	Output      *Type           `json:"output"`
	IsCVariadic bool            `json:"is_c_variadic"`
}

// FunctionInput is a (name, type) pair, serialized as a two-element array.
type FunctionInput struct {
	Name string
	Type Type
}

func (in *FunctionInput) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("function input has %d elements, want 2", len(pair))
	}
	if err := json.Unmarshal(pair[0], &in.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &in.Type)
}

// Impl is an implementation block for a target type, optionally of a trait.
type Impl struct {
	IsUnsafe    bool     `json:"is_unsafe"`
	Generics    Generics `json:"generics"`
	Trait       *Path    `json:"trait"`
	For         Type     `json:"for"`
	Items       []ID     `json:"items"`
	IsSynthetic bool     `json:"is_synthetic"`
	BlanketImpl *Type    `json:"blanket_impl"`
}

// Use is a `use` declaration, possibly re-exporting another item.
type Use struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     *ID    `json:"id"`
	IsGlob bool   `json:"is_glob"`
}

// Constant pairs a type with its constant expression.
type Constant struct {
	Type  Type         `json:"type"`
	Const ConstantExpr `json:"const"`
}

// ConstantExpr is the textual constant expression and optional evaluated value.
type ConstantExpr struct {
	Expr      string  `json:"expr"`
	Value     *string `json:"value"`
	IsLiteral bool    `json:"is_literal"`
}

// TypeAlias declaration.
type TypeAlias struct {
	Type     Type     `json:"type"`
	Generics Generics `json:"generics"`
}

// AssocConst is an associated constant inside a trait or impl.
type AssocConst struct {
	Type  Type    `json:"type"`
	Value *string `json:"value"`
}

// AssocType is an associated type inside a trait or impl.
type AssocType struct {
	Generics Generics       `json:"generics"`
	Bounds   []GenericBound `json:"bounds"`
	Type     *Type          `json:"type"`
}

// ProcMacro is a procedural macro declaration.
type ProcMacro struct {
	Kind    string   `json:"kind"`
	Helpers []string `json:"helpers"`
}

// Path references a named item, optionally with generic arguments.
type Path struct {
	PathStr string       `json:"path"`
	Name    string       `json:"name"` // older schema versions
	ID      ID           `json:"id"`
	Args    *GenericArgs `json:"args"`
}

// String returns the textual path, accommodating both schema spellings.
func (p *Path) String() string {
	if p.PathStr != "" {
		return p.PathStr
	}
	return p.Name
}

// Type is the rustdoc type union. Exactly one field is populated.
type Type struct {
	ResolvedPath    *Path
	DynTrait        *DynTrait
	Generic         *string
	Primitive       *string
	FunctionPointer *FunctionPointer
	Tuple           []Type
	Slice           *Type
	Array           *Array
	ImplTrait       []GenericBound
	Infer           bool
	RawPointer      *RawPointer
	BorrowedRef     *BorrowedRef
	QualifiedPath   *QualifiedPath
	Pat             bool
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "infer":
			t.Infer = true
			return nil
		default:
			return fmt.Errorf("unrecognized type %q", s)
		}
	}
	var obj struct {
		ResolvedPath    *Path            `json:"resolved_path"`
		DynTrait        *DynTrait        `json:"dyn_trait"`
		Generic         *string          `json:"generic"`
		Primitive       *string          `json:"primitive"`
		FunctionPointer *FunctionPointer `json:"function_pointer"`
		Tuple           *[]Type          `json:"tuple"`
		Slice           *Type            `json:"slice"`
		Array           *Array           `json:"array"`
		ImplTrait       *[]GenericBound  `json:"impl_trait"`
		RawPointer      *RawPointer      `json:"raw_pointer"`
		BorrowedRef     *BorrowedRef     `json:"borrowed_ref"`
		QualifiedPath   *QualifiedPath   `json:"qualified_path"`
		Pat             json.RawMessage  `json:"pat"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized type: %w", err)
	}
	switch {
	case obj.ResolvedPath != nil:
		t.ResolvedPath = obj.ResolvedPath
	case obj.DynTrait != nil:
		t.DynTrait = obj.DynTrait
	case obj.Generic != nil:
		t.Generic = obj.Generic
	case obj.Primitive != nil:
		t.Primitive = obj.Primitive
	case obj.FunctionPointer != nil:
		t.FunctionPointer = obj.FunctionPointer
	case obj.Tuple != nil:
		t.Tuple = *obj.Tuple
	case obj.Slice != nil:
		t.Slice = obj.Slice
	case obj.Array != nil:
		t.Array = obj.Array
	case obj.ImplTrait != nil:
		t.ImplTrait = *obj.ImplTrait
	case obj.RawPointer != nil:
		t.RawPointer = obj.RawPointer
	case obj.BorrowedRef != nil:
		t.BorrowedRef = obj.BorrowedRef
	case obj.QualifiedPath != nil:
		t.QualifiedPath = obj.QualifiedPath
	case obj.Pat != nil:
		t.Pat = true
	default:
		return fmt.Errorf("empty type %s", data)
	}
	return nil
}

// IsZero reports whether no variant was populated (e.g. a null output type).
func (t *Type) IsZero() bool {
	return t.ResolvedPath == nil && t.DynTrait == nil && t.Generic == nil &&
		t.Primitive == nil && t.FunctionPointer == nil && t.Tuple == nil &&
		t.Slice == nil && t.Array == nil && t.ImplTrait == nil && !t.Infer &&
		t.RawPointer == nil && t.BorrowedRef == nil && t.QualifiedPath == nil && !t.Pat
}

// DynTrait is a `dyn Trait + ...` type.
type DynTrait struct {
	Traits   []PolyTrait `json:"traits"`
	Lifetime *string     `json:"lifetime"`
}

// PolyTrait is a trait reference with optional higher-ranked parameters.
type PolyTrait struct {
	Trait         Path              `json:"trait"`
	GenericParams []GenericParamDef `json:"generic_params"`
}

// FunctionPointer is a bare `fn(...)` type.
type FunctionPointer struct {
	Sig    FunctionSignature `json:"sig"`
	Header FunctionHeader    `json:"header"`
}

// Array is a fixed-length array type.
type Array struct {
	Type Type   `json:"type"`
	Len  string `json:"len"`
}

// RawPointer is a `*const`/`*mut` pointer type.
type RawPointer struct {
	IsMutable bool `json:"is_mutable"`
	Type      Type `json:"type"`
}

// BorrowedRef is a `&`/`&mut` reference type.
type BorrowedRef struct {
	Lifetime  *string `json:"lifetime"`
	IsMutable bool    `json:"is_mutable"`
	Type      Type    `json:"type"`
}

// QualifiedPath is a `<T as Trait>::Assoc` projection.
type QualifiedPath struct {
	Name     string       `json:"name"`
	Args     *GenericArgs `json:"args"`
	SelfType Type         `json:"self_type"`
	Trait    *Path        `json:"trait"`
}

// Generics holds an item's parameter list and where clause.
type Generics struct {
	Params          []GenericParamDef `json:"params"`
	WherePredicates []WherePredicate  `json:"where_predicates"`
}

// GenericParamDef is one declared generic parameter.
type GenericParamDef struct {
	Name string              `json:"name"`
	Kind GenericParamDefKind `json:"kind"`
}

// GenericParamDefKind is the lifetime/type/const union.
type GenericParamDefKind struct {
	Lifetime *LifetimeParam
	Type     *TypeParam
	Const    *ConstParam
}

func (k *GenericParamDefKind) UnmarshalJSON(data []byte) error {
	var obj struct {
		Lifetime *LifetimeParam `json:"lifetime"`
		Type     *TypeParam     `json:"type"`
		Const    *ConstParam    `json:"const"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized generic param kind: %w", err)
	}
	k.Lifetime = obj.Lifetime
	k.Type = obj.Type
	k.Const = obj.Const
	return nil
}

// LifetimeParam lists lifetimes this lifetime must outlive.
type LifetimeParam struct {
	Outlives []string `json:"outlives"`
}

// TypeParam carries bounds and an optional default type.
type TypeParam struct {
	Bounds      []GenericBound `json:"bounds"`
	Default     *Type          `json:"default"`
	IsSynthetic bool           `json:"is_synthetic"`
}

// ConstParam is a const generic parameter.
type ConstParam struct {
	Type    Type    `json:"type"`
	Default *string `json:"default"`
}

// GenericBound is the trait-bound/outlives/use union.
type GenericBound struct {
	TraitBound *TraitBound
	Outlives   *string
	// Precise-capturing `use<...>` bounds are recognized but carry no data;
	// they are omitted from rendered output.
	Use bool
}

func (b *GenericBound) UnmarshalJSON(data []byte) error {
	var obj struct {
		TraitBound *TraitBound     `json:"trait_bound"`
		Outlives   *string         `json:"outlives"`
		Use        json.RawMessage `json:"use"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized generic bound: %w", err)
	}
	b.TraitBound = obj.TraitBound
	b.Outlives = obj.Outlives
	b.Use = obj.Use != nil
	return nil
}

// TraitBound is a trait requirement with an optional ?/~const modifier.
type TraitBound struct {
	Trait         Path              `json:"trait"`
	GenericParams []GenericParamDef `json:"generic_params"`
	Modifier      string            `json:"modifier"` // "none", "maybe", "maybe_const"
}

// WherePredicate is one predicate of a where clause.
type WherePredicate struct {
	Bound    *BoundPredicate
	Lifetime *LifetimePredicate
	Eq       *EqPredicate
}

func (p *WherePredicate) UnmarshalJSON(data []byte) error {
	var obj struct {
		Bound    *BoundPredicate    `json:"bound_predicate"`
		Lifetime *LifetimePredicate `json:"lifetime_predicate"`
		Eq       *EqPredicate       `json:"eq_predicate"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized where predicate: %w", err)
	}
	p.Bound = obj.Bound
	p.Lifetime = obj.Lifetime
	p.Eq = obj.Eq
	return nil
}

// BoundPredicate is `T: Bounds` inside a where clause.
type BoundPredicate struct {
	Type          Type              `json:"type"`
	Bounds        []GenericBound    `json:"bounds"`
	GenericParams []GenericParamDef `json:"generic_params"`
}

// LifetimePredicate is `'a: 'b + 'c` inside a where clause.
type LifetimePredicate struct {
	Lifetime string   `json:"lifetime"`
	Outlives []string `json:"outlives"`
}

// EqPredicate is `T = U` inside a where clause.
type EqPredicate struct {
	LHS Type `json:"lhs"`
	RHS Term `json:"rhs"`
}

// Term is the type/constant union used in equality positions.
type Term struct {
	Type     *Type
	Constant *ConstantExpr
}

func (t *Term) UnmarshalJSON(data []byte) error {
	var obj struct {
		Type     *Type         `json:"type"`
		Constant *ConstantExpr `json:"constant"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized term: %w", err)
	}
	t.Type = obj.Type
	t.Constant = obj.Constant
	return nil
}

// GenericArgs is the angle-bracketed/parenthesized union.
type GenericArgs struct {
	AngleBracketed *AngleBracketedArgs
	Parenthesized  *ParenthesizedArgs
}

func (a *GenericArgs) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		// "return_type_notation" carries no data and renders as nothing.
		return nil
	}
	var obj struct {
		AngleBracketed *AngleBracketedArgs `json:"angle_bracketed"`
		Parenthesized  *ParenthesizedArgs  `json:"parenthesized"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized generic args: %w", err)
	}
	a.AngleBracketed = obj.AngleBracketed
	a.Parenthesized = obj.Parenthesized
	return nil
}

// AngleBracketedArgs is `<T, N, Assoc = U>`.
type AngleBracketedArgs struct {
	Args        []GenericArg          `json:"args"`
	Constraints []AssocItemConstraint `json:"constraints"`
}

// ParenthesizedArgs is `(A, B) -> C`, the Fn sugar form.
type ParenthesizedArgs struct {
	Inputs []Type `json:"inputs"`
	Output *Type  `json:"output"`
}

// GenericArg is one concrete argument in a generic argument list.
type GenericArg struct {
	Lifetime *string
	Type     *Type
	Const    *ConstantExpr
	Infer    bool
}

func (a *GenericArg) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "infer" {
			return fmt.Errorf("unrecognized generic arg %q", s)
		}
		a.Infer = true
		return nil
	}
	var obj struct {
		Lifetime *string       `json:"lifetime"`
		Type     *Type         `json:"type"`
		Const    *ConstantExpr `json:"const"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized generic arg: %w", err)
	}
	a.Lifetime = obj.Lifetime
	a.Type = obj.Type
	a.Const = obj.Const
	return nil
}

// AssocItemConstraint is `Assoc = U` or `Assoc: Bounds` in argument position.
type AssocItemConstraint struct {
	Name    string                  `json:"name"`
	Args    *GenericArgs            `json:"args"`
	Binding AssocItemConstraintKind `json:"binding"`
}

// AssocItemConstraintKind is the equality/constraint union.
type AssocItemConstraintKind struct {
	Equality   *Term
	Constraint []GenericBound
}

func (k *AssocItemConstraintKind) UnmarshalJSON(data []byte) error {
	var obj struct {
		Equality   *Term           `json:"equality"`
		Constraint *[]GenericBound `json:"constraint"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unrecognized constraint binding: %w", err)
	}
	k.Equality = obj.Equality
	if obj.Constraint != nil {
		k.Constraint = *obj.Constraint
	}
	return nil
}
