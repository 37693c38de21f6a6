package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in the system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeParams() []string
}

// TCon is a primitive type constant.
type TCon struct {
	Name string
}

func (t TCon) String() string      { return t.Name }
func (t TCon) Apply(s Subst) Type  { return t }
func (t TCon) FreeParams() []string { return nil }

// The primitive types, named in surface syntax so diagnostics and
// mangled names read like source code. Never is the bottom type of the
// untyped null literal; it unifies with any inner type at assignment.
var (
	Int    = TCon{Name: "int"}
	Float  = TCon{Name: "float"}
	Bool   = TCon{Name: "bool"}
	String = TCon{Name: "string"}
	Void   = TCon{Name: "void"}
	Never  = TCon{Name: "never"}
)

// NullLiteral is the type of a bare `null`: a nullable whose inner type
// is fixed by context.
var NullLiteral = TNullable{Inner: Never}

// TNullable represents `T?`. Invariant: Inner is never itself TNullable;
// construct through MakeNullable to preserve it.
type TNullable struct {
	Inner Type
}

func (t TNullable) String() string { return t.Inner.String() + "?" }
func (t TNullable) Apply(s Subst) Type {
	return MakeNullable(t.Inner.Apply(s))
}
func (t TNullable) FreeParams() []string { return t.Inner.FreeParams() }

// MakeNullable wraps t in a nullable, collapsing T?? to T?.
func MakeNullable(t Type) Type {
	if n, ok := t.(TNullable); ok {
		return n
	}
	return TNullable{Inner: t}
}

// StripNullable unwraps one nullable layer; identity otherwise.
func StripNullable(t Type) Type {
	if n, ok := t.(TNullable); ok {
		return n.Inner
	}
	return t
}

// IsNullable reports whether t is a T?.
func IsNullable(t Type) bool {
	_, ok := t.(TNullable)
	return ok
}

// IsUntypedNull reports whether t is the type of a bare null literal.
func IsUntypedNull(t Type) bool {
	n, ok := t.(TNullable)
	return ok && Equal(n.Inner, Never)
}

// TArray is the fixed-size array type `[T; n]`.
type TArray struct {
	Elem Type
	Len  int
}

func (t TArray) String() string { return fmt.Sprintf("[%s; %d]", t.Elem, t.Len) }
func (t TArray) Apply(s Subst) Type {
	return TArray{Elem: t.Elem.Apply(s), Len: t.Len}
}
func (t TArray) FreeParams() []string { return t.Elem.FreeParams() }

// TNamed is a user-declared struct, enum, or trait applied to zero or
// more type arguments. After monomorphization every TNamed has an empty
// Args list and a mangled Name.
type TNamed struct {
	Name string
	Args []Type
}

func (t TNamed) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

func (t TNamed) Apply(s Subst) Type {
	if len(t.Args) == 0 {
		return t
	}
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return TNamed{Name: t.Name, Args: args}
}

func (t TNamed) FreeParams() []string {
	var out []string
	for _, a := range t.Args {
		out = append(out, a.FreeParams()...)
	}
	return uniqueNames(out)
}

// TParam is a generic type parameter in scope. None survive
// monomorphization.
type TParam struct {
	Name string
}

func (t TParam) String() string { return t.Name }
func (t TParam) Apply(s Subst) Type {
	if replacement, ok := s[t.Name]; ok {
		return replacement
	}
	return t
}
func (t TParam) FreeParams() []string { return []string{t.Name} }

// TFunc is a first-class function signature, used for function symbols
// and extern declarations.
type TFunc struct {
	Params []Type
	Return Type
}

func (t TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Return)
}

func (t TFunc) Apply(s Subst) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Apply(s)
	}
	return TFunc{Params: params, Return: t.Return.Apply(s)}
}

func (t TFunc) FreeParams() []string {
	var out []string
	for _, p := range t.Params {
		out = append(out, p.FreeParams()...)
	}
	out = append(out, t.Return.FreeParams()...)
	return uniqueNames(out)
}

// Subst maps generic parameter names to concrete types.
type Subst map[string]Type

// Compose combines two substitutions: (s1.Compose(s2)).Apply ==
// Apply(s2) then Apply(s1-mapped-through-s2).
func (s1 Subst) Compose(s2 Subst) Subst {
	out := Subst{}
	for k, v := range s2 {
		out[k] = v
	}
	for k, v := range s1 {
		out[k] = v.Apply(s2)
	}
	return out
}

// IsConcrete reports whether t contains no generic parameters.
func IsConcrete(t Type) bool {
	return len(t.FreeParams()) == 0
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
