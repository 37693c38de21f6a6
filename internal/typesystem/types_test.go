package typesystem

import "testing"

func TestEqualStructural(t *testing.T) {
	if !Equal(Int, Int) || Equal(Int, Float) {
		t.Fatal("primitive equality broken")
	}
	a := TNamed{Name: "Box", Args: []Type{Int}}
	b := TNamed{Name: "Box", Args: []Type{Int}}
	c := TNamed{Name: "Box", Args: []Type{Float}}
	if !Equal(a, b) || Equal(a, c) {
		t.Fatal("named equality is not structural")
	}
	if Equal(TNullable{Inner: Int}, Int) {
		t.Fatal("nullable must not equal its base")
	}
	if !Equal(TArray{Elem: Int, Len: 3}, TArray{Elem: Int, Len: 3}) {
		t.Fatal("array equality broken")
	}
	if Equal(TArray{Elem: Int, Len: 3}, TArray{Elem: Int, Len: 4}) {
		t.Fatal("array length must participate in equality")
	}
}

func TestMakeNullableCollapses(t *testing.T) {
	n := MakeNullable(MakeNullable(Int))
	inner, ok := n.(TNullable)
	if !ok || !Equal(inner.Inner, Int) {
		t.Fatalf("T?? must collapse to T?, got %s", n)
	}
}

func TestAssignable(t *testing.T) {
	cases := []struct {
		from, to Type
		want     bool
	}{
		{Int, Int, true},
		{Int, Float, false}, // no implicit conversion
		{Float, Int, false},
		{Int, MakeNullable(Int), true}, // T widens to T?
		{MakeNullable(Int), Int, false},
		{NullLiteral, MakeNullable(String), true}, // typed null
		{NullLiteral, String, false},
		{String, String, true},
	}
	for _, c := range cases {
		if got := Assignable(c.from, c.to); got != c.want {
			t.Errorf("Assignable(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestJoin(t *testing.T) {
	if j := Join(Int, Int); !Equal(j, Int) {
		t.Fatalf("Join(int, int) = %v", j)
	}
	if j := Join(Int, MakeNullable(Int)); !Equal(j, MakeNullable(Int)) {
		t.Fatalf("Join(int, int?) = %v, want int?", j)
	}
	if j := Join(Int, String); j != nil {
		t.Fatalf("Join(int, string) = %v, want nil", j)
	}
	if j := Join(NullLiteral, MakeNullable(String)); !Equal(j, MakeNullable(String)) {
		t.Fatalf("Join(null, string?) = %v", j)
	}
}

func TestApplySubstitution(t *testing.T) {
	box := TNamed{Name: "Box", Args: []Type{TParam{Name: "T"}}}
	got := box.Apply(Subst{"T": Int})
	want := TNamed{Name: "Box", Args: []Type{Int}}
	if !Equal(got, want) {
		t.Fatalf("Apply = %s, want %s", got, want)
	}
	if !IsConcrete(got) || IsConcrete(box) {
		t.Fatal("IsConcrete disagrees with FreeParams")
	}

	nested := TNullable{Inner: TParam{Name: "T"}}
	if applied := nested.Apply(Subst{"T": String}); applied.String() != "string?" {
		t.Fatalf("nullable substitution = %s", applied)
	}

	fn := TFunc{Params: []Type{TParam{Name: "T"}}, Return: TParam{Name: "T"}}
	if applied := fn.Apply(Subst{"T": Bool}); applied.String() != "(bool) -> bool" {
		t.Fatalf("function substitution = %s", applied)
	}
}

func TestComposeSubst(t *testing.T) {
	s1 := Subst{"T": TParam{Name: "U"}}
	s2 := Subst{"U": Int}
	composed := s1.Compose(s2)
	if got := (TParam{Name: "T"}).Apply(composed); !Equal(got, Int) {
		t.Fatalf("composed substitution: T -> %s, want int", got)
	}
}

func TestUntypedNull(t *testing.T) {
	if !IsUntypedNull(NullLiteral) {
		t.Fatal("NullLiteral must be the untyped null")
	}
	if IsUntypedNull(MakeNullable(Int)) {
		t.Fatal("int? is not the untyped null")
	}
}
