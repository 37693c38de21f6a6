package backend

import "testing"

func TestRuntimeSymbolMapping(t *testing.T) {
	cases := []struct {
		target string
		want   string
		ok     bool
	}{
		{"Vec__int__push", RuntimeVecPush, true},
		{"Vec__string__push", RuntimeVecPush, true}, // type-erased: all specializations share one helper
		{"Vec__int__get", RuntimeVecGet, true},
		{"Vec__int__len", RuntimeVecLen, true},
		{"Map__int__insert", RuntimeMapStringIns, true},
		{"Map__Box_int__get", RuntimeMapStringGet, true},
		{"panic", RuntimePanic, true},
		{"readFile", RuntimeFileRead, true},
		{"writeFile", RuntimeFileWrite, true},
		{"Vec__int__missing", "", false},
		{"main", "", false},
		{"U__g", "", false},
	}
	for _, c := range cases {
		got, ok := RuntimeSymbol(c.target)
		if ok != c.ok || got != c.want {
			t.Errorf("RuntimeSymbol(%q) = %q, %v; want %q, %v", c.target, got, ok, c.want, c.ok)
		}
	}
}
