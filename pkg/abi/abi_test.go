package abi

import (
	"testing"
)

func TestParse(t *testing.T) {
	data := []byte(`[
		{"type":"constructor","inputs":[]},
		{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
		{"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
		{"type":"event","name":"Transfer","inputs":[]},
		{"type":"error","name":"Unauthorized","inputs":[]},
		{"type":"fallback","stateMutability":"payable"},
		{"type":"receive","stateMutability":"payable"}
	]`)

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(parsed.Functions) != 2 {
		t.Fatalf("got %d functions, want 2", len(parsed.Functions))
	}
	if got := parsed.Functions[0].Signature(); got != "transfer(address,uint256)" {
		t.Errorf("Signature() = %s", got)
	}
	if got := parsed.Functions[0].Selector().Hex(); got != "0xa9059cbb" {
		t.Errorf("Selector() = %s", got)
	}
	if parsed.Functions[1].StateMutability != View {
		t.Errorf("owner mutability = %s, want view", parsed.Functions[1].StateMutability)
	}
	if parsed.Fallback == nil || parsed.Fallback.StateMutability != Payable {
		t.Errorf("Fallback = %+v, want payable fallback", parsed.Fallback)
	}
	if parsed.Receive == nil {
		t.Error("Receive = nil, want receive handler")
	}
}

func TestParseLegacyMutability(t *testing.T) {
	data := []byte(`[
		{"name":"get","inputs":[],"outputs":[],"constant":true},
		{"name":"deposit","inputs":[],"outputs":[],"payable":true},
		{"name":"set","inputs":[{"name":"v","type":"uint"}],"outputs":[]}
	]`)

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := []struct {
		sig, mut string
	}{
		{"get()", View},
		{"deposit()", Payable},
		{"set(uint256)", NonPayable},
	}
	for i, w := range want {
		fn := parsed.Functions[i]
		if fn.Signature() != w.sig {
			t.Errorf("Functions[%d].Signature() = %s, want %s", i, fn.Signature(), w.sig)
		}
		if fn.StateMutability != w.mut {
			t.Errorf("Functions[%d].StateMutability = %s, want %s", i, fn.StateMutability, w.mut)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"not an array", `{"type":"function"}`},
		{"unnamed function", `[{"type":"function","inputs":[]}]`},
		{"unknown type", `[{"type":"function","name":"f","inputs":[{"name":"x","type":"widget"}]}]`},
		{"unbalanced array", `[{"type":"function","name":"f","inputs":[{"name":"x","type":"uint256[2"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCanonicalType(t *testing.T) {
	tests := []struct {
		name  string
		param Param
		want  string
	}{
		{"plain", Param{Type: "address"}, "address"},
		{"uint alias", Param{Type: "uint"}, "uint256"},
		{"int array alias", Param{Type: "int[]"}, "int256[]"},
		{"fixed array", Param{Type: "bytes32[2]"}, "bytes32[2]"},
		{
			"tuple",
			Param{Type: "tuple", Components: []Param{{Type: "address"}, {Type: "uint256"}}},
			"(address,uint256)",
		},
		{
			"nested tuple array",
			Param{Type: "tuple[]", Components: []Param{
				{Type: "bool"},
				{Type: "tuple", Components: []Param{{Type: "bytes"}, {Type: "uint"}}},
			}},
			"(bool,(bytes,uint256))[]",
		},
		{
			"underscored components",
			Param{Type: "tuple", Components: []Param{{Name: "_", Type: "address"}, {Name: "_", Type: "uint8"}}},
			"(address,uint8)",
		},
		{"unparseable", Param{Type: "widget"}, "widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.param.CanonicalType(); got != tt.want {
				t.Errorf("CanonicalType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseTupleSelector(t *testing.T) {
	data := []byte(`[{"type":"function","name":"open","stateMutability":"nonpayable","inputs":[
		{"name":"p","type":"tuple","internalType":"struct Lib.Position","components":[
			{"name":"owner","type":"address"},
			{"name":"","type":"uint256[]"}
		]}
	],"outputs":[]}]`)

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	fn := parsed.Functions[0]
	if got := fn.Signature(); got != "open((address,uint256[]))" {
		t.Errorf("Signature() = %s", got)
	}
	if got, want := fn.Selector(), SelectorOf("open((address,uint256[]))"); got != want {
		t.Errorf("Selector() = %s, want %s", got, want)
	}
}

func TestIsReference(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"address", false},
		{"uint256", false},
		{"bytes32", false},
		{"bytes", true},
		{"string", true},
		{"tuple", true},
		{"uint256[]", true},
		{"address[3]", true},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if got := (Param{Type: tt.typ}).IsReference(); got != tt.want {
				t.Errorf("IsReference(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}
