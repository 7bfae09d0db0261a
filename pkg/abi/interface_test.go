package abi

import (
	"strings"
	"testing"
)

func TestInterfaceSolidity(t *testing.T) {
	iface := NewInterface()
	iface.AddFunction(Function{
		Name:            "transfer",
		Inputs:          []Param{{Name: "to", Type: "address"}, {Name: "amount", Type: "uint256"}},
		Outputs:         []Param{{Type: "bool"}},
		StateMutability: NonPayable,
	})
	iface.AddFunction(Function{
		Name:            "name",
		Outputs:         []Param{{Type: "string"}},
		StateMutability: View,
	})
	iface.AddFunction(Function{
		Name:            "transfer",
		Inputs:          []Param{{Name: "data", Type: "bytes"}},
		StateMutability: Payable,
	})
	iface.Receive = &Receive{}

	got := iface.Solidity("IRouter")
	want := strings.Join([]string{
		"interface IRouter {",
		"    receive() external payable;",
		"",
		"    function name() external view returns (string memory);",
		"    function transfer(address to, uint256 amount) external returns (bool);",
		"    function transfer(bytes memory data) external payable;",
		"}",
	}, "\n")

	if got != want {
		t.Errorf("Solidity() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if iface.Len() != 3 {
		t.Errorf("Len() = %d, want 3", iface.Len())
	}
}

func TestInterfaceSolidityEmpty(t *testing.T) {
	if got := NewInterface().Solidity("IEmpty"); got != "interface IEmpty {}" {
		t.Errorf("Solidity() = %q", got)
	}
}

func TestInterfaceStructs(t *testing.T) {
	position := Param{
		Name:         "pos",
		Type:         "tuple",
		InternalType: "struct Market.Position",
		Components: []Param{
			{Name: "owner", Type: "address"},
			{Name: "size", Type: "int256"},
		},
	}
	batch := Param{
		Name:         "items",
		Type:         "tuple[]",
		InternalType: "struct Item[]",
		Components:   []Param{{Name: "id", Type: "uint256"}},
	}

	iface := NewInterface()
	iface.AddFunction(Function{Name: "open", Inputs: []Param{position}, StateMutability: NonPayable})
	iface.AddFunction(Function{Name: "batch", Inputs: []Param{batch}, StateMutability: NonPayable})
	iface.Fallback = &Fallback{StateMutability: NonPayable}

	got := iface.Solidity("IMarket")

	for _, want := range []string{
		"    struct Item {\n        uint256 id;\n    }",
		"    struct Position {\n        address owner;\n        int256 size;\n    }",
		"    fallback() external;",
		"    function batch(Item[] memory items) external;",
		"    function open(Position memory pos) external;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Solidity() missing %q\n%s", want, got)
		}
	}

	if strings.Index(got, "struct Item") > strings.Index(got, "struct Position") {
		t.Error("structs are not sorted by name")
	}
	if strings.Index(got, "fallback()") > strings.Index(got, "function batch") {
		t.Error("fallback must precede functions")
	}
}

func TestInterfaceAnonymousTuple(t *testing.T) {
	tuple := Param{Type: "tuple", Components: []Param{{Type: "uint256"}, {Type: "bool"}}}

	iface := NewInterface()
	iface.AddFunction(Function{Name: "f", Inputs: []Param{tuple}, StateMutability: NonPayable})

	first := iface.Solidity("I")
	second := iface.Solidity("I")
	if first != second {
		t.Fatal("rendering is not deterministic")
	}
	if !strings.Contains(first, "struct Struct") {
		t.Errorf("expected synthesized struct name\n%s", first)
	}
	if !strings.Contains(first, "uint256 field0;") || !strings.Contains(first, "bool field1;") {
		t.Errorf("expected synthesized field names\n%s", first)
	}
}

func TestInterfaceNames(t *testing.T) {
	iface := NewInterface()
	for _, name := range []string{"zeta", "alpha", "mid", "alpha"} {
		iface.AddFunction(Function{Name: name})
	}

	names := iface.Names()
	want := []string{"alpha", "mid", "zeta"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", names, want)
	}
	if len(iface.Functions("alpha")) != 2 {
		t.Errorf("Functions(alpha) = %d overloads, want 2", len(iface.Functions("alpha")))
	}
}
