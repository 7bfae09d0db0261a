package abi

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Interface is the merged callable surface of several contracts.
// Functions are grouped by name; overloads keep their insertion order.
type Interface struct {
	functions map[string][]Function
	Fallback  *Fallback
	Receive   *Receive
}

// NewInterface creates an empty interface.
func NewInterface() *Interface {
	return &Interface{functions: make(map[string][]Function)}
}

// AddFunction appends a function under its name.
func (i *Interface) AddFunction(f Function) {
	i.functions[f.Name] = append(i.functions[f.Name], f)
}

// Functions returns the overloads registered under name.
func (i *Interface) Functions(name string) []Function {
	return i.functions[name]
}

// Names returns the function names in ascending order.
func (i *Interface) Names() []string {
	names := make([]string, 0, len(i.functions))
	for name := range i.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of functions, counting every overload.
func (i *Interface) Len() int {
	n := 0
	for _, fns := range i.functions {
		n += len(fns)
	}
	return n
}

// Solidity renders the interface as a Solidity interface declaration.
func (i *Interface) Solidity(name string) string {
	structs := newStructSet()
	names := i.Names()
	for _, fnName := range names {
		for _, fn := range i.functions[fnName] {
			structs.collect(fn.Inputs)
			structs.collect(fn.Outputs)
		}
	}

	var sections []string

	if s := structs.render(); s != "" {
		sections = append(sections, s)
	}

	var special []string
	if i.Fallback != nil {
		if i.Fallback.StateMutability == Payable {
			special = append(special, "    fallback() external payable;")
		} else {
			special = append(special, "    fallback() external;")
		}
	}
	if i.Receive != nil {
		special = append(special, "    receive() external payable;")
	}
	if len(special) > 0 {
		sections = append(sections, strings.Join(special, "\n"))
	}

	var fns []string
	for _, fnName := range names {
		for _, fn := range i.functions[fnName] {
			fns = append(fns, "    "+renderFunction(fn, structs))
		}
	}
	if len(fns) > 0 {
		sections = append(sections, strings.Join(fns, "\n"))
	}

	if len(sections) == 0 {
		return "interface " + name + " {}"
	}
	return "interface " + name + " {\n" + strings.Join(sections, "\n\n") + "\n}"
}

func renderFunction(fn Function, structs *structSet) string {
	var b strings.Builder
	b.WriteString("function ")
	b.WriteString(fn.Name)
	b.WriteString("(")
	b.WriteString(renderParams(fn.Inputs, structs))
	b.WriteString(") external")

	switch fn.StateMutability {
	case View, Pure, Payable:
		b.WriteString(" ")
		b.WriteString(fn.StateMutability)
	}

	if len(fn.Outputs) > 0 {
		b.WriteString(" returns (")
		b.WriteString(renderParams(fn.Outputs, structs))
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String()
}

func renderParams(params []Param, structs *structSet) string {
	parts := make([]string, len(params))
	for i, p := range params {
		s := structs.typeName(p)
		if p.IsReference() {
			s += " memory"
		}
		if p.Name != "" {
			s += " " + p.Name
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

// structSet collects the struct declarations needed by tuple parameters.
type structSet struct {
	byName map[string][]Param
}

func newStructSet() *structSet {
	return &structSet{byName: make(map[string][]Param)}
}

// collect registers every tuple found in params, including nested ones.
func (s *structSet) collect(params []Param) {
	for _, p := range params {
		if !p.IsTuple() {
			continue
		}
		name := structName(p)
		if _, ok := s.byName[name]; !ok {
			s.byName[name] = p.Components
		}
		s.collect(p.Components)
	}
}

// typeName returns the Solidity type of a parameter as written in source.
func (s *structSet) typeName(p Param) string {
	if !p.IsTuple() {
		return p.Type
	}
	_, suffix := splitArraySuffix(p.Type)
	return structName(p) + suffix
}

func (s *structSet) render() string {
	if len(s.byName) == 0 {
		return ""
	}
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	blocks := make([]string, 0, len(names))
	for _, name := range names {
		var b strings.Builder
		b.WriteString("    struct ")
		b.WriteString(name)
		b.WriteString(" {\n")
		for i, field := range s.byName[name] {
			fieldName := field.Name
			if fieldName == "" {
				fieldName = "field" + strconv.Itoa(i)
			}
			b.WriteString("        ")
			b.WriteString(s.typeName(field))
			b.WriteString(" ")
			b.WriteString(fieldName)
			b.WriteString(";\n")
		}
		b.WriteString("    }")
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// structName derives the struct name of a tuple parameter from its
// internalType ("struct Lib.Position[]" gives "Position"). Tuples without a
// usable internalType get a name derived from their canonical shape.
func structName(p Param) string {
	internal := strings.TrimPrefix(p.InternalType, "struct ")
	if internal != p.InternalType && internal != "" {
		base, _ := splitArraySuffix(internal)
		if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
			base = base[idx+1:]
		}
		if base != "" {
			return base
		}
	}
	shape := Param{Type: "tuple", Components: p.Components}.CanonicalType()
	return "Struct" + hex.EncodeToString(crypto.Keccak256([]byte(shape))[:4])
}
