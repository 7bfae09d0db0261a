package abi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// Entry types found in a JSON ABI.
const (
	TypeFunction    = "function"
	TypeFallback    = "fallback"
	TypeReceive     = "receive"
	TypeConstructor = "constructor"
	TypeEvent       = "event"
	TypeError       = "error"
)

// State mutability values.
const (
	Pure       = "pure"
	View       = "view"
	NonPayable = "nonpayable"
	Payable    = "payable"
)

// Param is a function input or output.
type Param struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	InternalType string  `json:"internalType,omitempty"`
	Components   []Param `json:"components,omitempty"`
}

// entry is one raw JSON ABI item.
type entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	StateMutability string  `json:"stateMutability"`

	// Pre-0.5 compilers describe mutability with these flags instead.
	Constant bool `json:"constant"`
	Payable  bool `json:"payable"`
}

// mutability resolves the state mutability of an entry, falling back to the
// legacy constant/payable flags.
func (e entry) mutability() string {
	if e.StateMutability != "" {
		return e.StateMutability
	}
	switch {
	case e.Payable:
		return Payable
	case e.Constant:
		return View
	default:
		return NonPayable
	}
}

// Function is an externally callable function.
type Function struct {
	Name            string
	Inputs          []Param
	Outputs         []Param
	StateMutability string
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (f Function) Signature() string {
	m, err := f.method()
	if err != nil {
		types := make([]string, len(f.Inputs))
		for i, p := range f.Inputs {
			types[i] = p.Type
		}
		return f.Name + "(" + strings.Join(types, ",") + ")"
	}
	return m.Sig
}

// Selector returns the 4-byte selector of the function.
func (f Function) Selector() Selector {
	m, err := f.method()
	if err != nil {
		return SelectorOf(f.Signature())
	}
	var s Selector
	copy(s[:], m.ID)
	return s
}

// method builds the go-ethereum method of f, which owns the canonical type
// and selector rules.
func (f Function) method() (gethabi.Method, error) {
	inputs := make(gethabi.Arguments, len(f.Inputs))
	for i, p := range f.Inputs {
		typ, err := p.abiType()
		if err != nil {
			return gethabi.Method{}, fmt.Errorf("function %s: input %d: %w", f.Name, i, err)
		}
		inputs[i] = gethabi.Argument{Name: p.Name, Type: typ}
	}
	isConst := f.StateMutability == View || f.StateMutability == Pure
	return gethabi.NewMethod(f.Name, f.Name, gethabi.Function, f.StateMutability, isConst, f.StateMutability == Payable, inputs, nil), nil
}

// Fallback describes a fallback handler.
type Fallback struct {
	StateMutability string
}

// Receive describes a receive handler. Receive handlers are always payable.
type Receive struct{}

// ABI is the decoded callable surface of one contract.
// Events, errors and constructors are ignored.
type ABI struct {
	// Functions in declaration order.
	Functions []Function

	// Fallback is nil when the contract declares no fallback.
	Fallback *Fallback

	// Receive is nil when the contract declares no receive handler.
	Receive *Receive
}

// Parse decodes a JSON ABI array.
func Parse(data []byte) (*ABI, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode abi: %w", err)
	}

	out := &ABI{}
	for _, e := range entries {
		switch e.Type {
		case TypeFunction, "":
			if e.Name == "" {
				return nil, fmt.Errorf("decode abi: function entry without name")
			}
			out.Functions = append(out.Functions, Function{
				Name:            e.Name,
				Inputs:          e.Inputs,
				Outputs:         e.Outputs,
				StateMutability: e.mutability(),
			})
			if _, err := out.Functions[len(out.Functions)-1].method(); err != nil {
				return nil, fmt.Errorf("decode abi: %w", err)
			}
		case TypeFallback:
			out.Fallback = &Fallback{StateMutability: e.mutability()}
		case TypeReceive:
			out.Receive = &Receive{}
		}
	}
	return out, nil
}

// CanonicalType returns the type as used in signatures: tuples expand to
// their component types and the uint/int aliases become uint256/int256.
// Types go-ethereum cannot parse are returned unchanged.
func (p Param) CanonicalType() string {
	typ, err := p.abiType()
	if err != nil {
		return p.Type
	}
	return typ.String()
}

func (p Param) abiType() (gethabi.Type, error) {
	return gethabi.NewType(canonicalAlias(p.Type), p.InternalType, marshaling(p.Components))
}

// marshaling converts components for gethabi.NewType. Field names do not
// reach the canonical type and NewType rejects anonymous or underscored
// ones, so positional names are used.
func marshaling(params []Param) []gethabi.ArgumentMarshaling {
	if len(params) == 0 {
		return nil
	}
	out := make([]gethabi.ArgumentMarshaling, len(params))
	for i, p := range params {
		out[i] = gethabi.ArgumentMarshaling{
			Name:         "field" + strconv.Itoa(i),
			Type:         canonicalAlias(p.Type),
			InternalType: p.InternalType,
			Components:   marshaling(p.Components),
		}
	}
	return out
}

// canonicalAlias rewrites the uint and int aliases, which go-ethereum
// refuses, to their 256 bit forms.
func canonicalAlias(t string) string {
	base, suffix := splitArraySuffix(t)
	switch base {
	case "uint":
		return "uint256" + suffix
	case "int":
		return "int256" + suffix
	}
	return t
}

// IsTuple reports whether the parameter is a tuple or an array of tuples.
func (p Param) IsTuple() bool {
	base, _ := splitArraySuffix(p.Type)
	return base == "tuple"
}

// IsReference reports whether the parameter needs a data location in
// Solidity source (arrays, bytes, string and structs).
func (p Param) IsReference() bool {
	base, suffix := splitArraySuffix(p.Type)
	if suffix != "" {
		return true
	}
	switch base {
	case "string", "bytes", "tuple":
		return true
	}
	return false
}

// splitArraySuffix splits "uint256[2][]" into "uint256" and "[2][]".
func splitArraySuffix(t string) (base, suffix string) {
	if idx := strings.IndexByte(t, '['); idx >= 0 {
		return t[:idx], t[idx:]
	}
	return t, ""
}
