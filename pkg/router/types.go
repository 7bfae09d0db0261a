package router

import (
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cannon-dev/cannon/pkg/abi"
	"github.com/cannon-dev/cannon/pkg/casing"
)

// DefaultDeployer is the deterministic deployment proxy used when no
// deployer is configured.
var DefaultDeployer = common.HexToAddress("0x4e59b44847b379578588920ca78fbf26c0b4956c")

// Deployment holds the CREATE2 parameters used to precompute module addresses.
type Deployment struct {
	Deployer common.Address
	Salt     common.Hash
}

// DefaultDeployment returns the default deployer with a zero salt.
func DefaultDeployment() Deployment {
	return Deployment{Deployer: DefaultDeployer}
}

// AddressOf returns the CREATE2 address of a contract with the given
// creation bytecode.
func (d Deployment) AddressOf(initCode []byte) common.Address {
	return crypto.CreateAddress2(d.Deployer, d.Salt, crypto.Keccak256(initCode))
}

// Module is one resolved contract taking part in a router.
type Module struct {
	// Name is the contract name. It identifies the module for sorting,
	// constant names and identifiers.
	Name string

	// Ref is the reference the module was requested with, either Name or
	// "path/File.sol:Name".
	Ref string

	// Identifier is keccak256(ConstantName()).
	Identifier common.Hash

	// Address is the precomputed deployment address. It is nil unless the
	// router was collected with a Deployment.
	Address *common.Address
}

// NewModule creates a module for the given reference.
func NewModule(ref string) *Module {
	name := ModuleName(ref)
	return &Module{
		Name:       name,
		Ref:        ref,
		Identifier: crypto.Keccak256Hash([]byte(casing.ToConstantCase(name))),
	}
}

// ConstantName returns the module name in CONSTANT_CASE.
func (m *Module) ConstantName() string {
	return casing.ToConstantCase(m.Name)
}

// FieldName returns the module name in lowerCamelCase.
func (m *Module) FieldName() string {
	return casing.ToLowerCamelCase(m.Name)
}

// ModuleName returns the contract name of a module reference:
// "src/Token.sol:TokenModule" and "TokenModule" both give "TokenModule".
func ModuleName(ref string) string {
	if idx := strings.LastIndexByte(ref, ':'); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

// ModulePath returns the source path of a module reference, or "" when the
// reference is a bare contract name.
func ModulePath(ref string) string {
	if idx := strings.LastIndexByte(ref, ':'); idx >= 0 {
		return ref[:idx]
	}
	return ""
}

// Binding maps one selector to the module function that implements it.
type Binding struct {
	Module    *Module
	Function  string
	Signature string
	Selector  abi.Selector
}

// String returns "Module.signature".
func (b Binding) String() string {
	return b.Module.Name + "." + b.Signature
}

// SelectorSet holds the bindings of one router keyed by selector.
type SelectorSet struct {
	bindings map[abi.Selector]Binding
}

// NewSelectorSet creates an empty set.
func NewSelectorSet() *SelectorSet {
	return &SelectorSet{bindings: make(map[abi.Selector]Binding)}
}

// Insert adds a binding. It fails with a *DuplicateSelectorError when the
// selector is already bound.
func (s *SelectorSet) Insert(b Binding) error {
	if existing, ok := s.bindings[b.Selector]; ok {
		return &DuplicateSelectorError{
			Selector:    b.Selector,
			Existing:    existing,
			Conflicting: b,
		}
	}
	s.bindings[b.Selector] = b
	return nil
}

// Get returns the binding for a selector.
func (s *SelectorSet) Get(sel abi.Selector) (Binding, bool) {
	b, ok := s.bindings[sel]
	return b, ok
}

// Len returns the number of bindings.
func (s *SelectorSet) Len() int {
	return len(s.bindings)
}

// Selectors returns every bound selector in ascending order.
func (s *SelectorSet) Selectors() []abi.Selector {
	sels := make([]abi.Selector, 0, len(s.bindings))
	for sel := range s.bindings {
		sels = append(sels, sel)
	}
	abi.SortSelectors(sels)
	return sels
}

// Modules returns the modules referenced by the set, de-duplicated by
// identifier and sorted by name.
func (s *SelectorSet) Modules() []*Module {
	seen := make(map[common.Hash]bool)
	var modules []*Module
	for _, b := range s.bindings {
		if seen[b.Module.Identifier] {
			continue
		}
		seen[b.Module.Identifier] = true
		modules = append(modules, b.Module)
	}
	sortModules(modules)
	return modules
}

func sortModules(modules []*Module) {
	slices.SortStableFunc(modules, func(a, b *Module) int {
		return strings.Compare(a.Name, b.Name)
	})
}
