package router

import "fmt"

var immutableSkeleton = mustSkeleton("immutable.sol")

// Immutable routes to module addresses passed to the router constructor.
//
// Inline assembly cannot read immutables, so each case yields the module
// identifier and _resolveImplementation maps it to the immutable slot.
type Immutable struct{}

func (Immutable) Name() string { return "immutable" }

func (Immutable) NeedsDeployment() bool { return false }

func (Immutable) Entry(b Binding) string {
	return caseEntry(b, b.Module.Identifier.Hex())
}

func (Immutable) Sections(_ string, modules []*Module) (map[string]string, error) {
	return map[string]string{
		PlaceholderModules: renderModules(modules, "\n", func(m *Module) string {
			return fmt.Sprintf("    address immutable internal %s;", m.ConstantName())
		}),
		PlaceholderConstructorArgs: renderModules(modules, ", ", func(m *Module) string {
			return "address " + m.FieldName()
		}),
		PlaceholderImmutables: renderModules(modules, "\n", func(m *Module) string {
			return fmt.Sprintf("        %s = $.%s;", m.ConstantName(), m.FieldName())
		}),
		PlaceholderStruct: renderModules(modules, "\n", func(m *Module) string {
			return fmt.Sprintf("        address %s;", m.FieldName())
		}),
		PlaceholderResolver: renderModules(modules, "\n", func(m *Module) string {
			return fmt.Sprintf("        if (implementation == %s) return %s;", m.Identifier.Hex(), m.ConstantName())
		}),
	}, nil
}

func (Immutable) Skeleton() string { return immutableSkeleton }
