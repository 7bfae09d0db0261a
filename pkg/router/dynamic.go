package router

import "fmt"

var dynamicSkeleton = mustSkeleton("dynamic.sol")

// Dynamic resolves module addresses on every call through a resolver
// contract. Cases yield keccak256 of the module constant name.
type Dynamic struct{}

func (Dynamic) Name() string { return "dynamic" }

func (Dynamic) NeedsDeployment() bool { return false }

func (Dynamic) Entry(b Binding) string {
	return caseEntry(b, b.Module.Identifier.Hex())
}

func (Dynamic) Sections(_ string, modules []*Module) (map[string]string, error) {
	return map[string]string{
		PlaceholderModules: "",
		PlaceholderResolver: renderModules(modules, "\n", func(m *Module) string {
			return fmt.Sprintf("        if (implementation == %s) return %q;", m.Identifier.Hex(), m.ConstantName())
		}),
	}, nil
}

func (Dynamic) Skeleton() string { return dynamicSkeleton }
