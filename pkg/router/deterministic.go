package router

import "fmt"

var deterministicSkeleton = mustSkeleton("deterministic.sol")

// Deterministic routes to modules deployed at CREATE2 addresses that are
// known when the router is generated. Addresses are emitted as constants.
type Deterministic struct{}

func (Deterministic) Name() string { return "deterministic" }

func (Deterministic) NeedsDeployment() bool { return true }

func (Deterministic) Entry(b Binding) string {
	return caseEntry(b, b.Module.ConstantName())
}

func (Deterministic) Sections(_ string, modules []*Module) (map[string]string, error) {
	for _, m := range modules {
		if m.Address == nil {
			return nil, fmt.Errorf("module %s has no precomputed address", m.Name)
		}
	}
	return map[string]string{
		PlaceholderModules: renderModules(modules, "\n", func(m *Module) string {
			return fmt.Sprintf("    address constant %s = %s;", m.ConstantName(), m.Address.Hex())
		}),
	}, nil
}

func (Deterministic) Skeleton() string { return deterministicSkeleton }
