package router

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cannon-dev/cannon/pkg/abi"
)

func TestVariantRegistry(t *testing.T) {
	if diff := cmp.Diff([]string{"deterministic", "dynamic", "immutable"}, List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	for _, name := range List() {
		if v := Get(name); v == nil || v.Name() != name {
			t.Errorf("Get(%q) = %v", name, v)
		}
	}

	_, err := Lookup("proxy")
	if !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("Lookup(proxy) error = %v, want ErrUnknownVariant", err)
	}
	if Get("proxy") != nil {
		t.Error("Get(proxy) should be nil")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(Dynamic{})
}

func TestSkeletonsHavePlaceholders(t *testing.T) {
	required := map[string][]string{
		"deterministic": {PlaceholderSelectors, PlaceholderModules, PlaceholderInterface, PlaceholderRouterName},
		"immutable": {
			PlaceholderSelectors, PlaceholderModules, PlaceholderInterface, PlaceholderRouterName,
			PlaceholderResolver, PlaceholderConstructorArgs, PlaceholderImmutables, PlaceholderStruct,
		},
		"dynamic": {PlaceholderSelectors, PlaceholderModules, PlaceholderInterface, PlaceholderRouterName, PlaceholderResolver},
	}

	for name, placeholders := range required {
		t.Run(name, func(t *testing.T) {
			skeleton := Get(name).Skeleton()
			for _, p := range placeholders {
				if !strings.Contains(skeleton, p) {
					t.Errorf("skeleton missing %s", p)
				}
			}
		})
	}
}

// literalVariant inserts text that looks like a placeholder.
type literalVariant struct{}

func (literalVariant) Name() string { return "literal" }

func (literalVariant) NeedsDeployment() bool { return false }

func (literalVariant) Entry(b Binding) string { return b.Selector.Hex() }

func (literalVariant) Skeleton() string { return "{router_name}|{modules}|{selectors}|{resolver}" }

func (literalVariant) Sections(string, []*Module) (map[string]string, error) {
	return map[string]string{PlaceholderModules: "{router_name}"}, nil
}

func TestAssembleSinglePass(t *testing.T) {
	got, err := Assemble(literalVariant{}, "Router", "{modules}", nil, abi.NewInterface())
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	want := "Router|{router_name}|{modules}|"
	if got != want {
		t.Errorf("Assemble() = %q, want %q", got, want)
	}
}

func TestRenderModulesUnique(t *testing.T) {
	modules := []*Module{NewModule("A"), NewModule("B"), NewModule("src/A.sol:A")}
	got := renderModules(modules, ", ", func(m *Module) string { return m.Name })
	if got != "A, B" {
		t.Errorf("renderModules() = %q", got)
	}
}

func TestDeterministicRequiresAddresses(t *testing.T) {
	if _, err := (Deterministic{}).Sections("R", []*Module{NewModule("A")}); err == nil {
		t.Error("expected error for module without address")
	}
}
