package router

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/cannon-dev/cannon/pkg/abi"
)

//go:embed templates/*.sol
var templateFS embed.FS

// Template placeholders. Each is replaced everywhere it appears in a
// skeleton in a single pass; inserted text is never rescanned.
const (
	PlaceholderSelectors       = "{selectors}"
	PlaceholderModules         = "{modules}"
	PlaceholderInterface       = "{interface}"
	PlaceholderRouterName      = "{router_name}"
	PlaceholderResolver        = "{resolver}"
	PlaceholderConstructorArgs = "{constructor_args}"
	PlaceholderImmutables      = "{immutables}"
	PlaceholderStruct          = "{struct}"
)

var placeholders = []string{
	PlaceholderSelectors,
	PlaceholderModules,
	PlaceholderInterface,
	PlaceholderRouterName,
	PlaceholderResolver,
	PlaceholderConstructorArgs,
	PlaceholderImmutables,
	PlaceholderStruct,
}

// Variant is one module resolution strategy.
//
// Implementations are registered via Register and looked up by name. A
// variant only decides the text of each switch case, the module sections
// and the skeleton; the tree shape is shared by all variants.
type Variant interface {
	// Name returns the variant identifier used on the command line.
	Name() string

	// NeedsDeployment reports whether module addresses must be
	// precomputed from a Deployment.
	NeedsDeployment() bool

	// Entry renders the switch case of one binding.
	Entry(b Binding) string

	// Sections returns the values of the variant specific placeholders
	// for modules sorted by name.
	Sections(routerName string, modules []*Module) (map[string]string, error)

	// Skeleton returns the document skeleton holding the placeholders.
	Skeleton() string
}

var registry = make(map[string]Variant)

// Register adds a variant to the registry.
//
// Panics if a variant with the same name is already registered.
func Register(v Variant) {
	name := v.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("router: variant %q already registered", name))
	}
	registry[name] = v
}

// Get returns the variant registered under name, or nil.
func Get(name string) Variant {
	return registry[name]
}

// Lookup returns the variant registered under name. The error wraps
// ErrUnknownVariant.
func Lookup(name string) (Variant, error) {
	v, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownVariant, name, strings.Join(List(), ", "))
	}
	return v, nil
}

// List returns the registered variant names in ascending order.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Deterministic{})
	Register(Immutable{})
	Register(Dynamic{})
}

// Assemble substitutes the rendered tree, the merged interface, the router
// name and the variant sections into the variant skeleton.
func Assemble(v Variant, routerName, tree string, modules []*Module, iface *abi.Interface) (string, error) {
	sections, err := v.Sections(routerName, modules)
	if err != nil {
		return "", err
	}

	values := map[string]string{
		PlaceholderSelectors:  tree,
		PlaceholderInterface:  iface.Solidity("I" + routerName),
		PlaceholderRouterName: routerName,
	}
	for key, value := range sections {
		values[key] = value
	}

	pairs := make([]string, 0, 2*len(placeholders))
	for _, p := range placeholders {
		pairs = append(pairs, p, values[p])
	}
	return strings.NewReplacer(pairs...).Replace(v.Skeleton()), nil
}

// renderModules renders one line per module, dropping repeated lines, and
// joins them with sep.
func renderModules(modules []*Module, sep string, line func(*Module) string) string {
	seen := make(map[string]bool, len(modules))
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		l := line(m)
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return strings.Join(out, sep)
}

func mustSkeleton(name string) string {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("router: missing template %s: %v", name, err))
	}
	return string(data)
}
