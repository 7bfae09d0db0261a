package router

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cannon-dev/cannon/pkg/casing"
)

// ErrInvalidRouterName is returned for router names that are not valid
// Solidity identifiers after normalisation.
var ErrInvalidRouterName = errors.New("invalid router name")

// Document is a generated router source unit.
type Document struct {
	// Name is the normalised router contract name.
	Name string

	// Variant is the name of the variant that produced the document.
	Variant string

	// Source is the Solidity source text.
	Source string

	// Modules are the routed modules sorted by name.
	Modules []*Module

	// Selectors is the number of routed selectors.
	Selectors int

	// Depth is the depth of the dispatch tree.
	Depth int

	// Checksum is the hex SHA-256 of Source.
	Checksum string
}

// FileName returns the conventional file name of the document.
func (d *Document) FileName() string {
	return d.Name + ".g.sol"
}

// Request describes one router to generate.
type Request struct {
	// Name is the router name. It is normalised with NormalizeName.
	Name string

	// Modules are the module references to route to.
	Modules []string

	// Variant overrides the generator variant when set.
	Variant string
}

// Generator produces router documents from compiled artifacts.
// A Generator holds no mutable state and is safe for concurrent use.
type Generator struct {
	source     ArtifactSource
	variant    string
	deployment Deployment
	width      int
	render     RenderOptions
}

// Option configures a Generator.
type Option func(*Generator)

// WithVariant sets the default variant. The default is "deterministic".
func WithVariant(name string) Option {
	return func(g *Generator) {
		g.variant = name
	}
}

// WithDeployment sets the CREATE2 parameters used by variants that
// precompute module addresses.
func WithDeployment(d Deployment) Option {
	return func(g *Generator) {
		g.deployment = d
	}
}

// WithMaxLeafWidth sets the maximum number of selectors per switch block.
func WithMaxLeafWidth(width int) Option {
	return func(g *Generator) {
		g.width = width
	}
}

// WithRenderOptions sets the tree layout.
func WithRenderOptions(opts RenderOptions) Option {
	return func(g *Generator) {
		g.render = opts
	}
}

// NewGenerator creates a generator reading artifacts from src.
func NewGenerator(src ArtifactSource, opts ...Option) *Generator {
	g := &Generator{
		source:     src,
		variant:    Deterministic{}.Name(),
		deployment: DefaultDeployment(),
		width:      DefaultMaxLeafWidth,
		render:     DefaultRenderOptions(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Variant returns the name of the default variant.
func (g *Generator) Variant() string {
	return g.variant
}

// Generate produces the router described by req. Any failure aborts the
// whole router; no partial document is returned.
func (g *Generator) Generate(req Request) (*Document, error) {
	name, err := NormalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	if len(req.Modules) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoModules, name)
	}

	variantName := g.variant
	if req.Variant != "" {
		variantName = req.Variant
	}
	variant, err := Lookup(variantName)
	if err != nil {
		return nil, err
	}

	var dep *Deployment
	if variant.NeedsDeployment() {
		d := g.deployment
		dep = &d
	}

	c, err := Collect(g.source, req.Modules, dep)
	if err != nil {
		return nil, err
	}

	tree := BuildTree(c.Selectors.Selectors(), g.width)

	text, err := RenderTree(tree, c.Selectors, variant.Entry, g.render)
	if err != nil {
		return nil, err
	}

	source, err := Assemble(variant, name, text, c.Modules, c.Interface)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(source))
	return &Document{
		Name:      name,
		Variant:   variant.Name(),
		Source:    source,
		Modules:   c.Modules,
		Selectors: c.Selectors.Len(),
		Depth:     tree.Depth(),
		Checksum:  hex.EncodeToString(sum[:]),
	}, nil
}

// NormalizeName converts a router name to PascalCase ("core router" gives
// "CoreRouter") and checks that it is a valid identifier.
func NormalizeName(name string) (string, error) {
	normalized := casing.ToPascalCase(name)
	if !casing.IsIdentifier(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRouterName, name)
	}
	return normalized, nil
}
