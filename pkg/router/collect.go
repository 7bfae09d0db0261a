package router

import (
	"sort"

	"github.com/cannon-dev/cannon/pkg/abi"
)

// ArtifactSource resolves module references to compiled artifacts.
type ArtifactSource interface {
	// Artifact returns the artifact for ref. ok is false when no artifact
	// matches; err is reserved for failures reading the artifact.
	Artifact(ref string) (art *abi.Artifact, ok bool, err error)
}

// Artifacts is an in-memory ArtifactSource keyed by module reference.
// A bare contract name also matches an entry stored under "path:Name".
type Artifacts map[string]*abi.Artifact

// Artifact implements ArtifactSource.
func (a Artifacts) Artifact(ref string) (*abi.Artifact, bool, error) {
	if art, ok := a[ref]; ok {
		return art, true, nil
	}
	if ModulePath(ref) != "" {
		return nil, false, nil
	}

	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if ModuleName(key) == ref {
			return a[key], true, nil
		}
	}
	return nil, false, nil
}

// Collection is the validated input of one router.
type Collection struct {
	// Selectors maps every selector to its implementing module function.
	Selectors *SelectorSet

	// Interface is the merged callable surface of all modules.
	Interface *abi.Interface

	// Modules are the collected modules sorted by name.
	Modules []*Module
}

// Collect resolves refs against src and validates the merged module set.
//
// Duplicate references collapse to one module. When dep is non-nil every
// module needs creation bytecode and gets its CREATE2 address.
func Collect(src ArtifactSource, refs []string, dep *Deployment) (*Collection, error) {
	type resolved struct {
		module   *Module
		artifact *abi.Artifact
	}

	var (
		items   []resolved
		missing []string
		seen    = make(map[string]bool)
	)
	for _, ref := range refs {
		module := NewModule(ref)
		if seen[module.Name] {
			continue
		}
		seen[module.Name] = true

		art, ok, err := src.Artifact(ref)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, ref)
			continue
		}
		items = append(items, resolved{module: module, artifact: art})
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &ModuleNotFoundError{Names: missing}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].module.Name < items[j].module.Name
	})

	c := &Collection{
		Selectors: NewSelectorSet(),
		Interface: abi.NewInterface(),
	}

	var fallbackOwner, receiveOwner string

	for _, item := range items {
		module, art := item.module, item.artifact

		if art.ABI == nil {
			return nil, &MissingABIError{Module: module.Name}
		}

		if dep != nil {
			if len(art.Bytecode) == 0 {
				return nil, &MissingBytecodeError{Module: module.Name}
			}
			addr := dep.AddressOf(art.Bytecode)
			module.Address = &addr
		}

		for _, fn := range art.ABI.Functions {
			binding := Binding{
				Module:    module,
				Function:  fn.Name,
				Signature: fn.Signature(),
				Selector:  fn.Selector(),
			}
			if err := c.Selectors.Insert(binding); err != nil {
				return nil, err
			}
			c.Interface.AddFunction(fn)
		}

		if art.ABI.Fallback != nil {
			if fallbackOwner != "" {
				return nil, &MultipleSpecialHandlersError{
					Kind:    HandlerFallback,
					Modules: []string{fallbackOwner, module.Name},
				}
			}
			fallbackOwner = module.Name
			c.Interface.Fallback = art.ABI.Fallback
		}

		if art.ABI.Receive != nil {
			if receiveOwner != "" {
				return nil, &MultipleSpecialHandlersError{
					Kind:    HandlerReceive,
					Modules: []string{receiveOwner, module.Name},
				}
			}
			receiveOwner = module.Name
			c.Interface.Receive = art.ABI.Receive
		}

		c.Modules = append(c.Modules, module)
	}

	return c, nil
}
