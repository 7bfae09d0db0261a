// Package batch loads router definition files.
//
// A definition file declares one router per table:
//
//	[router.CoreRouter]
//	modules = ["src/modules/TokenModule.sol:TokenModule", "OwnerModule"]
//
//	[router.AccountRouter]
//	modules = ["AccountModule"]
//	variant = "immutable"
//
// Every router is an independent generation request.
package batch

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/pkg/router"
)

// Definition is one router declared in a definition file.
type Definition struct {
	// Name is the normalised router name.
	Name string

	// Modules are the module references in declaration order.
	Modules []string

	// Variant overrides the configured variant when set.
	Variant string
}

// Request converts the definition into a generation request.
func (d Definition) Request() router.Request {
	return router.Request{Name: d.Name, Modules: d.Modules, Variant: d.Variant}
}

type file struct {
	Router map[string]entry `toml:"router"`
}

type entry struct {
	Modules []string `toml:"modules"`
	Variant string   `toml:"variant,omitempty"`
}

// Load reads and validates the definition file at path.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E130").
				Wrap(err).
				WithSuggestion("Run 'cannon init' to create an example routers.toml")
		}
		return nil, errors.New("E130").Wrap(err)
	}
	return Parse(path, data)
}

// Parse decodes and validates definition file content. source names the
// content in error locations.
func Parse(source string, data []byte) ([]Definition, error) {
	var f file
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, decodeError(source, err)
	}

	names := make([]string, 0, len(f.Router))
	for name := range f.Router {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		defs     []Definition
		problems []ValidationError
		seen     = make(map[string]string)
	)
	for _, key := range names {
		e := f.Router[key]

		name, err := router.NormalizeName(key)
		if err != nil {
			problems = append(problems, ValidationError{Router: key, Message: "name is not a valid identifier"})
			continue
		}
		if prev, ok := seen[name]; ok {
			problems = append(problems, ValidationError{
				Router:  key,
				Message: fmt.Sprintf("normalises to %s, already declared by %q", name, prev),
			})
			continue
		}
		seen[name] = key

		if len(e.Modules) == 0 {
			problems = append(problems, ValidationError{Router: key, Message: "modules must list at least one module"})
			continue
		}
		if e.Variant != "" && router.Get(e.Variant) == nil {
			problems = append(problems, ValidationError{
				Router:  key,
				Message: fmt.Sprintf("unknown variant %q (available: %s)", e.Variant, strings.Join(router.List(), ", ")),
			})
			continue
		}

		defs = append(defs, Definition{Name: name, Modules: e.Modules, Variant: e.Variant})
	}

	if len(problems) > 0 {
		return nil, errors.New("E131").
			Wrap(&ValidationErrors{Source: source, Errors: problems}).
			WithExample("[router.CoreRouter]\nmodules = [\"TokenModule\", \"OwnerModule\"]")
	}
	if len(defs) == 0 {
		return nil, errors.New("E131").
			WithDetail(source + " declares no routers").
			WithExample("[router.CoreRouter]\nmodules = [\"TokenModule\", \"OwnerModule\"]")
	}

	return defs, nil
}

func decodeError(source string, err error) error {
	var decErr *toml.DecodeError
	if stderrors.As(err, &decErr) {
		row, col := decErr.Position()
		return errors.New("E130").
			Wrap(err).
			WithLocation(source, row, col)
	}

	var strict *toml.StrictMissingError
	if stderrors.As(err, &strict) {
		return errors.New("E131").
			Wrap(err).
			WithSuggestion("Router tables accept only the keys modules and variant")
	}

	return errors.New("E130").Wrap(err)
}

// Marshal encodes definitions in the definition file format.
func Marshal(defs []Definition) ([]byte, error) {
	f := file{Router: make(map[string]entry, len(defs))}
	for _, d := range defs {
		f.Router[d.Name] = entry{Modules: d.Modules, Variant: d.Variant}
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf).SetArraysMultiline(true).SetIndentTables(false)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode router definitions: %w", err)
	}
	return buf.Bytes(), nil
}

// ValidationError describes one invalid router table.
type ValidationError struct {
	Router  string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("router %q: %s", e.Router, e.Message)
}

// ValidationErrors collects every invalid router table of one file.
type ValidationErrors struct {
	Source string
	Errors []ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", e.Source, e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d invalid routers:", e.Source, len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, err.Error())
	}
	return sb.String()
}
