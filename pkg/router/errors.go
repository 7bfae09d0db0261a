package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cannon-dev/cannon/pkg/abi"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrModuleNotFound          = errors.New("module not found")
	ErrMissingABI              = errors.New("missing abi")
	ErrMissingBytecode         = errors.New("missing bytecode")
	ErrDuplicateSelector       = errors.New("duplicate selector")
	ErrMultipleSpecialHandlers = errors.New("multiple special handlers")
	ErrUnknownVariant          = errors.New("unknown router variant")
	ErrNoModules               = errors.New("router has no modules")
)

// ModuleNotFoundError lists every requested module that has no artifact.
type ModuleNotFoundError struct {
	Names []string
}

func (e *ModuleNotFoundError) Error() string {
	return "modules not found: " + strings.Join(e.Names, ", ")
}

func (e *ModuleNotFoundError) Is(target error) bool { return target == ErrModuleNotFound }

// MissingABIError reports a module artifact without an ABI.
type MissingABIError struct {
	Module string
}

func (e *MissingABIError) Error() string {
	return fmt.Sprintf("no abi found for contract %q", e.Module)
}

func (e *MissingABIError) Is(target error) bool { return target == ErrMissingABI }

// MissingBytecodeError reports a module without creation bytecode when its
// address has to be precomputed.
type MissingBytecodeError struct {
	Module string
}

func (e *MissingBytecodeError) Error() string {
	return fmt.Sprintf("no bytecode found for contract %q", e.Module)
}

func (e *MissingBytecodeError) Is(target error) bool { return target == ErrMissingBytecode }

// DuplicateSelectorError reports two functions sharing one selector.
type DuplicateSelectorError struct {
	Selector    abi.Selector
	Existing    Binding
	Conflicting Binding
}

func (e *DuplicateSelectorError) Error() string {
	return fmt.Sprintf("duplicate selector %s: %s and %s", e.Selector, e.Existing, e.Conflicting)
}

func (e *DuplicateSelectorError) Is(target error) bool { return target == ErrDuplicateSelector }

// Special handler kinds.
const (
	HandlerFallback = "fallback"
	HandlerReceive  = "receive"
)

// MultipleSpecialHandlersError reports more than one module declaring a
// fallback or receive handler.
type MultipleSpecialHandlersError struct {
	// Kind is HandlerFallback or HandlerReceive.
	Kind string

	// Modules are the modules declaring the handler, in collection order.
	Modules []string
}

func (e *MultipleSpecialHandlersError) Error() string {
	return fmt.Sprintf("multiple %s functions found in %s", e.Kind, strings.Join(e.Modules, ", "))
}

func (e *MultipleSpecialHandlersError) Is(target error) bool {
	return target == ErrMultipleSpecialHandlers
}
