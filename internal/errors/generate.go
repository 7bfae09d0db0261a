package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cannon-dev/cannon/pkg/router"
)

// FromGenerate converts a router generation failure into a coded error
// with a suggestion. Errors that are already coded are returned as is.
func FromGenerate(err error) *CannonError {
	if err == nil {
		return nil
	}

	var ce *CannonError
	if errors.As(err, &ce) {
		return ce
	}

	var (
		notFound    *router.ModuleNotFoundError
		missingABI  *router.MissingABIError
		missingCode *router.MissingBytecodeError
		duplicate   *router.DuplicateSelectorError
		special     *router.MultipleSpecialHandlersError
	)

	switch {
	case errors.As(err, &notFound):
		return New("E100").Wrap(err).
			WithSuggestion("Check the module names or run forge build: " + strings.Join(notFound.Names, ", ")).
			WithExample(`cannon gen router --name CoreRouter src/modules/TokenModule.sol:TokenModule`)
	case errors.As(err, &missingABI):
		return New("E101").Wrap(err).
			WithSuggestion(fmt.Sprintf("Rebuild %s so its artifact carries an ABI", missingABI.Module))
	case errors.As(err, &missingCode):
		return New("E102").Wrap(err).
			WithSuggestion(fmt.Sprintf("Route to a deployable contract instead of %s, or use --variant immutable", missingCode.Module))
	case errors.As(err, &duplicate):
		return New("E103").Wrap(err).
			WithSuggestion(fmt.Sprintf("Rename or remove one of %s and %s", duplicate.Existing, duplicate.Conflicting))
	case errors.As(err, &special):
		return New("E104").Wrap(err).
			WithSuggestion(fmt.Sprintf("Keep the %s function in one of %s", special.Kind, strings.Join(special.Modules, ", ")))
	case errors.Is(err, router.ErrInvalidRouterName):
		return New("E105").Wrap(err).
			WithExample(`cannon gen router --name "core router"   # generates CoreRouter`)
	case errors.Is(err, router.ErrNoModules):
		return New("E108").Wrap(err).
			WithExample(`cannon gen router --name CoreRouter TokenModule OwnerModule`)
	case errors.Is(err, router.ErrUnknownVariant):
		return New("E106").Wrap(err).
			WithSuggestion("Use one of: " + strings.Join(router.List(), ", "))
	}

	return New("E107").Wrap(err)
}
