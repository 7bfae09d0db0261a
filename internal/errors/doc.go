// Package errors provides coded, actionable error messages for the cannon CLI.
//
// Every user-facing failure carries:
//   - a code (e.g., "E100") with a short message
//   - a detailed explanation and a documentation URL
//   - optionally a file location, a hint and an example
//
// # Error Categories
//
//   - generate: router generation failures (missing modules, duplicate selectors)
//   - config: cannon.json problems
//   - definition: routers.toml problems
//   - compile: forge build and artifact failures
//   - output: writing or uploading generated routers
//   - cli: argument and command failures
//
// # Usage
//
//	doc, err := gen.Generate(req)
//	if err != nil {
//	    errors.PrintError(errors.FromGenerate(err))
//	}
//
// prints
//
//	ERROR E103: Duplicate selector
//
//	  duplicate selector 0xa9059cbb: ModuleA.transfer(address,uint256) and ModuleB.transfer(address,uint256)
//
//	  Two module functions share the same 4-byte selector. A router can
//	  forward each selector to one module only.
//
//	  Hint: Rename or remove one of ModuleA.transfer(address,uint256) and ModuleB.transfer(address,uint256)
//
//	  Learn more: https://cannon.dev/docs/errors/E103
package errors
