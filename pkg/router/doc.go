// Package router compiles a set of contract modules into a Solidity router.
//
// A router is a single contract whose fallback forwards every call to the
// module that implements the called function. Instead of comparing the
// incoming selector against every known selector in turn, the generated
// code walks a balanced decision tree. With a leaf width of 2:
//
//	if lt(sig, 0x70a08231) {
//	    switch sig
//	        case 0x095ea7b3 { result := TOKEN_MODULE } // TokenModule.approve()
//	        case 0x18160ddd { result := TOKEN_MODULE } // TokenModule.totalSupply()
//	    leave
//	}
//	switch sig
//	    case 0x70a08231 { result := TOKEN_MODULE } // TokenModule.balanceOf()
//	    case 0xa9059cbb { result := TOKEN_MODULE } // TokenModule.transfer()
//	leave
//
// # Pipeline
//
// Generation runs in four steps:
//
//   - Collect resolves module artifacts, validates them and builds the
//     SelectorSet and the merged interface.
//   - BuildTree sorts the selectors and splits them into leaves of at most
//     MaxLeafWidth selectors.
//   - RenderTree walks the tree and asks the variant for the text of each
//     case entry.
//   - The Variant substitutes the tree, module declarations and interface
//     into its template skeleton.
//
// # Variants
//
// Three variants are registered by default:
//
//	deterministic  modules at CREATE2 addresses known at generation time
//	immutable      module addresses passed to the router constructor
//	dynamic        module addresses looked up from a resolver contract per call
//
// Generator ties the steps together. The output of a Generator is a pure
// function of its inputs: regenerating from unchanged artifacts produces a
// byte-identical Document.
package router
