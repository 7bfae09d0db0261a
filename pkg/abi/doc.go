// Package abi models the subset of the Solidity JSON ABI that router
// generation needs.
//
// It decodes compiler artifacts (forge `out/<File>.sol/<Name>.json` and the
// hardhat layout), computes canonical function signatures and 4-byte
// selectors, and renders a merged interface back to Solidity source.
//
// # Selectors
//
//	sel := abi.SelectorOf("transfer(address,uint256)")
//	sel.Hex() // "0xa9059cbb"
//
// # Artifacts
//
//	art, err := abi.DecodeArtifact(data)
//	for _, fn := range art.ABI.Functions {
//	    fmt.Println(fn.Signature(), fn.Selector())
//	}
//
// # Merged Interfaces
//
//	iface := abi.NewInterface()
//	iface.AddFunction(fn)
//	src := iface.Solidity("ICoreRouter")
package abi
