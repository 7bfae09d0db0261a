package router

import (
	"strings"

	"github.com/cannon-dev/cannon/pkg/abi"
)

// function builds a nonpayable function from a canonical signature.
func function(sig string) abi.Function {
	open := strings.IndexByte(sig, '(')
	args := strings.TrimSuffix(sig[open+1:], ")")

	var inputs []abi.Param
	if args != "" {
		for _, t := range strings.Split(args, ",") {
			inputs = append(inputs, abi.Param{Type: t})
		}
	}
	return abi.Function{Name: sig[:open], Inputs: inputs, StateMutability: abi.NonPayable}
}

// artifact builds an artifact exposing sigs with bytecode unique to name.
func artifact(name string, sigs ...string) *abi.Artifact {
	parsed := &abi.ABI{}
	for _, sig := range sigs {
		parsed.Functions = append(parsed.Functions, function(sig))
	}
	return &abi.Artifact{ABI: parsed, Bytecode: []byte(name)}
}

func tokenArtifacts() Artifacts {
	return Artifacts{
		"src/modules/TokenModule.sol:TokenModule": artifact("TokenModule",
			"transfer(address,uint256)",
			"balanceOf(address)",
			"approve(address,uint256)",
		),
		"src/modules/OwnerModule.sol:OwnerModule": artifact("OwnerModule",
			"owner()",
			"transferOwnership(address)",
		),
	}
}

func selectorRange(from, to uint32) []abi.Selector {
	var sels []abi.Selector
	for v := from; v <= to; v++ {
		sels = append(sels, abi.SelectorFromUint32(v))
	}
	return sels
}
