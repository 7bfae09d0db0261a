package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is the compiled output of one contract.
type Artifact struct {
	// ABI is nil when the artifact carries no ABI.
	ABI *ABI

	// Bytecode is the creation bytecode. It is nil when the artifact has
	// no deployable code (interfaces, abstract contracts).
	Bytecode []byte
}

// rawArtifact accepts both the forge layout ({"bytecode": {"object": "0x.."}})
// and the hardhat layout ({"bytecode": "0x.."}).
type rawArtifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode json.RawMessage `json:"bytecode"`
}

type forgeBytecode struct {
	Object string `json:"object"`
}

// DecodeArtifact decodes a compiler artifact JSON document.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}

	art := &Artifact{}

	if len(raw.ABI) > 0 && !bytes.Equal(raw.ABI, []byte("null")) {
		parsed, err := Parse(raw.ABI)
		if err != nil {
			return nil, err
		}
		art.ABI = parsed
	}

	code, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	art.Bytecode = code

	return art, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var object string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &object); err != nil {
			return nil, fmt.Errorf("decode bytecode: %w", err)
		}
	} else {
		var fb forgeBytecode
		if err := json.Unmarshal(raw, &fb); err != nil {
			return nil, fmt.Errorf("decode bytecode: %w", err)
		}
		object = fb.Object
	}

	if object == "" || object == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	if strings.Contains(object, "__$") {
		return nil, fmt.Errorf("decode bytecode: unlinked library placeholder in bytecode")
	}

	code, err := hexutil.Decode(object)
	if err != nil {
		return nil, fmt.Errorf("decode bytecode: %w", err)
	}
	return code, nil
}
