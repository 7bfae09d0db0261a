package abi

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Selector is the 4-byte identifier of a callable function.
// Selectors order by their big-endian numeric value.
type Selector [4]byte

// SelectorOf returns the first four bytes of the Keccak-256 hash of a
// canonical function signature.
func SelectorOf(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature))[:4])
	return s
}

// SelectorFromUint32 builds a selector from its numeric value.
func SelectorFromUint32(v uint32) Selector {
	var s Selector
	binary.BigEndian.PutUint32(s[:], v)
	return s
}

// ParseSelector parses a "0x"-prefixed or bare 8 digit hex selector.
func ParseSelector(s string) (Selector, error) {
	var sel Selector
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != 8 {
		return sel, fmt.Errorf("invalid selector %q: want 8 hex digits", s)
	}
	if _, err := hex.Decode(sel[:], []byte(raw)); err != nil {
		return sel, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	return sel, nil
}

// Hex returns the selector as "0x" followed by 8 lowercase hex digits.
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

// String implements fmt.Stringer.
func (s Selector) String() string {
	return s.Hex()
}

// Uint32 returns the numeric value of the selector.
func (s Selector) Uint32() uint32 {
	return binary.BigEndian.Uint32(s[:])
}

// Compare returns -1, 0 or +1 depending on whether s sorts before, equal to
// or after o.
func (s Selector) Compare(o Selector) int {
	return bytes.Compare(s[:], o[:])
}

// MarshalText implements encoding.TextMarshaler.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Selector) UnmarshalText(text []byte) error {
	sel, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

// SortSelectors sorts selectors ascending in place.
func SortSelectors(selectors []Selector) {
	slices.SortFunc(selectors, Selector.Compare)
}
