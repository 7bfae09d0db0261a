package abi

import (
	"testing"
)

func TestSelectorOf(t *testing.T) {
	tests := []struct {
		sig  string
		want string
	}{
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"balanceOf(address)", "0x70a08231"},
		{"approve(address,uint256)", "0x095ea7b3"},
		{"totalSupply()", "0x18160ddd"},
	}

	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			if got := SelectorOf(tt.sig).Hex(); got != tt.want {
				t.Errorf("SelectorOf(%q) = %s, want %s", tt.sig, got, tt.want)
			}
		})
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0xa9059cbb", 0xa9059cbb, false},
		{"a9059cbb", 0xa9059cbb, false},
		{"0x00000001", 1, false},
		{"0x1234", 0, true},
		{"0xzzzzzzzz", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelector(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSelector(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelector(%q) error: %v", tt.in, err)
			}
			if got.Uint32() != tt.want {
				t.Errorf("ParseSelector(%q) = %#x, want %#x", tt.in, got.Uint32(), tt.want)
			}
		})
	}
}

func TestSelectorHexPadding(t *testing.T) {
	s := SelectorFromUint32(0x1)
	if got := s.Hex(); got != "0x00000001" {
		t.Errorf("Hex() = %s, want 0x00000001", got)
	}
}

func TestSortSelectors(t *testing.T) {
	sels := []Selector{
		SelectorFromUint32(0xffffffff),
		SelectorFromUint32(0x00000002),
		SelectorFromUint32(0x80000000),
		SelectorFromUint32(0x00000001),
	}
	SortSelectors(sels)

	want := []uint32{0x00000001, 0x00000002, 0x80000000, 0xffffffff}
	for i, s := range sels {
		if s.Uint32() != want[i] {
			t.Errorf("sels[%d] = %#x, want %#x", i, s.Uint32(), want[i])
		}
	}
}

func TestSelectorText(t *testing.T) {
	var s Selector
	if err := s.UnmarshalText([]byte("0x70a08231")); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}
	text, err := s.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText error: %v", err)
	}
	if string(text) != "0x70a08231" {
		t.Errorf("MarshalText() = %s", text)
	}
}
