package display_test

import (
	"errors"
	"testing"

	"display-profile-switcher/internal/display"
)

func TestAdapterIDRoundTrip(t *testing.T) {
	ids := []display.AdapterID{
		{HighPart: 0, LowPart: 0},
		{HighPart: 0, LowPart: 0x0000D3A1},
		{HighPart: 1, LowPart: 0xFFFFFFFF},
		{HighPart: -1, LowPart: 0xFFFFFFFF},
		{HighPart: -2147483648, LowPart: 0x80000000},
		{HighPart: 2147483647, LowPart: 1},
	}
	for _, id := range ids {
		s := display.FormatAdapterID(id)
		if len(s) != 16 {
			t.Errorf("%+v: expected 16 hex digits, got %q", id, s)
		}
		got, err := display.ParseAdapterID(s)
		if err != nil {
			t.Fatalf("ParseAdapterID(%q): %v", s, err)
		}
		if got != id {
			t.Errorf("round trip of %+v gave %+v", id, got)
		}
	}
}

func TestFormatAdapterID(t *testing.T) {
	id := display.AdapterID{HighPart: -1, LowPart: 0xD3A1}
	if got := display.FormatAdapterID(id); got != "FFFFFFFF0000D3A1" {
		t.Fatalf("expected FFFFFFFF0000D3A1, got %s", got)
	}
}

func TestParseAdapterID(t *testing.T) {
	tests := []struct {
		in      string
		want    display.AdapterID
		wantErr bool
	}{
		{"000000000000d3a1", display.AdapterID{LowPart: 0xD3A1}, false},
		{"00000001", display.AdapterID{HighPart: 1}, false},
		{"0000000100A1", display.AdapterID{HighPart: 1, LowPart: 0xA1}, false},
		{"", display.AdapterID{}, true},
		{"1234567", display.AdapterID{}, true},
		{"XYZ0000000000000", display.AdapterID{}, true},
		{"0000000000000000G", display.AdapterID{}, true},
		{"00000000123456789", display.AdapterID{}, true},
	}
	for _, tt := range tests {
		got, err := display.ParseAdapterID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, display.ErrAdapterIDMalformed) {
				t.Errorf("%q: expected ErrAdapterIDMalformed, got %v", tt.in, err)
			}
			if !got.IsZero() {
				t.Errorf("%q: expected zero id on error, got %+v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %+v, got %+v", tt.in, tt.want, got)
		}
	}
}
