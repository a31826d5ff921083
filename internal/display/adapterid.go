package display

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAdapterID is the persisted form of an adapter id.
func FormatAdapterID(id AdapterID) string {
	return id.String()
}

// ParseAdapterID parses the persisted form: the first eight hex digits are the
// signed high part, the remainder the unsigned low part. Malformed input
// yields the zero id together with ErrAdapterIDMalformed.
func ParseAdapterID(s string) (AdapterID, error) {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return AdapterID{}, fmt.Errorf("%w: %q", ErrAdapterIDMalformed, s)
	}

	high, err := strconv.ParseUint(s[:8], 16, 32)
	if err != nil {
		return AdapterID{}, fmt.Errorf("%w: %q", ErrAdapterIDMalformed, s)
	}

	var low uint64
	if rest := s[8:]; rest != "" {
		low, err = strconv.ParseUint(rest, 16, 32)
		if err != nil {
			return AdapterID{}, fmt.Errorf("%w: %q", ErrAdapterIDMalformed, s)
		}
	}

	return AdapterID{HighPart: int32(uint32(high)), LowPart: uint32(low)}, nil
}
