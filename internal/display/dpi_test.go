package display_test

import (
	"errors"
	"testing"

	"display-profile-switcher/internal/display"
	"display-profile-switcher/internal/display/displaytest"
)

var testAdapter = display.AdapterID{HighPart: 0, LowPart: 0x0000D3A1}

func TestResolveScaling_MixedOffsets(t *testing.T) {
	info := display.ResolveScaling(display.ScaleRange{Min: -4, Current: -1, Max: 3})
	if !info.Initialized {
		t.Fatalf("expected initialized scaling info")
	}
	if info.Minimum != 100 {
		t.Errorf("minimum: expected 100, got %d", info.Minimum)
	}
	if info.Recommended != 200 {
		t.Errorf("recommended: expected 200, got %d", info.Recommended)
	}
	if info.Maximum != 300 {
		t.Errorf("maximum: expected 300, got %d", info.Maximum)
	}
	if info.Current != 175 {
		t.Errorf("current: expected 175, got %d", info.Current)
	}
}

func TestResolveScaling_AllValidRanges(t *testing.T) {
	table := display.ScaleTable()
	for minRel := int32(-11); minRel <= 0; minRel++ {
		for maxRel := int32(0); maxRel <= 11; maxRel++ {
			if int(-minRel)+int(maxRel)+1 > len(table) {
				continue
			}
			for cur := minRel; cur <= maxRel; cur++ {
				info := display.ResolveScaling(display.ScaleRange{Min: minRel, Current: cur, Max: maxRel})
				if !info.Initialized {
					t.Fatalf("(%d,%d,%d): expected initialized", minRel, cur, maxRel)
				}
				if info.Minimum != 100 {
					t.Fatalf("(%d,%d,%d): minimum %d", minRel, cur, maxRel, info.Minimum)
				}
				if info.Recommended != table[-minRel] {
					t.Fatalf("(%d,%d,%d): recommended %d, want %d", minRel, cur, maxRel, info.Recommended, table[-minRel])
				}
				if info.Current < info.Minimum || info.Current > info.Maximum {
					t.Fatalf("(%d,%d,%d): current %d outside [%d,%d]", minRel, cur, maxRel, info.Current, info.Minimum, info.Maximum)
				}
			}
		}
	}
}

func TestResolveScaling_ClampsCurrent(t *testing.T) {
	tests := []struct {
		name string
		r    display.ScaleRange
		want int
	}{
		{"above max", display.ScaleRange{Min: -2, Current: 5, Max: 2}, 200},
		{"below min", display.ScaleRange{Min: -2, Current: -7, Max: 2}, 100},
		{"recommended", display.ScaleRange{Min: -2, Current: 0, Max: 2}, 150},
	}
	for _, tt := range tests {
		info := display.ResolveScaling(tt.r)
		if info.Current != tt.want {
			t.Errorf("%s: expected current %d, got %d", tt.name, tt.want, info.Current)
		}
	}
}

func TestResolveScaling_TableOverflowStaysDefault(t *testing.T) {
	info := display.ResolveScaling(display.ScaleRange{Min: -6, Current: 0, Max: 6})
	if info.Initialized {
		t.Fatalf("expected uninitialized info for a range wider than the table")
	}
	if info.Minimum != 100 || info.Maximum != 100 || info.Current != 100 || info.Recommended != 100 {
		t.Fatalf("expected 100%% defaults, got %+v", info)
	}
}

func TestGetScaling_ReadFailureDegrades(t *testing.T) {
	gw := displaytest.New()
	gw.DPIReadErr = errors.New("device info failed")
	m := display.NewManager(gw)

	info := m.GetScaling(testAdapter, 0)
	if info.Initialized || info.Current != 100 {
		t.Fatalf("expected uninitialized 100%% scaling, got %+v", info)
	}
}

func newScaleGateway(r display.ScaleRange) *displaytest.Gateway {
	return displaytest.New(displaytest.Display{
		Name:      `\\.\DISPLAY1`,
		Friendly:  "DELL U2720Q",
		Adapter:   testAdapter,
		Width:     3840,
		Height:    2160,
		Frequency: 60,
		Active:    true,
		Primary:   true,
		Scale:     r,
	})
}

func TestSetScaling_SameValueIsNoOp(t *testing.T) {
	gw := newScaleGateway(display.ScaleRange{Min: -4, Current: -1, Max: 3})
	m := display.NewManager(gw)

	if err := m.SetScaling(testAdapter, 0, 175); err != nil {
		t.Fatalf("SetScaling: %v", err)
	}
	if len(gw.DPIWrites) != 0 {
		t.Fatalf("expected no dpi write, got %d", len(gw.DPIWrites))
	}
}

func TestSetScaling_WritesOffsetFromRecommended(t *testing.T) {
	gw := newScaleGateway(display.ScaleRange{Min: -4, Current: 0, Max: 3})
	m := display.NewManager(gw)

	if err := m.SetScaling(testAdapter, 0, 150); err != nil {
		t.Fatalf("SetScaling: %v", err)
	}
	if len(gw.DPIWrites) != 1 {
		t.Fatalf("expected one dpi write, got %d", len(gw.DPIWrites))
	}
	if got := gw.DPIWrites[0].Relative; got != -2 {
		t.Fatalf("expected relative offset -2, got %d", got)
	}
}

func TestSetScaling_ClampsToRange(t *testing.T) {
	gw := newScaleGateway(display.ScaleRange{Min: -4, Current: 0, Max: 3})
	m := display.NewManager(gw)

	if err := m.SetScaling(testAdapter, 0, 500); err != nil {
		t.Fatalf("SetScaling: %v", err)
	}
	if got := gw.DPIWrites[0].Relative; got != 3 {
		t.Fatalf("expected clamp to maximum offset 3, got %d", got)
	}
}

func TestSetScaling_UnsupportedPercentage(t *testing.T) {
	gw := newScaleGateway(display.ScaleRange{Min: -4, Current: 0, Max: 3})
	m := display.NewManager(gw)

	err := m.SetScaling(testAdapter, 0, 160)
	if !errors.Is(err, display.ErrDPIWrite) {
		t.Fatalf("expected ErrDPIWrite, got %v", err)
	}
	if len(gw.DPIWrites) != 0 {
		t.Fatalf("expected no dpi write, got %d", len(gw.DPIWrites))
	}
}

func TestSetScaling_Uninitialized(t *testing.T) {
	gw := newScaleGateway(display.ScaleRange{Min: -8, Current: 0, Max: 8})
	m := display.NewManager(gw)

	if err := m.SetScaling(testAdapter, 0, 100); err != nil {
		t.Fatalf("expected 100%% to be a no-op on default info, got %v", err)
	}
	if err := m.SetScaling(testAdapter, 0, 150); !errors.Is(err, display.ErrDPIUnavailable) {
		t.Fatalf("expected ErrDPIUnavailable, got %v", err)
	}
	if len(gw.DPIWrites) != 0 {
		t.Fatalf("expected no dpi write, got %d", len(gw.DPIWrites))
	}
}

func TestSetScaling_WriteFailure(t *testing.T) {
	gw := newScaleGateway(display.ScaleRange{Min: -4, Current: 0, Max: 3})
	gw.DPIWriteErr[`\\.\display1`] = errors.New("set device info failed")
	m := display.NewManager(gw)

	if err := m.SetScaling(testAdapter, 0, 250); !errors.Is(err, display.ErrDPIWrite) {
		t.Fatalf("expected ErrDPIWrite, got %v", err)
	}
}

func TestSetScaling_RoundTrip(t *testing.T) {
	gw := newScaleGateway(display.ScaleRange{Min: -4, Current: 0, Max: 3})
	m := display.NewManager(gw)

	for _, p := range []int{100, 125, 150, 175, 200, 225, 250, 300} {
		if err := m.SetScaling(testAdapter, 0, p); err != nil {
			t.Fatalf("SetScaling(%d): %v", p, err)
		}
		if got := m.GetScaling(testAdapter, 0).Current; got != p {
			t.Fatalf("after SetScaling(%d) current is %d", p, got)
		}
	}
}
