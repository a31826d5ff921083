//go:build windows

package ccd

import (
	"testing"
	"unsafe"

	"display-profile-switcher/internal/display"
)

func TestStructSizes(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"DISPLAYCONFIG_PATH_INFO", unsafe.Sizeof(DisplayConfigPathInfo{}), 72},
		{"DISPLAYCONFIG_MODE_INFO", unsafe.Sizeof(DisplayConfigModeInfo{}), 64},
		{"DISPLAYCONFIG_DEVICE_INFO_HEADER", unsafe.Sizeof(DisplayConfigDeviceInfoHeader{}), 20},
		{"DISPLAYCONFIG_SOURCE_DEVICE_NAME", unsafe.Sizeof(DisplayConfigSourceDeviceName{}), 84},
		{"DISPLAYCONFIG_TARGET_DEVICE_NAME", unsafe.Sizeof(DisplayConfigTargetDeviceName{}), 420},
		{"dpi scale get", unsafe.Sizeof(DisplayConfigSourceDPIScaleGet{}), 32},
		{"dpi scale set", unsafe.Sizeof(DisplayConfigSourceDPIScaleSet{}), 24},
		{"DEVMODEW", unsafe.Sizeof(DevMode{}), 220},
		{"DISPLAY_DEVICEW", unsafe.Sizeof(DisplayDevice{}), 840},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %d bytes, got %d", tt.name, tt.want, tt.got)
		}
	}
}

func TestPathConversionKeepsSignedAdapterID(t *testing.T) {
	p := display.Path{
		Source: display.PathSource{AdapterID: display.AdapterID{HighPart: -1, LowPart: 0xD3A1}, ID: 1, ModeInfoIdx: 0},
		Target: display.PathTarget{
			AdapterID:   display.AdapterID{HighPart: -1, LowPart: 0xD3A1},
			ID:          4353,
			ModeInfoIdx: display.InvalidModeIndex,
			RefreshRate: display.Rational{Numerator: 144000, Denominator: 1000},
			Available:   true,
		},
		Flags: display.PathFlagActive,
	}

	raw := pathToCCD(p)
	if raw.SourceInfo.AdapterID.HighPart != -1 || raw.TargetInfo.TargetAvailable != 1 {
		t.Fatalf("unexpected raw path %+v", raw)
	}
	if got := pathFromCCD(raw); got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}
}

func TestModeConversionUsesUnion(t *testing.T) {
	src := display.NewSourceMode(display.AdapterID{LowPart: 7}, 1, display.SourceMode{
		Width: 2560, Height: 1440, PixelFormat: 4, Position: display.PointL{X: -2560},
	})

	raw := modeToCCD(src)
	if raw.InfoType != DisplayConfigModeInfoTypeSource {
		t.Fatalf("expected source mode type, got %d", raw.InfoType)
	}
	if raw.SourceMode().Width != 2560 || raw.SourceMode().Position.X != -2560 {
		t.Fatalf("unexpected union payload %+v", *raw.SourceMode())
	}

	got := modeFromCCD(&raw)
	s, ok := got.Source()
	if !ok || s.Height != 1440 || got.ID != 1 {
		t.Fatalf("unexpected mode %+v", got)
	}

	var empty DisplayConfigModeInfo
	if m := modeFromCCD(&empty); m.Type() != display.ModeTypeNone {
		t.Fatalf("expected untyped mode, got %d", m.Type())
	}
}

func TestMonitorsReusesCallback(t *testing.T) {
	g := New()
	first, firstErr := g.Monitors()
	// The runtime holds at most 2000 callbacks.
	for i := 0; i < 2100; i++ {
		list, err := g.Monitors()
		if (err == nil) != (firstErr == nil) || len(list) != len(first) {
			t.Fatalf("call %d: got %d monitors (%v), first call %d (%v)", i, len(list), err, len(first), firstErr)
		}
	}
	if monitorCollector != nil {
		t.Fatalf("collector must be cleared after enumeration")
	}
}
