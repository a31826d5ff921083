//go:build windows

package ccd

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"display-profile-switcher/internal/display"
)

var procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")

// windows.NewCallback slots are never freed; one callback serves every
// enumeration and monitorMu guards the collector it appends to.
var (
	monitorMu        sync.Mutex
	monitorCollector *monitorEnum
	monitorCallback  = windows.NewCallback(enumMonitor)
)

func enumMonitor(hMonitor win.HMONITOR, hdc win.HDC, rect *win.RECT, lparam uintptr) uintptr {
	if monitorCollector == nil {
		return 0
	}
	return monitorCollector.enumProc(hMonitor, hdc, rect, lparam)
}

// monitorInfoEx is MONITORINFOEXW.
type monitorInfoEx struct {
	win.MONITORINFO
	Device [32]uint16
}

type monitorEnum struct {
	list []display.Monitor
}

func (s *monitorEnum) enumProc(hMonitor win.HMONITOR, hdc win.HDC, rect *win.RECT, lparam uintptr) uintptr {
	var info monitorInfoEx
	info.CbSize = uint32(unsafe.Sizeof(info))
	if !win.GetMonitorInfo(hMonitor, &info.MONITORINFO) {
		return 1
	}
	s.list = append(s.list, display.Monitor{
		DeviceName: windows.UTF16ToString(info.Device[:]),
		Bounds:     rectFrom(info.RcMonitor),
		WorkArea:   rectFrom(info.RcWork),
		Primary:    info.DwFlags&win.MONITORINFOF_PRIMARY != 0,
	})
	return 1
}

func rectFrom(r win.RECT) display.Rect {
	return display.Rect{
		Left:   int(r.Left),
		Top:    int(r.Top),
		Right:  int(r.Right),
		Bottom: int(r.Bottom),
	}
}

func (g *Gateway) Monitors() ([]display.Monitor, error) {
	monitorMu.Lock()
	defer monitorMu.Unlock()

	state := &monitorEnum{}
	monitorCollector = state
	defer func() { monitorCollector = nil }()

	r1, _, err := procEnumDisplayMonitors.Call(0, 0, monitorCallback, 0)
	if r1 == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed: %w", err)
	}
	return state.list, nil
}
