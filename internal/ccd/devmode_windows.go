//go:build windows

package ccd

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"display-profile-switcher/internal/display"
)

const (
	enumCurrentSettings = 0xFFFFFFFF

	displayDeviceAttachedToDesktop = 0x00000001
	displayDevicePrimaryDevice     = 0x00000004
)

// DevMode is the display part of DEVMODEW.
type DevMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	PositionX          int32
	PositionY          int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

type DisplayDevice struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

var (
	procEnumDisplayDevicesW      = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplaySettingsW     = user32.NewProc("EnumDisplaySettingsW")
	procChangeDisplaySettingsExW = user32.NewProc("ChangeDisplaySettingsExW")
)

func newDevMode() DevMode {
	var dm DevMode
	dm.Size = uint16(unsafe.Sizeof(dm))
	return dm
}

// EnumDisplaySettings reads mode index of a device; index enumCurrentSettings
// reads the current mode. ok is false past the last mode.
func EnumDisplaySettings(deviceName string, index uint32) (DevMode, bool, error) {
	name, err := windows.UTF16PtrFromString(deviceName)
	if err != nil {
		return DevMode{}, false, err
	}
	dm := newDevMode()
	r1, _, _ := procEnumDisplaySettingsW.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(index),
		uintptr(unsafe.Pointer(&dm)),
	)
	return dm, r1 != 0, nil
}

func ChangeDisplaySettingsEx(deviceName string, dm *DevMode, flags uint32) (int32, error) {
	name, err := windows.UTF16PtrFromString(deviceName)
	if err != nil {
		return 0, err
	}
	r1, _, _ := procChangeDisplaySettingsExW.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(dm)),
		0,
		uintptr(flags),
		0,
	)
	return int32(r1), nil
}

func EnumDisplayDevices() []DisplayDevice {
	var out []DisplayDevice
	for i := uint32(0); ; i++ {
		var dd DisplayDevice
		dd.Cb = uint32(unsafe.Sizeof(dd))
		r1, _, _ := procEnumDisplayDevicesW.Call(0, uintptr(i), uintptr(unsafe.Pointer(&dd)), 0)
		if r1 == 0 {
			return out
		}
		out = append(out, dd)
	}
}

func (g *Gateway) Devices() ([]display.Device, error) {
	var out []display.Device
	for _, dd := range EnumDisplayDevices() {
		out = append(out, display.Device{
			Name:     windows.UTF16ToString(dd.DeviceName[:]),
			String:   windows.UTF16ToString(dd.DeviceString[:]),
			ID:       windows.UTF16ToString(dd.DeviceID[:]),
			Primary:  dd.StateFlags&displayDevicePrimaryDevice != 0,
			Attached: dd.StateFlags&displayDeviceAttachedToDesktop != 0,
		})
	}
	return out, nil
}

func deviceModeFrom(dm DevMode) display.DeviceMode {
	return display.DeviceMode{
		Width:      dm.PelsWidth,
		Height:     dm.PelsHeight,
		Frequency:  dm.DisplayFrequency,
		BitsPerPel: dm.BitsPerPel,
		X:          dm.PositionX,
		Y:          dm.PositionY,
	}
}

func (g *Gateway) CurrentMode(deviceName string) (display.DeviceMode, error) {
	dm, ok, err := EnumDisplaySettings(deviceName, enumCurrentSettings)
	if err != nil {
		return display.DeviceMode{}, err
	}
	if !ok {
		return display.DeviceMode{}, fmt.Errorf("EnumDisplaySettings failed for %s", deviceName)
	}
	return deviceModeFrom(dm), nil
}

func (g *Gateway) Modes(deviceName string) ([]display.DeviceMode, error) {
	var out []display.DeviceMode
	for i := uint32(0); ; i++ {
		dm, ok, err := EnumDisplaySettings(deviceName, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, deviceModeFrom(dm))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no display modes for %s", deviceName)
	}
	return out, nil
}

func (g *Gateway) ChangeMode(deviceName string, mode display.DeviceMode, fields display.ModeFields, flags display.ModeChangeFlags) (display.ChangeStatus, error) {
	dm, ok, err := EnumDisplaySettings(deviceName, enumCurrentSettings)
	if err != nil {
		return display.ChangeBadParam, err
	}
	if !ok {
		return display.ChangeBadParam, fmt.Errorf("EnumDisplaySettings failed for %s", deviceName)
	}

	if fields&display.FieldPelsWidth != 0 {
		dm.PelsWidth = mode.Width
	}
	if fields&display.FieldPelsHeight != 0 {
		dm.PelsHeight = mode.Height
	}
	if fields&display.FieldDisplayFrequency != 0 {
		dm.DisplayFrequency = mode.Frequency
	}
	if fields&display.FieldBitsPerPel != 0 {
		dm.BitsPerPel = mode.BitsPerPel
	}
	if fields&display.FieldPosition != 0 {
		dm.PositionX = mode.X
		dm.PositionY = mode.Y
	}
	dm.Fields = uint32(fields)

	status, err := ChangeDisplaySettingsEx(deviceName, &dm, uint32(flags))
	if err != nil {
		return display.ChangeBadParam, err
	}
	return display.ChangeStatus(status), nil
}
