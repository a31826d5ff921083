//go:build windows

package ccd

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"display-profile-switcher/internal/display"
)

const errorSuccess = 0

type LUID struct {
	LowPart  uint32
	HighPart int32
}

type DisplayConfigRational struct {
	Numerator   uint32
	Denominator uint32
}

type DisplayConfig2DRegion struct {
	Cx uint32
	Cy uint32
}

type PointL struct {
	X int32
	Y int32
}

type RectL struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type DisplayConfigPathSourceInfo struct {
	AdapterID   LUID
	ID          uint32
	ModeInfoIdx uint32
	StatusFlags uint32
}

type DisplayConfigPathTargetInfo struct {
	AdapterID        LUID
	ID               uint32
	ModeInfoIdx      uint32
	OutputTechnology uint32
	Rotation         uint32
	Scaling          uint32
	RefreshRate      DisplayConfigRational
	ScanLineOrdering uint32
	TargetAvailable  uint32
	StatusFlags      uint32
}

type DisplayConfigPathInfo struct {
	SourceInfo DisplayConfigPathSourceInfo
	TargetInfo DisplayConfigPathTargetInfo
	Flags      uint32
}

type DisplayConfigModeInfoType uint32

const (
	DisplayConfigModeInfoTypeSource       DisplayConfigModeInfoType = 1
	DisplayConfigModeInfoTypeTarget       DisplayConfigModeInfoType = 2
	DisplayConfigModeInfoTypeDesktopImage DisplayConfigModeInfoType = 3
)

const displayConfigModeInfoUnionSize = 48

type DisplayConfigModeInfo struct {
	InfoType  DisplayConfigModeInfoType
	ID        uint32
	AdapterID LUID
	Mode      [displayConfigModeInfoUnionSize]byte
}

func (m *DisplayConfigModeInfo) TargetMode() *DisplayConfigTargetMode {
	return (*DisplayConfigTargetMode)(unsafe.Pointer(&m.Mode[0]))
}

func (m *DisplayConfigModeInfo) SourceMode() *DisplayConfigSourceMode {
	return (*DisplayConfigSourceMode)(unsafe.Pointer(&m.Mode[0]))
}

func (m *DisplayConfigModeInfo) DesktopImageInfo() *DisplayConfigDesktopImageInfo {
	return (*DisplayConfigDesktopImageInfo)(unsafe.Pointer(&m.Mode[0]))
}

type DisplayConfigVideoSignalInfo struct {
	PixelRate        int64
	HSyncFreq        DisplayConfigRational
	VSyncFreq        DisplayConfigRational
	ActiveSize       DisplayConfig2DRegion
	TotalSize        DisplayConfig2DRegion
	VideoStandard    uint32
	ScanLineOrdering uint32
}

type DisplayConfigTargetMode struct {
	TargetVideoSignalInfo DisplayConfigVideoSignalInfo
}

type DisplayConfigSourceMode struct {
	Width       uint32
	Height      uint32
	PixelFormat uint32
	Position    PointL
}

type DisplayConfigDesktopImageInfo struct {
	PathSourceSize     PointL
	DesktopImageRegion RectL
	DesktopImageClip   RectL
}

// DisplayConfigDeviceInfoType is signed: the DPI requests use undocumented
// negative values.
type DisplayConfigDeviceInfoType int32

const (
	DisplayConfigDeviceInfoTypeGetSourceName DisplayConfigDeviceInfoType = 1
	DisplayConfigDeviceInfoTypeGetTargetName DisplayConfigDeviceInfoType = 2
	DisplayConfigDeviceInfoTypeGetDPIScale   DisplayConfigDeviceInfoType = -3
	DisplayConfigDeviceInfoTypeSetDPIScale   DisplayConfigDeviceInfoType = -4
	// Undocumented; not present on every build.
	DisplayConfigDeviceInfoTypeGetMonitorUniqueName DisplayConfigDeviceInfoType = -7
)

type DisplayConfigDeviceInfoHeader struct {
	Type      DisplayConfigDeviceInfoType
	Size      uint32
	AdapterID LUID
	ID        uint32
}

type DisplayConfigSourceDeviceName struct {
	Header            DisplayConfigDeviceInfoHeader
	ViewGdiDeviceName [32]uint16
}

type DisplayConfigTargetDeviceName struct {
	Header                    DisplayConfigDeviceInfoHeader
	Flags                     uint32
	OutputTechnology          uint32
	EdidManufactureID         uint16
	EdidProductCodeID         uint16
	ConnectorInstance         uint32
	MonitorFriendlyDeviceName [64]uint16
	MonitorDevicePath         [128]uint16
}

type DisplayConfigMonitorUniqueName struct {
	Header            DisplayConfigDeviceInfoHeader
	MonitorUniqueName [128]uint16
}

// DisplayConfigSourceDPIScaleGet holds scale steps relative to the
// recommended scale.
type DisplayConfigSourceDPIScaleGet struct {
	Header DisplayConfigDeviceInfoHeader
	MinRel int32
	CurRel int32
	MaxRel int32
}

type DisplayConfigSourceDPIScaleSet struct {
	Header   DisplayConfigDeviceInfoHeader
	ScaleRel int32
}

var (
	user32                          = windows.NewLazySystemDLL("user32.dll")
	procSetDisplayConfig            = user32.NewProc("SetDisplayConfig")
	procQueryDisplayConfig          = user32.NewProc("QueryDisplayConfig")
	procGetDisplayConfigBufferSizes = user32.NewProc("GetDisplayConfigBufferSizes")
	procDisplayConfigGetDeviceInfo  = user32.NewProc("DisplayConfigGetDeviceInfo")
	procDisplayConfigSetDeviceInfo  = user32.NewProc("DisplayConfigSetDeviceInfo")
)

func statusError(op string, r1 uintptr, kind error) error {
	return &display.StatusError{Op: op, Status: r1, Kind: kind}
}

func SetDisplayConfig(paths []DisplayConfigPathInfo, modes []DisplayConfigModeInfo, flags uint32) error {
	var pathPtr *DisplayConfigPathInfo
	var modePtr *DisplayConfigModeInfo
	if len(paths) > 0 {
		pathPtr = &paths[0]
	}
	if len(modes) > 0 {
		modePtr = &modes[0]
	}

	r1, _, _ := procSetDisplayConfig.Call(
		uintptr(uint32(len(paths))),
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(uint32(len(modes))),
		uintptr(unsafe.Pointer(modePtr)),
		uintptr(flags),
	)
	if r1 != errorSuccess {
		return statusError("SetDisplayConfig", r1, display.ErrTopologyCommit)
	}
	return nil
}

// QueryDisplayConfig runs the size query and the fill query once. The returned
// arrays are trimmed to the counts the fill query reported and are otherwise
// untouched, so path mode indices stay valid.
func QueryDisplayConfig(flags uint32) ([]DisplayConfigPathInfo, []DisplayConfigModeInfo, error) {
	var numPaths, numModes uint32
	r1, _, _ := procGetDisplayConfigBufferSizes.Call(
		uintptr(flags),
		uintptr(unsafe.Pointer(&numPaths)),
		uintptr(unsafe.Pointer(&numModes)),
	)
	if r1 != errorSuccess {
		return nil, nil, statusError("GetDisplayConfigBufferSizes", r1, display.ErrQuery)
	}

	paths := make([]DisplayConfigPathInfo, numPaths)
	modes := make([]DisplayConfigModeInfo, numModes)
	var pathPtr *DisplayConfigPathInfo
	var modePtr *DisplayConfigModeInfo
	if len(paths) > 0 {
		pathPtr = &paths[0]
	}
	if len(modes) > 0 {
		modePtr = &modes[0]
	}

	r1, _, _ = procQueryDisplayConfig.Call(
		uintptr(flags),
		uintptr(unsafe.Pointer(&numPaths)),
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&numModes)),
		uintptr(unsafe.Pointer(modePtr)),
		uintptr(0),
	)
	if r1 != errorSuccess {
		return nil, nil, statusError("QueryDisplayConfig", r1, display.ErrQuery)
	}
	return paths[:numPaths], modes[:numModes], nil
}

func getDeviceInfo(header *DisplayConfigDeviceInfoHeader) uintptr {
	r1, _, _ := procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(header)))
	return r1
}

func GetSourceName(adapterID LUID, sourceID uint32) (string, error) {
	req := DisplayConfigSourceDeviceName{}
	req.Header.Type = DisplayConfigDeviceInfoTypeGetSourceName
	req.Header.Size = uint32(unsafe.Sizeof(req))
	req.Header.AdapterID = adapterID
	req.Header.ID = sourceID

	if r1 := getDeviceInfo(&req.Header); r1 != errorSuccess {
		return "", statusError("DisplayConfigGetDeviceInfo", r1, display.ErrDisplayNotFound)
	}
	return windows.UTF16ToString(req.ViewGdiDeviceName[:]), nil
}

func GetTargetName(adapterID LUID, targetID uint32) (DisplayConfigTargetDeviceName, error) {
	req := DisplayConfigTargetDeviceName{}
	req.Header.Type = DisplayConfigDeviceInfoTypeGetTargetName
	req.Header.Size = uint32(unsafe.Sizeof(req))
	req.Header.AdapterID = adapterID
	req.Header.ID = targetID

	if r1 := getDeviceInfo(&req.Header); r1 != errorSuccess {
		return req, statusError("DisplayConfigGetDeviceInfo", r1, display.ErrDisplayNotFound)
	}
	return req, nil
}

func GetMonitorUniqueName(adapterID LUID, targetID uint32) (string, error) {
	req := DisplayConfigMonitorUniqueName{}
	req.Header.Type = DisplayConfigDeviceInfoTypeGetMonitorUniqueName
	req.Header.Size = uint32(unsafe.Sizeof(req))
	req.Header.AdapterID = adapterID
	req.Header.ID = targetID

	if r1 := getDeviceInfo(&req.Header); r1 != errorSuccess {
		return "", statusError("DisplayConfigGetDeviceInfo", r1, display.ErrDisplayNotFound)
	}
	return windows.UTF16ToString(req.MonitorUniqueName[:]), nil
}

func GetDPIScale(adapterID LUID, sourceID uint32) (DisplayConfigSourceDPIScaleGet, error) {
	req := DisplayConfigSourceDPIScaleGet{}
	req.Header.Type = DisplayConfigDeviceInfoTypeGetDPIScale
	req.Header.Size = uint32(unsafe.Sizeof(req))
	req.Header.AdapterID = adapterID
	req.Header.ID = sourceID

	if r1 := getDeviceInfo(&req.Header); r1 != errorSuccess {
		return req, statusError("DisplayConfigGetDeviceInfo", r1, display.ErrDPIUnavailable)
	}
	return req, nil
}

func SetDPIScale(adapterID LUID, sourceID uint32, scaleRel int32) error {
	req := DisplayConfigSourceDPIScaleSet{ScaleRel: scaleRel}
	req.Header.Type = DisplayConfigDeviceInfoTypeSetDPIScale
	req.Header.Size = uint32(unsafe.Sizeof(req))
	req.Header.AdapterID = adapterID
	req.Header.ID = sourceID

	r1, _, _ := procDisplayConfigSetDeviceInfo.Call(uintptr(unsafe.Pointer(&req.Header)))
	if r1 != errorSuccess {
		return statusError("DisplayConfigSetDeviceInfo", r1, display.ErrDPIWrite)
	}
	return nil
}
