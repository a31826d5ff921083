package display

import (
	"fmt"
	"math"
)

// AdapterID is the locally unique identifier of a graphics adapter.
type AdapterID struct {
	HighPart int32
	LowPart  uint32
}

func (id AdapterID) IsZero() bool {
	return id.HighPart == 0 && id.LowPart == 0
}

// String formats the id the way profiles persist it: eight hex digits of the
// high part followed by eight hex digits of the low part.
func (id AdapterID) String() string {
	return fmt.Sprintf("%08X%08X", uint32(id.HighPart), id.LowPart)
}

type Rational struct {
	Numerator   uint32
	Denominator uint32
}

// Hz returns the rate rounded to two decimals. ok is false when the
// denominator is zero.
func (r Rational) Hz() (hz float64, ok bool) {
	if r.Denominator == 0 {
		return 0, false
	}
	v := float64(r.Numerator) / float64(r.Denominator)
	return math.Round(v*100) / 100, true
}

type OutputTechnology uint32

const (
	OutputTechnologyOther           OutputTechnology = 0xFFFFFFFF
	OutputTechnologyHD15            OutputTechnology = 0
	OutputTechnologyDVI             OutputTechnology = 4
	OutputTechnologyHDMI            OutputTechnology = 5
	OutputTechnologyLVDS            OutputTechnology = 6
	OutputTechnologyDisplayPortExt  OutputTechnology = 10
	OutputTechnologyDisplayPortEmb  OutputTechnology = 11
	OutputTechnologyUDIExternal     OutputTechnology = 12
	OutputTechnologyUDIEmbedded     OutputTechnology = 13
	OutputTechnologyMiracast        OutputTechnology = 15
	OutputTechnologyIndirectWired   OutputTechnology = 16
	OutputTechnologyIndirectVirtual OutputTechnology = 17
	OutputTechnologyInternal        OutputTechnology = 0x80000000
)

func (t OutputTechnology) String() string {
	switch t {
	case OutputTechnologyHD15:
		return "VGA"
	case OutputTechnologyDVI:
		return "DVI"
	case OutputTechnologyHDMI:
		return "HDMI"
	case OutputTechnologyLVDS:
		return "LVDS"
	case OutputTechnologyDisplayPortExt:
		return "DisplayPort"
	case OutputTechnologyDisplayPortEmb:
		return "eDP"
	case OutputTechnologyUDIExternal, OutputTechnologyUDIEmbedded:
		return "UDI"
	case OutputTechnologyMiracast:
		return "Miracast"
	case OutputTechnologyIndirectWired, OutputTechnologyIndirectVirtual:
		return "Indirect"
	case OutputTechnologyInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Other(%d)", uint32(t))
	}
}

type PathFlags uint32

const (
	PathFlagActive             PathFlags = 0x00000001
	PathFlagPreferredUnscaled  PathFlags = 0x00000004
	PathFlagSupportVirtualMode PathFlags = 0x00000008
)

const (
	InvalidModeIndex        uint32 = 0xFFFFFFFF
	invalidVirtualModeIndex uint32 = 0xFFFF
)

type PathSource struct {
	AdapterID   AdapterID
	ID          uint32
	ModeInfoIdx uint32
	StatusFlags uint32
}

type PathTarget struct {
	AdapterID        AdapterID
	ID               uint32
	ModeInfoIdx      uint32
	OutputTechnology OutputTechnology
	Rotation         uint32
	Scaling          uint32
	RefreshRate      Rational
	ScanLineOrdering uint32
	Available        bool
	StatusFlags      uint32
}

// Path is one source to target connection of the display topology.
type Path struct {
	Source PathSource
	Target PathTarget
	Flags  PathFlags
}

func (p Path) Active() bool {
	return p.Flags&PathFlagActive != 0
}

func (p *Path) SetActive(active bool) {
	if active {
		p.Flags |= PathFlagActive
	} else {
		p.Flags &^= PathFlagActive
	}
}

func (p Path) virtualAware() bool {
	return p.Flags&PathFlagSupportVirtualMode != 0
}

// SourceModeIndex returns the index of the path's source mode. ok is false for
// the invalid sentinel.
func (p Path) SourceModeIndex() (int, bool) {
	if p.virtualAware() {
		idx := p.Source.ModeInfoIdx & 0xFFFF
		return int(idx), idx != invalidVirtualModeIndex
	}
	return int(p.Source.ModeInfoIdx), p.Source.ModeInfoIdx != InvalidModeIndex
}

// TargetModeIndex returns the index of the path's target mode. ok is false for
// the invalid sentinel.
func (p Path) TargetModeIndex() (int, bool) {
	if p.virtualAware() {
		idx := (p.Target.ModeInfoIdx >> 16) & 0xFFFF
		return int(idx), idx != invalidVirtualModeIndex
	}
	return int(p.Target.ModeInfoIdx), p.Target.ModeInfoIdx != InvalidModeIndex
}

// DesktopModeIndex is only meaningful for virtual-mode-aware paths.
func (p Path) DesktopModeIndex() (int, bool) {
	if !p.virtualAware() {
		return 0, false
	}
	idx := p.Target.ModeInfoIdx & 0xFFFF
	return int(idx), idx != invalidVirtualModeIndex
}

type ModeType uint32

const (
	ModeTypeNone         ModeType = 0
	ModeTypeSource       ModeType = 1
	ModeTypeTarget       ModeType = 2
	ModeTypeDesktopImage ModeType = 3
)

// ModeInfo is the payload of a Mode. It is implemented by SourceMode,
// TargetMode and DesktopImageMode only.
type ModeInfo interface {
	modeType() ModeType
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

type Region struct {
	Cx uint32
	Cy uint32
}

type SourceMode struct {
	Width       uint32
	Height      uint32
	PixelFormat uint32
	Position    PointL
}

type VideoSignalInfo struct {
	PixelRate        int64
	HSyncFreq        Rational
	VSyncFreq        Rational
	ActiveSize       Region
	TotalSize        Region
	VideoStandard    uint32
	ScanLineOrdering uint32
}

type TargetMode struct {
	Signal VideoSignalInfo
}

type DesktopImageMode struct {
	PathSourceSize     PointL
	DesktopImageRegion RectL
	DesktopImageClip   RectL
}

func (SourceMode) modeType() ModeType       { return ModeTypeSource }
func (TargetMode) modeType() ModeType       { return ModeTypeTarget }
func (DesktopImageMode) modeType() ModeType { return ModeTypeDesktopImage }

// Mode is one entry of the mode array referenced by paths.
type Mode struct {
	ID        uint32
	AdapterID AdapterID
	Info      ModeInfo
}

func NewSourceMode(adapter AdapterID, id uint32, m SourceMode) Mode {
	return Mode{ID: id, AdapterID: adapter, Info: m}
}

func NewTargetMode(adapter AdapterID, id uint32, m TargetMode) Mode {
	return Mode{ID: id, AdapterID: adapter, Info: m}
}

func (m Mode) Type() ModeType {
	if m.Info == nil {
		return ModeTypeNone
	}
	return m.Info.modeType()
}

func (m Mode) Source() (SourceMode, bool) {
	s, ok := m.Info.(SourceMode)
	return s, ok
}

func (m Mode) Target() (TargetMode, bool) {
	t, ok := m.Info.(TargetMode)
	return t, ok
}

func (m Mode) DesktopImage() (DesktopImageMode, bool) {
	d, ok := m.Info.(DesktopImageMode)
	return d, ok
}

// sourceModeOf dereferences the path's source mode, refusing the sentinel and
// out of range indices.
func sourceModeOf(p Path, modes []Mode) (SourceMode, bool) {
	idx, ok := p.SourceModeIndex()
	if !ok || idx < 0 || idx >= len(modes) {
		return SourceMode{}, false
	}
	return modes[idx].Source()
}

func targetModeOf(p Path, modes []Mode) (TargetMode, bool) {
	idx, ok := p.TargetModeIndex()
	if !ok || idx < 0 || idx >= len(modes) {
		return TargetMode{}, false
	}
	return modes[idx].Target()
}

// TargetName is the monitor identity reported for a target.
type TargetName struct {
	FriendlyName     string
	DevicePath       string
	ManufactureID    uint16
	ProductCodeID    uint16
	OutputTechnology OutputTechnology
}

// ScaleRange is the raw relative DPI scale reading of a source.
type ScaleRange struct {
	Min     int32
	Current int32
	Max     int32
}

type ModeFields uint32

const (
	FieldPosition         ModeFields = 0x00000020
	FieldBitsPerPel       ModeFields = 0x00040000
	FieldPelsWidth        ModeFields = 0x00080000
	FieldPelsHeight       ModeFields = 0x00100000
	FieldDisplayFrequency ModeFields = 0x00400000
)

// DeviceMode is the legacy per-device mode description.
type DeviceMode struct {
	Width      uint32
	Height     uint32
	Frequency  uint32
	BitsPerPel uint32
	X          int32
	Y          int32
}

func (m DeviceMode) String() string {
	if m.Frequency == 0 {
		return fmt.Sprintf("%dx%d", m.Width, m.Height)
	}
	return fmt.Sprintf("%dx%d@%dHz", m.Width, m.Height, m.Frequency)
}

type ChangeStatus int32

const (
	ChangeSuccessful  ChangeStatus = 0
	ChangeRestart     ChangeStatus = 1
	ChangeFailed      ChangeStatus = -1
	ChangeBadMode     ChangeStatus = -2
	ChangeNotUpdated  ChangeStatus = -3
	ChangeBadFlags    ChangeStatus = -4
	ChangeBadParam    ChangeStatus = -5
	ChangeBadDualView ChangeStatus = -6
)

func (s ChangeStatus) String() string {
	switch s {
	case ChangeSuccessful:
		return "successful"
	case ChangeRestart:
		return "restart required"
	case ChangeFailed:
		return "failed"
	case ChangeBadMode:
		return "bad mode"
	case ChangeNotUpdated:
		return "registry not updated"
	case ChangeBadFlags:
		return "bad flags"
	case ChangeBadParam:
		return "bad parameter"
	case ChangeBadDualView:
		return "bad dual view"
	default:
		return fmt.Sprintf("status %d", int32(s))
	}
}

// Device is a GDI display device as enumerated by the legacy API.
type Device struct {
	Name     string
	String   string
	ID       string
	Primary  bool
	Attached bool
}

type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Monitor is the desktop geometry of one attached display.
type Monitor struct {
	DeviceName string
	Bounds     Rect
	WorkArea   Rect
	Primary    bool
}

// DisplaySetting is the persisted per-display part of a profile.
type DisplaySetting struct {
	DeviceName   string `json:"deviceName" yaml:"deviceName"`
	DeviceString string `json:"deviceString" yaml:"deviceString"`
	FriendlyName string `json:"friendlyName" yaml:"friendlyName"`
	Width        int    `json:"width" yaml:"width"`
	Height       int    `json:"height" yaml:"height"`
	Frequency    int    `json:"frequency" yaml:"frequency"`
	DPIScaling   int    `json:"dpiScaling" yaml:"dpiScaling"`
	IsPrimary    bool   `json:"isPrimary" yaml:"isPrimary"`
	AdapterID    string `json:"adapterId,omitempty" yaml:"adapterId,omitempty"`
	SourceID     uint32 `json:"sourceId" yaml:"sourceId"`
	TargetID     uint32 `json:"targetId" yaml:"targetId"`
	// Disabled marks a connected display that is detached from the desktop.
	// The zero value keeps settings written before the field existed enabled.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// IsEnabled reports whether the display should be attached to the desktop.
func (s DisplaySetting) IsEnabled() bool {
	return !s.Disabled
}

// DisplayConfigInfo is a per-path view of the topology used for enabling and
// disabling displays. PathIndex is only valid against the query it came from.
type DisplayConfigInfo struct {
	DeviceName       string
	FriendlyName     string
	IsEnabled        bool
	IsAvailable      bool
	Width            int
	Height           int
	RefreshRate      float64
	AdapterID        AdapterID
	SourceID         uint32
	TargetID         uint32
	PathIndex        int
	OutputTechnology OutputTechnology
}

// DisplayInfo is a rendering snapshot of one attached display.
type DisplayInfo struct {
	DeviceName   string
	DeviceString string
	FriendlyName string
	Mode         DeviceMode
	Bounds       Rect
	WorkArea     Rect
	IsPrimary    bool
	AdapterID    AdapterID
	SourceID     uint32
	HasTopology  bool
	Scaling      ScalingInfo
}
