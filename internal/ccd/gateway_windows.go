//go:build windows

package ccd

import (
	"golang.org/x/sys/windows"

	"display-profile-switcher/internal/display"
)

// Gateway implements display.Gateway on top of user32.
type Gateway struct{}

var _ display.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{}
}

func (g *Gateway) QueryConfig(scope display.QueryScope) ([]display.Path, []display.Mode, error) {
	rawPaths, rawModes, err := QueryDisplayConfig(uint32(scope))
	if err != nil {
		return nil, nil, err
	}

	paths := make([]display.Path, len(rawPaths))
	for i, p := range rawPaths {
		paths[i] = pathFromCCD(p)
	}
	modes := make([]display.Mode, len(rawModes))
	for i := range rawModes {
		modes[i] = modeFromCCD(&rawModes[i])
	}
	return paths, modes, nil
}

func (g *Gateway) CommitConfig(paths []display.Path, modes []display.Mode, flags display.CommitFlags) error {
	rawPaths := make([]DisplayConfigPathInfo, len(paths))
	for i, p := range paths {
		rawPaths[i] = pathToCCD(p)
	}
	rawModes := make([]DisplayConfigModeInfo, len(modes))
	for i, m := range modes {
		rawModes[i] = modeToCCD(m)
	}
	return SetDisplayConfig(rawPaths, rawModes, uint32(flags))
}

func (g *Gateway) SourceName(adapter display.AdapterID, sourceID uint32) (string, error) {
	return GetSourceName(toLUID(adapter), sourceID)
}

func (g *Gateway) TargetName(adapter display.AdapterID, targetID uint32) (display.TargetName, error) {
	raw, err := GetTargetName(toLUID(adapter), targetID)
	if err != nil {
		return display.TargetName{}, err
	}
	return display.TargetName{
		FriendlyName:     windows.UTF16ToString(raw.MonitorFriendlyDeviceName[:]),
		DevicePath:       windows.UTF16ToString(raw.MonitorDevicePath[:]),
		ManufactureID:    raw.EdidManufactureID,
		ProductCodeID:    raw.EdidProductCodeID,
		OutputTechnology: display.OutputTechnology(raw.OutputTechnology),
	}, nil
}

func (g *Gateway) MonitorUniqueName(adapter display.AdapterID, targetID uint32) (string, error) {
	return GetMonitorUniqueName(toLUID(adapter), targetID)
}

func (g *Gateway) DPIScale(adapter display.AdapterID, sourceID uint32) (display.ScaleRange, error) {
	raw, err := GetDPIScale(toLUID(adapter), sourceID)
	if err != nil {
		return display.ScaleRange{}, err
	}
	return display.ScaleRange{Min: raw.MinRel, Current: raw.CurRel, Max: raw.MaxRel}, nil
}

func (g *Gateway) SetDPIScale(adapter display.AdapterID, sourceID uint32, relative int32) error {
	return SetDPIScale(toLUID(adapter), sourceID, relative)
}

func toLUID(id display.AdapterID) LUID {
	return LUID{LowPart: id.LowPart, HighPart: id.HighPart}
}

func fromLUID(id LUID) display.AdapterID {
	return display.AdapterID{HighPart: id.HighPart, LowPart: id.LowPart}
}

func fromRational(r DisplayConfigRational) display.Rational {
	return display.Rational{Numerator: r.Numerator, Denominator: r.Denominator}
}

func toRational(r display.Rational) DisplayConfigRational {
	return DisplayConfigRational{Numerator: r.Numerator, Denominator: r.Denominator}
}

func pathFromCCD(p DisplayConfigPathInfo) display.Path {
	return display.Path{
		Source: display.PathSource{
			AdapterID:   fromLUID(p.SourceInfo.AdapterID),
			ID:          p.SourceInfo.ID,
			ModeInfoIdx: p.SourceInfo.ModeInfoIdx,
			StatusFlags: p.SourceInfo.StatusFlags,
		},
		Target: display.PathTarget{
			AdapterID:        fromLUID(p.TargetInfo.AdapterID),
			ID:               p.TargetInfo.ID,
			ModeInfoIdx:      p.TargetInfo.ModeInfoIdx,
			OutputTechnology: display.OutputTechnology(p.TargetInfo.OutputTechnology),
			Rotation:         p.TargetInfo.Rotation,
			Scaling:          p.TargetInfo.Scaling,
			RefreshRate:      fromRational(p.TargetInfo.RefreshRate),
			ScanLineOrdering: p.TargetInfo.ScanLineOrdering,
			Available:        p.TargetInfo.TargetAvailable != 0,
			StatusFlags:      p.TargetInfo.StatusFlags,
		},
		Flags: display.PathFlags(p.Flags),
	}
}

func pathToCCD(p display.Path) DisplayConfigPathInfo {
	return DisplayConfigPathInfo{
		SourceInfo: DisplayConfigPathSourceInfo{
			AdapterID:   toLUID(p.Source.AdapterID),
			ID:          p.Source.ID,
			ModeInfoIdx: p.Source.ModeInfoIdx,
			StatusFlags: p.Source.StatusFlags,
		},
		TargetInfo: DisplayConfigPathTargetInfo{
			AdapterID:        toLUID(p.Target.AdapterID),
			ID:               p.Target.ID,
			ModeInfoIdx:      p.Target.ModeInfoIdx,
			OutputTechnology: uint32(p.Target.OutputTechnology),
			Rotation:         p.Target.Rotation,
			Scaling:          p.Target.Scaling,
			RefreshRate:      toRational(p.Target.RefreshRate),
			ScanLineOrdering: p.Target.ScanLineOrdering,
			TargetAvailable:  boolToUint32(p.Target.Available),
			StatusFlags:      p.Target.StatusFlags,
		},
		Flags: uint32(p.Flags),
	}
}

func modeFromCCD(m *DisplayConfigModeInfo) display.Mode {
	mode := display.Mode{ID: m.ID, AdapterID: fromLUID(m.AdapterID)}
	switch m.InfoType {
	case DisplayConfigModeInfoTypeSource:
		src := m.SourceMode()
		mode.Info = display.SourceMode{
			Width:       src.Width,
			Height:      src.Height,
			PixelFormat: src.PixelFormat,
			Position:    display.PointL{X: src.Position.X, Y: src.Position.Y},
		}
	case DisplayConfigModeInfoTypeTarget:
		sig := m.TargetMode().TargetVideoSignalInfo
		mode.Info = display.TargetMode{Signal: display.VideoSignalInfo{
			PixelRate:        sig.PixelRate,
			HSyncFreq:        fromRational(sig.HSyncFreq),
			VSyncFreq:        fromRational(sig.VSyncFreq),
			ActiveSize:       display.Region{Cx: sig.ActiveSize.Cx, Cy: sig.ActiveSize.Cy},
			TotalSize:        display.Region{Cx: sig.TotalSize.Cx, Cy: sig.TotalSize.Cy},
			VideoStandard:    sig.VideoStandard,
			ScanLineOrdering: sig.ScanLineOrdering,
		}}
	case DisplayConfigModeInfoTypeDesktopImage:
		img := m.DesktopImageInfo()
		mode.Info = display.DesktopImageMode{
			PathSourceSize:     display.PointL{X: img.PathSourceSize.X, Y: img.PathSourceSize.Y},
			DesktopImageRegion: fromRectL(img.DesktopImageRegion),
			DesktopImageClip:   fromRectL(img.DesktopImageClip),
		}
	}
	return mode
}

func modeToCCD(m display.Mode) DisplayConfigModeInfo {
	raw := DisplayConfigModeInfo{ID: m.ID, AdapterID: toLUID(m.AdapterID)}
	switch info := m.Info.(type) {
	case display.SourceMode:
		raw.InfoType = DisplayConfigModeInfoTypeSource
		*raw.SourceMode() = DisplayConfigSourceMode{
			Width:       info.Width,
			Height:      info.Height,
			PixelFormat: info.PixelFormat,
			Position:    PointL{X: info.Position.X, Y: info.Position.Y},
		}
	case display.TargetMode:
		sig := info.Signal
		raw.InfoType = DisplayConfigModeInfoTypeTarget
		*raw.TargetMode() = DisplayConfigTargetMode{TargetVideoSignalInfo: DisplayConfigVideoSignalInfo{
			PixelRate:        sig.PixelRate,
			HSyncFreq:        toRational(sig.HSyncFreq),
			VSyncFreq:        toRational(sig.VSyncFreq),
			ActiveSize:       DisplayConfig2DRegion{Cx: sig.ActiveSize.Cx, Cy: sig.ActiveSize.Cy},
			TotalSize:        DisplayConfig2DRegion{Cx: sig.TotalSize.Cx, Cy: sig.TotalSize.Cy},
			VideoStandard:    sig.VideoStandard,
			ScanLineOrdering: sig.ScanLineOrdering,
		}}
	case display.DesktopImageMode:
		raw.InfoType = DisplayConfigModeInfoTypeDesktopImage
		*raw.DesktopImageInfo() = DisplayConfigDesktopImageInfo{
			PathSourceSize:     PointL{X: info.PathSourceSize.X, Y: info.PathSourceSize.Y},
			DesktopImageRegion: toRectL(info.DesktopImageRegion),
			DesktopImageClip:   toRectL(info.DesktopImageClip),
		}
	}
	return raw
}

func fromRectL(r RectL) display.RectL {
	return display.RectL{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}

func toRectL(r display.RectL) RectL {
	return RectL{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}

func boolToUint32(value bool) uint32 {
	if value {
		return 1
	}
	return 0
}
