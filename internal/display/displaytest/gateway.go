// Package displaytest provides an in-memory display.Gateway for tests.
package displaytest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"display-profile-switcher/internal/display"
)

var ErrUnknownDevice = errors.New("unknown device")

// Display describes one monitor of the fake topology.
type Display struct {
	Name       string
	Friendly   string
	UniqueName string
	String     string
	Adapter    display.AdapterID
	SourceID   uint32
	TargetID   uint32
	Width      uint32
	Height     uint32
	Frequency  uint32
	Active     bool
	Primary    bool
	Scale      display.ScaleRange
	// Unavailable marks a target that is not connected.
	Unavailable bool
}

type Commit struct {
	Paths []display.Path
	Modes []display.Mode
	Flags display.CommitFlags
}

type DPIWrite struct {
	Adapter  display.AdapterID
	SourceID uint32
	Relative int32
}

type ModeChange struct {
	Device string
	Mode   display.DeviceMode
	Fields display.ModeFields
	Flags  display.ModeChangeFlags
}

type sourceKey struct {
	adapter display.AdapterID
	id      uint32
}

// Gateway is a fake OS display configuration. Mutating calls are recorded in
// Calls in the order they happen.
type Gateway struct {
	mu sync.Mutex

	PathTable []display.Path
	ModeTable []display.Mode

	displays []Display
	pathOf   []int
	scales   map[sourceKey]display.ScaleRange
	current  map[string]display.DeviceMode
	modes    map[string][]display.DeviceMode

	// QueryErrs are returned by successive QueryConfig calls before queries
	// start succeeding.
	QueryErrs   []error
	CommitErr   error
	DPIReadErr  error
	DPIWriteErr map[string]error
	ModeStatus  map[string]display.ChangeStatus
	MonitorsErr error

	QueryCount  int
	Commits     []Commit
	DPIWrites   []DPIWrite
	ModeChanges []ModeChange
	Calls       []string
}

func New(displays ...Display) *Gateway {
	g := &Gateway{
		scales:      make(map[sourceKey]display.ScaleRange),
		current:     make(map[string]display.DeviceMode),
		modes:       make(map[string][]display.DeviceMode),
		DPIWriteErr: make(map[string]error),
		ModeStatus:  make(map[string]display.ChangeStatus),
	}
	for _, d := range displays {
		g.Add(d)
	}
	return g
}

// Add appends a display and returns the index of its path.
func (g *Gateway) Add(d Display) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if d.String == "" {
		d.String = "Fake Display Adapter"
	}
	p := display.Path{
		Source: display.PathSource{
			AdapterID:   d.Adapter,
			ID:          d.SourceID,
			ModeInfoIdx: display.InvalidModeIndex,
		},
		Target: display.PathTarget{
			AdapterID:        d.Adapter,
			ID:               d.TargetID,
			ModeInfoIdx:      display.InvalidModeIndex,
			OutputTechnology: display.OutputTechnologyHDMI,
			RefreshRate:      display.Rational{Numerator: d.Frequency * 1000, Denominator: 1000},
			Available:        !d.Unavailable,
		},
	}
	if d.Active {
		p.SetActive(true)
		p.Source.ModeInfoIdx = uint32(len(g.ModeTable))
		g.ModeTable = append(g.ModeTable, display.NewSourceMode(d.Adapter, d.SourceID, display.SourceMode{
			Width:  d.Width,
			Height: d.Height,
		}))
		p.Target.ModeInfoIdx = uint32(len(g.ModeTable))
		g.ModeTable = append(g.ModeTable, display.NewTargetMode(d.Adapter, d.TargetID, display.TargetMode{
			Signal: display.VideoSignalInfo{
				VSyncFreq:  display.Rational{Numerator: d.Frequency * 1000, Denominator: 1000},
				ActiveSize: display.Region{Cx: d.Width, Cy: d.Height},
			},
		}))
		g.current[strings.ToLower(d.Name)] = display.DeviceMode{
			Width:      d.Width,
			Height:     d.Height,
			Frequency:  d.Frequency,
			BitsPerPel: 32,
		}
	}
	g.modes[strings.ToLower(d.Name)] = []display.DeviceMode{
		{Width: d.Width, Height: d.Height, Frequency: d.Frequency, BitsPerPel: 32},
		{Width: d.Width, Height: d.Height, Frequency: d.Frequency, BitsPerPel: 16},
		{Width: 1280, Height: 720, Frequency: 60, BitsPerPel: 32},
	}
	g.scales[sourceKey{d.Adapter, d.SourceID}] = d.Scale

	g.PathTable = append(g.PathTable, p)
	g.displays = append(g.displays, d)
	g.pathOf = append(g.pathOf, len(g.PathTable)-1)
	return len(g.PathTable) - 1
}

// AddPath appends a raw path, e.g. an alternative inactive source for an
// existing target.
func (g *Gateway) AddPath(p display.Path) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.PathTable = append(g.PathTable, p)
	return len(g.PathTable) - 1
}

// Scale returns the stored relative scale reading of a source.
func (g *Gateway) Scale(adapter display.AdapterID, sourceID uint32) display.ScaleRange {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scales[sourceKey{adapter, sourceID}]
}

// Mode returns the stored current mode of a device.
func (g *Gateway) Mode(deviceName string) display.DeviceMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current[strings.ToLower(deviceName)]
}

func (g *Gateway) QueryConfig(scope display.QueryScope) ([]display.Path, []display.Mode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.QueryCount++
	if len(g.QueryErrs) > 0 {
		err := g.QueryErrs[0]
		g.QueryErrs = g.QueryErrs[1:]
		return nil, nil, err
	}

	paths := make([]display.Path, 0, len(g.PathTable))
	for _, p := range g.PathTable {
		if scope == display.OnlyActivePaths && !p.Active() {
			continue
		}
		paths = append(paths, p)
	}
	modes := append([]display.Mode(nil), g.ModeTable...)
	return paths, modes, nil
}

func (g *Gateway) CommitConfig(paths []display.Path, modes []display.Mode, flags display.CommitFlags) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls = append(g.Calls, "commit")
	g.Commits = append(g.Commits, Commit{
		Paths: append([]display.Path(nil), paths...),
		Modes: append([]display.Mode(nil), modes...),
		Flags: flags,
	})
	if g.CommitErr != nil {
		return g.CommitErr
	}
	if flags&display.CommitApply != 0 {
		g.PathTable = append([]display.Path(nil), paths...)
		g.ModeTable = append([]display.Mode(nil), modes...)
	}
	return nil
}

func (g *Gateway) displayBySource(adapter display.AdapterID, sourceID uint32) (Display, bool) {
	for _, d := range g.displays {
		if d.Adapter == adapter && d.SourceID == sourceID {
			return d, true
		}
	}
	return Display{}, false
}

func (g *Gateway) displayByTarget(adapter display.AdapterID, targetID uint32) (Display, bool) {
	for _, d := range g.displays {
		if d.Adapter == adapter && d.TargetID == targetID && !d.Unavailable {
			return d, true
		}
	}
	return Display{}, false
}

func (g *Gateway) SourceName(adapter display.AdapterID, sourceID uint32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d, ok := g.displayBySource(adapter, sourceID); ok {
		return d.Name, nil
	}
	return "", fmt.Errorf("source %d: %w", sourceID, ErrUnknownDevice)
}

func (g *Gateway) TargetName(adapter display.AdapterID, targetID uint32) (display.TargetName, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d, ok := g.displayByTarget(adapter, targetID); ok {
		return display.TargetName{FriendlyName: d.Friendly, OutputTechnology: display.OutputTechnologyHDMI}, nil
	}
	return display.TargetName{}, fmt.Errorf("target %d: %w", targetID, ErrUnknownDevice)
}

func (g *Gateway) MonitorUniqueName(adapter display.AdapterID, targetID uint32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d, ok := g.displayByTarget(adapter, targetID); ok && d.UniqueName != "" {
		return d.UniqueName, nil
	}
	return "", fmt.Errorf("target %d: %w", targetID, ErrUnknownDevice)
}

func (g *Gateway) DPIScale(adapter display.AdapterID, sourceID uint32) (display.ScaleRange, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.DPIReadErr != nil {
		return display.ScaleRange{}, g.DPIReadErr
	}
	r, ok := g.scales[sourceKey{adapter, sourceID}]
	if !ok {
		return display.ScaleRange{}, fmt.Errorf("source %d: %w", sourceID, ErrUnknownDevice)
	}
	return r, nil
}

func (g *Gateway) SetDPIScale(adapter display.AdapterID, sourceID uint32, relative int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := ""
	if d, ok := g.displayBySource(adapter, sourceID); ok {
		name = d.Name
	}
	g.Calls = append(g.Calls, "dpi:"+name)
	g.DPIWrites = append(g.DPIWrites, DPIWrite{Adapter: adapter, SourceID: sourceID, Relative: relative})
	if err := g.DPIWriteErr[strings.ToLower(name)]; err != nil {
		return err
	}
	key := sourceKey{adapter, sourceID}
	r, ok := g.scales[key]
	if !ok {
		return fmt.Errorf("source %d: %w", sourceID, ErrUnknownDevice)
	}
	r.Current = relative
	g.scales[key] = r
	return nil
}

func (g *Gateway) Devices() ([]display.Device, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]display.Device, 0, len(g.displays))
	for i, d := range g.displays {
		active := false
		if idx := g.pathOf[i]; idx < len(g.PathTable) {
			active = g.PathTable[idx].Active()
		}
		out = append(out, display.Device{
			Name:     d.Name,
			String:   d.String,
			Primary:  d.Primary,
			Attached: active,
		})
	}
	return out, nil
}

func (g *Gateway) Monitors() ([]display.Monitor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.MonitorsErr != nil {
		return nil, g.MonitorsErr
	}

	var out []display.Monitor
	left := 0
	for _, d := range g.displays {
		mode, ok := g.current[strings.ToLower(d.Name)]
		if !ok {
			continue
		}
		bounds := display.Rect{Left: left, Right: left + int(mode.Width), Bottom: int(mode.Height)}
		work := bounds
		work.Bottom -= 40
		out = append(out, display.Monitor{DeviceName: d.Name, Bounds: bounds, WorkArea: work, Primary: d.Primary})
		left = bounds.Right
	}
	return out, nil
}

func (g *Gateway) CurrentMode(deviceName string) (display.DeviceMode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	mode, ok := g.current[strings.ToLower(deviceName)]
	if !ok {
		return display.DeviceMode{}, fmt.Errorf("%s: %w", deviceName, ErrUnknownDevice)
	}
	return mode, nil
}

func (g *Gateway) Modes(deviceName string) ([]display.DeviceMode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	modes, ok := g.modes[strings.ToLower(deviceName)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", deviceName, ErrUnknownDevice)
	}
	return append([]display.DeviceMode(nil), modes...), nil
}

func (g *Gateway) ChangeMode(deviceName string, mode display.DeviceMode, fields display.ModeFields, flags display.ModeChangeFlags) (display.ChangeStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls = append(g.Calls, "mode:"+deviceName)
	g.ModeChanges = append(g.ModeChanges, ModeChange{Device: deviceName, Mode: mode, Fields: fields, Flags: flags})

	key := strings.ToLower(deviceName)
	cur, ok := g.current[key]
	if !ok {
		return display.ChangeBadParam, fmt.Errorf("%s: %w", deviceName, ErrUnknownDevice)
	}
	if status, ok := g.ModeStatus[key]; ok && status != display.ChangeSuccessful {
		return status, nil
	}
	if flags&display.ModeTest != 0 {
		return display.ChangeSuccessful, nil
	}
	if fields&display.FieldPelsWidth != 0 {
		cur.Width = mode.Width
	}
	if fields&display.FieldPelsHeight != 0 {
		cur.Height = mode.Height
	}
	if fields&display.FieldDisplayFrequency != 0 {
		cur.Frequency = mode.Frequency
	}
	g.current[key] = cur
	return display.ChangeSuccessful, nil
}
