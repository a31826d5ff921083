package display

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// sourceRef ties a GDI device name to the topology ids of its source.
type sourceRef struct {
	adapter      AdapterID
	sourceID     uint32
	targetID     uint32
	friendlyName string
}

// sourceJoin maps lower-cased GDI device names to their active source. The
// legacy mode API and the topology API identify displays differently and
// device names are the only common key.
func (m *Manager) sourceJoin() map[string]sourceRef {
	join := make(map[string]sourceRef)
	paths, _, err := m.QueryTopology(OnlyActivePaths)
	if err != nil {
		m.log.WithError(err).Warn("active topology unavailable, adapter ids will be missing")
		return join
	}
	for _, p := range paths {
		if !p.Active() {
			continue
		}
		name := m.SourceName(p.Source.AdapterID, p.Source.ID)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := join[key]; ok {
			continue
		}
		join[key] = sourceRef{
			adapter:      p.Source.AdapterID,
			sourceID:     p.Source.ID,
			targetID:     p.Target.ID,
			friendlyName: m.TargetFriendlyName(p.Target.AdapterID, p.Target.ID),
		}
	}
	return join
}

func attachedDevices(devices []Device) []Device {
	out := devices[:0:0]
	for _, d := range devices {
		if d.Attached {
			out = append(out, d)
		}
	}
	return out
}

// Capture snapshots the current settings of every attached display, including
// the adapter, source and target ids needed to restore DPI scaling and the
// enabled state later. Connected but detached displays are recorded as
// disabled settings after the attached ones.
func (m *Manager) Capture() ([]DisplaySetting, error) {
	devices, err := m.gw.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate display devices: %w", err)
	}
	join := m.sourceJoin()

	var settings []DisplaySetting
	for _, d := range attachedDevices(devices) {
		mode, err := m.gw.CurrentMode(d.Name)
		if err != nil {
			m.log.WithField("device", d.Name).WithError(err).Warn("current mode unavailable, display skipped")
			continue
		}

		s := DisplaySetting{
			DeviceName:   d.Name,
			DeviceString: d.String,
			Width:        int(mode.Width),
			Height:       int(mode.Height),
			Frequency:    int(mode.Frequency),
			DPIScaling:   100,
			IsPrimary:    d.Primary,
		}
		if ref, ok := join[strings.ToLower(d.Name)]; ok {
			s.FriendlyName = ref.friendlyName
			s.AdapterID = FormatAdapterID(ref.adapter)
			s.SourceID = ref.sourceID
			s.TargetID = ref.targetID
			s.DPIScaling = m.GetScaling(ref.adapter, ref.sourceID).Current
		}
		if s.FriendlyName == "" {
			s.FriendlyName = d.String
		}

		m.log.WithFields(logrus.Fields{
			"device":  s.DeviceName,
			"mode":    mode.String(),
			"dpi":     s.DPIScaling,
			"adapter": s.AdapterID,
		}).Debug("captured display")
		settings = append(settings, s)
	}
	return append(settings, m.detachedSettings()...), nil
}

// detachedSettings records connected displays that are not attached to the
// desktop, so applying the profile can detach them again.
func (m *Manager) detachedSettings() []DisplaySetting {
	infos, err := m.GetTopology()
	if err != nil {
		m.log.WithError(err).Warn("topology unavailable, detached displays not captured")
		return nil
	}

	var settings []DisplaySetting
	for _, info := range infos {
		if info.IsEnabled || !info.IsAvailable {
			continue
		}
		s := DisplaySetting{
			DeviceName:   info.DeviceName,
			FriendlyName: info.FriendlyName,
			AdapterID:    FormatAdapterID(info.AdapterID),
			SourceID:     info.SourceID,
			TargetID:     info.TargetID,
			Disabled:     true,
		}
		if s.FriendlyName == "" {
			s.FriendlyName = s.DeviceName
		}
		m.log.WithFields(logrus.Fields{
			"device":  s.DeviceName,
			"target":  s.TargetID,
			"adapter": s.AdapterID,
		}).Debug("captured detached display")
		settings = append(settings, s)
	}
	return settings
}

// Displays returns a rendering snapshot of every attached display.
func (m *Manager) Displays() ([]DisplayInfo, error) {
	devices, err := m.gw.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate display devices: %w", err)
	}

	monitors := make(map[string]Monitor)
	if list, err := m.gw.Monitors(); err != nil {
		m.log.WithError(err).Debug("monitor geometry unavailable")
	} else {
		for _, mon := range list {
			monitors[strings.ToLower(mon.DeviceName)] = mon
		}
	}
	join := m.sourceJoin()

	var out []DisplayInfo
	for _, d := range attachedDevices(devices) {
		info := DisplayInfo{
			DeviceName:   d.Name,
			DeviceString: d.String,
			FriendlyName: d.String,
			IsPrimary:    d.Primary,
			Scaling:      defaultScaling(),
		}
		if mode, err := m.gw.CurrentMode(d.Name); err == nil {
			info.Mode = mode
		} else {
			m.log.WithField("device", d.Name).WithError(err).Debug("current mode unavailable")
		}
		if mon, ok := monitors[strings.ToLower(d.Name)]; ok {
			info.Bounds = mon.Bounds
			info.WorkArea = mon.WorkArea
			info.IsPrimary = info.IsPrimary || mon.Primary
		}
		if ref, ok := join[strings.ToLower(d.Name)]; ok {
			info.HasTopology = true
			info.AdapterID = ref.adapter
			info.SourceID = ref.sourceID
			if ref.friendlyName != "" {
				info.FriendlyName = ref.friendlyName
			}
			info.Scaling = m.GetScaling(ref.adapter, ref.sourceID)
		}
		out = append(out, info)
	}
	return out, nil
}

// SetDisplayScale sets the DPI scaling of the display with the given GDI
// device name.
func (m *Manager) SetDisplayScale(deviceName string, percent int) error {
	ref, ok := m.sourceJoin()[strings.ToLower(deviceName)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDisplayNotFound, deviceName)
	}
	return m.SetScaling(ref.adapter, ref.sourceID, percent)
}
