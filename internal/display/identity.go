package display

import "github.com/sirupsen/logrus"

// SourceName returns the GDI device name of a source, or "" when the lookup
// fails.
func (m *Manager) SourceName(adapter AdapterID, sourceID uint32) string {
	name, err := m.gw.SourceName(adapter, sourceID)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"adapter": adapter.String(),
			"source":  sourceID,
		}).WithError(err).Debug("source name lookup failed")
		return ""
	}
	return name
}

// TargetFriendlyName returns the monitor friendly name of a target, or "" when
// the lookup fails.
func (m *Manager) TargetFriendlyName(adapter AdapterID, targetID uint32) string {
	name, err := m.gw.TargetName(adapter, targetID)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"adapter": adapter.String(),
			"target":  targetID,
		}).WithError(err).Debug("target name lookup failed")
		return ""
	}
	return name.FriendlyName
}

// MonitorUniqueName returns a vendor and serial stable identity for a target.
// Unlike the friendly name it survives driver and EDID name changes.
func (m *Manager) MonitorUniqueName(adapter AdapterID, targetID uint32) string {
	name, err := m.gw.MonitorUniqueName(adapter, targetID)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"adapter": adapter.String(),
			"target":  targetID,
		}).WithError(err).Debug("monitor unique name lookup failed")
		return ""
	}
	return name
}
