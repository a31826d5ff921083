package display

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

type sourceKey struct {
	adapter AdapterID
	id      uint32
}

type targetKey struct {
	adapter AdapterID
	id      uint32
}

// GetTopology lists one entry per available target. Targets with an active
// path report that path; disconnected-from-desktop targets report the first
// path whose source is not already driving another display, so that they can
// be enabled. PathIndex indexes the all-paths query.
func (m *Manager) GetTopology() ([]DisplayConfigInfo, error) {
	paths, modes, err := m.QueryTopology(AllPaths)
	if err != nil {
		return nil, err
	}
	return m.topologyFrom(paths, modes), nil
}

func (m *Manager) topologyFrom(paths []Path, modes []Mode) []DisplayConfigInfo {
	usedSources := make(map[sourceKey]struct{})
	seenTargets := make(map[targetKey]struct{})
	var picked []int

	for i, p := range paths {
		if !p.Target.Available || !p.Active() {
			continue
		}
		tk := targetKey{p.Target.AdapterID, p.Target.ID}
		if _, ok := seenTargets[tk]; ok {
			continue
		}
		seenTargets[tk] = struct{}{}
		usedSources[sourceKey{p.Source.AdapterID, p.Source.ID}] = struct{}{}
		picked = append(picked, i)
	}

	for i, p := range paths {
		if !p.Target.Available || p.Active() {
			continue
		}
		tk := targetKey{p.Target.AdapterID, p.Target.ID}
		sk := sourceKey{p.Source.AdapterID, p.Source.ID}
		if _, ok := seenTargets[tk]; ok {
			continue
		}
		if _, ok := usedSources[sk]; ok {
			continue
		}
		seenTargets[tk] = struct{}{}
		usedSources[sk] = struct{}{}
		picked = append(picked, i)
	}

	slices.Sort(picked)
	infos := make([]DisplayConfigInfo, 0, len(picked))
	for _, i := range picked {
		infos = append(infos, m.configInfo(i, paths[i], modes))
	}
	return infos
}

func (m *Manager) configInfo(index int, p Path, modes []Mode) DisplayConfigInfo {
	info := DisplayConfigInfo{
		DeviceName:       m.SourceName(p.Source.AdapterID, p.Source.ID),
		FriendlyName:     m.TargetFriendlyName(p.Target.AdapterID, p.Target.ID),
		IsEnabled:        p.Active(),
		IsAvailable:      p.Target.Available,
		AdapterID:        p.Source.AdapterID,
		SourceID:         p.Source.ID,
		TargetID:         p.Target.ID,
		PathIndex:        index,
		OutputTechnology: p.Target.OutputTechnology,
	}
	if !p.Active() {
		return info
	}
	if src, ok := sourceModeOf(p, modes); ok {
		info.Width = int(src.Width)
		info.Height = int(src.Height)
	}
	if tgt, ok := targetModeOf(p, modes); ok {
		if hz, ok := tgt.Signal.VSyncFreq.Hz(); ok {
			info.RefreshRate = hz
		}
	}
	return info
}

// ApplyTopology sets the enabled state of the given paths and commits the
// whole topology in one call. The current configuration is re-queried first
// and every PathIndex must still refer to the same adapter, source and target.
// A request that would leave no display enabled is refused before any OS
// call is made.
func (m *Manager) ApplyTopology(infos []DisplayConfigInfo) error {
	return m.commitTopology(infos, applyTopologyFlags)
}

// ValidateTopology checks that ApplyTopology would be accepted without
// changing anything.
func (m *Manager) ValidateTopology(infos []DisplayConfigInfo) error {
	return m.commitTopology(infos, validateTopologyFlags)
}

func (m *Manager) commitTopology(infos []DisplayConfigInfo, flags CommitFlags) error {
	if countEnabled(infos) == 0 {
		return ErrNoEnabledDisplay
	}

	paths, modes, err := m.QueryTopology(AllPaths)
	if err != nil {
		return err
	}

	for _, info := range infos {
		if info.PathIndex < 0 || info.PathIndex >= len(paths) {
			return fmt.Errorf("%w: %s index %d of %d", ErrStalePathIndex, info.DeviceName, info.PathIndex, len(paths))
		}
		p := &paths[info.PathIndex]
		if p.Source.AdapterID != info.AdapterID || p.Source.ID != info.SourceID || p.Target.ID != info.TargetID {
			return fmt.Errorf("%w: %s index %d", ErrStalePathIndex, info.DeviceName, info.PathIndex)
		}
		p.SetActive(info.IsEnabled)
	}

	active := 0
	for _, p := range paths {
		if p.Active() {
			active++
		}
	}
	if active == 0 {
		return ErrNoEnabledDisplay
	}

	if err := m.gw.CommitConfig(paths, modes, flags); err != nil {
		m.log.WithField("flags", fmt.Sprintf("%#x", uint32(flags))).WithError(err).Warn("topology commit failed")
		return fmt.Errorf("%w: %w", ErrTopologyCommit, err)
	}
	m.log.WithFields(logrus.Fields{
		"paths":  len(paths),
		"active": active,
	}).Debug("topology committed")
	return nil
}

// EnableDisplay attaches a display to the desktop. It is a no-op when the
// display is already enabled.
func (m *Manager) EnableDisplay(name string) error {
	return m.setDisplayEnabled(name, true)
}

// DisableDisplay detaches a display from the desktop. The last enabled display
// cannot be disabled.
func (m *Manager) DisableDisplay(name string) error {
	return m.setDisplayEnabled(name, false)
}

func (m *Manager) setDisplayEnabled(name string, enabled bool) error {
	infos, err := m.GetTopology()
	if err != nil {
		return err
	}

	idx := findConfigInfo(infos, name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrDisplayNotFound, name)
	}
	if infos[idx].IsEnabled == enabled {
		return nil
	}
	if !enabled && countEnabled(infos) <= 1 {
		return ErrLastDisplay
	}

	infos[idx].IsEnabled = enabled
	return m.ApplyTopology(infos)
}

func findConfigInfo(infos []DisplayConfigInfo, name string) int {
	for i, info := range infos {
		if info.DeviceName != "" && strings.EqualFold(info.DeviceName, name) {
			return i
		}
	}
	for i, info := range infos {
		if info.FriendlyName != "" && strings.EqualFold(info.FriendlyName, name) {
			return i
		}
	}
	return -1
}

func countEnabled(infos []DisplayConfigInfo) int {
	n := 0
	for _, info := range infos {
		if info.IsEnabled {
			n++
		}
	}
	return n
}
