package display

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"
)

// ChangeResolution sets the resolution, and the refresh rate when frequency is
// positive, of a GDI device and persists it to the registry. Only an
// immediately successful change returns nil; a change that needs a restart
// returns an error matching ErrRestartRequired.
func (m *Manager) ChangeResolution(deviceName string, width, height, frequency int) error {
	return m.changeResolution(deviceName, width, height, frequency, ModeUpdateRegistry)
}

// TestResolution validates a resolution change without applying it.
func (m *Manager) TestResolution(deviceName string, width, height, frequency int) error {
	return m.changeResolution(deviceName, width, height, frequency, ModeTest)
}

func (m *Manager) changeResolution(deviceName string, width, height, frequency int, flags ModeChangeFlags) error {
	if width <= 0 || height <= 0 || uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return fmt.Errorf("%w: invalid resolution %dx%d", ErrResolutionChange, width, height)
	}
	if frequency > 0 && uint64(frequency) > math.MaxUint32 {
		return fmt.Errorf("%w: invalid frequency %d", ErrResolutionChange, frequency)
	}

	mode := DeviceMode{Width: uint32(width), Height: uint32(height)}
	fields := FieldPelsWidth | FieldPelsHeight
	if frequency > 0 {
		mode.Frequency = uint32(frequency)
		fields |= FieldDisplayFrequency
	}

	log := m.log.WithFields(logrus.Fields{
		"device": deviceName,
		"mode":   mode.String(),
		"test":   flags&ModeTest != 0,
	})

	status, err := m.gw.ChangeMode(deviceName, mode, fields, flags)
	if err != nil {
		log.WithError(err).Warn("mode change failed")
		return fmt.Errorf("%w: %s: %w", ErrResolutionChange, deviceName, err)
	}
	if status != ChangeSuccessful {
		log.WithField("status", status.String()).Warn("mode change not applied")
		return &ModeChangeError{Device: deviceName, Status: status}
	}
	log.Debug("mode changed")
	return nil
}

// CurrentMode returns the mode a GDI device is currently running.
func (m *Manager) CurrentMode(deviceName string) (DeviceMode, error) {
	return m.gw.CurrentMode(deviceName)
}

// AvailableModes lists the distinct resolution and refresh rate combinations a
// device supports, largest first.
func (m *Manager) AvailableModes(deviceName string) ([]DeviceMode, error) {
	modes, err := m.gw.Modes(deviceName)
	if err != nil {
		return nil, err
	}

	type key struct{ w, h, f uint32 }
	seen := make(map[key]struct{}, len(modes))
	out := make([]DeviceMode, 0, len(modes))
	for _, mode := range modes {
		k := key{mode.Width, mode.Height, mode.Frequency}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, DeviceMode{Width: mode.Width, Height: mode.Height, Frequency: mode.Frequency})
	}

	slices.SortFunc(out, func(a, b DeviceMode) int {
		if c := cmp.Compare(b.Width, a.Width); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Height, a.Height); c != 0 {
			return c
		}
		return cmp.Compare(b.Frequency, a.Frequency)
	})
	return out, nil
}
