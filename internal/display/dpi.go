package display

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// scaleTable holds the scaling percentages the OS steps through, in order.
// The OS reports scaling as offsets into this table relative to the
// recommended entry.
var scaleTable = [...]int{100, 125, 150, 175, 200, 225, 250, 300, 350, 400, 450, 500}

// ScaleTable returns a copy of the supported scaling percentages.
func ScaleTable() []int {
	out := make([]int, len(scaleTable))
	copy(out, scaleTable[:])
	return out
}

// ScalingInfo is the DPI scaling of one source in percent.
type ScalingInfo struct {
	Minimum     int
	Maximum     int
	Current     int
	Recommended int
	Initialized bool
}

func defaultScaling() ScalingInfo {
	return ScalingInfo{Minimum: 100, Maximum: 100, Current: 100, Recommended: 100}
}

// ResolveScaling converts a relative scale reading into percentages. The
// recommended entry sits at table index |Min|; Current is clamped into
// [Min, Max] first. If the table cannot hold the reported range the result
// stays at the uninitialized 100% defaults.
func ResolveScaling(r ScaleRange) ScalingInfo {
	info := defaultScaling()
	minRel, curRel, maxRel := int(r.Min), int(r.Current), int(r.Max)
	if maxRel < minRel {
		return info
	}
	curRel = max(minRel, min(curRel, maxRel))

	base := minRel
	if base < 0 {
		base = -base
	}
	if len(scaleTable) < base+maxRel+1 {
		return info
	}

	info.Minimum = scaleTable[0]
	info.Recommended = scaleTable[base]
	info.Current = scaleTable[base+curRel]
	info.Maximum = scaleTable[base+maxRel]
	info.Initialized = true
	return info
}

func scaleIndex(percent int) int {
	for i, v := range scaleTable {
		if v == percent {
			return i
		}
	}
	return -1
}

// GetScaling reads the DPI scaling of a source. Failures degrade to the
// uninitialized 100% defaults.
func (m *Manager) GetScaling(adapter AdapterID, sourceID uint32) ScalingInfo {
	r, err := m.gw.DPIScale(adapter, sourceID)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"adapter": adapter.String(),
			"source":  sourceID,
		}).WithError(err).Debug("dpi scale read failed")
		return defaultScaling()
	}
	info := ResolveScaling(r)
	if !info.Initialized {
		m.log.WithFields(logrus.Fields{
			"adapter": adapter.String(),
			"source":  sourceID,
			"min":     r.Min,
			"cur":     r.Current,
			"max":     r.Max,
		}).Warn("dpi scale range exceeds the scaling table")
	}
	return info
}

// SetScaling sets the DPI scaling of a source to percent, clamped into the
// supported range. Only the offset from the recommended entry is written.
func (m *Manager) SetScaling(adapter AdapterID, sourceID uint32, percent int) error {
	info := m.GetScaling(adapter, sourceID)
	if percent == info.Current {
		return nil
	}
	if !info.Initialized {
		return ErrDPIUnavailable
	}

	target := max(info.Minimum, min(percent, info.Maximum))
	targetIdx := scaleIndex(target)
	recommendedIdx := scaleIndex(info.Recommended)
	if targetIdx < 0 || recommendedIdx < 0 {
		return fmt.Errorf("%w: %d%% is not a supported scale", ErrDPIWrite, target)
	}

	relative := int32(targetIdx - recommendedIdx)
	log := m.log.WithFields(logrus.Fields{
		"adapter":  adapter.String(),
		"source":   sourceID,
		"percent":  target,
		"relative": relative,
	})
	if err := m.gw.SetDPIScale(adapter, sourceID, relative); err != nil {
		log.WithError(err).Warn("dpi scale write failed")
		return fmt.Errorf("%w: %w", ErrDPIWrite, err)
	}
	log.Debug("dpi scale set")
	return nil
}
