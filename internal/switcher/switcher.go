// Package switcher applies display profiles.
package switcher

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"display-profile-switcher/internal/display"
	"display-profile-switcher/internal/profile"
)

// DisplayManager is the part of display.Manager a profile apply needs.
type DisplayManager interface {
	GetTopology() ([]display.DisplayConfigInfo, error)
	ApplyTopology(infos []display.DisplayConfigInfo) error
	ChangeResolution(deviceName string, width, height, frequency int) error
	SetScaling(adapter display.AdapterID, sourceID uint32, percent int) error
}

// CurrentStore records the last fully applied profile.
type CurrentStore interface {
	SetCurrent(id string) error
}

// AudioSwitcher switches the default audio endpoints of a profile.
type AudioSwitcher interface {
	SetDefaultDevices(outputID, inputID string) error
}

type State int

const (
	AllApplied State = iota
	PartiallyFailed
)

func (s State) String() string {
	if s == AllApplied {
		return "applied"
	}
	return "partially failed"
}

// DisplayOutcome is what happened to one display setting of a profile.
type DisplayOutcome struct {
	Setting display.DisplaySetting
	// Disabled is set for a display the profile keeps detached; no resolution
	// or DPI change is made for it.
	Disabled      bool
	ResolutionErr error
	// DPIAttempted is false when the resolution change failed or no adapter
	// id was recorded for the display.
	DPIAttempted bool
	DPIErr       error
}

type Result struct {
	ProfileID string
	State     State
	// TopologyChanged is set when displays were attached or detached.
	TopologyChanged bool
	TopologyErr     error
	Displays        []DisplayOutcome
	AudioErr        error
}

// Err joins the resolution failures. Topology, DPI and audio failures do not
// fail a profile and are only reported on the result.
func (r Result) Err() error {
	var errs []error
	for _, d := range r.Displays {
		if d.ResolutionErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Setting.DeviceName, d.ResolutionErr))
		}
	}
	return errors.Join(errs...)
}

type Switcher struct {
	mu            sync.Mutex
	displays      DisplayManager
	store         CurrentStore
	audio         AudioSwitcher
	onApplied     func(profile.Profile)
	applyDPI      bool
	applyTopology bool
	log           logrus.FieldLogger
}

type Option func(*Switcher)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Switcher) {
		if log != nil {
			s.log = log
		}
	}
}

func WithStore(store CurrentStore) Option {
	return func(s *Switcher) { s.store = store }
}

func WithAudio(audio AudioSwitcher) Option {
	return func(s *Switcher) { s.audio = audio }
}

// WithDPI turns the DPI step of an apply on or off.
func WithDPI(enabled bool) Option {
	return func(s *Switcher) { s.applyDPI = enabled }
}

// WithTopology turns attaching and detaching displays on or off.
func WithTopology(enabled bool) Option {
	return func(s *Switcher) { s.applyTopology = enabled }
}

// OnApplied registers a callback run after a profile applied without a
// resolution failure.
func OnApplied(fn func(profile.Profile)) Option {
	return func(s *Switcher) { s.onApplied = fn }
}

func New(displays DisplayManager, opts ...Option) *Switcher {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := &Switcher{
		displays:      displays,
		applyDPI:      true,
		applyTopology: true,
		log:           l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply first attaches and detaches displays to match p, then applies every
// enabled display setting in order. A failed resolution change marks the
// result PartiallyFailed but the remaining displays are still applied, and
// nothing already changed is rolled back.
func (s *Switcher) Apply(p profile.Profile) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{"profile": p.Name, "id": p.ID})
	log.Info("applying profile")

	res := Result{ProfileID: p.ID, State: AllApplied}
	live := s.syncTopology(log, p, &res)

	for _, setting := range p.Settings {
		if !setting.IsEnabled() {
			res.Displays = append(res.Displays, DisplayOutcome{Setting: setting, Disabled: true})
			continue
		}
		if i := matchTopology(live, setting); i >= 0 && live[i].IsEnabled && live[i].DeviceName != "" {
			// A display attached just now may be driven by another source.
			setting.DeviceName = live[i].DeviceName
			if adapter, err := display.ParseAdapterID(setting.AdapterID); err == nil && adapter == live[i].AdapterID {
				setting.SourceID = live[i].SourceID
			}
		}
		out := s.applySetting(log, setting)
		if out.ResolutionErr != nil {
			res.State = PartiallyFailed
		}
		res.Displays = append(res.Displays, out)
	}

	if s.audio != nil && (p.AudioOutputDevice != "" || p.AudioInputDevice != "") {
		if err := s.audio.SetDefaultDevices(p.AudioOutputDevice, p.AudioInputDevice); err != nil {
			log.WithError(err).Warn("audio device switch failed")
			res.AudioErr = err
		}
	}

	if res.State != AllApplied {
		log.WithError(res.Err()).Warn("profile partially applied")
		return res
	}

	if s.store != nil {
		if err := s.store.SetCurrent(p.ID); err != nil {
			log.WithError(err).Warn("failed to record current profile")
		}
	}
	if s.onApplied != nil {
		s.onApplied(p)
	}
	log.Info("profile applied")
	return res
}

// syncTopology sets the enabled state of every display p knows about and
// commits the topology when anything differs. It returns the topology the
// per-display steps should resolve names against. Failures are recorded on
// res and never stop the apply.
func (s *Switcher) syncTopology(log logrus.FieldLogger, p profile.Profile, res *Result) []display.DisplayConfigInfo {
	if !s.applyTopology {
		return nil
	}
	infos, err := s.displays.GetTopology()
	if err != nil {
		log.WithError(err).Warn("topology unavailable, enabled state not applied")
		res.TopologyErr = err
		return nil
	}

	wanted := slices.Clone(infos)
	changed := false
	for _, setting := range p.Settings {
		i := matchTopology(wanted, setting)
		if i < 0 {
			continue
		}
		if wanted[i].IsEnabled != setting.IsEnabled() {
			wanted[i].IsEnabled = setting.IsEnabled()
			changed = true
		}
	}
	if !changed {
		return infos
	}

	if err := s.displays.ApplyTopology(wanted); err != nil {
		if errors.Is(err, display.ErrNoEnabledDisplay) {
			log.WithError(err).Warn("profile would detach every display, enabled state not applied")
		} else {
			log.WithError(err).Warn("topology change failed")
		}
		res.TopologyErr = err
		return infos
	}
	res.TopologyChanged = true
	log.Info("displays attached and detached")

	refreshed, err := s.displays.GetTopology()
	if err != nil {
		log.WithError(err).Debug("topology re-query failed")
		return wanted
	}
	return refreshed
}

// matchTopology finds the topology entry of a setting by adapter and target
// id, falling back to the GDI device name for settings saved without a target.
func matchTopology(infos []display.DisplayConfigInfo, setting display.DisplaySetting) int {
	if setting.AdapterID != "" && setting.TargetID != 0 {
		if adapter, err := display.ParseAdapterID(setting.AdapterID); err == nil {
			for i, info := range infos {
				if info.AdapterID == adapter && info.TargetID == setting.TargetID {
					return i
				}
			}
		}
	}
	if setting.DeviceName == "" {
		return -1
	}
	for i, info := range infos {
		if strings.EqualFold(info.DeviceName, setting.DeviceName) {
			return i
		}
	}
	return -1
}

func (s *Switcher) applySetting(log logrus.FieldLogger, setting display.DisplaySetting) DisplayOutcome {
	out := DisplayOutcome{Setting: setting}
	log = log.WithField("device", setting.DeviceName)

	if err := s.displays.ChangeResolution(setting.DeviceName, setting.Width, setting.Height, setting.Frequency); err != nil {
		log.WithError(err).Warn("resolution change failed, dpi skipped")
		out.ResolutionErr = err
		return out
	}

	if !s.applyDPI || setting.AdapterID == "" || setting.DPIScaling <= 0 {
		return out
	}
	adapter, err := display.ParseAdapterID(setting.AdapterID)
	if err != nil {
		log.WithError(err).Warn("dpi skipped")
		out.DPIErr = err
		return out
	}

	out.DPIAttempted = true
	if err := s.displays.SetScaling(adapter, setting.SourceID, setting.DPIScaling); err != nil {
		log.WithFields(logrus.Fields{
			"adapter": setting.AdapterID,
			"source":  setting.SourceID,
			"dpi":     setting.DPIScaling,
		}).WithError(err).Warn("dpi change failed")
		out.DPIErr = err
	}
	return out
}

// ApplyAsync runs Apply on its own goroutine. Applies never interleave; a
// second call waits for the first to finish.
func (s *Switcher) ApplyAsync(p profile.Profile) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		ch <- s.Apply(p)
		close(ch)
	}()
	return ch
}
