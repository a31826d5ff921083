package display_test

import (
	"errors"
	"testing"

	"display-profile-switcher/internal/display"
	"display-profile-switcher/internal/display/displaytest"
)

func twoDisplays() *displaytest.Gateway {
	return displaytest.New(
		displaytest.Display{
			Name: `\\.\DISPLAY1`, Friendly: "DELL U2720Q", Adapter: testAdapter,
			SourceID: 0, TargetID: 4352, Width: 3840, Height: 2160, Frequency: 60,
			Active: true, Primary: true,
		},
		displaytest.Display{
			Name: `\\.\DISPLAY2`, Friendly: "LG ULTRAGEAR", Adapter: testAdapter,
			SourceID: 1, TargetID: 4353, Width: 2560, Height: 1440, Frequency: 144,
			Active: true,
		},
	)
}

func TestQueryTopology_RetriesWholeQuery(t *testing.T) {
	gw := twoDisplays()
	gw.QueryErrs = []error{errors.New("buffer sizes changed")}
	m := display.NewManager(gw, display.WithQueryRetry(3, 0))

	paths, _, err := m.QueryTopology(display.AllPaths)
	if err != nil {
		t.Fatalf("QueryTopology: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if gw.QueryCount != 2 {
		t.Fatalf("expected 2 query attempts, got %d", gw.QueryCount)
	}
}

func TestQueryTopology_GivesUp(t *testing.T) {
	gw := twoDisplays()
	gw.QueryErrs = []error{errors.New("a"), errors.New("b"), errors.New("c")}
	m := display.NewManager(gw, display.WithQueryRetry(2, 0))

	paths, modes, err := m.QueryTopology(display.AllPaths)
	if !errors.Is(err, display.ErrQuery) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
	if paths != nil || modes != nil {
		t.Fatalf("expected no partial data")
	}
	if gw.QueryCount != 2 {
		t.Fatalf("expected 2 query attempts, got %d", gw.QueryCount)
	}
}

func TestGetTopology_ActiveDisplays(t *testing.T) {
	m := display.NewManager(twoDisplays())

	infos, err := m.GetTopology()
	if err != nil {
		t.Fatalf("GetTopology: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 displays, got %d", len(infos))
	}

	first := infos[0]
	if first.DeviceName != `\\.\DISPLAY1` || first.FriendlyName != "DELL U2720Q" {
		t.Errorf("unexpected names: %q / %q", first.DeviceName, first.FriendlyName)
	}
	if !first.IsEnabled || !first.IsAvailable {
		t.Errorf("expected enabled and available")
	}
	if first.Width != 3840 || first.Height != 2160 {
		t.Errorf("expected 3840x2160, got %dx%d", first.Width, first.Height)
	}
	if first.RefreshRate != 60 {
		t.Errorf("expected 60 Hz, got %v", first.RefreshRate)
	}
	if infos[1].PathIndex != 1 || infos[1].TargetID != 4353 {
		t.Errorf("unexpected second entry %+v", infos[1])
	}
}

func TestGetTopology_SkipsUnavailableAndPicksFreeSource(t *testing.T) {
	gw := twoDisplays()
	gw.Add(displaytest.Display{
		Name: `\\.\DISPLAY9`, Adapter: testAdapter, SourceID: 3, TargetID: 9999, Unavailable: true,
	})
	// An inactive target reachable from a source already in use and from a
	// free one.
	gw.AddPath(display.Path{
		Source: display.PathSource{AdapterID: testAdapter, ID: 0, ModeInfoIdx: display.InvalidModeIndex},
		Target: display.PathTarget{AdapterID: testAdapter, ID: 4354, ModeInfoIdx: display.InvalidModeIndex, Available: true},
	})
	free := gw.AddPath(display.Path{
		Source: display.PathSource{AdapterID: testAdapter, ID: 2, ModeInfoIdx: display.InvalidModeIndex},
		Target: display.PathTarget{AdapterID: testAdapter, ID: 4354, ModeInfoIdx: display.InvalidModeIndex, Available: true},
	})
	m := display.NewManager(gw)

	infos, err := m.GetTopology()
	if err != nil {
		t.Fatalf("GetTopology: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 displays, got %d: %+v", len(infos), infos)
	}
	inactive := infos[2]
	if inactive.IsEnabled || inactive.PathIndex != free || inactive.SourceID != 2 {
		t.Fatalf("expected inactive target on free source at %d, got %+v", free, inactive)
	}
	if inactive.Width != 0 || inactive.RefreshRate != 0 {
		t.Fatalf("expected no mode data for inactive path, got %+v", inactive)
	}
}

func TestRationalHz(t *testing.T) {
	tests := []struct {
		r    display.Rational
		want float64
		ok   bool
	}{
		{display.Rational{Numerator: 59940, Denominator: 1000}, 59.94, true},
		{display.Rational{Numerator: 143856, Denominator: 1000}, 143.86, true},
		{display.Rational{Numerator: 60, Denominator: 0}, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.r.Hz()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%+v: expected (%v,%v), got (%v,%v)", tt.r, tt.want, tt.ok, got, ok)
		}
	}
}

func TestApplyTopology_RefusesAllDisabled(t *testing.T) {
	gw := twoDisplays()
	m := display.NewManager(gw)
	infos, err := m.GetTopology()
	if err != nil {
		t.Fatalf("GetTopology: %v", err)
	}
	for i := range infos {
		infos[i].IsEnabled = false
	}

	if err := m.ApplyTopology(infos); !errors.Is(err, display.ErrNoEnabledDisplay) {
		t.Fatalf("expected ErrNoEnabledDisplay, got %v", err)
	}
	if len(gw.Commits) != 0 {
		t.Fatalf("expected no commit, got %d", len(gw.Commits))
	}
}

func TestApplyTopology_DisablesOnePath(t *testing.T) {
	gw := twoDisplays()
	m := display.NewManager(gw)
	infos, err := m.GetTopology()
	if err != nil {
		t.Fatalf("GetTopology: %v", err)
	}
	infos[1].IsEnabled = false

	if err := m.ApplyTopology(infos); err != nil {
		t.Fatalf("ApplyTopology: %v", err)
	}
	if len(gw.Commits) != 1 {
		t.Fatalf("expected one commit, got %d", len(gw.Commits))
	}
	c := gw.Commits[0]
	want := display.CommitApply | display.CommitUseSuppliedConfig | display.CommitAllowChanges | display.CommitSaveToDatabase
	if c.Flags != want {
		t.Errorf("expected flags %#x, got %#x", want, c.Flags)
	}
	if len(c.Paths) != 2 {
		t.Fatalf("expected the whole topology to be committed, got %d paths", len(c.Paths))
	}
	if !c.Paths[0].Active() || c.Paths[1].Active() {
		t.Fatalf("expected only the first path active")
	}
}

func TestApplyTopology_StaleIndex(t *testing.T) {
	gw := twoDisplays()
	m := display.NewManager(gw)
	infos, err := m.GetTopology()
	if err != nil {
		t.Fatalf("GetTopology: %v", err)
	}
	infos[0].PathIndex = 1

	if err := m.ApplyTopology(infos); !errors.Is(err, display.ErrStalePathIndex) {
		t.Fatalf("expected ErrStalePathIndex, got %v", err)
	}
	infos[0].PathIndex = 7
	if err := m.ApplyTopology(infos); !errors.Is(err, display.ErrStalePathIndex) {
		t.Fatalf("expected ErrStalePathIndex, got %v", err)
	}
	if len(gw.Commits) != 0 {
		t.Fatalf("expected no commit, got %d", len(gw.Commits))
	}
}

func TestApplyTopology_CommitFailure(t *testing.T) {
	gw := twoDisplays()
	gw.CommitErr = errors.New("SetDisplayConfig failed: 87")
	m := display.NewManager(gw)
	infos, _ := m.GetTopology()

	if err := m.ApplyTopology(infos); !errors.Is(err, display.ErrTopologyCommit) {
		t.Fatalf("expected ErrTopologyCommit, got %v", err)
	}
}

func TestValidateTopology_UsesValidateFlag(t *testing.T) {
	gw := twoDisplays()
	m := display.NewManager(gw)
	infos, _ := m.GetTopology()
	infos[0].IsEnabled = false

	if err := m.ValidateTopology(infos); err != nil {
		t.Fatalf("ValidateTopology: %v", err)
	}
	if gw.Commits[0].Flags&display.CommitApply != 0 || gw.Commits[0].Flags&display.CommitValidate == 0 {
		t.Fatalf("expected validate-only flags, got %#x", gw.Commits[0].Flags)
	}
	if !gw.PathTable[0].Active() {
		t.Fatalf("validation must not change the topology")
	}
}

func TestDisableDisplay_LastDisplayRefused(t *testing.T) {
	gw := displaytest.New(displaytest.Display{
		Name: `\\.\DISPLAY1`, Adapter: testAdapter, TargetID: 1, Width: 1920, Height: 1080, Frequency: 60, Active: true,
	})
	m := display.NewManager(gw)

	if err := m.DisableDisplay(`\\.\display1`); !errors.Is(err, display.ErrLastDisplay) {
		t.Fatalf("expected ErrLastDisplay, got %v", err)
	}
	if len(gw.Commits) != 0 {
		t.Fatalf("expected no commit, got %d", len(gw.Commits))
	}
}

func TestDisableThenEnableDisplay(t *testing.T) {
	gw := twoDisplays()
	m := display.NewManager(gw)

	if err := m.DisableDisplay(`\\.\DISPLAY2`); err != nil {
		t.Fatalf("DisableDisplay: %v", err)
	}
	if gw.PathTable[1].Active() {
		t.Fatalf("expected DISPLAY2 path inactive")
	}
	if err := m.DisableDisplay(`\\.\DISPLAY2`); err != nil {
		t.Fatalf("DisableDisplay on a disabled display: %v", err)
	}
	if len(gw.Commits) != 1 {
		t.Fatalf("expected the second disable to be a no-op, got %d commits", len(gw.Commits))
	}

	if err := m.EnableDisplay("lg ultragear"); err != nil {
		t.Fatalf("EnableDisplay: %v", err)
	}
	if !gw.PathTable[1].Active() {
		t.Fatalf("expected DISPLAY2 path active again")
	}
}

func TestEnableDisplay_NotFound(t *testing.T) {
	m := display.NewManager(twoDisplays())
	if err := m.EnableDisplay(`\\.\DISPLAY5`); !errors.Is(err, display.ErrDisplayNotFound) {
		t.Fatalf("expected ErrDisplayNotFound, got %v", err)
	}
}
