package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"display-profile-switcher/internal/display"
)

var (
	displayNumber = regexp.MustCompile(`^(?i:display)?(\d+)$`)
	resolutionArg = regexp.MustCompile(`^(\d+)[xX](\d+)(?:@(\d+)(?i:hz)?)?$`)
)

var errBadResolution = errors.New("resolution must look like 2560x1440 or 2560x1440@144")

// deviceName accepts "2", "DISPLAY2" or a full \\.\DISPLAY2 GDI name. Anything
// else is passed through for matching against friendly names.
func deviceName(arg string) string {
	s := strings.TrimSpace(arg)
	if m := displayNumber.FindStringSubmatch(s); m != nil {
		return `\\.\DISPLAY` + m[1]
	}
	return s
}

func parseResolution(s string) (width, height, frequency int, err error) {
	m := resolutionArg.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", errBadResolution, s)
	}
	values := make([]int, 3)
	for i, field := range m[1:] {
		if field == "" {
			continue
		}
		v, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", errBadResolution, s)
		}
		values[i] = int(v)
	}
	width, height, frequency = values[0], values[1], values[2]
	if width == 0 || height == 0 {
		return 0, 0, 0, fmt.Errorf("%w: %q", errBadResolution, s)
	}
	return width, height, frequency, nil
}

func parsePercent(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, fmt.Errorf("invalid scale %q", s)
	}
	for _, p := range display.ScaleTable() {
		if p == v {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unsupported scale %d%%, expected one of %v", v, display.ScaleTable())
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List attached displays",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := a.manager.Displays()
			if err != nil {
				return err
			}
			a.ui.Head(fmt.Sprintf("Displays (%d)", len(infos)))
			for _, d := range infos {
				badge := ""
				if d.IsPrimary {
					badge = "primary"
				}
				a.ui.BoxStart(d.DeviceName, badge)
				a.ui.BoxKV("name", d.FriendlyName)
				a.ui.BoxKV("mode", d.Mode.String())
				a.ui.BoxKV("position", fmt.Sprintf("%d,%d", d.Bounds.Left, d.Bounds.Top))
				scale := fmt.Sprintf("%d%%", d.Scaling.Current)
				if d.Scaling.Initialized {
					scale += fmt.Sprintf(" (recommended %d%%)", d.Scaling.Recommended)
				}
				a.ui.BoxKV("scale", scale)
				if d.HasTopology {
					a.ui.BoxKV("adapter", fmt.Sprintf("%s / %d", d.AdapterID, d.SourceID))
				}
				a.ui.BoxEnd()
			}
			return nil
		},
	}
}

func (a *app) modesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes <display>",
		Short: "List the resolutions a display supports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := deviceName(args[0])
			modes, err := a.manager.AvailableModes(name)
			if err != nil {
				return err
			}
			current, err := a.manager.CurrentMode(name)
			if err != nil {
				a.log.WithError(err).Debug("current mode unavailable")
			}
			a.ui.Head(fmt.Sprintf("%s (%d modes)", name, len(modes)))
			for _, m := range modes {
				a.ui.Item(m.String(), m.Width == current.Width && m.Height == current.Height && m.Frequency == current.Frequency)
			}
			return nil
		},
	}
}

func (a *app) topologyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topology",
		Short: "Show every display path and whether it is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := a.manager.GetTopology()
			if err != nil {
				return err
			}
			a.ui.Head("Topology")
			for _, info := range infos {
				label := info.FriendlyName
				if info.DeviceName != "" {
					label = info.DeviceName + " " + info.FriendlyName
				}
				a.ui.Item(label, info.IsEnabled)
				details := fmt.Sprintf("%s %s source %d target %d", info.OutputTechnology, info.AdapterID, info.SourceID, info.TargetID)
				if info.IsEnabled {
					details = fmt.Sprintf("%dx%d @ %.2fHz, %s", info.Width, info.Height, info.RefreshRate, details)
				}
				a.ui.Line(details)
			}
			return nil
		},
	}
}

func (a *app) enableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <display>",
		Short: "Attach a display to the desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := deviceName(args[0])
			if err := a.manager.EnableDisplay(name); err != nil {
				return err
			}
			a.ui.Ok(name + " enabled")
			return nil
		},
	}
}

func (a *app) disableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <display>",
		Short: "Detach a display from the desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := deviceName(args[0])
			if err := a.manager.DisableDisplay(name); err != nil {
				return err
			}
			a.ui.Ok(name + " disabled")
			return nil
		},
	}
}

func (a *app) resolutionCmd() *cobra.Command {
	var test bool
	cmd := &cobra.Command{
		Use:   "resolution <display> <width>x<height>[@hz]",
		Short: "Change the resolution and refresh rate of a display",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := deviceName(args[0])
			w, h, f, err := parseResolution(args[1])
			if err != nil {
				return err
			}
			if test {
				if err := a.manager.TestResolution(name, w, h, f); err != nil {
					return err
				}
				a.ui.Ok(fmt.Sprintf("%s accepts %s", name, args[1]))
				return nil
			}
			if err := a.manager.ChangeResolution(name, w, h, f); err != nil {
				return err
			}
			a.ui.Ok(fmt.Sprintf("%s set to %s", name, args[1]))
			return nil
		},
	}
	cmd.Flags().BoolVar(&test, "test", false, "only check that the mode would be accepted")
	return cmd
}

func (a *app) scaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scale <display> <percent>",
		Short: "Change the DPI scaling of a display",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := deviceName(args[0])
			percent, err := parsePercent(args[1])
			if err != nil {
				return err
			}
			if err := a.manager.SetDisplayScale(name, percent); err != nil {
				return err
			}
			a.ui.Ok(fmt.Sprintf("%s scaled to %d%%", name, percent))
			return nil
		},
	}
}
