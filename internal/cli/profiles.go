package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"display-profile-switcher/internal/profile"
	"display-profile-switcher/internal/switcher"
)

func (a *app) profilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile", "p"},
		Short:   "Manage saved display profiles",
	}
	cmd.AddCommand(
		a.profilesListCmd(),
		a.profilesSaveCmd(),
		a.profilesApplyCmd(),
		a.profilesShowCmd(),
		a.profilesRemoveCmd(),
	)
	return cmd
}

func (a *app) profilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			profiles := store.Profiles()
			if len(profiles) == 0 {
				a.ui.Warn("no profiles saved in " + store.Path())
				return nil
			}
			current, _ := store.Current()
			a.ui.Head(fmt.Sprintf("Profiles (%d)", len(profiles)))
			for _, p := range profiles {
				badge := ""
				if p.ID == current.ID {
					badge = "current"
				}
				a.ui.BoxStart(p.Name, badge)
				a.ui.BoxKV("id", p.ID)
				a.ui.BoxKV("displays", fmt.Sprintf("%d", len(p.Settings)))
				a.ui.BoxKV("created", p.CreatedAt.Local().Format("2006-01-02 15:04"))
				a.ui.BoxEnd()
			}
			return nil
		},
	}
}

func (a *app) profilesSaveCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current display settings as a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			settings, err := a.manager.Capture()
			if err != nil {
				return err
			}
			if len(settings) == 0 {
				return errors.New("no attached displays to save")
			}

			if force {
				if err := store.Remove(args[0]); err != nil && !errors.Is(err, profile.ErrNotFound) {
					return err
				}
			}
			p, err := store.Add(profile.New(args[0], settings))
			if err != nil {
				return err
			}
			a.ui.Ok(fmt.Sprintf("saved %q with %d displays", p.Name, len(p.Settings)))
			for _, s := range p.Settings {
				if !s.IsEnabled() {
					a.ui.Line(fmt.Sprintf("%s %s disabled", s.DeviceName, s.FriendlyName))
					continue
				}
				a.ui.Line(fmt.Sprintf("%s %dx%d@%dHz %d%%", s.DeviceName, s.Width, s.Height, s.Frequency, s.DPIScaling))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace a profile with the same name")
	return cmd
}

func (a *app) profilesApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <name|id>",
		Short: "Apply a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			p, ok := store.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", profile.ErrNotFound, args[0])
			}

			sw := switcher.New(a.manager,
				switcher.WithLogger(a.log),
				switcher.WithStore(store),
				switcher.WithDPI(a.cfg.ApplyDPI),
				switcher.WithTopology(a.cfg.ApplyTopology),
			)
			res := <-sw.ApplyAsync(p)

			a.ui.Head(fmt.Sprintf("%s: %s", p.Name, res.State))
			if res.TopologyErr != nil {
				a.ui.Warn("displays not attached or detached: " + res.TopologyErr.Error())
			}
			for _, d := range res.Displays {
				if d.Disabled {
					a.ui.Item(d.Setting.DeviceName+" disabled", true)
					continue
				}
				label := fmt.Sprintf("%s %dx%d@%dHz", d.Setting.DeviceName, d.Setting.Width, d.Setting.Height, d.Setting.Frequency)
				a.ui.Item(label, d.ResolutionErr == nil)
				switch {
				case d.ResolutionErr != nil:
					a.ui.Err(d.ResolutionErr.Error())
				case d.DPIErr != nil:
					a.ui.Warn(fmt.Sprintf("scale %d%% not applied: %v", d.Setting.DPIScaling, d.DPIErr))
				}
			}
			if res.AudioErr != nil {
				a.ui.Warn("audio devices not switched: " + res.AudioErr.Error())
			}
			if res.State != switcher.AllApplied {
				return fmt.Errorf("profile %q partially applied: %w", p.Name, res.Err())
			}
			return nil
		},
	}
}

func (a *app) profilesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name|id>",
		Short: "Print a profile as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			p, ok := store.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", profile.ErrNotFound, args[0])
			}
			data, err := profile.ExportYAML(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func (a *app) profilesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name|id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			a.ui.Ok("removed " + args[0])
			return nil
		},
	}
}
