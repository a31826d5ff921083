// Package cli is the display-switcher command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"display-profile-switcher/internal/config"
	"display-profile-switcher/internal/display"
	"display-profile-switcher/internal/profile"
	"display-profile-switcher/internal/ui"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

type app struct {
	gw  display.Gateway
	out io.Writer

	cfgFile  string
	logLevel string
	noColor  bool

	cfg     *config.Config
	log     *logrus.Logger
	manager *display.Manager
	ui      *ui.Printer
}

// Execute runs the command tree against gw with os.Args.
func Execute(gw display.Gateway) error {
	return NewRootCommand(gw, os.Stdout).Execute()
}

// NewRootCommand builds the command tree. Command output goes to out, logs to
// the command's stderr.
func NewRootCommand(gw display.Gateway, out io.Writer) *cobra.Command {
	a := &app{gw: gw, out: out}

	root := &cobra.Command{
		Use:          "display-switcher",
		Short:        "Save and restore monitor layouts, resolutions and DPI scaling",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.display-switcher.yaml)")
	root.PersistentFlags().StringVarP(&a.logLevel, "loglevel", "l", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.listCmd(),
		a.modesCmd(),
		a.topologyCmd(),
		a.enableCmd(),
		a.disableCmd(),
		a.resolutionCmd(),
		a.scaleCmd(),
		a.profilesCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	a.log = logrus.New()
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	a.log.SetLevel(cfg.Level())

	a.manager = display.NewManager(a.gw,
		display.WithLogger(a.log),
		display.WithQueryRetry(cfg.QueryAttempts, cfg.QueryRetryDelay),
	)
	a.ui = ui.New(a.out)
	a.ui.Plain = a.noColor
	return nil
}

func (a *app) openStore() (*profile.Store, error) {
	path, err := profile.ResolvePath(a.cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}
	a.log.WithField("path", path).Debug("opening profiles")
	store, err := profile.Open(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "display-switcher %s\n", Version)
		},
	}
}
