package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arthur-debert/fileroutes/internal/version"
	"github.com/arthur-debert/fileroutes/pkg/app"
	"github.com/arthur-debert/fileroutes/pkg/config"
	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/arthur-debert/fileroutes/pkg/metrics"
	"github.com/arthur-debert/fileroutes/pkg/output"
	"github.com/arthur-debert/fileroutes/pkg/watch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	verbosity  int
	configFile string
	dir        string
	srcDir     string
	destDir    string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "fileroutes",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "d", ".", MsgFlagDir)
	rootCmd.PersistentFlags().StringVar(&opts.srcDir, "src", "", MsgFlagSrc)
	rootCmd.PersistentFlags().StringVar(&opts.destDir, "out", "", MsgFlagOut)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newRoutesCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// overrides maps the directory flags onto config keys
func (o *globalOptions) overrides() map[string]interface{} {
	m := make(map[string]interface{})
	if o.srcDir != "" {
		m["source.dir"] = o.srcDir
	}
	if o.destDir != "" {
		m["dest.dir"] = o.destDir
	}
	return m
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		return config.LoadFile(o.configFile, o.overrides())
	}
	dir, err := filepath.Abs(o.dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "resolving %s", o.dir)
	}
	return config.Load(dir, o.overrides())
}

func (o *globalOptions) newApp(observer *metrics.Metrics) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	var appOpts []app.Option
	if observer != nil {
		appOpts = append(appOpts, app.WithObserver(observer))
	}
	return app.New(cfg, afero.NewOsFs(), appOpts...)
}

func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && output.ColorEnabled(f)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: MsgRunShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}
			a, err := opts.newApp(m)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			res, err := a.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := output.RenderResult(out, res, colorFor(out)); err != nil {
				return err
			}
			if showMetrics {
				if err := metrics.WriteText(out, reg); err != nil {
					return err
				}
			}
			if res.Failed > 0 {
				return errors.Newf(errors.ErrActionFailed, "%d file(s) failed", res.Failed).
					WithDetail("run", res.RunID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, MsgRunFlagMetric)
	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: MsgWatchShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(nil)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			build := func(ctx context.Context) error {
				res, err := a.Run(ctx)
				if err != nil {
					log.Error().Err(err).Msg("Build failed")
					return err
				}
				return output.RenderResult(out, res, colorFor(out))
			}

			if err := build(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			cfg := a.Config()
			return watch.Watch(ctx, cfg.SourceDir(), debounce, build, cfg.DestDir())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgWatchFlagDebounce)
	return cmd
}

func newRoutesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: MsgRoutesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return output.RenderRoutes(out, a.Routes(), colorFor(out))
		},
	}
}

func newGenConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		write     bool
		commented bool
	)

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: MsgGenConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.DefaultContent()
			if commented {
				content = config.GenerateConfigContent()
			}
			if !write {
				_, err := io.WriteString(cmd.OutOrStdout(), content)
				return err
			}

			path := filepath.Join(opts.dir, config.ProjectFileName)
			if _, err := os.Stat(path); err == nil {
				return errors.Newf(errors.ErrAlreadyExists, "%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", path)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgGenConfigFlagWrite)
	cmd.Flags().BoolVar(&commented, "commented", false, MsgGenConfigFlagCommented)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fileroutes version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(fileroutes completion bash)

Zsh:
  $ fileroutes completion zsh > "${fpath[1]}/_fileroutes"

Fish:
  $ fileroutes completion fish | source

PowerShell:
  PS> fileroutes completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
