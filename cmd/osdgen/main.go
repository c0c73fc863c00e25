package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sigreer/osdgen/internal/config"
	"github.com/sigreer/osdgen/internal/db"
	"github.com/sigreer/osdgen/internal/introspection"
	"github.com/sigreer/osdgen/internal/selection"
)

// rootOptions holds global flags and the output streams of every command
type rootOptions struct {
	configPath string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "osdgen",
		Short: "Ceph OSD and journal device selection for bare-metal nodes",
		Long: `osdgen reads the hardware introspection data of bare-metal nodes, selects
the disks that should become Ceph OSDs, pairs them with journal devices and
writes one TripleO environment file per node.

Devices are identified by their WWN where introspection reports one, so the
generated paths survive reboots and controller renumbering.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is /etc/osdgen/config.yaml)")
	cmd.PersistentFlags().String(config.FlagDebug, "N", "log every device decision (Y|N)")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newNodesCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))

	return cmd
}

// settings loads the config file, overlays the command's flags and validates
func (o *rootOptions) settings(cmd *cobra.Command) (*config.Settings, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		if errors.Is(err, config.ErrInvalidSetting) {
			return nil, usageError(err)
		}
		return nil, failure("failed to load config", err)
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, usageError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// logger writes text logs to stderr, at debug level when requested
func (o *rootOptions) logger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

// loader opens the record cache and wires it to the introspection CLI.
// The caller closes the returned database.
func (o *rootOptions) loader(cfg *config.Settings, logger *slog.Logger) (*introspection.Loader, *db.DB, error) {
	store, err := db.New(db.PathIn(cfg.ResultDir))
	if err != nil {
		return nil, nil, failure("failed to open database", err)
	}
	return &introspection.Loader{
		Source: introspection.NewOpenStackCLI(cfg.OpenStackCommand, logger),
		Store:  store,
		Reuse:  cfg.ReuseOldData,
		Logger: logger,
	}, store, nil
}

// addStoreFlags registers the result directory flag
func addStoreFlags(flags *pflag.FlagSet) {
	flags.String(config.FlagResultDir, config.DefaultResultDir, "directory for manifests and the record cache")
}

// addSourceFlags registers the flags controlling how introspection data is fetched
func addSourceFlags(flags *pflag.FlagSet) {
	flags.String(config.FlagReuseOldData, "N", "reuse cached introspection data (Y|N)")
	flags.String(config.FlagOpenStackCommand, config.DefaultOpenStackCommand, "openstack client binary")
}

// addFilterFlags registers the device selection flags
func addFilterFlags(flags *pflag.FlagSet) {
	flags.SetNormalizeFunc(config.NormalizeFlagName)
	flags.String(config.FlagDeviceNamePattern, "", "regular expression device names must match")
	flags.String(config.FlagDeviceSize, "", "device size in GB, matched within 5%")
	flags.String(config.FlagRotational, "", "Y to select only spinning disks, N for only solid state")
	flags.String(config.FlagJournalPattern, "", "regular expression naming journal devices")
	flags.String(config.FlagMinJournals, "", "fail unless every host has at least this many journal devices")
}

// exactArgs reports a wrong argument count as a usage error
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// planError maps selection failures onto exit codes
func planError(err error) error {
	if errors.Is(err, selection.ErrInvalidFilter) {
		return usageError(err)
	}
	return failure("", err)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	c, err := cmd.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "ERROR: %v\n", err)
	code := exitCode(err)
	if code == ExitUsage && c != nil {
		c.SetOut(stderr)
		c.Usage()
	}
	return code
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
