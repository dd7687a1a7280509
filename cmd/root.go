package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/audit"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/config"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/logging"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/output"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/scanner"
	"github.com/tinkerbelle-io/tb-fingerprint/internal/ssh"
)

type rootOptions struct {
	config        string
	sstExecutable string
	output        string
	outputDir     string
	format        string
	modeK8s       bool
	sshTarget     string
	auditLog      string
	logLevel      string
}

// now stamps generated file names; replaced in tests.
var now = time.Now

// newRunner picks the command runner for the configured target and returns
// it with a display name and a close func; replaced in tests.
var newRunner = func(cfg *config.Config) (scanner.CommandRunner, string, func() error, error) {
	noop := func() error { return nil }
	switch {
	case cfg.SSHTarget != "":
		target, err := ssh.ParseTarget(cfg.SSHTarget)
		if err != nil {
			return nil, "", nil, err
		}
		var allow []string
		if cfg.SSTExecutable != scanner.DefaultSSTExecutable {
			allow = append(allow, cfg.SSTExecutable)
		}
		r, err := ssh.NewRunner(target, allow...)
		if err != nil {
			return nil, "", nil, err
		}
		return r, target.String(), r.Close, nil
	case cfg.ModeK8s:
		return scanner.LocalRunner{Nsenter: true}, "nsenter", noop, nil
	default:
		return scanner.LocalRunner{}, "local", noop, nil
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "tb-fingerprint",
		Short: "Capture a platform fingerprint of a Linux host",
		Long: `tb-fingerprint takes a point-in-time snapshot of a Linux machine's hardware
and OS configuration (CPU topology, frequency and power state, caches, memory
modules, storage and network devices, BIOS, kernel and distribution versions,
Intel Speed Select profiles) and writes it to a single JSON or YAML document.

Collection runs on the local host by default, inside the host mount namespace
with --mode-k8s, or on a remote host over SSH with --ssh.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.sstExecutable, "sst_executable", scanner.DefaultSSTExecutable, "Path of the intel-speed-select executable (env: TB_SST_EXECUTABLE)")
	f.StringVar(&opts.output, "output", "", "Output file (default: <output-dir>/platform_fingerprint_<timestamp>.<format>)")
	f.StringVar(&opts.outputDir, "output-dir", ".", "Directory for the generated output file name (env: TB_OUTPUT_DIR)")
	f.StringVar(&opts.format, "format", "json", "Output format: json, yaml (env: TB_FORMAT)")
	f.BoolVar(&opts.modeK8s, "mode-k8s", false, "K8s DaemonSet mode (use nsenter for host access)")
	f.StringVar(&opts.sshTarget, "ssh", "", "Collect from a remote host, user@host[:port] (env: TB_SSH_TARGET)")
	f.StringVar(&opts.auditLog, "audit-log", "", "Append a hash-chained record of every command to this file (env: TB_AUDIT_LOG)")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.config, "config", "", "Config file path (default: "+config.DefaultPath+")")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error (env: TB_LOG_LEVEL)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAuditCmd())
	return cmd
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd := newRootCmd()
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("tb-fingerprint %s\n", version))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers the config file, TB_* environment variables and
// changed flags, in increasing precedence.
func resolveConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	path := opts.config
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path, opts.config != "")
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("sst_executable", &cfg.SSTExecutable, opts.sstExecutable)
	set("output-dir", &cfg.OutputDir, opts.outputDir)
	set("format", &cfg.Format, opts.format)
	set("ssh", &cfg.SSHTarget, opts.sshTarget)
	set("audit-log", &cfg.AuditLog, opts.auditLog)
	set("log-level", &cfg.LogLevel, opts.logLevel)
	if flags.Changed("mode-k8s") {
		cfg.ModeK8s = opts.modeK8s
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runFingerprint(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, target, closeRunner, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer closeRunner()

	var recorder *audit.Runner
	if cfg.AuditLog != "" {
		l, err := audit.NewLogger(cfg.AuditLog)
		if err != nil {
			return err
		}
		defer l.Close()
		recorder = audit.NewRunner(runner, l, target)
		recorder.Start(cmd.Root().Version)
		runner = recorder
	}

	slog.Info("collecting platform fingerprint", "target", target, "sst_executable", cfg.SSTExecutable)
	res, err := collect(ctx, runner, cfg)
	if err != nil {
		if recorder != nil {
			recorder.End("aborted", err.Error(), 0)
		}
		return err
	}

	path := opts.output
	if path == "" {
		path = output.DefaultPath(cfg.OutputDir, format, now())
	}
	if err := output.Write(path, format, res.Document); err != nil {
		if recorder != nil {
			recorder.End("failed", err.Error(), res.Duration)
		}
		return err
	}

	degraded := res.Degraded()
	summary := summarize(degraded)
	slog.Info("fingerprint written", "path", path, "sections", res.Document.Len(), "degraded", len(degraded), "duration", res.Duration)
	if recorder != nil {
		recorder.End("ok", summary, res.Duration)
	}
	if summary != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Incomplete sections: %s\n", summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Check the file: %s\n", path)
	return nil
}

func collect(ctx context.Context, runner scanner.CommandRunner, cfg *config.Config) (*scanner.Result, error) {
	reg := scanner.NewRegistry(scanner.Options{
		SSTExecutable: cfg.SSTExecutable,
		CacheDir:      cfg.CacheDir,
		Now:           now,
	})
	return scanner.Collect(ctx, runner, reg.Scanners())
}

// summarize renders degraded sections as "Name (status), ...".
func summarize(reports []scanner.SectionReport) string {
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, fmt.Sprintf("%s (%s)", r.Name, r.Status))
	}
	return strings.Join(parts, ", ")
}
