package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codev-cli/codev/internal/approval"
	"github.com/codev-cli/codev/internal/config"
	"github.com/codev-cli/codev/internal/logging"
	"github.com/codev-cli/codev/internal/tools"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// exitError carries a specific exit code out of a command. Its message has
// already been printed when silent is set.
type exitError struct {
	code   int
	silent bool
	err    error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app holds the per-invocation state shared by the subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	configPath string
	logLevel   string
	envFiles   []string

	cfg     *config.Config
	logger  *logging.ZapLogger
	metrics *tools.InMemoryMetrics
}

// Run executes the codev CLI using the provided arguments and streams.
// It returns a POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return run(ctx, args, stdin, stdout, stderr, os.Getenv)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, getenv: getenv}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if !exitErr.silent {
			fmt.Fprintln(stderr, "Error:", exitErr.Error())
		}
		return exitErr.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "codev",
		Short: "Apply model-written patches and run agent tools from the terminal",
		Long: `codev applies "*** Begin Patch" envelopes to a working tree and exposes
the shell and edit_file tools an agent loop calls.

Examples:
  codev apply change.patch            # apply, asking for approval
  cat change.patch | codev apply --yes
  codev apply --dry-run change.patch  # show the diff only
  codev files change.patch            # list the paths a patch touches
  codev tool shell '{"command":"ls"}'`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $CODEV_HOME/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the environment is read")

	root.AddCommand(
		a.applyCommand(),
		a.filesCommand(),
		a.toolCommand(),
		a.toolsCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(config.LoadOptions{Path: a.configPath, EnvFiles: a.envFiles, Getenv: a.getenv})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(a.logLevel) != "" {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.NewZapLogger(cfg.Level(), a.stderr)
	a.metrics = tools.NewInMemoryMetrics()
	return nil
}

// dispatcher builds a tool dispatcher for workdir under policy. Prompts read
// from the CLI's stdin and draw on its stdout.
func (a *app) dispatcher(workdir string, policy approval.Policy) (*tools.Dispatcher, error) {
	if strings.TrimSpace(workdir) == "" {
		workdir = a.cfg.WorkingDir
	}
	return tools.NewDispatcher(tools.Options{
		WorkingDir: workdir,
		Policy:     policy,
		Confirmer:  approval.NewTerminalConfirmer(a.stdin, a.stdout, a.cfg.Theme),
		Logger:     a.logger,
		Metrics:    a.metrics,
	})
}

// policy resolves the --approval and --yes flags against the config.
func (a *app) policy(flagValue string, yes bool) (approval.Policy, error) {
	if yes {
		return approval.FullAuto, nil
	}
	if strings.TrimSpace(flagValue) == "" {
		return a.cfg.ApprovalPolicy, nil
	}
	return approval.ParsePolicy(flagValue)
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codev version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.stdout, "codev %s\n", Version)
			return nil
		},
	}
}
