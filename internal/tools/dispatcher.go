package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/codev-cli/codev/internal/approval"
	"github.com/codev-cli/codev/internal/logging"
)

// Handler executes one validated tool call and returns its output text.
type Handler func(ctx context.Context, args json.RawMessage) string

// Tool couples a handler with the schema its arguments must satisfy.
type Tool struct {
	Schema  map[string]any
	Handler Handler
}

// Options configures a Dispatcher.
type Options struct {
	// WorkingDir resolves relative paths and is the default command
	// directory. Empty means the process working directory.
	WorkingDir string
	Policy     approval.Policy
	// Confirmer is asked whenever Policy requires approval. A nil Confirmer
	// denies every gated call.
	Confirmer approval.Confirmer
	Logger    logging.Logger
	Metrics   Metrics
	// Shell is the shell used for command lines, e.g. "/bin/bash -lc".
	Shell        string
	ShellTimeout time.Duration
}

func (o *Options) setDefaults() error {
	if strings.TrimSpace(o.WorkingDir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		o.WorkingDir = wd
	}
	abs, err := filepath.Abs(o.WorkingDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", o.WorkingDir, err)
	}
	o.WorkingDir = abs
	if o.Policy == "" {
		o.Policy = approval.Suggest
	}
	if o.Logger == nil {
		o.Logger = &logging.NoOpLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = NoOpMetrics{}
	}
	if o.ShellTimeout <= 0 {
		o.ShellTimeout = DefaultShellTimeout
	}
	return nil
}

func (o *Options) validate() error {
	if _, err := approval.ParsePolicy(string(o.Policy)); err != nil {
		return err
	}
	info, err := os.Stat(o.WorkingDir)
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory %s is not a directory", o.WorkingDir)
	}
	return nil
}

// Dispatcher routes model function calls to tools, gating them through the
// approval policy.
type Dispatcher struct {
	opts  Options
	shell *ShellExecutor
	tools map[string]Tool

	// editMu serialises file edits so at most one patch is applied at a time.
	editMu sync.Mutex
}

// NewDispatcher builds a Dispatcher with the shell and edit_file tools
// registered.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		opts:  opts,
		shell: NewShellExecutor(opts.Shell),
		tools: make(map[string]Tool),
	}
	shellTool := Tool{Schema: shellSchema(), Handler: d.runShell}
	for _, name := range []string{ShellToolName, TerminalToolName, ContainerExecName} {
		if err := d.Register(name, shellTool); err != nil {
			return nil, err
		}
	}
	if err := d.Register(EditFileToolName, Tool{Schema: editSchema(), Handler: d.editFile}); err != nil {
		return nil, err
	}
	return d, nil
}

// Register adds or replaces a tool.
func (d *Dispatcher) Register(name string, tool Tool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("tools: name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tools: handler for %s is nil", name)
	}
	d.tools[name] = tool
	return nil
}

// Metrics returns the collector calls are recorded in.
func (d *Dispatcher) Metrics() Metrics {
	return d.opts.Metrics
}

// WorkingDir returns the absolute directory tools run in.
func (d *Dispatcher) WorkingDir() string {
	return d.opts.WorkingDir
}

// Dispatch executes call and always returns a Result; failures are reported
// in the output text.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) Result {
	ctx = logging.WithTraceID(ctx, logging.NewTraceID())
	logger := d.opts.Logger.WithFields(logging.Field("tool", call.Name), logging.Field("call_id", call.ID))
	result := Result{CallID: call.ID, Output: NoFunctionFound}

	tool, ok := d.tools[call.Name]
	if !ok {
		logger.Warn(ctx, "unknown tool requested")
		d.opts.Metrics.RecordToolCall(call.Name, false)
		return result
	}

	raw := strings.TrimSpace(call.Arguments)
	if raw == "" {
		raw = "{}"
	}
	if !json.Valid([]byte(raw)) {
		logger.Warn(ctx, "tool arguments are not valid JSON")
		d.opts.Metrics.RecordToolCall(call.Name, false)
		result.Output = "Invalid arguments: " + call.Arguments
		return result
	}
	if err := validateArguments(tool.Schema, raw); err != nil {
		logger.Warn(ctx, "tool arguments failed validation", logging.Field("error", err.Error()))
		d.opts.Metrics.RecordToolCall(call.Name, false)
		result.Output = "Invalid arguments: " + err.Error()
		return result
	}

	logger.Debug(ctx, "dispatching tool call")
	d.opts.Metrics.RecordToolCall(call.Name, true)
	result.Output = tool.Handler(ctx, json.RawMessage(raw))
	return result
}

func (d *Dispatcher) confirm(ctx context.Context, req approval.Request) (approval.Confirmation, error) {
	if d.opts.Confirmer == nil {
		return approval.Confirmation{Decision: approval.Deny}, nil
	}
	return d.opts.Confirmer.Confirm(ctx, req)
}

func (d *Dispatcher) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(d.opts.WorkingDir, path)
}

func (d *Dispatcher) runShell(ctx context.Context, raw json.RawMessage) string {
	logger := d.opts.Logger
	var args ShellArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "Invalid arguments: " + err.Error()
	}

	argv := args.Command.Argv
	line := args.Command.Line
	if argv == nil {
		argv = approval.ParseCommand(line)
	} else {
		line = approval.FormatCommand(argv)
	}

	if d.opts.Policy.NeedsCommandApproval() {
		confirmation, err := d.confirm(ctx, approval.Request{Command: argv})
		if err != nil {
			logger.Error(ctx, "command confirmation failed", err)
			return "Error confirming command: " + err.Error()
		}
		switch confirmation.Decision {
		case approval.Approve:
		case approval.Modify:
			if len(confirmation.Command) == 0 {
				return CommandDeniedOutput
			}
			argv = confirmation.Command
			line = approval.FormatCommand(argv)
		default:
			if confirmation.DenyMessage != "" {
				return confirmation.DenyMessage
			}
			return CommandDeniedOutput
		}
	}

	dir := d.opts.WorkingDir
	if strings.TrimSpace(args.Workdir) != "" {
		dir = d.resolve(args.Workdir)
	}
	timeout := d.opts.ShellTimeout
	if args.TimeoutSec > 0 {
		timeout = time.Duration(args.TimeoutSec) * time.Second
	}

	logger.Info(ctx, "executing command", logging.Field("command", line), logging.Field("dir", dir), logging.Field("background", args.IsBackground))
	outcome, err := d.shell.Execute(ctx, ShellRequest{Run: line, Dir: dir, Timeout: timeout, Background: args.IsBackground})
	if err != nil {
		logger.Error(ctx, "command failed to run", err)
		return encodeShellOutput(ShellOutput{
			Output:   "Error executing command: " + err.Error(),
			Metadata: ShellMetadata{ExitCode: 1},
		})
	}

	if args.IsBackground {
		return encodeShellOutput(ShellOutput{
			Output: fmt.Sprintf("Command running in background (PID: %d)", outcome.PID),
		})
	}
	d.opts.Metrics.RecordCommand(outcome.Duration, outcome.ExitCode)
	logger.Debug(ctx, "command finished", logging.Field("exit_code", outcome.ExitCode), logging.Field("duration", outcome.Duration.String()))
	return encodeShellOutput(ShellOutput{
		Output: formatShellOutput(outcome, timeout),
		Metadata: ShellMetadata{
			ExitCode:        outcome.ExitCode,
			DurationSeconds: roundSeconds(outcome.Duration),
		},
	})
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}

func encodeShellOutput(out ShellOutput) string {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"output": %q, "metadata": {"exit_code": 1}}`, err.Error())
	}
	return string(data)
}
