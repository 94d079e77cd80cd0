package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/codev-cli/codev/internal/logging"
	"github.com/codev-cli/codev/internal/tools"
	"github.com/codev-cli/codev/pkg/patch"
)

type applyFlags struct {
	dryRun   bool
	workdir  string
	approval string
	yes      bool
}

func (a *app) applyCommand() *cobra.Command {
	var flags applyFlags
	cmd := &cobra.Command{
		Use:   "apply [file|-]",
		Short: "Apply a patch to the working tree",
		Long: `Apply reads a "*** Begin Patch" envelope from a file, or from stdin when the
argument is "-" or omitted, and applies it atomically: either every file is
written or none is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runApply(cmd, args, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the diff without writing files")
	cmd.Flags().StringVarP(&flags.workdir, "workdir", "C", "", "directory patch paths are relative to")
	cmd.Flags().StringVar(&flags.approval, "approval", "", "approval policy: suggest, auto-edit, full-auto")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "apply without asking for approval")
	return cmd
}

func (a *app) runApply(cmd *cobra.Command, args []string, flags applyFlags) error {
	text, fromStdin, err := a.readPatch(args)
	if err != nil {
		return err
	}

	if flags.dryRun {
		return a.previewPatch(cmd.Context(), text, flags.workdir)
	}

	policy, err := a.policy(flags.approval, flags.yes)
	if err != nil {
		return err
	}
	if fromStdin && policy.NeedsEditApproval() {
		return errors.New("patch read from stdin cannot be approved interactively; pass --yes or a patch file")
	}

	d, err := a.dispatcher(flags.workdir, policy)
	if err != nil {
		return err
	}

	target := ""
	if paths := append(patch.RequiredPaths(text), patch.AddedPaths(text)...); len(paths) > 0 {
		target = paths[0]
	}
	if target == "" {
		target = "patch"
	}
	arguments, err := json.Marshal(tools.EditArgs{TargetFile: target, CodeEdit: text})
	if err != nil {
		return err
	}
	result := d.Dispatch(cmd.Context(), tools.Call{ID: logging.NewTraceID(), Name: tools.EditFileToolName, Arguments: string(arguments)})
	if result.Output != patch.SuccessMessage {
		fmt.Fprintln(a.stderr, result.Output)
		return &exitError{code: 1, silent: true}
	}
	fmt.Fprintln(a.stdout, result.Output)
	return nil
}

// readPatch returns the patch text from args[0], or stdin for "-" or no
// argument.
func (a *app) readPatch(args []string) (string, bool, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", true, fmt.Errorf("read patch from stdin: %w", err)
		}
		return string(data), true, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", false, fmt.Errorf("read patch: %w", err)
	}
	return string(data), false, nil
}

// previewPatch dry-runs text against workdir and prints the unified diff.
func (a *app) previewPatch(ctx context.Context, text, workdir string) error {
	if strings.TrimSpace(workdir) == "" {
		workdir = a.cfg.WorkingDir
	}
	fsys, err := patch.NewDirFS(workdir)
	if err != nil {
		return err
	}
	commit, fuzz, err := patch.Build(text, fsys)
	if err != nil {
		return &exitError{code: 1, err: errors.New(patch.FormatError(err))}
	}

	a.logger.Debug(ctx, "patch preview built", logging.Field("files", len(commit.Order)), logging.Field("fuzz", fuzz))
	fmt.Fprint(a.stdout, colorizeDiff(lipgloss.NewRenderer(a.stdout), patch.RenderUnified(commit)))
	if fuzz > 0 {
		fmt.Fprintf(a.stderr, "note: patch matched with fuzz %d\n", fuzz)
	}
	return nil
}

// colorizeDiff styles added and removed lines. Renderers without color
// support return the text unchanged.
func colorizeDiff(r *lipgloss.Renderer, diff string) string {
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	added := base.Foreground(lipgloss.Color("2"))
	removed := base.Foreground(lipgloss.Color("1"))
	header := base.Bold(true)

	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		newline := line[len(body):]
		switch {
		case strings.HasPrefix(body, "+++ "), strings.HasPrefix(body, "--- "):
			b.WriteString(header.Render(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(added.Render(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(removed.Render(body))
		default:
			b.WriteString(body)
		}
		b.WriteString(newline)
	}
	return b.String()
}

func (a *app) filesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files [file|-]",
		Short: "List the paths a patch reads and creates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := a.readPatch(args)
			if err != nil {
				return err
			}
			for _, path := range patch.RequiredPaths(text) {
				fmt.Fprintf(a.stdout, "read %s\n", path)
			}
			for _, path := range patch.AddedPaths(text) {
				fmt.Fprintf(a.stdout, "add  %s\n", path)
			}
			return nil
		},
	}
}
