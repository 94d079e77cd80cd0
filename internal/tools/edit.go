package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"strings"

	"github.com/codev-cli/codev/internal/approval"
	"github.com/codev-cli/codev/internal/logging"
	"github.com/codev-cli/codev/pkg/patch"
)

// isPatch reports whether code_edit is a patch envelope rather than the new
// file content.
func isPatch(edit string) bool {
	trimmed := strings.TrimRight(edit, " \t\r\n")
	return strings.HasPrefix(trimmed, patch.BeginMarker+"\n") && strings.HasSuffix(trimmed, "\n"+patch.EndMarker)
}

func (d *Dispatcher) editFile(ctx context.Context, raw json.RawMessage) string {
	logger := d.opts.Logger.WithFields(logging.Field("tool", EditFileToolName))
	var args EditArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "Invalid arguments: " + err.Error()
	}

	fsys, err := patch.NewDirFS(d.opts.WorkingDir)
	if err != nil {
		return "Error editing file: " + err.Error()
	}
	asPatch := isPatch(args.CodeEdit)

	if d.opts.Policy.NeedsEditApproval() {
		preview, err := d.previewEdit(fsys, args, asPatch)
		if err != nil {
			logger.Warn(ctx, "edit preview failed", logging.Field("error", err.Error()))
			return "Error editing file: " + patch.FormatError(err)
		}
		confirmation, err := d.confirm(ctx, approval.Request{
			Command: []string{"edit", args.TargetFile},
			Edit:    &approval.Edit{Path: args.TargetFile, Content: args.CodeEdit, Preview: preview},
		})
		if err != nil {
			logger.Error(ctx, "edit confirmation failed", err)
			return "Error confirming file edit: " + err.Error()
		}
		if !confirmation.Approved() {
			if confirmation.DenyMessage != "" {
				return confirmation.DenyMessage
			}
			return EditDeniedOutput
		}
	}

	d.editMu.Lock()
	defer d.editMu.Unlock()
	if err := ctx.Err(); err != nil {
		return "Error editing file: " + err.Error()
	}

	if asPatch {
		result, err := patch.Apply(args.CodeEdit, fsys)
		if err != nil {
			logger.Warn(ctx, "patch rejected", logging.Field("error", err.Error()))
			d.opts.Metrics.RecordPatch(0, 0, false)
			return "Error editing file: " + patch.FormatError(err)
		}
		d.opts.Metrics.RecordPatch(len(result.Commit.Order), result.Fuzz, true)
		logger.Info(ctx, "patch applied", logging.Field("files", len(result.Commit.Order)), logging.Field("fuzz", result.Fuzz))
		return patch.SuccessMessage
	}

	if err := fsys.Write(args.TargetFile, args.CodeEdit); err != nil {
		logger.Warn(ctx, "write rejected", logging.Field("error", err.Error()))
		return "Error editing file: " + patch.FormatError(err)
	}
	logger.Info(ctx, "file written", logging.Field("path", args.TargetFile))
	return "Successfully wrote to " + args.TargetFile
}

// previewEdit renders the diff shown to the user before an edit is approved.
// A patch is dry-run against the working directory; a direct write is
// compared with the current file content, if any.
func (d *Dispatcher) previewEdit(fsys *patch.DirFS, args EditArgs, asPatch bool) (string, error) {
	if asPatch {
		commit, _, err := patch.Build(args.CodeEdit, fsys)
		if err != nil {
			return "", err
		}
		return patch.RenderUnified(commit), nil
	}

	change := patch.FileChange{Type: patch.ChangeAdd, NewContent: args.CodeEdit}
	existing, err := fsys.Read(args.TargetFile)
	switch {
	case err == nil:
		change = patch.FileChange{Type: patch.ChangeUpdate, OldContent: existing, NewContent: args.CodeEdit}
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}
	commit := &patch.Commit{
		Changes: map[string]patch.FileChange{args.TargetFile: change},
		Order:   []string{args.TargetFile},
	}
	return patch.RenderUnified(commit), nil
}
