package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codev-cli/codev/internal/approval"
	"github.com/codev-cli/codev/pkg/patch"
	"github.com/stretchr/testify/require"
)

func writeWorkFile(t *testing.T, d *Dispatcher, name, content string) {
	t.Helper()

	path := filepath.Join(d.WorkingDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readWorkFile(t *testing.T, d *Dispatcher, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(d.WorkingDir(), name))
	require.NoError(t, err)
	return string(data)
}

const greetingPatch = "*** Begin Patch\n" +
	"*** Update File: hello.txt\n" +
	"@@\n" +
	" hello\n" +
	"-world\n" +
	"+there\n" +
	"*** End Patch"

func TestEditFileAppliesPatch(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, approval.AutoEdit, nil)
	writeWorkFile(t, d, "hello.txt", "hello\nworld\n")

	got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
	require.Equal(t, patch.SuccessMessage, got.Output)
	require.Equal(t, "hello\nthere\n", readWorkFile(t, d, "hello.txt"))
}

func TestEditFileReportsPatchErrors(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, approval.FullAuto, nil)
	writeWorkFile(t, d, "hello.txt", "something else\n")

	got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
	require.True(t, strings.HasPrefix(got.Output, "Error editing file: Could not find context in ./hello.txt."), got.Output)
	require.Equal(t, "something else\n", readWorkFile(t, d, "hello.txt"))

	missing := newTestDispatcher(t, approval.FullAuto, nil)
	got = missing.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
	require.True(t, strings.HasPrefix(got.Output, "Error editing file: missing file (hello.txt)"), got.Output)
}

func TestEditFileWritesContent(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, approval.FullAuto, nil)
	got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "pkg/new.go", "code_edit": "package pkg\n"}))
	require.Equal(t, "Successfully wrote to pkg/new.go", got.Output)
	require.Equal(t, "package pkg\n", readWorkFile(t, d, "pkg/new.go"))
}

func TestEditFileWriteStaysInsideWorkingDir(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, approval.FullAuto, nil)
	outside := filepath.Join(filepath.Dir(d.WorkingDir()), "outside.txt")

	for _, target := range []string{"../outside.txt", outside} {
		got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": target, "code_edit": "pwned\n"}))
		require.True(t, strings.HasPrefix(got.Output, "Error editing file: "), got.Output)
		require.NoFileExists(t, outside)
	}
}

func TestEditFileApprovalShowsPreview(t *testing.T) {
	t.Parallel()

	confirmer := &recordingConfirmer{reply: approval.Confirmation{Decision: approval.Approve}}
	d := newTestDispatcher(t, approval.Suggest, confirmer)
	writeWorkFile(t, d, "hello.txt", "hello\nworld\n")

	got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
	require.Equal(t, patch.SuccessMessage, got.Output)

	require.Len(t, confirmer.requests, 1)
	req := confirmer.requests[0]
	require.Equal(t, []string{"edit", "hello.txt"}, req.Command)
	require.NotNil(t, req.Edit)
	require.Equal(t, "hello.txt", req.Edit.Path)
	require.Contains(t, req.Edit.Preview, "-world\n")
	require.Contains(t, req.Edit.Preview, "+there\n")
}

func TestEditFileDirectWritePreview(t *testing.T) {
	t.Parallel()

	confirmer := &recordingConfirmer{reply: approval.Confirmation{Decision: approval.Approve}}
	d := newTestDispatcher(t, approval.Suggest, confirmer)
	writeWorkFile(t, d, "a.txt", "old\n")

	got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "a.txt", "code_edit": "new\n"}))
	require.Equal(t, "Successfully wrote to a.txt", got.Output)

	preview := confirmer.requests[0].Edit.Preview
	require.Contains(t, preview, "--- a/a.txt\n")
	require.Contains(t, preview, "-old\n")
	require.Contains(t, preview, "+new\n")
}

func TestEditFileDenied(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		reply approval.Confirmation
		want  string
	}{
		"default message": {approval.Confirmation{Decision: approval.Deny}, EditDeniedOutput},
		"custom message":  {approval.Confirmation{Decision: approval.Deny, DenyMessage: approval.ModifyEditMessage}, approval.ModifyEditMessage},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			d := newTestDispatcher(t, approval.Suggest, &recordingConfirmer{reply: tt.reply})
			writeWorkFile(t, d, "hello.txt", "hello\nworld\n")

			got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
			require.Equal(t, tt.want, got.Output)
			require.Equal(t, "hello\nworld\n", readWorkFile(t, d, "hello.txt"))
		})
	}
}

func TestEditFilePreviewFailureSkipsConfirmation(t *testing.T) {
	t.Parallel()

	confirmer := &recordingConfirmer{reply: approval.Confirmation{Decision: approval.Approve}}
	d := newTestDispatcher(t, approval.Suggest, confirmer)

	got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": greetingPatch}))
	require.True(t, strings.HasPrefix(got.Output, "Error editing file: "), got.Output)
	require.Empty(t, confirmer.requests)
}

func TestEditFileAddOverExistingFileSkipsConfirmation(t *testing.T) {
	t.Parallel()

	confirmer := &recordingConfirmer{reply: approval.Confirmation{Decision: approval.Approve}}
	d := newTestDispatcher(t, approval.Suggest, confirmer)
	writeWorkFile(t, d, "hello.txt", "hello\n")

	addPatch := "*** Begin Patch\n*** Add File: hello.txt\n+replaced\n*** End Patch"
	got := d.Dispatch(context.Background(), call(EditFileToolName, map[string]any{"target_file": "hello.txt", "code_edit": addPatch}))
	require.True(t, strings.HasPrefix(got.Output, "Error editing file: file already exists"), got.Output)
	require.Empty(t, confirmer.requests)
	require.Equal(t, "hello\n", readWorkFile(t, d, "hello.txt"))
}

func TestEditFileCancelledContext(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, approval.FullAuto, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := d.Dispatch(ctx, call(EditFileToolName, map[string]any{"target_file": "a.txt", "code_edit": "x"}))
	require.Equal(t, "Error editing file: context canceled", got.Output)
	require.NoFileExists(t, filepath.Join(d.WorkingDir(), "a.txt"))
}
