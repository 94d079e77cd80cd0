package approval

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	glam "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// maxPreviewLines bounds the edit preview shown in the prompt.
const maxPreviewLines = 10

// ModifyEditMessage is returned when the user asks to modify a file edit.
const ModifyEditMessage = "User wanted to modify the edit but only commands can be modified"

type stage int

const (
	stageChoose stage = iota
	stageExplained
	stageReason
	stageModify
	stageDone
)

var colorNames = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// themeColor resolves a theme entry. Basic color names map to ANSI codes;
// anything else (hex, 256-color index) is passed through.
func themeColor(theme map[string]string, role, fallback string) lipgloss.Color {
	name := strings.ToLower(strings.TrimSpace(theme[role]))
	if name == "" {
		name = fallback
	}
	if code, ok := colorNames[name]; ok {
		return lipgloss.Color(code)
	}
	return lipgloss.Color(name)
}

type promptStyles struct {
	title   lipgloss.Style
	approve lipgloss.Style
	deny    lipgloss.Style
	explain lipgloss.Style
	modify  lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
}

func newPromptStyles(r *lipgloss.Renderer, theme map[string]string) promptStyles {
	return promptStyles{
		title:   r.NewStyle().Bold(true).Foreground(themeColor(theme, "system", "yellow")),
		approve: r.NewStyle().Foreground(themeColor(theme, "assistant", "green")),
		deny:    r.NewStyle().Foreground(themeColor(theme, "error", "red")),
		explain: r.NewStyle().Foreground(themeColor(theme, "user", "blue")),
		modify:  r.NewStyle().Foreground(lipgloss.Color(colorNames["magenta"])),
		muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(themeColor(theme, "loading", "cyan")).
			PaddingLeft(1).
			PaddingRight(1),
	}
}

// Prompt is the bubbletea model that asks the user to approve, deny, explain
// or modify a Request.
type Prompt struct {
	req     Request
	stage   stage
	input   textinput.Model
	styles  promptStyles
	preview string
	result  Confirmation
}

// NewPrompt builds a Prompt for req. A nil styleRenderer uses the lipgloss
// default; a nil md shows the edit preview as plain text.
func NewPrompt(req Request, theme map[string]string, styleRenderer *lipgloss.Renderer, md *glam.TermRenderer) *Prompt {
	if styleRenderer == nil {
		styleRenderer = lipgloss.DefaultRenderer()
	}
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 0

	p := &Prompt{
		req:    req,
		input:  input,
		styles: newPromptStyles(styleRenderer, theme),
	}
	if req.Edit != nil {
		p.preview = renderPreview(req.Edit, md)
	}
	return p
}

func renderPreview(edit *Edit, md *glam.TermRenderer) string {
	body := edit.Preview
	if strings.TrimSpace(body) == "" {
		body = edit.Content
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) > maxPreviewLines {
		extra := len(lines) - maxPreviewLines
		lines = append(lines[:maxPreviewLines], fmt.Sprintf("... and %d more lines", extra))
	}
	block := "```diff\n" + strings.Join(lines, "\n") + "\n```\n"
	if md == nil {
		return block
	}
	rendered, err := md.Render(block)
	if err != nil {
		return block
	}
	return rendered
}

// Result returns the confirmation collected so far. It is final once the
// program has quit.
func (p *Prompt) Result() Confirmation {
	return p.result
}

// Init implements tea.Model.
func (p *Prompt) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if p.stage == stageReason || p.stage == stageModify {
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}
		return p, nil
	}

	if key.Type == tea.KeyCtrlC || key.Type == tea.KeyEsc {
		return p.finish(Deny, "")
	}

	switch p.stage {
	case stageChoose, stageExplained:
		return p.choose(strings.ToLower(key.String()))
	case stageReason:
		if key.Type == tea.KeyEnter {
			return p.finish(Deny, strings.TrimSpace(p.input.Value()))
		}
	case stageModify:
		if key.Type == tea.KeyEnter {
			command := ParseCommand(p.input.Value())
			if len(command) == 0 {
				return p.finish(Deny, "")
			}
			p.result.Command = command
			return p.finish(Modify, "")
		}
	default:
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Prompt) choose(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "a":
		return p.finish(Approve, "")
	case "d":
		p.stage = stageReason
		p.input.Placeholder = "Reason for denial (optional)"
		p.input.SetValue("")
		return p, p.input.Focus()
	case "e":
		if p.stage == stageChoose {
			p.result.Explanation = ExplainCommand(p.req.Command)
			p.stage = stageExplained
		}
	case "m":
		if p.stage != stageChoose {
			return p, nil
		}
		if p.req.Edit != nil {
			return p.finish(Deny, ModifyEditMessage)
		}
		p.stage = stageModify
		p.input.Placeholder = ""
		p.input.SetValue(FormatCommand(p.req.Command))
		p.input.CursorEnd()
		return p, p.input.Focus()
	}
	return p, nil
}

func (p *Prompt) finish(decision Decision, denyMessage string) (tea.Model, tea.Cmd) {
	p.result.Decision = decision
	p.result.DenyMessage = denyMessage
	p.stage = stageDone
	p.input.Blur()
	return p, tea.Quit
}

// View implements tea.Model.
func (p *Prompt) View() string {
	if p.stage == stageDone {
		return ""
	}

	var b strings.Builder
	if p.req.Edit != nil {
		b.WriteString(p.styles.title.Render("The AI assistant wants to edit file: " + p.req.Edit.Path))
		b.WriteString("\n")
		b.WriteString(p.styles.muted.Render("Preview of changes:"))
		b.WriteString("\n")
		b.WriteString(p.preview)
	} else {
		b.WriteString(p.styles.title.Render("The AI assistant wants to run: " + FormatCommand(p.req.Command)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch p.stage {
	case stageReason, stageModify:
		b.WriteString(p.input.View())
		b.WriteString("\n")
		b.WriteString(p.styles.muted.Render("enter to confirm, esc to cancel"))
		b.WriteString("\n")
		return b.String()
	case stageExplained:
		b.WriteString(p.styles.box.Render(p.result.Explanation))
		b.WriteString("\n\nNow that you have an explanation:\n")
		b.WriteString("  " + p.styles.approve.Render("(a)pprove") + " - Execute the command\n")
		b.WriteString("  " + p.styles.deny.Render("(d)eny") + " - Reject the command\n")
		b.WriteString("Your choice [a/d]: ")
		return b.String()
	}

	b.WriteString("Options:\n")
	b.WriteString("  " + p.styles.approve.Render("(a)pprove") + " - Execute the command\n")
	b.WriteString("  " + p.styles.deny.Render("(d)eny") + " - Reject the command\n")
	b.WriteString("  " + p.styles.explain.Render("(e)xplain") + " - Ask for an explanation\n")
	b.WriteString("  " + p.styles.modify.Render("(m)odify") + " - Modify the command before running\n")
	b.WriteString("Your choice [a/d/e/m]: ")
	return b.String()
}

// TerminalConfirmer runs a Prompt as a bubbletea program on the given
// streams.
type TerminalConfirmer struct {
	in    io.Reader
	out   io.Writer
	theme map[string]string
}

// NewTerminalConfirmer returns a Confirmer that prompts on in/out.
func NewTerminalConfirmer(in io.Reader, out io.Writer, theme map[string]string) *TerminalConfirmer {
	return &TerminalConfirmer{in: in, out: out, theme: theme}
}

// Confirm implements Confirmer.
func (c *TerminalConfirmer) Confirm(ctx context.Context, req Request) (Confirmation, error) {
	profile := termenv.NewOutput(c.out).Profile
	styleRenderer := lipgloss.NewRenderer(c.out, termenv.WithProfile(profile))

	md, err := glam.NewTermRenderer(
		glam.WithStylePath("dark"),
		glam.WithColorProfile(profile),
		glam.WithWordWrap(100),
	)
	if err != nil {
		md = nil
	}

	prompt := NewPrompt(req, c.theme, styleRenderer, md)
	program := tea.NewProgram(prompt,
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	)
	final, err := program.Run()
	if err != nil {
		return Confirmation{}, fmt.Errorf("confirmation prompt: %w", err)
	}
	result, ok := final.(*Prompt)
	if !ok {
		return Confirmation{}, fmt.Errorf("confirmation prompt: unexpected model %T", final)
	}
	return result.Result(), nil
}
