package tools

import "encoding/json"

// Tool names understood by the Dispatcher.
const (
	ShellToolName       = "shell"
	TerminalToolName    = "run_terminal_cmd"
	ContainerExecName   = "container.exec"
	EditFileToolName    = "edit_file"
	NoFunctionFound     = "No function found"
	CommandDeniedOutput = "Command not approved by user"
	EditDeniedOutput    = "File edit not approved by user"
)

// Call is one function call requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments string
}

// Result is the function_call_output sent back for a Call.
type Result struct {
	CallID string
	Output string
}

// CommandArg accepts either a single command line or an argv array.
type CommandArg struct {
	Line string
	Argv []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CommandArg) UnmarshalJSON(data []byte) error {
	var line string
	if err := json.Unmarshal(data, &line); err == nil {
		c.Line, c.Argv = line, nil
		return nil
	}
	var argv []string
	if err := json.Unmarshal(data, &argv); err != nil {
		return err
	}
	c.Line, c.Argv = "", argv
	return nil
}

// ShellArgs are the arguments of the shell family of tools.
type ShellArgs struct {
	Command      CommandArg `json:"command"`
	Workdir      string     `json:"workdir"`
	IsBackground bool       `json:"is_background"`
	TimeoutSec   int        `json:"timeout_sec"`
}

// EditArgs are the arguments of edit_file.
type EditArgs struct {
	TargetFile string `json:"target_file"`
	CodeEdit   string `json:"code_edit"`
}

// ShellMetadata accompanies every shell tool output.
type ShellMetadata struct {
	ExitCode        int     `json:"exit_code"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ShellOutput is the JSON document returned by the shell tools.
type ShellOutput struct {
	Output   string        `json:"output"`
	Metadata ShellMetadata `json:"metadata"`
}

// Definition describes a tool to the model.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
