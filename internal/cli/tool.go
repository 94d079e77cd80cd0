package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codev-cli/codev/internal/logging"
	"github.com/codev-cli/codev/internal/tools"
)

func (a *app) toolCommand() *cobra.Command {
	var (
		workdir  string
		approval string
		yes      bool
		stats    bool
	)
	cmd := &cobra.Command{
		Use:   "tool <name> [json-args]",
		Short: "Run one tool call the way the agent loop would",
		Long: `Tool dispatches a single function call, e.g.

  codev tool shell '{"command":["ls","-la"]}'
  codev tool edit_file '{"target_file":"a.txt","code_edit":"hello\n"}'

and prints the tool output exactly as it would be returned to the model.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := a.policy(approval, yes)
			if err != nil {
				return err
			}
			d, err := a.dispatcher(workdir, policy)
			if err != nil {
				return err
			}
			call := tools.Call{ID: logging.NewTraceID(), Name: args[0]}
			if len(args) == 2 {
				call.Arguments = args[1]
			}
			result := d.Dispatch(cmd.Context(), call)
			fmt.Fprintln(a.stdout, result.Output)
			if stats {
				enc := json.NewEncoder(a.stderr)
				enc.SetIndent("", "  ")
				if err := enc.Encode(d.Metrics().Snapshot()); err != nil {
					return err
				}
			}
			if result.Output == tools.NoFunctionFound {
				return &exitError{code: 2, silent: true}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&workdir, "workdir", "C", "", "directory tools run in")
	cmd.Flags().StringVar(&approval, "approval", "", "approval policy: suggest, auto-edit, full-auto")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "run without asking for approval")
	cmd.Flags().BoolVar(&stats, "stats", false, "print dispatch metrics to stderr")
	return cmd
}

func (a *app) toolsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs := tools.Definitions()
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			}
			for _, d := range defs {
				desc := d.Description
				if i := strings.IndexAny(desc, ".\n"); i > 0 {
					desc = desc[:i]
				}
				fmt.Fprintf(a.stdout, "  %-18s %s\n", d.Name, desc)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full definitions with their parameter schemas")
	return cmd
}
