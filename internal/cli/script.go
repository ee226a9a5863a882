package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/revue"
	"github.com/roach88/revue/history"
)

// NewScriptCommand creates the scripted scenario runner.
func NewScriptCommand(opts *RootOptions) *cobra.Command {
	var exportHistory bool

	cmd := &cobra.Command{
		Use:   "script <scenario.yaml>",
		Short: "Run a scripted message sequence",
		Long: "Loads a YAML scenario, dispatches its messages through the counter\n" +
			"component, and prints the resulting state trace.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			return runScript(cmd.OutOrStdout(), scenario, exportHistory)
		},
	}

	cmd.Flags().BoolVar(&exportHistory, "export-history", false, "print the canonical history export after the trace")
	return cmd
}

func runScript(out io.Writer, scenario *Scenario, exportHistory bool) error {
	component := revue.New(
		CounterInit(nil),
		CounterUpdate(nil),
		revue.WithTimeTravel[CounterModel, CounterMsg](history.DefaultMaxEntries),
	)
	if err := component.Run(); err != nil {
		return err
	}
	defer component.Dispose()

	fmt.Fprintf(out, "scenario: %s\n", scenario.Name)
	fmt.Fprintf(out, "step 0: count=%d\n", component.State().Count)

	for i, msg := range scenario.messages() {
		component.Dispatch(msg)
		fmt.Fprintf(out, "step %d: %T count=%d\n", i+1, msg, component.State().Count)
	}

	fmt.Fprintf(out, "final: count=%d entries=%d\n", component.State().Count, component.History().Len())

	if exportHistory {
		data, err := component.History().ExportCanonical()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", data)
	}
	return nil
}
