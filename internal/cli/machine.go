package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/applytrack/applytrack/internal/domain/position/domain"
)

var machineCmd = &cobra.Command{
	Use:   "machine",
	Short: "Inspect the status pipeline",
}

var machineExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the status machine as XState JSON",
	Long: `Print the status machine as XState JSON.

The output can be pasted into the Stately visualizer to draw the pipeline.`,
	Args: cobra.NoArgs,
	RunE: runMachineExport,
}

var machineTargetsCmd = &cobra.Command{
	Use:   "targets <status>",
	Short: "List the statuses reachable from a status",
	Args:  cobra.ExactArgs(1),
	RunE:  runMachineTargets,
}

func init() {
	machineCmd.AddCommand(machineExportCmd)
	machineCmd.AddCommand(machineTargetsCmd)
	rootCmd.AddCommand(machineCmd)
}

func runMachineExport(cmd *cobra.Command, args []string) error {
	data, err := domain.ExportXStateJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// TargetsOutput lists where a status can move next.
type TargetsOutput struct {
	Status   string   `json:"status" yaml:"status" toml:"status"`
	Terminal bool     `json:"terminal" yaml:"terminal" toml:"terminal"`
	Targets  []string `json:"targets" yaml:"targets" toml:"targets"`
}

func runMachineTargets(cmd *cobra.Command, args []string) error {
	status, err := domain.ParseStatus(args[0])
	if err != nil {
		return err
	}

	targets, err := domain.MachineTargets(status)
	if err != nil {
		return err
	}
	out := TargetsOutput{
		Status:   status.String(),
		Terminal: status.IsTerminal(),
		Targets:  statusNames(targets),
	}
	return render(cmd, out, func(w io.Writer) {
		printTitle(w, status.Label())
		if len(targets) == 0 {
			printSubtle(w, "Final status; no further moves.")
			return
		}
		for _, t := range targets {
			fmt.Fprintf(w, "  → %s (%s)\n", statusStyle(t)(t.Label()), t)
		}
	})
}
