package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged meals grouped by day",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	groups := a.Tracker.History(time.Now())
	if formatFlag == "json" {
		return printJSON(cmd.OutOrStdout(), groups)
	}
	writeHistory(cmd.OutOrStdout(), groups)
	return nil
}
