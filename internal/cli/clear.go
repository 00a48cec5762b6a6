package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every logged meal",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	n := len(a.Tracker.Meals())
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No meals to delete.")
		return nil
	}

	if !yes {
		fmt.Fprintf(cmd.ErrOrStderr(), "Delete all %d meals? [y/N]: ", n)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
			return nil
		}
	}

	if err := a.Tracker.ClearMeals(cmd.Context()); err != nil {
		return fmt.Errorf("clear meals: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d meals.\n", n)
	return nil
}
