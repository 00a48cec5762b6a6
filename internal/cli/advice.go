package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nutrivision/internal/advice"
	"nutrivision/internal/tracker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "advice",
		Short: "Get dietary advice on the logged meals",
		Args:  cobra.NoArgs,
		RunE:  runAdvice,
	}
	RootCmd.AddCommand(cmd)
}

func runAdvice(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.Tracker.Profile()
	if p == nil {
		return errors.New(tracker.UserMessage(tracker.ErrProfileRequired))
	}

	text, err := a.Advice.Generate(cmd.Context(), advice.Request{
		Profile:      *p,
		Meals:        a.Tracker.Meals(),
		Calculations: a.Tracker.Calculations(),
	})
	if err != nil {
		return fmt.Errorf("generate advice: %w", err)
	}

	if formatFlag == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]string{"advice": text})
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
