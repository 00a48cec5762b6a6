package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nutrivision/internal/models"
	"nutrivision/internal/tracker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Identify a meal photo and log its nutrition",
		Long: "Identify a meal photo and log its nutrition. When the model is unsure " +
			"you are asked for the food name; press enter to accept the suggestion or q to cancel.",
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	cmd.Flags().StringP("type", "t", string(models.DefaultMealType), "Meal type: Breakfast, Lunch, Dinner, Snack")

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	typeStr, _ := cmd.Flags().GetString("type")
	mealType, err := models.ParseMealType(typeStr)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	img, err := models.NewImage(data)
	if err != nil {
		return errors.New(models.ImageErrorMessage(err))
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		fmt.Fprintln(out, "Analyzing...")
	}

	outcome, err := a.Tracker.AnalyzeImage(cmd.Context(), img, mealType)
	if err != nil {
		return userFacing(err)
	}

	meal := outcome.Meal
	if outcome.Pending != nil {
		meal, err = disambiguate(cmd, a.Tracker, *outcome.Pending)
		if err != nil {
			return err
		}
		if meal == nil {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if formatFlag == "json" {
		return printJSON(out, meal)
	}
	writeMeal(out, *meal)
	return nil
}

// disambiguate asks for the food name until a lookup succeeds. A nil meal
// means the user cancelled.
func disambiguate(cmd *cobra.Command, tr *tracker.Tracker, p tracker.Pending) (*models.Meal, error) {
	// prompts go to stderr so json output stays clean
	prompt := cmd.ErrOrStderr()
	in := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintln(prompt, "Not sure what this is:")
	fmt.Fprintf(prompt, "  %s\n", strings.TrimSpace(p.Description))

	for {
		if p.Guess != "" {
			fmt.Fprintf(prompt, "Food name [%s] (q to cancel): ", p.Guess)
		} else {
			fmt.Fprint(prompt, "Food name (q to cancel): ")
		}

		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			tr.CancelPending()
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("read answer: %w", err)
		}

		answer := strings.TrimSpace(line)
		switch {
		case strings.EqualFold(answer, "q"):
			tr.CancelPending()
			return nil, nil
		case answer == "":
			answer = p.Guess
		}

		meal, err := tr.ConfirmFood(cmd.Context(), answer)
		if err == nil {
			return meal, nil
		}
		if tr.Pending() == nil {
			return nil, userFacing(err)
		}
		fmt.Fprintln(prompt, tracker.UserMessage(err))
	}
}

// userFacing replaces pipeline errors with the message meant for people.
func userFacing(err error) error {
	var te *tracker.Error
	if errors.As(err, &te) {
		return fmt.Errorf("%s (%v)", te.UserMessage(), te.Err)
	}
	return err
}
