package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nutrivision/internal/models"
)

func init() {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the profile and calorie targets",
		Args:  cobra.NoArgs,
		RunE:  runProfileShow,
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Create or update the profile",
		Long:  "Create or update the profile. Flags left out keep their current value, or the default for a new profile.",
		Args:  cobra.NoArgs,
		RunE:  runProfileSet,
	}
	set.Flags().Int("age", 0, "Age in years")
	set.Flags().String("gender", "", "male or female")
	set.Flags().Float64("height", 0, "Height in cm")
	set.Flags().Float64("weight", 0, "Weight in kg")
	set.Flags().String("activity", "", activityHelp())
	set.Flags().String("goal", "", "lose, maintain, gain")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileClear,
	}

	cmd.AddCommand(show, set, clearCmd)
	RootCmd.AddCommand(cmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	return printProfile(cmd, newProfileView(a.Tracker.Profile(), a.Tracker.Calculations()))
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	p := models.DefaultProfile()
	if current := a.Tracker.Profile(); current != nil {
		p = *current
	}
	if err := applyProfileFlags(cmd, &p); err != nil {
		return err
	}

	if err := a.Tracker.SetProfile(cmd.Context(), &p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return printProfile(cmd, newProfileView(a.Tracker.Profile(), a.Tracker.Calculations()))
}

func runProfileClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Tracker.SetProfile(cmd.Context(), nil); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Profile deleted.")
	return nil
}

func applyProfileFlags(cmd *cobra.Command, p *models.UserProfile) error {
	flags := cmd.Flags()
	if flags.Changed("age") {
		p.Age, _ = flags.GetInt("age")
	}
	if flags.Changed("height") {
		p.Height, _ = flags.GetFloat64("height")
	}
	if flags.Changed("weight") {
		p.Weight, _ = flags.GetFloat64("weight")
	}
	if flags.Changed("gender") {
		s, _ := flags.GetString("gender")
		g, err := models.ParseGender(s)
		if err != nil {
			return err
		}
		p.Gender = g
	}
	if flags.Changed("activity") {
		s, _ := flags.GetString("activity")
		a, err := models.ParseActivityLevel(s)
		if err != nil {
			return err
		}
		p.ActivityLevel = a
	}
	if flags.Changed("goal") {
		s, _ := flags.GetString("goal")
		g, err := models.ParseGoal(s)
		if err != nil {
			return err
		}
		p.Goal = g
	}
	return nil
}

// activityHelp lists the short activity names in order of intensity.
func activityHelp() string {
	keys := make([]string, 0, len(models.ActivityLevels))
	for _, a := range models.ActivityLevels {
		keys = append(keys, models.ActivityKey(a))
	}
	return strings.Join(keys, ", ")
}

func printProfile(cmd *cobra.Command, v profileView) error {
	if formatFlag == "json" {
		return printJSON(cmd.OutOrStdout(), v)
	}
	writeProfile(cmd.OutOrStdout(), v)
	return nil
}
