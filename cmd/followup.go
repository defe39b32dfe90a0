package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytnotes/internal"
)

// followUpCmd responds to the viewer's takes on a video
var followUpCmd = &cobra.Command{
	Use:   "followup [YouTube URL or ID] --take TEXT [--take TEXT ...]",
	Short: "Write a follow-up document on your takes about a video",
	Example: `  # Respond to two takes
  ytnotes followup tAP1eZYEuKA --take "The second half repeats the first" --take "Great examples"

  # Use the insights style instead of the configured one
  ytnotes followup tAP1eZYEuKA --take "..." --style insights`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}
		videoID, err := internal.ParseVideoRef(args[0])
		if err != nil {
			return err
		}

		takes, _ := cmd.Flags().GetStringArray("take")
		var cleaned []string
		for _, take := range takes {
			if take = strings.TrimSpace(take); take != "" {
				cleaned = append(cleaned, take)
			}
		}
		if len(cleaned) == 0 {
			return errors.New("at least one --take is required")
		}

		if style, _ := cmd.Flags().GetString("style"); style != "" {
			if style != internal.FollowUpResonance && style != internal.FollowUpInsights {
				return errors.New("--style must be resonance or insights")
			}
			config.FollowUpStyle = style
		}

		var result *internal.FollowUpResult
		err = withSpinner("Writing follow-up", func(app *internal.App) error {
			result, err = app.GenerateFollowUp(cmd.Context(), videoID, cleaned, "")
			return err
		})
		if err != nil {
			return err
		}

		if err := internal.PrintMarkdown("# " + result.Title + "\n\n" + result.Content); err != nil {
			return err
		}
		ui := internal.NewUIManager(config.Quiet)
		ui.Printf("Cost: $%.4f\n", result.Cost)
		if result.NotePath != "" {
			ui.Printf("Saved to %s\n", result.NotePath)
		}
		return nil
	},
}

func init() {
	internal.AddOpenAIFlags(followUpCmd)
	followUpCmd.Flags().StringArrayP("take", "t", nil, "One of your takes on the video (repeatable)")
	followUpCmd.Flags().String("style", "", "Follow-up style: resonance or insights")
	rootCmd.AddCommand(followUpCmd)
}
