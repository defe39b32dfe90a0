package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytnotes/internal"
)

// outlineCmd prints the outline the notes would be built from
var outlineCmd = &cobra.Command{
	Use:   "outline [YouTube URL or ID]",
	Short: "Generate the section outline of a YouTube video",
	Example: `  # Preview how a video would be split into sections
  ytnotes outline tAP1eZYEuKA
  ytnotes outline tAP1eZYEuKA --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}
		videoID, err := internal.ParseVideoRef(args[0])
		if err != nil {
			return err
		}

		var (
			outline *internal.Outline
			cost    float64
		)
		err = withSpinner("Generating outline", func(app *internal.App) error {
			outline, cost, err = app.GenerateOutline(cmd.Context(), videoID, "")
			return err
		})
		if err != nil {
			return err
		}

		doc := fmt.Sprintf("## Outline (%d sections)\n\n%s\n", outline.Sections, outline.Text)
		if err := internal.PrintMarkdown(doc); err != nil {
			return err
		}
		internal.NewUIManager(config.Quiet).Printf("Cost: $%.4f\n", cost)
		return nil
	},
}

func init() {
	internal.AddOpenAIFlags(outlineCmd)
	rootCmd.AddCommand(outlineCmd)
}
