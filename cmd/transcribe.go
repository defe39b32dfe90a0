package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytnotes/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [YouTube URL or ID]",
	Short: "Get the transcript of a YouTube video",
	Example: `  # Print the transcript from YouTube captions
  ytnotes transcribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytnotes transcribe tAP1eZYEuKA

  # Save transcript to file
  ytnotes transcribe tAP1eZYEuKA -o transcript.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, err := fetchTranscript(cmd, args[0])
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(transcript), 0644)
		}

		fmt.Println(transcript)
		return nil
	},
}

// fetchTranscript resolves the argument and fetches its transcript with retry
func fetchTranscript(cmd *cobra.Command, arg string) (string, error) {
	videoID, err := internal.ParseVideoRef(arg)
	if err != nil {
		return "", err
	}

	var transcript string
	err = withSpinner("Fetching transcript", func(app *internal.App) error {
		transcript, err = app.Transcript(cmd.Context(), videoID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", internal.TranscriptExplanation(err), err)
	}
	return transcript, nil
}

func init() {
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(transcribeCmd)
}
