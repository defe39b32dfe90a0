package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytnotes/internal"
)

// cpCmd copies saved notes or a transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Copy notes or transcript of a YouTube video to the clipboard",
	Long: `Copy the saved notes of a video to the clipboard.

Notes are looked up by the video's title in the notes directory. With
--transcript the captions are fetched and copied instead.`,
	Example: `  # Copy previously generated notes
  ytnotes cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"

  # Copy the transcript from YouTube captions
  ytnotes cp tAP1eZYEuKA --transcript`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ui := internal.NewUIManager(config.Quiet)

		if onlyTranscript, _ := cmd.Flags().GetBool("transcript"); onlyTranscript {
			transcript, err := fetchTranscript(cmd, args[0])
			if err != nil {
				return err
			}
			if err := clipboard.WriteAll(transcript); err != nil {
				return fmt.Errorf("copying transcript to clipboard: %w", err)
			}
			ui.Printf("Transcript copied to clipboard\n")
			return nil
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		_, details, err := app.VideoDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		notes, err := app.Writer().ReadNotes(details.Title)
		if err != nil {
			return fmt.Errorf("no saved notes for %q, run 'ytnotes %s' first: %w", details.Title, args[0], err)
		}

		if err := clipboard.WriteAll(notes); err != nil {
			return fmt.Errorf("copying notes to clipboard: %w", err)
		}
		ui.Printf("Notes for %q copied to clipboard\n", details.Title)
		return nil
	},
}

func init() {
	cpCmd.Flags().Bool("transcript", false, "Copy the transcript instead of the saved notes")
	rootCmd.AddCommand(cpCmd)
}
