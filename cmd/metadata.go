package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytnotes/internal"
)

type metadataOutput struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Channel string `json:"channel"`
	URL     string `json:"url"`
}

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL]",
	Short: "Get title and channel of a YouTube video",
	Example: `  # Get metadata from YouTube video
  ytnotes metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytnotes metadata tAP1eZYEuKA

  # Save metadata to file
  ytnotes metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  ytnotes metadata tAP1eZYEuKA --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		videoID, details, err := app.VideoDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		metadata := metadataOutput{
			VideoID: videoID,
			Title:   details.Title,
			Channel: details.Channel,
			URL:     internal.WatchURL(videoID),
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(metadata, "", "  ")
		} else {
			jsonData, err = json.Marshal(metadata)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))
		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}
