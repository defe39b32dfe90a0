package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytnotes/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytnotes [YouTube URL or ID]",
	Short: "Structured markdown notes from YouTube videos",
	Long: `ytnotes turns a YouTube video into structured markdown notes.

It fetches the video's captions, asks an OpenAI model to flag likely
transcription errors, builds an outline, summarizes every section and
finishes with a TL;DR and a short vocabulary list.

Notes are printed and saved under the data directory (see 'ytnotes paths').`,
	Example: `  # Generate notes for a YouTube video (default behavior)
  ytnotes "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytnotes tAP1eZYEuKA

  # Use a specific OpenAI model
  ytnotes "https://youtu.be/tAP1eZYEuKA" --model gpt-4o

  # Only print the notes, do not write files
  ytnotes tAP1eZYEuKA --no-save`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return internal.HandleVerboseFlag(cmd, config)
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}

		arg := args[0]
		if internal.IsLikelyCommand(arg) {
			return unknownArgError(cmd, arg)
		}

		if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
			config.WriteFiles = false
		}

		var result *internal.NotesResult
		err := withSpinner("Generating notes", func(app *internal.App) error {
			var err error
			result, err = app.GenerateNotes(cmd.Context(), arg, "")
			return err
		})
		if err != nil {
			return err
		}

		if err := internal.PrintMarkdown(result.Document); err != nil {
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

// unknownArgError suggests subcommands for arguments that look like typos
func unknownArgError(cmd *cobra.Command, arg string) error {
	var suggestions []string
	for _, c := range cmd.Commands() {
		name := c.Name()
		if strings.Contains(name, arg) || strings.HasPrefix(name, arg[:min(len(arg), 3)]) {
			suggestions = append(suggestions, name)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Did you mean: %s?", arg, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Use --help to see available commands", arg)
}

// newApp builds the application with the CLI logger and optional extra options
func newApp(options ...internal.AppOption) (*internal.App, error) {
	return internal.NewApp(config, internal.NewLoggerFromConfig(config), options...)
}

// withSpinner runs fn against an app whose pipeline stages drive a spinner
func withSpinner(description string, fn func(app *internal.App) error) error {
	bar := internal.NewUIManager(config.Quiet || config.Verbose).NewSpinner(description)
	defer bar.Finish()

	app, err := newApp(internal.WithProgress(internal.StageReporter(bar)))
	if err != nil {
		return err
	}
	return fn(app)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Cancelled on the first interrupt; in-flight requests stop and the command returns
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config = internal.InitConfig()

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	internal.AddOpenAIFlags(rootCmd)
	rootCmd.Flags().Bool("no-save", false, "Print the notes without writing files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print results and errors")
}
