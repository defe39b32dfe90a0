package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddOpenAIFlags adds flags related to OpenAI API functionality
func AddOpenAIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "OpenAI model used for every LLM stage")
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet cannot be used together")
	}
	config.Verbose = config.Verbose || verbose
	config.Quiet = quiet
	return nil
}

// ValidateOpenAIRequirements validates the OpenAI API key and the model from
// command flags and config. A valid --model replaces the configured model.
func ValidateOpenAIRequirements(cmd *cobra.Command, config *Config) error {
	if err := ValidateOpenAIAPIKey(config.OpenAIAPIKey); err != nil {
		return err
	}

	modelFlag, _ := cmd.Flags().GetString("model")
	if modelFlag != "" {
		if err := ValidateModel(modelFlag, config.ModelPrices); err != nil {
			return err
		}
		config.Model = modelFlag
	} else if err := ValidateModel(config.Model, config.ModelPrices); err != nil {
		return fmt.Errorf("invalid model in config: %w", err)
	}

	return nil
}
