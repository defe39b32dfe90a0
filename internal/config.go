package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the XDG directories and the environment prefix
const AppName = "ytnotes"

// Transcript sources
const (
	TranscriptSourceYtDlp = "ytdlp"
	TranscriptSourceWeb   = "web"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	Model                string
	OpenAIAPIKey         string
	APIKey               string
	LogLevel             string
	Verbose              bool
	Quiet                bool
	LLMTimeout           time.Duration
	LLMRequestsPerSecond float64
	TranscriptSource     string
	SubtitleLangs        string
	RetryAttempts        int
	RetryDelay           time.Duration
	MetadataTimeout      time.Duration
	OnlyMisspelled       bool
	PunchySynopsis       bool
	SectionConcurrency   int
	FollowUpStyle        string
	WriteFiles           bool
	NotesDir             string
	TranscriptsDir       string
	PromptsDir           string
	ServerAddr           string
	MCPLog               bool
	ModelPrices          PriceTable

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
}

// GeneratorOptions returns the stage options carried by the config
func (c *Config) GeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		OnlyMisspelled:     c.OnlyMisspelled,
		PunchySynopsis:     c.PunchySynopsis,
		SectionConcurrency: c.SectionConcurrency,
		FollowUpStyle:      c.FollowUpStyle,
	}
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	configDir := filepath.Join(xdg.ConfigHome, AppName)
	dataDir := filepath.Join(xdg.DataHome, AppName)
	cacheDir := filepath.Join(xdg.CacheHome, AppName)

	v := newViper(configDir, dataDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config, err := configFromViper(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	config.ConfigDir = configDir
	config.DataDir = dataDir
	config.CacheDir = cacheDir

	return config
}

// newViper sets defaults, config file lookup and environment bindings
func newViper(configDir, dataDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("log_level", "info")
	v.SetDefault("verbose", false)
	v.SetDefault("write_files", true)
	v.SetDefault("notes_dir", filepath.Join(dataDir, "notes"))
	v.SetDefault("transcripts_dir", filepath.Join(dataDir, "transcripts"))
	v.SetDefault("prompts_dir", filepath.Join(configDir, "prompts"))
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.requests_per_second", 0)
	v.SetDefault("transcript.source", TranscriptSourceYtDlp)
	v.SetDefault("transcript.languages", "en")
	v.SetDefault("transcript.retry_attempts", DefaultRetryConfig.Attempts)
	v.SetDefault("transcript.retry_delay", DefaultRetryConfig.Delay)
	v.SetDefault("metadata.timeout", 10*time.Second)
	v.SetDefault("corrections.only_misspelled", false)
	v.SetDefault("pipeline.punchy_synopsis", true)
	v.SetDefault("pipeline.section_concurrency", 0)
	v.SetDefault("followup.style", FollowUpResonance)
	v.SetDefault("server.addr", ":1621")
	v.SetDefault("mcp.log", true)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// YTNOTES_LLM_TIMEOUT overrides llm.timeout
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY", "YTNOTES_OPENAI_API_KEY")
	_ = v.BindEnv("api_key", "API_KEY", "YTNOTES_API_KEY")
	_ = v.BindEnv("log_level", "LOG_LEVEL", "YTNOTES_LOG_LEVEL")

	return v
}

// configFromViper builds the Config struct. The returned config is usable
// even when an error is reported.
func configFromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Model:                v.GetString("model"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		APIKey:               v.GetString("api_key"),
		LogLevel:             v.GetString("log_level"),
		Verbose:              v.GetBool("verbose"),
		LLMTimeout:           v.GetDuration("llm.timeout"),
		LLMRequestsPerSecond: v.GetFloat64("llm.requests_per_second"),
		TranscriptSource:     v.GetString("transcript.source"),
		SubtitleLangs:        v.GetString("transcript.languages"),
		RetryAttempts:        v.GetInt("transcript.retry_attempts"),
		RetryDelay:           v.GetDuration("transcript.retry_delay"),
		MetadataTimeout:      v.GetDuration("metadata.timeout"),
		OnlyMisspelled:       v.GetBool("corrections.only_misspelled"),
		PunchySynopsis:       v.GetBool("pipeline.punchy_synopsis"),
		SectionConcurrency:   v.GetInt("pipeline.section_concurrency"),
		FollowUpStyle:        v.GetString("followup.style"),
		WriteFiles:           v.GetBool("write_files"),
		NotesDir:             v.GetString("notes_dir"),
		TranscriptsDir:       v.GetString("transcripts_dir"),
		PromptsDir:           v.GetString("prompts_dir"),
		ServerAddr:           v.GetString("server.addr"),
		MCPLog:               v.GetBool("mcp.log"),
		ModelPrices:          DefaultPrices(),
	}

	// model names contain dots, so prices are a list rather than a keyed table
	var entries []struct {
		Model  string  `mapstructure:"model"`
		Input  float64 `mapstructure:"input"`
		Output float64 `mapstructure:"output"`
	}
	if err := v.UnmarshalKey("model_prices", &entries); err != nil {
		return config, fmt.Errorf("reading model_prices: %w", err)
	}
	overrides := make(PriceTable, len(entries))
	for _, e := range entries {
		if e.Model != "" {
			overrides[e.Model] = ModelPrice{Input: e.Input, Output: e.Output}
		}
	}
	config.ModelPrices = config.ModelPrices.Merge(overrides)

	switch config.TranscriptSource {
	case TranscriptSourceYtDlp, TranscriptSourceWeb:
	default:
		return config, fmt.Errorf("unknown transcript.source %q (want %s or %s)",
			config.TranscriptSource, TranscriptSourceYtDlp, TranscriptSourceWeb)
	}
	switch config.FollowUpStyle {
	case FollowUpResonance, FollowUpInsights:
	default:
		return config, fmt.Errorf("unknown followup.style %q (want %s or %s)",
			config.FollowUpStyle, FollowUpResonance, FollowUpInsights)
	}

	return config, nil
}
