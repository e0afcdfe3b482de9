package di

import (
	"flag"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/logging"
)

// CLIFlags contains all command line flags for the compose CLI
type CLIFlags struct {
	// Input flags
	Prompt    string
	InputFile string

	// Delivery flags
	To string

	// LLM flags
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int

	// Transport flags
	Transport string
	From      string

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() (*CLIFlags, error) {
	return ParseFlagSet(flag.CommandLine, os.Args[1:])
}

// ParseFlagSet registers the CLI flags on fs and parses args
func ParseFlagSet(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}

	// Input flags
	fs.StringVar(&flags.Prompt, "prompt", "", "Description of the email to write")
	fs.StringVar(&flags.InputFile, "file", "", "Read the prompt from a file (stdin if neither -prompt nor -file is set)")

	// Delivery flags
	fs.StringVar(&flags.To, "to", "", "Comma-separated recipients; when set the draft is sent")

	// LLM flags
	fs.StringVar(&flags.APIKey, "api-key", "", "API key for the chat-completion endpoint")
	fs.StringVar(&flags.Model, "model", "", "Model name")
	fs.Float64Var(&flags.Temperature, "temperature", 0, "Sampling temperature")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 0, "Maximum tokens for the generated draft")

	// Transport flags
	fs.StringVar(&flags.Transport, "transport", "", "Mail transport (smtp, ses, resend, stdout)")
	fs.StringVar(&flags.From, "from", "", "Sender address")

	// Output flags
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		var (
			cfg *config.Config
			err error
		)
		if flags.ConfigFile != "" {
			cfg, err = config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Debug("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		} else {
			cfg, err = config.New()
			if err != nil {
				return nil, err
			}
		}

		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// No metrics for one-shot runs
	if err := container.Provide(func() core.Recorder { return nil }); err != nil {
		return nil, err
	}

	if err := providePipelines(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration values with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()

	if flags.APIKey != "" {
		v.Set("llm.api_key", flags.APIKey)
	}
	if flags.Model != "" {
		v.Set("llm.model", flags.Model)
	}
	if flags.Temperature > 0 {
		v.Set("llm.temperature", flags.Temperature)
	}
	if flags.MaxTokens > 0 {
		v.Set("llm.max_tokens", flags.MaxTokens)
	}
	if flags.Transport != "" {
		v.Set("mail.transport", flags.Transport)
	}
	if flags.From != "" {
		v.Set("mail.from", flags.From)
	}
}
