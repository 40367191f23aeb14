package util

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ValentinKolb/nsmutex/lib/namespace"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupBrokerFlags adds the flags shared by all mutex commands
func SetupBrokerFlags(cmd *cobra.Command) {
	key := "privileged"
	cmd.PersistentFlags().Bool(key, false, WrapString("Scope the lock namespace to the system service principal instead of the interactive administrator"))

	key = "runtime-dir"
	cmd.PersistentFlags().String(key, "", WrapString("Override the runtime directory the lock namespace lives under (ignored on Windows)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Log level (debug, info, warn, error)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print accumulated metrics in Prometheus format when the command finishes"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("nsmutex")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetLogger builds the CLI logger from configuration
func GetLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "nsmutex").Logger().Level(level)
}

// GetNamespaceConfig assembles the namespace configuration from viper
func GetNamespaceConfig(logger zerolog.Logger) namespace.Config {
	return namespace.Config{
		Privileged: viper.GetBool("privileged"),
		RuntimeDir: viper.GetString("runtime-dir"),
		Logger:     logger,
	}
}

// MetricsEnabled reports whether the metrics dump was requested
func MetricsEnabled() bool {
	return viper.GetBool("metrics")
}
