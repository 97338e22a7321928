package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer("-", "_")

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Reads global flags and adjusts the environment accordingly.
func processGlobalFlags(v *viper.Viper) {
	if v.GetBool("no-color") || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
}

// newLogger returns a console logger on stderr at the configured level.
// Tracing lowers the level to trace.
func newLogger(v *viper.Viper, stderr io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	if v.GetBool("trace") {
		level = zerolog.TraceLevel
	}
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: color.NoColor}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// readModule returns the raw module named by args[0] or read from stdin.
func readModule(cmd *cobra.Command, v *viper.Viper, args []string) ([]byte, error) {
	stdin := v.GetBool("stdin")
	pathSupplied := len(args) > 0
	if pathSupplied && stdin {
		return nil, errors.New("multiple input sources specified")
	}
	if stdin {
		return io.ReadAll(cmd.InOrStdin())
	}
	if !pathSupplied {
		return nil, errors.New("no input provided")
	}
	return os.ReadFile(args[0])
}
