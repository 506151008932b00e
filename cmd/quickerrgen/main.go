package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gitlab.com/kyle_anderson/quickerr/pkg/config"
	"gitlab.com/kyle_anderson/quickerr/pkg/dsl"
	"gitlab.com/kyle_anderson/quickerr/pkg/emitter"
	"gitlab.com/kyle_anderson/quickerr/pkg/generator"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	check      bool
	debug      bool
	configPath string
	suffix     string
	workers    int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "quickerrgen [dir...]",
		Short: "Generate Go error types from quickerr comment blocks",
		Long: `quickerrgen scans the Go files of each package directory (the current
directory by default) for quickerr! blocks and writes the declared error types
to a generated file next to each source file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runGenerate(cmd, opts, args)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&opts.check, "check", false, "Report generated files that are missing or out of date instead of writing them")
	flags.StringVar(&opts.configPath, "config", "", "Configuration file to use instead of <dir>/"+config.FileName)
	flags.StringVar(&opts.suffix, "suffix", "", "Suffix inserted before .go in generated file names")
	flags.IntVar(&opts.workers, "workers", 0, "Number of files processed in parallel, 0 for automatic")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logs")
	cmd.AddCommand(newEmitCmd())
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *rootOptions, dirs []string) error {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	logger := newConsoleLogger(level, cmd.ErrOrStderr())
	defer logger.Sync()

	var errs error
	for _, dir := range dirs {
		cfg, err := config.Load(dir, opts.configPath)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if cmd.Flags().Changed("suffix") {
			cfg.Suffix = opts.suffix
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = opts.workers
		}
		if err := cfg.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if opts.debug || cfg.Debug {
			level.SetLevel(zap.DebugLevel)
		} else {
			level.SetLevel(zap.InfoLevel)
		}
		g := generator.New(cfg, logger.With(zap.String("dir", dir)))
		if opts.check {
			err = g.Check(dir)
		} else {
			err = g.Generate(dir)
		}
		if err != nil {
			logger.Debug("package failed", zap.String("dir", dir), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

type emitOptions struct {
	pkg    string
	header string
}

/* Reads a single block body from stdin and prints the generated file to stdout. */
func newEmitCmd() *cobra.Command {
	opts := &emitOptions{}
	cmd := &cobra.Command{
		Use:     "emit",
		Short:   "Generate the error type for one block read from standard input",
		Example: `  echo 'pub NotFound "resource not found"' | quickerrgen emit --package store`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			s, err := dsl.Parse(string(src))
			if err != nil {
				return err
			}
			code, err := emitter.Emit(s)
			if err != nil {
				return err
			}
			output, err := emitter.EmitFile(emitter.File{
				Name:    s.TypeName() + ".go",
				Package: opts.pkg,
				Header:  opts.header,
				Units:   []*emitter.Code{code},
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(output)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.pkg, "package", "errs", "Package clause of the printed file")
	cmd.Flags().StringVar(&opts.header, "header", emitter.DefaultHeader, "First comment line of the printed file")
	return cmd
}

/* Returns a human-friendly console logger writing to out. */
func newConsoleLogger(level zap.AtomicLevel, out io.Writer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(out), level)
	return zap.New(core)
}
