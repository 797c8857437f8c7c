package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"weather-stats/internal/dataset"
	"weather-stats/internal/services"
	"weather-stats/pkg/logging"
)

const version = "1.0.0"

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitFailure = 2
)

type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"log progress to stderr (repeat for debug output)"`
}

// env is shared by every command of one invocation.
type env struct {
	opts   *Options
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
}

func (e *env) logger() *logging.StructuredLogger {
	level := logging.WarnLevel
	switch len(e.opts.Verbose) {
	case 0:
	case 1:
		level = logging.InfoLevel
	default:
		level = logging.DebugLevel
	}
	return logging.New("weather-cli", version, level, logging.TextFormat, e.stderr)
}

func (e *env) load(path string) (*dataset.Dataset, error) {
	return services.NewDatasetService(e.logger(), nil).LoadFile(e.ctx, path)
}

func newParser(e *env) *flags.Parser {
	parser := flags.NewParser(e.opts, flags.HelpFlag|flags.PassDoubleDash)

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"stats", "print dataset statistics",
			"prints record counts, missing values and extreme readings of a weather file",
			&StatsCommand{env: e}},
		{"insolation", "print insolation on a date",
			"prints the solar energy received on an ISO-8601 date",
			&InsolationCommand{env: e}},
		{"export", "write normalised records",
			"writes the valid records of a weather file as CSV or JSON",
			&ExportCommand{env: e}},
		{"version", "print version",
			"prints version on stdout",
			&VersionCommand{env: e}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(err.Error())
		}
	}
	return parser
}

// run parses args, executes the selected command and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	e := &env{opts: &Options{}, ctx: ctx, stdout: stdout, stderr: stderr}
	parser := newParser(e)

	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) {
			if ferr.Type == flags.ErrHelp {
				fmt.Fprintln(stdout, ferr.Message)
				return exitOK
			}
			if ferr.Type != flags.ErrUnknown {
				fmt.Fprintf(stderr, "Error: %s\n", ferr.Message)
				return exitUsage
			}
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
