// Command ragjudge judges RAG answers with an LLM, reviews the verdicts and
// provisions the AWS resources a Bedrock knowledge base needs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	lipglosslib "github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ragjudge"
	"github.com/fwojciec/ragjudge/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnv sets the default log level.
const LogLevelEnv = "RAGJUDGE_LOG_LEVEL"

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New("usage: ragjudge <evaluate|summary|show|models|generate|provision> [flags] [args]")

const usage = `Usage: ragjudge <command> [flags] [args]

Commands:
  evaluate   Judge a dataset and write the verdicts as JSONL
  summary    Count verdicts per group in a results file
  show       Review judged records
  models     List the active Bedrock foundation models
  generate   Answer questions with a Bedrock knowledge base
  provision  Create the knowledge base execution role and policies

Run "ragjudge <command> -h" for the flags of a command.
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Run executes the command line args, writing command output to stdout.
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "evaluate":
		return runEvaluate(ctx, rest, stdout)
	case "summary":
		return runSummary(rest, stdout)
	case "show":
		return runShow(ctx, rest, stdout)
	case "models":
		return runModels(ctx, rest, stdout)
	case "generate":
		return runGenerate(ctx, rest, stdout)
	case "provision":
		return runProvision(ctx, rest, stdout)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, ErrUsage)
}

// globalFlags are accepted by every command.
type globalFlags struct {
	logLevel string
	jsonLogs bool
	noColor  bool
	light    bool
}

func addGlobalFlags(fs *flag.FlagSet) *globalFlags {
	g := &globalFlags{}
	level := os.Getenv(LogLevelEnv)
	if level == "" {
		level = "info"
	}
	fs.StringVar(&g.logLevel, "log-level", level, "Log level: debug, info, warn or error (env "+LogLevelEnv+")")
	fs.BoolVar(&g.jsonLogs, "json-logs", false, "Write logs as JSON")
	fs.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&g.light, "light", false, "Use colors for light terminal backgrounds")
	return g
}

func (g *globalFlags) logger() (*zap.Logger, error) {
	return NewLogger(g.logLevel, g.jsonLogs)
}

func (g *globalFlags) renderer(w io.Writer, opts ...lipgloss.RendererOption) *lipgloss.Renderer {
	var termOpts []termenv.OutputOption
	if g.noColor {
		termOpts = append(termOpts, termenv.WithProfile(termenv.Ascii))
	}
	return lipgloss.NewRenderer(lipglosslib.NewRenderer(w, termOpts...), g.theme(), opts...)
}

func (g *globalFlags) theme() *lipgloss.Theme {
	if g.light {
		return lipgloss.LightTheme()
	}
	return lipgloss.DefaultTheme()
}

// NewLogger builds a console logger, or a JSON logger when jsonLogs is set.
// Logs go to stderr.
func NewLogger(level string, jsonLogs bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, &ragjudge.ConfigError{Field: "log-level", Reason: err.Error()}
	}

	cfg := zap.NewDevelopmentConfig()
	if jsonLogs {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// parseFlags parses args and checks that exactly nargs positional
// arguments remain.
func parseFlags(fs *flag.FlagSet, args []string, nargs int, argsUsage string) ([]string, error) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ragjudge %s [flags] %s\n\nFlags:\n", fs.Name(), argsUsage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != nargs {
		return nil, fmt.Errorf("usage: ragjudge %s [flags] %s", fs.Name(), argsUsage)
	}
	return fs.Args(), nil
}
