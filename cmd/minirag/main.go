package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/germanamz/minirag/pkg/engine"
	"github.com/mattn/go-isatty"
)

const version = "0.1.0"

// runOptions carries the parsed flags of the default command.
type runOptions struct {
	envFile     string
	configPath  string
	prompt      string
	model       string
	backend     string
	timeout     string
	markdown    bool
	showUsage   bool
	verbose     bool
	interactive bool // stderr is a terminal; enables the spinner and styling.
}

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			exitOnErr(runInit(os.Args[2:]))
			return
		case "mcp":
			exitOnErr(runMCP(os.Args[2:]))
			return
		case "version":
			fmt.Println("minirag " + version)
			return
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: minirag [flags]\n       minirag <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Sends a prompt to Gemini and prints the reply.\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  init     Write GOOGLE_API_KEY and GEMINI_MODEL into a .env file\n  mcp      Serve the generate tool over MCP on stdin/stdout\n  version  Print the version\n")
	}

	opts := runOptions{}
	flag.StringVar(&opts.envFile, "env", ".env", "path to .env file (ignored if missing)")
	flag.StringVar(&opts.configPath, "config", "", "path to an optional YAML configuration file")
	flag.StringVar(&opts.prompt, "prompt", "", "prompt to send (default: "+engine.DefaultPrompt+")")
	flag.StringVar(&opts.model, "model", "", "model name (overrides "+engine.EnvModel+")")
	flag.StringVar(&opts.backend, "backend", "", "backend kind: genai, rest or openai (overrides "+engine.EnvBackend+")")
	flag.StringVar(&opts.timeout, "timeout", "", "request timeout, e.g. 30s (default "+engine.DefaultTimeout+")")
	flag.BoolVar(&opts.markdown, "markdown", false, "render the reply as terminal markdown")
	flag.BoolVar(&opts.showUsage, "usage", false, "print token usage to stderr")
	flag.BoolVar(&opts.verbose, "verbose", false, "log request details to stderr")
	flag.Parse()

	opts.interactive = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	exitOnErr(run(ctx, opts, os.Stdout, os.Stderr))
}

func exitOnErr(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, stderrStyles.err.Render("error: "+err.Error()))
	os.Exit(1)
}

// run executes the default command: load configuration, send one prompt, and
// write the reply to stdout.
func run(ctx context.Context, opts runOptions, stdout, stderr io.Writer) error {
	if err := loadDotEnv(opts.envFile); err != nil {
		return err
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	var engOpts []engine.Option
	if opts.verbose {
		engOpts = append(engOpts, engine.WithLogger(newLogger(stderr, slog.LevelDebug)))
	}

	eng, err := engine.New(ctx, cfg, engOpts...)
	if err != nil {
		return err
	}

	stop := func() {}
	if opts.interactive && !opts.verbose {
		stop = startSpinner(stderr, randomWaitingMessage())
	}

	start := time.Now()
	resp, err := eng.Run(ctx)
	elapsed := time.Since(start)
	stop()

	if err != nil {
		return err
	}

	text := resp.Text
	if opts.markdown {
		text = renderMarkdown(text, 0)
	}

	if _, err := fmt.Fprintln(stdout, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if opts.showUsage {
		fmt.Fprintln(stderr, usageLine(resp.Model, eng.Usage(), elapsed))
	}

	return nil
}

// resolveConfig layers defaults, the optional YAML file, the environment, and
// flags, in that order.
func resolveConfig(opts runOptions) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := engine.LoadConfig(opts.configPath)
		if err != nil {
			return engine.Config{}, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv(os.LookupEnv)

	if opts.prompt != "" {
		cfg.Prompt = opts.prompt
	}
	if opts.model != "" {
		cfg.Provider.Model = opts.model
	}
	if opts.backend != "" {
		cfg.Provider.Kind = opts.backend
	}
	if opts.timeout != "" {
		cfg.Timeout = opts.timeout
	}

	return cfg, nil
}
