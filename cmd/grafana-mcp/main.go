// ABOUTME: Entry point for the grafana-mcp tool server
// ABOUTME: Serves Grafana tools over stdio or HTTP/SSE and offers inspection subcommands

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/grafana-mcp/internal/builtins"
	"github.com/2389/grafana-mcp/internal/cache"
	"github.com/2389/grafana-mcp/internal/config"
	"github.com/2389/grafana-mcp/internal/grafana"
	"github.com/2389/grafana-mcp/internal/mcp"
	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const serverName = "grafana-mcp"

// cacheMaxEntries bounds the Grafana response cache.
const cacheMaxEntries = 1000

const banner = `
                 __
  ___ ________ _/ _|__ _ _ _  __ _ ___ _ __  __ _ __
 / _' | '_/ _' |  _/ _' | ' \/ _' |___| '  \/ _| '_ \
 \__, |_| \__,_|_| \__,_|_||_\__,_|   |_|_|_\__| .__/
 |___/                                         |_|
`

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: grafana-mcp <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Start the tool server (stdio or HTTP/SSE)")
	fmt.Fprintln(w, "  tools      List the tools that would be registered")
	fmt.Fprintln(w, "  calls      Show recent tool calls from the journal")
	fmt.Fprintln(w, "  health     Check connectivity to Grafana")
	fmt.Fprintln(w, "  version    Print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'grafana-mcp <command> -h' for command flags.")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, args)
	case "tools":
		err = runTools(args)
	case "calls":
		err = runCalls(ctx, args)
	case "health":
		err = runHealth(ctx, args)
	case "version", "--version", "-v":
		fmt.Println(version)
	case "help", "--help", "-h":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serveFlags are the command-line overrides accepted by serve. Zero values
// leave the configuration untouched.
type serveFlags struct {
	configPath    string
	transport     string
	host          string
	port          int
	debug         bool
	grafanaURL    string
	grafanaAPIKey string
	disabledTools string
}

func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&f.configPath, "config", "", "Config file path (default $"+config.EnvConfigPath+")")
	fs.StringVar(&f.transport, "transport", "", "Transport: stdio, sse, or http")
	fs.StringVar(&f.host, "host", "", "HTTP listen host")
	fs.IntVar(&f.port, "port", 0, "HTTP listen port")
	fs.BoolVar(&f.debug, "debug", false, "Debug logging, including Grafana request summaries")
	fs.StringVar(&f.grafanaURL, "grafana-url", "", "Grafana base URL")
	fs.StringVar(&f.grafanaAPIKey, "grafana-api-key", "", "Grafana API key or service account token")
	fs.StringVar(&f.disabledTools, "disabled-tools", "", "Comma-separated tool categories to disable ("+strings.Join(builtins.Categories, ", ")+")")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return f, nil
}

// apply layers the flags over cfg and revalidates it.
func (f *serveFlags) apply(cfg *config.Config) error {
	if f.transport != "" {
		cfg.Server.Transport = f.transport
	}
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.debug {
		cfg.Logging.Level = "debug"
		cfg.Grafana.Debug = true
	}
	if f.grafanaURL != "" {
		cfg.Grafana.URL = f.grafanaURL
	}
	if f.grafanaAPIKey != "" {
		cfg.Grafana.APIKey = f.grafanaAPIKey
	}
	if f.disabledTools != "" {
		cfg.Tools.Disabled = splitList(f.disabledTools)
	}
	return cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadConfig loads .env, then the config file chosen by flag or environment.
func loadConfig(flagPath string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, "", err
	}
	path := config.ResolvePath(flagPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

// newGrafanaClient builds the client, with a response cache when enabled.
// The returned func releases the cache.
func newGrafanaClient(cfg *config.Config, logger *slog.Logger) (*grafana.Client, func(), error) {
	var c *cache.Cache
	release := func() {}
	if cfg.Grafana.CacheTTL > 0 {
		c = cache.New(cfg.Grafana.CacheTTL, cacheMaxEntries)
		release = func() {
			stats := c.Stats()
			logger.Info("grafana cache closed", "entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)
			c.Close()
		}
	}

	client, err := grafana.NewClient(grafana.Config{
		BaseURL:   cfg.Grafana.URL,
		APIKey:    cfg.Grafana.APIKey,
		Timeout:   cfg.Grafana.Timeout,
		Cache:     c,
		Logger:    logger,
		Debug:     cfg.Grafana.Debug,
		UserAgent: serverName + "/" + version,
	})
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("creating grafana client: %w", err)
	}
	return client, release, nil
}

// buildRegistry registers the enabled packs and freezes the registry.
func buildRegistry(cfg *config.Config, api builtins.Grafana, logger *slog.Logger) (*packs.Registry, error) {
	registry := packs.NewRegistry(logger)
	if err := builtins.RegisterAll(registry, api, cfg.Tools.Disabled); err != nil {
		return nil, err
	}
	registry.Freeze()
	return registry, nil
}

func runServe(ctx context.Context, args []string) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if err := flags.apply(cfg); err != nil {
		return fmt.Errorf("validating flags: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stderr)
	printBanner(os.Stderr, cfg, configPath)

	client, releaseCache, err := newGrafanaClient(cfg, logger)
	if err != nil {
		return err
	}
	defer releaseCache()

	registry, err := buildRegistry(cfg, client, logger)
	if err != nil {
		return err
	}

	dcfg := mcp.Config{
		Registry: registry,
		Name:     serverName,
		Version:  version,
		Logger:   logger,
	}

	var journal store.Store
	if cfg.Database.Path != "" {
		s, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer s.Close()
		journal = s
		dcfg.Recorder = s
	}

	dispatcher, err := mcp.NewDispatcher(dcfg)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	logger.Info("starting grafana-mcp",
		"version", version,
		"transport", cfg.Server.Transport,
		"grafana_url", cfg.Grafana.URL,
		"tools", len(registry.List()),
		"journal", cfg.Database.Path != "",
	)

	if cfg.UsesHTTP() {
		hcfg := mcp.HTTPConfig{
			Dispatcher: dispatcher,
			AuthToken:  cfg.Server.AuthToken,
			Logger:     logger,
		}
		if journal != nil {
			hcfg.Calls = journal
		}
		server, err := mcp.NewHTTPServer(hcfg)
		if err != nil {
			return fmt.Errorf("creating http server: %w", err)
		}
		return server.ListenAndServe(ctx, cfg.Addr())
	}

	// Stdin reads block, so cancellation is observed here rather than by Serve.
	stdio := mcp.NewStdioTransport(dispatcher, logger)
	done := make(chan error, 1)
	go func() {
		done <- stdio.Serve(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	}
}

func printBanner(w io.Writer, cfg *config.Config, configPath string) {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Fprint(w, banner)
	gray.Fprintf(w, "    version: %s\n\n", version)

	if configPath == "" {
		configPath = "(defaults)"
	}
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Config:    %s\n", configPath)
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Grafana:   %s\n", cfg.Grafana.URL)
	green.Fprint(w, "    ▶ ")
	fmt.Fprintf(w, "Transport: %s", cfg.Server.Transport)
	if cfg.UsesHTTP() {
		fmt.Fprintf(w, " on %s", cfg.Addr())
		if cfg.Server.AuthToken != "" {
			yellow.Fprint(w, " [auth]")
		}
	}
	fmt.Fprintln(w)
	if len(cfg.Tools.Disabled) > 0 {
		green.Fprint(w, "    ▶ ")
		fmt.Fprintf(w, "Disabled:  %s\n", strings.Join(cfg.Tools.Disabled, ", "))
	}
	if cfg.Database.Path != "" {
		green.Fprint(w, "    ▶ ")
		fmt.Fprintf(w, "Journal:   %s\n", cfg.Database.Path)
	}
	if cfg.Grafana.APIKey == "" {
		yellow.Fprintln(w, "    ! no Grafana API key configured")
	}
	fmt.Fprintln(w)
}

func runTools(args []string) error {
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file path")
	disabled := fs.String("disabled-tools", "", "Comma-separated tool categories to disable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *disabled != "" {
		cfg.Tools.Disabled = splitList(*disabled)
	}

	// Registration makes no Grafana calls, so a quiet logger and no cache suffice.
	logger := setupLogger(config.LoggingConfig{Level: "warn"}, os.Stderr)
	client, release, err := newGrafanaClient(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	registry, err := buildRegistry(cfg, client, logger)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tCATEGORY\tDESCRIPTION")
	for _, tool := range registry.Tools() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tool.Name, tool.PackID, tool.Description)
	}
	return tw.Flush()
}

func runCalls(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("calls", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file path")
	dbPath := fs.String("db", "", "Journal database path (default database.path)")
	tool := fs.String("tool", "", "Only calls to this tool")
	outcome := fs.String("outcome", "", "Only calls with this outcome: ok, invalid, error")
	since := fs.Duration("since", 0, "Only calls newer than this, e.g. 1h")
	limit := fs.Int("limit", 20, "Maximum rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *dbPath
	if path == "" {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		path = cfg.Database.Path
	}
	if path == "" {
		return errors.New("no journal configured (set database.path or pass -db)")
	}

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer s.Close()

	filter := store.ToolCallFilter{Limit: *limit}
	if *tool != "" {
		filter.ToolName = tool
	}
	if *outcome != "" {
		o := store.CallOutcome(*outcome)
		filter.Outcome = &o
	}
	if *since > 0 {
		t := time.Now().Add(-*since)
		filter.Since = &t
	}

	calls, err := s.ListToolCalls(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing calls: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTOOL\tOUTCOME\tDURATION\tERROR")
	for _, c := range calls {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			c.ToolName,
			c.Outcome,
			c.Duration.Round(time.Millisecond),
			c.Error,
		)
	}
	return tw.Flush()
}

func runHealth(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file path")
	grafanaURL := fs.String("grafana-url", "", "Grafana base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *grafanaURL != "" {
		cfg.Grafana.URL = *grafanaURL
	}

	logger := setupLogger(config.LoggingConfig{Level: "error"}, os.Stderr)
	client, release, err := newGrafanaClient(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	info, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("grafana unreachable: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("healthy")
	fmt.Printf(" %s (version %s, database %s)\n", client.BaseURL(), info.Version, info.Database)
	return nil
}
