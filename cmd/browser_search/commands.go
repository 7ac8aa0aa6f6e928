package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gcbaptista/go-browser-search/api"
	"github.com/gcbaptista/go-browser-search/config"
	"github.com/gcbaptista/go-browser-search/internal/engine"
	"github.com/gcbaptista/go-browser-search/internal/normalize"
	"github.com/gcbaptista/go-browser-search/internal/sources"
	"github.com/gcbaptista/go-browser-search/services"
)

const shutdownTimeout = 10 * time.Second

// inputFlags are the option and data source flags shared by every command.
type inputFlags struct {
	optionsPath   string
	approach      string
	tabsPath      string
	bookmarksPath string
	historyPath   string
}

func (f *inputFlags) register(cmd *cobra.Command, withSources bool) {
	cmd.Flags().StringVarP(&f.optionsPath, "options", "o", "", "JSON or YAML file with option overrides")
	cmd.Flags().StringVar(&f.approach, "approach", "", "Matching strategy override: fuzzy or precise")
	if !withSources {
		return
	}
	cmd.Flags().StringVar(&f.tabsPath, "tabs", "", "JSON file listing the open tabs")
	cmd.Flags().StringVar(&f.bookmarksPath, "bookmarks", "", "Chrome Bookmarks file")
	cmd.Flags().StringVar(&f.historyPath, "history", "", "Chrome History database")
}

// options resolves the effective options: defaults, then the options file,
// then --approach.
func (f *inputFlags) options() (config.Options, error) {
	overrides, err := config.LoadOverrides(f.optionsPath)
	if err != nil {
		return config.Options{}, err
	}
	if f.approach != "" {
		search, _ := overrides["search"].(map[string]any)
		if search == nil {
			search = map[string]any{}
		}
		search["approach"] = f.approach
		overrides["search"] = search
	}
	return config.Resolve(overrides)
}

// sources returns a reader for every path that was given.
func (f *inputFlags) sources() normalize.Sources {
	var src normalize.Sources
	if f.tabsPath != "" {
		src.Tabs = sources.NewTabFile(f.tabsPath)
	}
	if f.bookmarksPath != "" {
		src.Bookmarks = sources.NewChromeBookmarks(f.bookmarksPath)
	}
	if f.historyPath != "" {
		src.History = sources.NewChromeHistory(f.historyPath)
	}
	return src
}

func newServeCmd() *cobra.Command {
	var (
		flags   inputFlags
		port    string
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search service",
		Example: `  browser-search serve --bookmarks ~/.config/google-chrome/Default/Bookmarks \
    --history ~/.config/google-chrome/Default/History --tabs /tmp/tabs.json
  browser-search serve --port 9000 --data-dir /tmp/browser-search`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), opts, flags.sources(), port, dataDir)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
	cmd.Flags().StringVar(&dataDir, "data-dir", "./search_data", "Directory for the snapshot cache and analytics")
	return cmd
}

func runServe(ctx context.Context, opts config.Options, src normalize.Sources, port, dataDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Using data directory: %s", dataDir)
	session, err := engine.NewSession(opts, src, dataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Warning: Failed to close session: %v", err)
		}
	}()

	if err := session.Restore(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Failed to restore cached snapshot: %v", err)
	}
	jobID, err := session.ReloadAsync()
	if err != nil {
		return err
	}
	log.Printf("Info: Snapshot reload started (job %s)", jobID)

	router := gin.Default()
	api.SetupRoutes(router, session)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s...", port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Info: Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newSearchCmd() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search once and print the ranked results as JSON",
		Example: `  browser-search search --bookmarks ./Bookmarks "#work inbox"
  browser-search search --history ./History --approach fuzzy githib`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), opts, flags.sources(), strings.Join(args, " "))
		},
	}

	flags.register(cmd, true)
	return cmd
}

func runSearch(ctx context.Context, out io.Writer, opts config.Options, src normalize.Sources, query string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	session, err := engine.NewSession(opts, src, "")
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	if _, err := session.Reload(ctx); err != nil {
		return err
	}
	result, err := session.Search(services.SearchQuery{QueryString: query})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func newOptionsCmd() *cobra.Command {
	var (
		flags  inputFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print the effective options (defaults with overrides applied)",
		Example: `  browser-search options
  browser-search options --options ./overrides.yaml --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return printOptions(cmd.OutOrStdout(), opts, format)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

func printOptions(out io.Writer, opts config.Options, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(opts)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(opts); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format '%s' (use json or yaml)", format)
	}
}
