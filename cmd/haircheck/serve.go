package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/haircheck/internal/detect"
	"github.com/pdiddy/haircheck/internal/keywords"
	"github.com/pdiddy/haircheck/internal/server"
	"github.com/pdiddy/haircheck/internal/sources"
	"github.com/pdiddy/haircheck/internal/store"
	"github.com/pdiddy/haircheck/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "haircheck/0.1"
	shutdownGrace    = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the haircheck HTTP API server",
	Long: `Serve starts the HTTP API: login, photo analysis through the detection
service, detection history and export, and publication-source ranking.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default :8000)")

	rootCmd.AddCommand(serveCmd)
}

// loadConfig unmarshals the viper state into the typed config and applies
// fallbacks that the component loaders do not handle themselves.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}

	if cfg.Sources.Timeout == 0 {
		cfg.Sources.Timeout = defaultTimeout
	}
	if cfg.Sources.UserAgent == "" {
		cfg.Sources.UserAgent = defaultUserAgent
	}
	if cfg.Detect.Timeout == 0 {
		cfg.Detect.Timeout = defaultTimeout
	}
	if cfg.Detect.UserAgent == "" {
		cfg.Detect.UserAgent = defaultUserAgent
	}
	cfg.Sources.MailTo = secretDefault("openalex-email", cfg.Sources.MailTo)

	return cfg, nil
}

// newFinder wires the keyword extractor and OpenAlex client into a
// request-ready source finder.
func newFinder(cfg types.SourcesConfig) *sources.Finder {
	return &sources.Finder{
		Extractor: &keywords.Extractor{
			Tagger: keywords.ProseTagger{},
			TopN:   cfg.TopKeywords,
		},
		Client: &sources.OpenAlexClient{
			Client: &http.Client{Timeout: cfg.Timeout},
			MailTo: cfg.MailTo,
		},
		Config: cfg,
		Logger: log.New(log.Writer(), "[SOURCES] ", log.LstdFlags),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if cfg.Detect.BaseURL == "" {
		return fmt.Errorf("detection service not configured (detect.base_url)")
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	detector := &detect.HTTPDetector{
		Client: &http.Client{Timeout: cfg.Detect.Timeout},
		Config: cfg.Detect,
	}

	srv := server.New(cfg, st, detector, newFinder(cfg.Sources))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		fmt.Fprintf(os.Stderr, "received %s, shutting down\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
