package main

import (
	"context"
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

	"partsdesk/access"
	"partsdesk/chat"
	"partsdesk/config"
	"partsdesk/logger"
	"partsdesk/metrics"
	"partsdesk/parser"
	"partsdesk/server"
	"partsdesk/types"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Config file locations, shared by every command
var (
	envFile             string
	parserOverridesFile string
	rolesOverrideFile   string
)

// parse command flags
var (
	parseHint string
	parseRole string
)

// Registry the serve command exposes on /metrics
var (
	metricsRegisterer prometheus.Registerer = prometheus.DefaultRegisterer
	metricsGatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "partsdesk",
		Short:         "Parts-desk chat message service",
		Long:          "Recovers part tables embedded in assistant chat messages and serves them over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&envFile, "env", config.DefaultEnvFile, "path to the .env file")
	root.PersistentFlags().StringVar(&parserOverridesFile, "parser-overrides", config.DefaultParserOverridesFile, "path to the parser overrides YAML file")
	root.PersistentFlags().StringVar(&rolesOverrideFile, "roles", config.DefaultRolesOverrideFile, "path to the role overrides YAML file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	parseCmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Render one message read from a file or stdin",
		Long: `Reads message content from the given file (or stdin when omitted), runs it
through the renderer and prints the rendered message as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}
	parseCmd.Flags().StringVar(&parseHint, "hint", "auto", "table hint: true, false or auto (use the detector)")
	parseCmd.Flags().StringVar(&parseRole, "role", types.RoleAssistant, "message role")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), GetBuildInfo())
		},
	}

	root.AddCommand(serveCmd, parseCmd, versionCmd)
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFromFiles(envFile, parserOverridesFile, rolesOverrideFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), GetBuildInfo())
	fmt.Fprintln(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	obsLogger, err := logger.NewObservabilityLogger(cfg.LoggerOptions())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer obsLogger.Close()

	p, err := parser.NewParser(cfg.ParserOptions())
	if err != nil {
		return fmt.Errorf("invalid parser configuration: %w", err)
	}

	table, err := access.NewTable(cfg.RoleModules)
	if err != nil {
		return fmt.Errorf("invalid role configuration: %w", err)
	}

	collector := metrics.NewCollector(metricsRegisterer)
	renderer := chat.NewRenderer(p, chat.Options{
		NoAnswerTrigger: cfg.NoAnswerTrigger,
		NoAnswerMessage: cfg.NoAnswerMessage,
	}, obsLogger, collector)

	srv := server.New(cfg, server.Deps{
		Renderer: renderer,
		Access:   table,
		Logger:   obsLogger,
		Metrics:  collector,
		Gatherer: metricsGatherer,
		Version:  Version,
	}).HTTPServer()

	obsLogger.Info(logger.ComponentConfig, logger.CategoryRequest, "", "partsdesk configuration loaded", map[string]interface{}{
		"port":             cfg.Port,
		"require_role":     cfg.RequireRole,
		"cors_origins":     cfg.CORSAllowedOrigins,
		"separator":        p.Options().Separator,
		"literal_fallback": cfg.ParserLiteralFallback,
		"repair_fallback":  cfg.ParserRepairFallback,
		"version":          GetVersionInfo(),
		"git_commit":       GetGitCommit(),
	})

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obsLogger.Info(logger.ComponentServer, logger.CategoryRequest, "", "partsdesk started", map[string]interface{}{
			"address": fmt.Sprintf("http://localhost:%s", cfg.Port),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obsLogger.Error(logger.ComponentServer, logger.CategoryError, "", "Server failed to start", map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("🛑 Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	obsLogger.Info(logger.ComponentServer, logger.CategoryRequest, "", "partsdesk stopped", nil)
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	hint, err := parseHintFlag(parseHint)
	if err != nil {
		return err
	}

	var content []byte
	if len(args) == 1 {
		content, err = os.ReadFile(args[0])
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read message content: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := parser.NewParser(cfg.ParserOptions())
	if err != nil {
		return fmt.Errorf("invalid parser configuration: %w", err)
	}
	renderer := chat.NewRenderer(p, chat.Options{
		NoAnswerTrigger: cfg.NoAnswerTrigger,
		NoAnswerMessage: cfg.NoAnswerMessage,
	}, logger.NewNop(), metrics.NewNop())

	rendered := renderer.RenderMessage(context.Background(), types.Message{
		Role:    parseRole,
		Content: string(content),
		Table:   hint,
	})

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(rendered, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// parseHintFlag maps auto/true/false onto the tri-state table hint
func parseHintFlag(value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto", "":
		return nil, nil
	case "true", "yes", "1":
		return types.BoolPtr(true), nil
	case "false", "no", "0":
		return types.BoolPtr(false), nil
	default:
		return nil, fmt.Errorf("invalid --hint %q: want true, false or auto", value)
	}
}
