package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"canvasEdMcp/internal/config"
	"canvasEdMcp/internal/logger"
	"canvasEdMcp/internal/tools"
)

var version = "dev"

type rootOptions struct {
	envFile  string
	logLevel string
	logJSON  bool
}

// @title Canvas + Ed Discussion API
// @version 1.0
// @description Read-only reports over the Canvas LMS and Ed Discussion APIs.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Use "Bearer {HTTP_TOKEN}" when the server is started with a token
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "canvas-ed-mcp",
		Short:         "Canvas LMS and Ed Discussion tools for MCP clients",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStdio(cmd, opts)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled); overrides LOG_LEVEL")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit logs as JSON; overrides LOG_JSON")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stdio",
			Short: "Serve the tools over MCP stdio (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStdio(cmd, opts)
			},
		},
		newHTTPCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return cmd
}

func newHTTPCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the operations as a REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			svc := tools.NewServiceFromConfig(cfg)
			return serveHTTP(cmd.Context(), newRouter(svc, &cfg.HTTP, log), cfg.HTTP.Addr, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; overrides HTTP_ADDR")
	return cmd
}

// setup loads the dotenv file and configuration, then installs the default logger.
func setup(cmd *cobra.Command, opts *rootOptions) (*config.Config, logger.Logger, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = opts.logJSON
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	logger.Init(logCfg)
	log := logger.GetDefault()
	log.Debug("Configuration loaded",
		"canvas_base_url", cfg.Canvas.BaseURL,
		"ed_base_url", cfg.Ed.BaseURL,
		"canvas_token", cfg.Canvas.Token,
		"ed_token", cfg.Ed.Token,
	)
	return cfg, log, nil
}

func runStdio(cmd *cobra.Command, opts *rootOptions) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	s := tools.NewMCPServer(tools.NewServiceFromConfig(cfg), version)
	log.Info("Serving MCP over stdio", "server", tools.ServerName, "version", version)
	return server.ServeStdio(s,
		server.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return logger.ContextWithLogger(ctx, log)
		}),
	)
}
