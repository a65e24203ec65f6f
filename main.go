package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foomo/contentserver-slugs/config"
	"github.com/foomo/contentserver-slugs/mcp"
	"github.com/foomo/contentserver-slugs/schema"
	"github.com/foomo/contentserver-slugs/service"
	"github.com/foomo/contentserver-slugs/validation"
)

func newLogger(cfg config.Log) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	// stdout carries the stdio transport
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	return zapConfig.Build()
}

func splitPaths(value string) []string {
	var paths []string
	for _, path := range strings.Split(value, ",") {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

func exit(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	stdioMode := flag.Bool("stdio", true, "Run in stdio mode")
	httpAddr := flag.String("http", "", "HTTP server address (e.g., ':8080'), overrides MCP_HTTP_ADDR")
	envFiles := flag.String("env", "", "Comma separated dotenv files to load")
	dumpSchema := flag.Bool("schema", false, "Print the content schema as YAML and exit")
	flag.Parse()

	cfg, err := config.Load(splitPaths(*envFiles)...)
	if err != nil {
		exit("failed to load config", err)
	}

	var opts []validation.Option
	if cfg.Slug.Unique {
		opts = append(opts, validation.WithUniqueness())
	}

	if *dumpSchema {
		out, err := schema.MarshalYAML(schema.Types(opts...))
		if err != nil {
			exit("failed to describe schema", err)
		}
		_, _ = os.Stdout.Write(out)
		return
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		exit("failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	getClient, closeStore, err := service.NewClientFactory(context.Background(), cfg.Store, http.DefaultClient, logger)
	if err != nil {
		logger.Fatal("failed to connect document store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close document store", zap.Error(err))
		}
	}()

	serviceInstance := service.NewService(service.Settings{
		UniqueSlugs: cfg.Slug.Unique,
		MaxAttempts: cfg.Slug.MaxAttempts,
	}, getClient, logger)

	s := mcp.NewServer(serviceInstance, opts...)

	addr := cfg.Server.HTTPAddr
	if *httpAddr != "" {
		addr = *httpAddr
	}
	if addr != "" {
		handler := mcp.NewMcpHTTPSSEServer(logger, s, serviceInstance, cfg.Server.Endpoint, &mcp.SSEServerConfig{
			KeepaliveInterval: cfg.Server.KeepaliveInterval,
			BufferSize:        cfg.Server.BufferSize,
		})
		logger.Info("starting MCP server", zap.String("addr", addr), zap.String("endpoint", cfg.Server.Endpoint))
		if err := http.ListenAndServe(addr, handler); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
		return
	}

	if !*stdioMode {
		logger.Info("no http address given, falling back to stdio")
	}
	logger.Info("starting MCP server in stdio mode")
	if err := server.ServeStdio(s); err != nil {
		logger.Error("stdio server stopped", zap.Error(err))
	}
}
