package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"promptforge/config"
	"promptforge/internal/api"
	"promptforge/internal/database"
	"promptforge/internal/services"
	"promptforge/pkg/logger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	httpMode := flag.Bool("http", false, "serve MCP over HTTP instead of stdio")
	port := flag.Int("port", 0, "HTTP port (overrides MCP_SERVER_PORT)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	cache, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	ai := services.NewAIService(cfg, logger.Log)
	analysis := services.NewAnalysisService(cfg, ai, logger.Log)
	history := services.NewHistoryService(db)
	execution := services.NewExecutionService(cfg, ai, history, logger.Log)
	library := services.NewLibraryService(db, cache)

	server := api.NewServer(cfg, analysis, execution, library, history, logger.Log)

	if *httpMode {
		if *port == 0 {
			*port = cfg.ServerPort
		}
		router := server.NewHTTPRouter()
		logger.Log.Sugar().Infof("serving MCP over HTTP on :%d", *port)
		if err := router.Run(fmt.Sprintf(":%d", *port)); err != nil {
			log.Fatalf("http server failed: %v", err)
		}
		return
	}

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("stdio server failed: %v", err)
	}
}
