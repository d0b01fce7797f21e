/*
Copyright © 2025 haint
*/
package cmd

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/haint/paperlens/config"
	"github.com/haint/paperlens/handler"
	"github.com/haint/paperlens/service"
	"github.com/haint/paperlens/types"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis server",
	Long:  `Starts the HTTP server that accepts PDF uploads and streams analysis progress.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}

		// Initialize services
		pdfService := service.NewPDFService(types.DocumentServiceConfig{
			MaxChunkSize: cfg.Document.MaxChunkSize,
			OverlapSize:  cfg.Document.OverlapSize,
		})
		stagingService := service.NewStagingService("")

		var aiService service.Analyzer
		switch cfg.Provider {
		case "gemini":
			keys := strings.Split(cfg.GeminiAPIKey, ",")
			aiService, err = service.NewGeminiService(keys, cfg.Model, cfg.Analysis)
			if err != nil {
				log.Fatalf("Failed to init Gemini service: %v", err)
			}
		default:
			aiService = service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, cfg.Analysis)
		}

		analyzeService := service.NewAnalyzeService(stagingService, pdfService, aiService, cfg.Analysis)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		analyzeHandler := handler.NewAnalyzeHandler(analyzeService)
		webHandler := handler.NewWebHandler()

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/", webHandler.ServeIndex)
		router.GET("/healthz", webHandler.HandleHealth)

		apiV1 := router.Group("/api/v1")
		apiV1.POST("/analyze", analyzeHandler.HandleAnalyze)

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
