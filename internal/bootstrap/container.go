package bootstrap

import (
	"log"

	"empathiq-be/internal/config"
	"empathiq-be/internal/controller"
	"empathiq-be/internal/pkg/logger"
	"empathiq-be/internal/repository/memory"
	"empathiq-be/internal/repository/unitofwork"
	"empathiq-be/internal/service"
	"empathiq-be/pkg/llm/factory"
	"empathiq-be/pkg/sentiment"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Shared infrastructure
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	// 3. Domain components
	classifier := sentiment.NewClassifier(llmProvider, sysLogger)
	convCache := memory.NewConversationCache()

	// 4. Services
	chatService := service.NewChatService(
		uowFactory,
		llmProvider, // Injected
		classifier,  // Injected
		convCache,   // Injected
		sysLogger,
	)

	// 5. Controllers
	chatController := controller.NewChatController(chatService)

	return &Container{
		ChatController: chatController,
		Logger:         sysLogger,
	}
}
