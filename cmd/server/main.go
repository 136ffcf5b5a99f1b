package main

import (
	"log"
	"time"

	"github.com/orykevin/chef-rizzranker/internal/config"
	"github.com/orykevin/chef-rizzranker/internal/database"
	"github.com/orykevin/chef-rizzranker/internal/handlers"
	"github.com/orykevin/chef-rizzranker/internal/middleware"
	"github.com/orykevin/chef-rizzranker/internal/scheduler"
	"github.com/orykevin/chef-rizzranker/internal/services"
	"github.com/orykevin/chef-rizzranker/internal/tasks"
	"github.com/orykevin/chef-rizzranker/internal/ws"

	_ "github.com/orykevin/chef-rizzranker/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Chef RizzRanker API
// @version         1.0
// @description     Daily AI-character chat game: talk to today's character, get scored, climb the leaderboards
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()
	llm := services.NewLLMClient(cfg.LLMAPIKey, cfg.LLMAPIURL, cfg.LLMModel)

	authService := services.NewAuthService(db, cfg.JWTSecret)
	judgeService := services.NewJudgeService(llm)
	characterService := services.NewCharacterService(db, llm)
	leaderboardService := services.NewLeaderboardService(db)

	dispatcher := tasks.NewDispatcher(cfg.ResponseWorkers, cfg.QueueSize)
	chatService := services.NewChatService(db, judgeService, characterService, leaderboardService, dispatcher, hub)
	dispatcher.Start(chatService)
	defer dispatcher.Stop()

	if cfg.DailyCharacter && llm.IsAvailable() {
		dailyScheduler := scheduler.New(characterService, 15*time.Minute)
		dailyScheduler.Start()
		defer dailyScheduler.Stop()
	} else if cfg.DailyCharacter {
		log.Println("LLM_API_KEY not set, daily character scheduler disabled")
	}

	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)
	characterHandler := handlers.NewCharacterHandler(characterService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	wsHandler := handlers.NewWSHandler(hub, authService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/chat/:characterId", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		chat := api.Group("/chat")
		chat.Use(middleware.JWTAuth(authService))
		{
			chat.POST("/messages", chatHandler.SendMessage)
			chat.GET("/:characterId/messages", chatHandler.GetMessages)
		}

		characters := api.Group("/characters")
		characters.Use(middleware.JWTAuth(authService))
		{
			characters.GET("", characterHandler.ListCharacters)
			characters.GET("/active", characterHandler.GetActiveCharacter)
			characters.GET("/:characterId/leaderboard", leaderboardHandler.GetCharacterLeaderboard)
		}

		leaderboard := api.Group("/leaderboard")
		leaderboard.Use(middleware.JWTAuth(authService))
		{
			leaderboard.GET("/global", leaderboardHandler.GetGlobalLeaderboard)
			leaderboard.GET("/me", leaderboardHandler.GetMyEntries)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
