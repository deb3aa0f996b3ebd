package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pageturners/bookswap_backend/controllers"
	"github.com/pageturners/bookswap_backend/database"
	"github.com/pageturners/bookswap_backend/docs"
	"github.com/pageturners/bookswap_backend/middleware"
	"github.com/pageturners/bookswap_backend/swap"
	"github.com/pageturners/bookswap_backend/websocket"
)

// @title           BookSwap API
// @version         1.0
// @description     API Server for the BookSwap book-exchange application
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize database
	database.Connect()
	database.Migrate()

	// Wire the swap-offer subsystem: store -> engine -> bus -> views.
	// The engine is the only writer path for offers.
	bus := swap.NewBus()
	store := database.NewSwapStore(database.DB)
	websocket.InitHub(bus)
	engine := swap.NewEngine(store, bus, &websocket.SwapEvents{Store: store})
	views := swap.NewViews(store, bus)
	controllers.SetupSwap(engine, views)

	// Set up Swagger info
	docs.SwaggerInfo.Title = "BookSwap API"
	docs.SwaggerInfo.Description = "API Server for the BookSwap book-exchange application"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + os.Getenv("PORT")
	if docs.SwaggerInfo.Host == "localhost:" {
		docs.SwaggerInfo.Host = "localhost:8080"
	}
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// Book routes
		api.GET("/books", controllers.GetBooks)
		api.GET("/books/mine", controllers.GetMyBooks)
		api.POST("/books", controllers.CreateBook)
		api.GET("/books/:id", controllers.GetBook)
		api.PUT("/books/:id", controllers.UpdateBook)
		api.DELETE("/books/:id", controllers.DeleteBook)
		api.GET("/books/:id/offers", controllers.GetBookSwaps)

		// Swap routes
		api.POST("/swaps", controllers.CreateSwap)
		api.GET("/swaps/sent", controllers.GetSentSwaps)
		api.GET("/swaps/received", controllers.GetReceivedSwaps)
		api.GET("/swaps/:id", controllers.GetSwap)
		api.POST("/swaps/:id/accept", controllers.AcceptSwap)
		api.POST("/swaps/:id/reject", controllers.RejectSwap)
		api.POST("/swaps/:id/cancel", controllers.CancelSwap)

		// Conversation and message routes
		api.GET("/conversations", controllers.GetConversations)
		api.GET("/messages", controllers.GetMessages)
		api.POST("/messages", controllers.CreateMessage)
	}

	// WebSocket route
	router.GET("/ws", websocket.HandleConnection)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server running on port %s", port)
	log.Printf("Swagger documentation available at http://localhost:%s/swagger/index.html", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
