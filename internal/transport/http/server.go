package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "docuquery/internal/app"
	"docuquery/internal/bootstrap"
	"docuquery/internal/cache"
	"docuquery/internal/repository"
	"docuquery/internal/transport/http/handler"
	"docuquery/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "DocuQuery backend running."})
	})
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	uploadRepo := repository.NewUploadRepository(app.MySQL)
	questionRepo := repository.NewQuestionRepository(app.MySQL)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	libraryService := appsvc.NewLibraryService(uploadRepo, app.Blobs, app.UploadEvents, nil)
	qaService := appsvc.NewQAService(questionRepo, app.Blobs, app.LLM, app.Config.LLM, historyCache)

	authHandler := handler.NewAuthHandler(authService)
	libraryHandler := handler.NewLibraryHandler(libraryService)
	qaHandler := handler.NewQAHandler(qaService)

	authGroup := router.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	protected := router.Group("/")
	protected.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	protected.POST("/upload", libraryHandler.Upload)
	protected.POST("/ask", qaHandler.Ask)
	protected.GET("/my-files", libraryHandler.MyFiles)
	protected.GET("/qna-history", qaHandler.History)

	return router
}
