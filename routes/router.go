package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/lostfound/config"
	"github.com/cppla/lostfound/controllers"
	"github.com/cppla/lostfound/middleware"
	"github.com/cppla/lostfound/models"
	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

// SetupRouter wires services, routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, storage services.Storage) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.Log)
		if err != nil {
			utils.Sugar.Warnf("gin access log unavailable, using app logger: %v", err)
		} else {
			accessLog = gl
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))
	r.MaxMultipartMemory = 8 << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	log := utils.Logger
	users := services.NewUserService(db, cfg.AdminUserIDs, log.Named("users"))
	uploads := services.NewUploadHandler(storage, cfg.UploadMaxBytes, log.Named("uploads"))

	lost := services.NewListingService(db, users, uploads, services.LostItems, log)
	found := services.NewListingService(db, users, uploads, services.FoundItems, log)
	share := services.NewListingService(db, users, uploads, services.ShareItems, log)
	notices := services.NewListingService(db, users, uploads, services.Notices, log)

	comments := services.NewCommentService(db, users, map[models.CommentCategory]services.PostChecker{
		models.CategoryLostItem:  lost,
		models.CategoryFoundItem: found,
		models.CategoryShareItem: share,
	}, log.Named("comments"))

	authController := controllers.NewAuthController(users)
	userController := controllers.NewUserController(users)
	commentController := controllers.NewCommentController(comments)
	uploadController := controllers.NewUploadController(storage)
	statsController := controllers.NewStatsController(map[string]controllers.Counter{
		services.LostItems.Name:  lost,
		services.FoundItems.Name: found,
		services.ShareItems.Name: share,
		services.Notices.Name:    notices,
	}, users, comments)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/static/uploads/:name", uploadController.Serve)

	auth := middleware.AuthRequired()
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(limiter))

	controllers.NewPostController(lost).Register(api.Group("/lost-items"), auth)
	controllers.NewPostController(found).Register(api.Group("/found-items"), auth)
	controllers.NewPostController(share).Register(api.Group("/share-items"), auth)
	controllers.NewPostController(notices).Register(api.Group("/notices"), auth)

	commentGroup := api.Group("/comments")
	commentGroup.GET("", commentController.List)
	commentGroup.GET("/:id", commentController.Get)
	commentGroup.POST("", auth, commentController.Create)
	commentGroup.PUT("/:id", auth, commentController.Update)
	commentGroup.DELETE("/:id", auth, commentController.Delete)

	userGroup := api.Group("/users")
	userGroup.POST("", userController.Register)
	userGroup.GET("", userController.List)
	userGroup.GET("/pending", userController.ListPending)
	userGroup.GET("/:id", userController.Get)
	userGroup.PUT("/:id", auth, userController.Update)
	userGroup.PUT("/:id/approve", auth, userController.Approve)
	userGroup.DELETE("/:id", auth, userController.Delete)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", auth, authController.Logout)
	authGroup.GET("/me", auth, authController.Me)

	api.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	log.Info("router ready", zap.String("upload_backend", cfg.UploadBackend), zap.Int("admin_ids", len(cfg.AdminUserIDs)))
	return r
}
