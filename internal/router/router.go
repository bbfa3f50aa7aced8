package router

import (
	"time"

	"github.com/tinks231/bizbooks/internal/config"
	"github.com/tinks231/bizbooks/internal/handler"
	"github.com/tinks231/bizbooks/internal/infra"
	"github.com/tinks231/bizbooks/internal/middleware"
	"github.com/tinks231/bizbooks/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived objects built at the composition root.
type Deps struct {
	DB           *gorm.DB
	Redis        *redis.Client // nil runs without the catalog cache
	CacheBreaker *infra.Breaker
	Items        service.ItemService
	Forms        service.FormService
	RateLimiter  *middleware.RateLimiter
}

// New wires the handlers and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limiter := d.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	itemsH := handler.NewItemsHandler(d.Items)
	formsH := handler.NewFormsHandler(d.Forms)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(d.DB, d.Redis, d.CacheBreaker))

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		items := v1.Group("/items")
		{
			items.GET("", itemsH.List)
			items.GET("/search", itemsH.Search)
			items.GET("/dropdown", itemsH.Dropdown)
			items.GET("/:id", itemsH.Get)
			items.POST("", middleware.RequireRole(middleware.RoleAdmin), itemsH.Create)
		}

		forms := v1.Group("/forms")
		{
			forms.POST("", formsH.Create)
			forms.GET("/:id", formsH.Get)
			forms.DELETE("/:id", formsH.Close)
			forms.POST("/:id/click", formsH.Click)
			forms.POST("/:id/rows", formsH.AddRow)
			forms.PATCH("/:id/rows/:row_id", formsH.UpdateRow)
			forms.DELETE("/:id/rows/:row_id", formsH.RemoveRow)
			forms.POST("/:id/rows/:row_id/input", formsH.Input)
			forms.POST("/:id/rows/:row_id/select", formsH.Select)
		}
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
