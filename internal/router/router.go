package router

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/handler"
	"github.com/stemsi/school-directory/internal/middleware"
	"github.com/stemsi/school-directory/internal/response"
	"github.com/stemsi/school-directory/internal/web"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Page   *handler.PageHandler
	School *handler.SchoolHandler
	System *handler.SystemHandler
}

// SetupRouter configures all Gin routes with appropriate middlewares.
func SetupRouter(
	handlers *Handlers,
	tmpl *template.Template,
	submitLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	// Request ID first so every later middleware and page can use it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
	}))
	router.Use(middleware.Brotli())

	// Embedded CSS/JS.
	static := router.Group("/static")
	static.Use(middleware.CacheControl(cfg.StaticMaxAge))
	{
		static.StaticFS("/", web.Static())
	}

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── Pages ─────────────────────────────────────────────────────────
	router.GET("/", handlers.Page.Home)

	router.GET("/addSchool", handlers.School.AddSchoolPage)
	router.POST("/addSchool", submitLimiter.Middleware(), handlers.School.AddSchool)

	router.GET("/showSchools", handlers.School.ShowSchoolsPage)
	router.GET("/showSchools/list", middleware.NoStore(), handlers.School.SchoolList)

	router.NoRoute(handlers.Page.NotFound)

	return router
}
