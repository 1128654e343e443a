package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"github.com/Viherino/iss-bolha-frontend/internal/infra/config"
	"github.com/Viherino/iss-bolha-frontend/internal/infra/obs"
)

type AuthHTTP interface {
	LoginPage(c *gin.Context)
	Login(c *gin.Context)
	RegisterPage(c *gin.Context)
	Register(c *gin.Context)
	Logout(c *gin.Context)
	ProfilePage(c *gin.Context)
	UpdateProfile(c *gin.Context)
}

type ListingHTTP interface {
	Home(c *gin.Context)
	Detail(c *gin.Context)
	ContactSeller(c *gin.Context)
	CreatePage(c *gin.Context)
	Create(c *gin.Context)
	EditPage(c *gin.Context)
	Edit(c *gin.Context)
	Delete(c *gin.Context)
}

type MessageHTTP interface {
	Page(c *gin.Context)
	Select(c *gin.Context)
	Send(c *gin.Context)
	Delete(c *gin.Context)
	ToggleDeleteMode(c *gin.Context)
}

type Handlers struct {
	Auth              AuthHTTP
	Listing           ListingHTTP
	Messages          MessageHTTP
	SessionMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	if cfg.TemplatesGlob != "" {
		router.LoadHTMLGlob(cfg.TemplatesGlob)
	}
	if cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	pages := router.Group("/")
	if h.SessionMiddleware != nil {
		pages.Use(h.SessionMiddleware)
	}

	pages.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/home")
	})
	if h.Listing != nil {
		pages.GET("/home", h.Listing.Home)
		pages.GET("/kontakt", contactPage)
		pages.GET("/listing/:id", h.Listing.Detail)
		pages.POST("/listing/:id/contact", h.Listing.ContactSeller)
		pages.GET("/create-listing", h.Listing.CreatePage)
		pages.POST("/create-listing", h.Listing.Create)
		pages.GET("/edit-listing/:id", h.Listing.EditPage)
		pages.POST("/edit-listing/:id", h.Listing.Edit)
		pages.POST("/listing/:id/delete", h.Listing.Delete)
	}
	if h.Auth != nil {
		pages.GET("/login", h.Auth.LoginPage)
		pages.POST("/login", h.Auth.Login)
		pages.GET("/register", h.Auth.RegisterPage)
		pages.POST("/register", h.Auth.Register)
		pages.POST("/logout", h.Auth.Logout)
		pages.GET("/profile", h.Auth.ProfilePage)
		pages.POST("/profile", h.Auth.UpdateProfile)
	}
	if h.Messages != nil {
		pages.GET("/messages", h.Messages.Page)
		pages.POST("/messages/select", h.Messages.Select)
		pages.POST("/messages/send", h.Messages.Send)
		pages.POST("/messages/delete", h.Messages.Delete)
		pages.POST("/messages/delete-mode", h.Messages.ToggleDeleteMode)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func contactPage(c *gin.Context) {
	c.HTML(http.StatusOK, "kontakt.tmpl", baseData(c, "kontakt"))
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
