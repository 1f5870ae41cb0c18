// Package landscaping is the blog backend of the landscaping business site,
// built with Go, Echo, and templ. It serves the public blog (HTML, JSON, RSS,
// sitemap), the password-gated admin API, and uploaded images.
//
// Page templates are supplied through ViewFuncs, so the package itself owns
// only handler logic, middleware, and storage.
package landscaping

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/Jt-schofield1/landscaping-website/storage"
)

const (
	mediaPrefix     = "/media"
	adminPath       = "/admin/"
	adminLoginPath  = "/admin/login/"
	shutdownTimeout = 10 * time.Second
)

// ViewFuncs holds the templ components the App renders. Nil entries fall back
// to plain-text pages.
type ViewFuncs struct {
	BlogIndex   func(posts []BlogPost, meta PageMeta) templ.Component
	Post        func(post BlogPost, meta PageMeta) templ.Component
	Preview     func(in PostInput) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component

	AdminLogin         func(showError bool, csrfToken string) templ.Component
	AdminDashboard     func(posts []BlogPost, message string, csrfToken string) templ.Component
	AdminEditor        func(page EditorPage) templ.Component
	AdminConfirmDelete func(post BlogPost, csrfToken string) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.BlogIndex == nil {
		v.BlogIndex = func([]BlogPost, PageMeta) templ.Component { return textPage("Blog") }
	}
	if v.Post == nil {
		v.Post = func(p BlogPost, _ PageMeta) templ.Component { return textPage(p.Title) }
	}
	if v.NotFound == nil {
		v.NotFound = func() templ.Component { return textPage("Not Found") }
	}
	if v.ServerError == nil {
		v.ServerError = func() templ.Component { return textPage("Internal Server Error") }
	}
	if v.AdminLogin == nil {
		v.AdminLogin = func(bool, string) templ.Component { return textPage("Sign in") }
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = func([]BlogPost, string, string) templ.Component { return textPage("Blog posts") }
	}
	if v.AdminEditor == nil {
		v.AdminEditor = func(p EditorPage) templ.Component {
			if p.Creating() {
				return textPage("New post")
			}
			return textPage("Edit " + p.Post.Title)
		}
	}
	if v.AdminConfirmDelete == nil {
		v.AdminConfirmDelete = func(p BlogPost, _ string) templ.Component { return textPage("Delete " + p.Title) }
	}
}

func textPage(s string) templ.Component {
	return templ.Raw("<!DOCTYPE html><title>" + templ.EscapeString(s) + "</title><h1>" + templ.EscapeString(s) + "</h1>")
}

// App is the central application. It wires together the store, cache,
// bucket, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Bucket storage.Bucket
	Views  ViewFuncs

	customRoutes []func(*App)
	staticDir    string
	now          func() time.Time
	ready        bool
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	views.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	a := &App{
		Config:    cfg,
		Echo:      e,
		Views:     views,
		staticDir: "public",
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, opens the store and image bucket, and
// registers middleware and routes. Start calls it when needed.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("landscaping: invalid config: %w", err)
	}
	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("landscaping: init store: %w", err)
	}
	store.now = a.now
	a.Store = store

	if a.Bucket == nil {
		bucket, err := storage.NewFS(a.Config.MediaDir, a.Config.ImageBucket, a.Config.MediaURL)
		if err != nil {
			store.Close()
			return fmt.Errorf("landscaping: init bucket: %w", err)
		}
		a.Bucket = bucket
	}

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initializes the app and serves until ctx is canceled, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Echo.Logger.Infof("listening on %s", a.Config.Addr)
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("landscaping: server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.Echo.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			a.Echo.Logger.Errorf("server shutdown: %v", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/health", handleHealth)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", handleBlogRedirect)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/", a.handleBlogIndex)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET(mediaPrefix+"/"+a.Bucket.Name()+"/*", a.handleMedia)

	// Browser admin pages
	e.GET(adminPath, a.handleAdmin)
	e.POST(adminLoginPath, a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	pages := e.Group("/admin/posts", a.requireAdminPage)
	pages.GET("/new/", a.handleAdminNew)
	pages.POST("/", a.handleAdminSave)
	pages.GET("/:id/", a.handleAdminEdit)
	pages.POST("/:id/toggle/", a.handleAdminToggle)
	pages.GET("/:id/delete/", a.handleAdminConfirmDelete)
	pages.POST("/:id/delete/", a.handleAdminDeletePost)

	api := e.Group("/api")
	api.GET("/posts", a.handleListPublished)
	api.GET("/posts/:slug", a.handleGetPublished)

	// Session routes sit outside the gate: they establish or report it.
	api.GET("/admin/session", a.handleSessionStatus)
	api.POST("/admin/session", a.handleSignIn)
	api.DELETE("/admin/session", a.handleSignOut)

	admin := api.Group("/admin", a.requireAdmin)
	admin.GET("", a.handleAdminList)
	admin.POST("", a.handleAdminCreate)
	admin.PUT("", a.handleAdminUpdate)
	admin.DELETE("", a.handleAdminDelete)
	admin.POST("/upload", a.handleImageUpload)
	admin.GET("/images", a.handleImageList)
	admin.POST("/preview", a.handleAdminPreview)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func parseLogLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
