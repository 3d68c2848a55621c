package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"youbuildit/pkg/auth"
	"youbuildit/pkg/config"
	"youbuildit/pkg/mdx"
	"youbuildit/pkg/models"
	"youbuildit/pkg/services"
	"youbuildit/pkg/store"
	"youbuildit/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "youbuildit_session"

// Library is the challenge content the handlers serve.
type Library interface {
	All(ctx context.Context) ([]models.Challenge, error)
	BySlug(ctx context.Context, slug string) (models.Challenge, error)
	ListAssets(c models.Challenge) ([]services.AssetFile, error)
	AssetPath(c models.Challenge, target string) string
}

// UserStore persists members signing in through GitHub.
type UserStore interface {
	auth.UserLookup
	UpsertGithubUser(ctx context.Context, p store.GithubProfile) (*models.User, error)
}

type Deps struct {
	Config   *config.Config
	Library  Library
	Renderer *mdx.Renderer
	// Users is nil when no database is configured.
	Users UserStore
	// Sync pulls fresh content; nil disables POST /api/sync.
	Sync func(ctx context.Context) (string, error)
}

type Server struct {
	cfg      *config.Config
	lib      Library
	renderer *mdx.Renderer
	users    UserStore
	sync     func(ctx context.Context) (string, error)
	siteHost string
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	s := &Server{
		cfg:      cfg,
		lib:      deps.Library,
		renderer: deps.Renderer,
		users:    deps.Users,
		sync:     deps.Sync,
	}
	if s.renderer == nil {
		s.renderer = mdx.New(mdx.WithPlantUMLServer(cfg.PlantUMLServer))
	}
	if u, err := url.Parse(cfg.AppURL); err == nil {
		s.siteHost = u.Host
	}

	tmpl, err := web.Templates(auth.TemplateFuncs())
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(), Recovery())

	// Session Setup
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.AppURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, sessionStore))

	// Static Files & Templates
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/robots.txt", s.Robots)
	r.GET("/sitemap.xml", s.Sitemap)
	r.GET("/icon", s.Icon)

	site := r.Group("/")
	site.Use(auth.Identify(deps.Users, cfg.AuthLookupTimeout))
	{
		// --- Auth Routes ---
		site.GET("/login", s.LoginPage)
		site.GET("/login/github", s.GithubLogin)
		site.GET("/auth/callback", s.AuthCallback)
		site.GET("/logout", s.Logout)

		// --- Pages ---
		site.GET("/", s.Home)
		site.GET("/challenges", s.ChallengesPage)
		site.GET("/challenges/:slug", s.ChallengePage)
		site.GET("/challenges/:slug/assets/*path", s.ServeAsset)
		site.GET("/dashboard", AuthRequired, s.Dashboard)

		api := site.Group("/api")
		{
			api.GET("/challenges", s.ListChallenges)
			api.GET("/challenges/:slug", s.GetChallenge)
			api.GET("/challenges/:slug/assets", s.ListAssets)
			api.GET("/me", AuthRequired, s.Me)
			api.POST("/sync", AuthRequired, s.HandleSync)
		}
	}

	r.NoRoute(auth.Identify(deps.Users, cfg.AuthLookupTimeout), s.NotFound)
	return r, nil
}

// page is the data every template expects.
func (s *Server) page(c *gin.Context, title, description string) gin.H {
	return gin.H{
		"Title":       title,
		"Description": description,
		"Auth":        auth.FromContext(c),
	}
}

func (s *Server) errorPage(c *gin.Context, code int, title, message string) {
	data := s.page(c, title, "")
	data["Message"] = message
	c.HTML(code, "error.html", data)
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func (s *Server) NotFound(c *gin.Context) {
	if isAPI(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	s.errorPage(c, http.StatusNotFound, "Page not found", "There is nothing at this address.")
}
