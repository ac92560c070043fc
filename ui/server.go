// Package ui serves the single-page editor: one index template whose
// panels are switched by the flow controller, plus the standalone
// signup page.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"autoficate/app"
	domaincolor "autoficate/domain/color"
	"autoficate/internal/session"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Server wires the HTTP routes to the application services.
type Server struct {
	router    *gin.Engine
	templates *template.Template

	accounts  *app.AccountService
	inspector *app.InspectorService
	exports   *app.ExportService
	sessions  *session.Manager

	mediaDir string
}

// Config holds the server settings.
type Config struct {
	Port     string
	GinMode  string
	MediaDir string
}

// NewServer creates the server and parses the embedded templates.
func NewServer(cfg Config, accounts *app.AccountService, inspector *app.InspectorService, exports *app.ExportService, sessions *session.Manager) (*Server, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	funcMap := template.FuncMap{
		// Stored colors are alpha-first; the picker edits alpha-last.
		"displayColor": func(stored string) string {
			display, err := domaincolor.ToDisplay(stored)
			if err != nil {
				return stored
			}
			return display
		},
		"add": func(a, b int) int { return a + b },
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		templates: templates,
		accounts:  accounts,
		inspector: inspector,
		exports:   exports,
		sessions:  sessions,
		mediaDir:  cfg.MediaDir,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/", s.getIndex)
	s.router.POST("/", s.postIndex)
	s.router.GET("/signup", s.getSignup)
	s.router.POST("/signup", s.postSignup)
	s.router.GET("/logout", s.getLogout)

	if s.mediaDir != "" {
		s.router.Static("/media", s.mediaDir)
	}
	s.router.StaticFS("/static", mustSubFS(embeddedFiles, "static"))
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run starts the server.
func (s *Server) Run(port string) error {
	log.Printf("[Server] listening on :%s", port)
	return s.router.Run(":" + port)
}

func mustSubFS(fsys embed.FS, dir string) http.FileSystem {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
