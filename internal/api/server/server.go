package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ctmes/ProfTwo/internal/config"
	database "github.com/ctmes/ProfTwo/internal/db"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/pipeline"
	"github.com/ctmes/ProfTwo/internal/storage"

	"github.com/ctmes/ProfTwo/internal/api/handlers"
	"github.com/ctmes/ProfTwo/internal/api/middleware"
)

type Server struct {
	cfg     *config.Config
	db      *database.Client
	storage *storage.Client
	library *library.Store
	proc    *pipeline.Processor
	bus     *events.Bus
	router  *gin.Engine
}

func New(cfg *config.Config, db *database.Client, st *storage.Client,
	lib *library.Store, proc *pipeline.Processor, bus *events.Bus) *Server {
	gin.SetMode(gin.ReleaseMode) // Set to Release for production

	s := &Server{
		cfg:     cfg,
		db:      db,
		storage: st,
		library: lib,
		proc:    proc,
		bus:     bus,
		router:  gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.SilentLogger(), gin.Recovery())

	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	// IMPORTANT: "Authorization" must be allowed so the frontend can send the JWT
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	secret := []byte(s.cfg.Auth.JWTSecret)

	// 1. Initialize Modular Handlers
	authHandler := handlers.NewAuthHandler(s.db.DB, s.library, s.bus, secret, s.cfg.Auth.TokenTTLHours)
	statsHandler := handlers.NewStatsHandler(s.db.DB)
	uploadHandler := handlers.NewUploadHandler(s.storage, s.cfg.Server.TempDir)
	processHandler := handlers.NewProcessHandler(s.proc, s.storage)
	lectureHandler := handlers.NewLectureHandler(s.library, s.storage, s.bus)
	playbackHandler := handlers.NewPlaybackHandler(s.library, s.bus)
	feedHandler := handlers.NewFeedHandler(s.bus)

	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "proftwo"})
	})

	// API Group
	v1 := s.router.Group("/api/v1")
	{
		// ==========================================
		// PUBLIC ROUTES (No Token Required)
		// ==========================================
		v1.POST("/auth/signup", authHandler.Signup)
		v1.POST("/auth/login", authHandler.Login)

		v1.GET("/stats", statsHandler.GetStats)

		// ==========================================
		// PROTECTED ROUTES (JWT Token Required)
		// ==========================================
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(secret)) // Checks for valid JWT
		{
			// --- ADMIN ONLY ---
			// Only Admins can register new accounts.
			protected.POST("/auth/register", middleware.RequireRole("admin"), authHandler.Register)

			// --- SESSION ---
			protected.GET("/auth/me", authHandler.Me)
			protected.POST("/auth/logout", authHandler.Logout)

			// --- UPLOAD & PROCESSING ---
			protected.POST("/upload", uploadHandler.Upload)
			protected.POST("/process", processHandler.Start)
			protected.GET("/process/:id", processHandler.Status)
			protected.DELETE("/process/:id", processHandler.Interrupt)

			// --- LECTURE LIBRARY ---
			protected.GET("/lectures", lectureHandler.GetLectures)
			protected.GET("/lectures/:id", lectureHandler.GetLecture)
			protected.DELETE("/lectures/:id", lectureHandler.DeleteLecture)
			protected.GET("/lectures/:id/audio", lectureHandler.StreamAudio)

			// --- PLAYBACK SESSIONS ---
			protected.POST("/lectures/:id/playback", playbackHandler.Open)
			protected.GET("/lectures/:id/playback", playbackHandler.State)
			protected.POST("/lectures/:id/playback/command", playbackHandler.Command)
			protected.DELETE("/lectures/:id/playback", playbackHandler.Close)

			// --- ASSETS & LIVE FEED ---
			// Both are consumed by <object>/<audio> tags and the WS client,
			// which authenticate via the ?token= query fallback.
			protected.GET("/assets/*key", lectureHandler.StreamAsset)
			protected.GET("/feed", feedHandler.Serve)
		}
	}
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
