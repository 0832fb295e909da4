// Package practice is the embedded QA practice backend: a small gin server
// with the same REST surface the production backend exposes, persisting to a
// local SQLite database. It exists so the client packages have a real server
// to run against, offline included, and it deliberately reproduces the
// backend's mixed error payload shapes (a string `detail` for plain errors,
// an array of objects for field errors).
package practice

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config carries the server's few knobs.
type Config struct {
	// DBPath is the SQLite file; ":memory:" works for tests.
	DBPath string
	// JWTSecret signs issued tokens. Required.
	JWTSecret string
	// Logger may be nil.
	Logger *slog.Logger
}

// Server is the practice backend.
type Server struct {
	engine *gin.Engine
	db     *gorm.DB
	tokens *tokenManager
	logger *slog.Logger
}

// New opens the database, runs migrations and wires all routes.
func New(cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("practice server requires a JWT secret")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open practice database: %w", err)
	}
	if err := db.AutoMigrate(&User{}, &Todo{}, &Event{}, &Post{}, &Card{}); err != nil {
		return nil, fmt.Errorf("migrate practice database: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		engine: router,
		db:     db,
		tokens: newTokenManager([]byte(cfg.JWTSecret)),
		logger: log,
	}
	s.registerRoutes()
	return s, nil
}

// Engine exposes the gin engine for httptest and for mounting.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("practice backend listening", slog.String("addr", addr))
	return s.engine.Run(addr)
}

// registerRoutes wires the REST surface and the websocket endpoint.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := s.engine.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
		auth.POST("/refresh", s.handleRefresh)
		auth.GET("/me", s.requireAuth, s.handleMe)
	}

	api := s.engine.Group("", s.requireAuth)
	{
		api.GET("/todos", s.handleListTodos)
		api.POST("/todos", s.handleCreateTodo)
		api.PATCH("/todos/:id", s.handleUpdateTodo)
		api.DELETE("/todos/:id", s.handleDeleteTodo)
		api.POST("/todos/:id/toggle", s.handleToggleTodo)

		api.GET("/events", s.handleListEvents)
		api.POST("/events", s.handleCreateEvent)
		api.PATCH("/events/:id", s.handleUpdateEvent)
		api.DELETE("/events/:id", s.handleDeleteEvent)

		api.GET("/posts", s.handleListPosts)
		api.POST("/posts", s.handleCreatePost)
		api.PATCH("/posts/:id", s.handleUpdatePost)
		api.DELETE("/posts/:id", s.handleDeletePost)

		api.GET("/board/cards", s.handleListCards)
		api.POST("/board/cards", s.handleCreateCard)
		api.PATCH("/board/cards/:id", s.handleUpdateCard)
		api.POST("/board/cards/:id/move", s.handleMoveCard)
		api.DELETE("/board/cards/:id", s.handleDeleteCard)
	}

	s.engine.GET("/ws/chat", s.handleChat)
}

// requireAuth verifies the bearer access token and stashes the user id.
func (s *Server) requireAuth(c *gin.Context) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing bearer token"})
		return
	}
	userID, err := s.tokens.verify(header[len(prefix):], "access")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid or expired token"})
		return
	}
	c.Set("userID", userID)
	c.Next()
}

// currentUserID reads the id stashed by requireAuth.
func currentUserID(c *gin.Context) string {
	return c.GetString("userID")
}

// fieldErr is one entry of an array-shaped error detail, matching the
// production backend's validation payload.
type fieldErr struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// abortFieldErrors responds 422 with the array-of-objects detail shape.
func abortFieldErrors(c *gin.Context, errs []fieldErr) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": errs})
}

// abortDetail responds with the plain-string detail shape.
func abortDetail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}
