// Package api handles HTTP and WebSocket API endpoints
package api

import (
	"context"
	"embed"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/twillco/storefront/internal/events"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/renderer"
	"github.com/twillco/storefront/internal/upload"
	"github.com/twillco/storefront/pkg/catalog"
)

//go:embed static/index.html
var staticFiles embed.FS

// MaxBodyBytes caps every request body
const MaxBodyBytes = 10 * 1024 * 1024

// Options tune request validation and generated links
type Options struct {
	Currency  string
	MinAmount int64
	PublicURL string
}

// Server is the API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	cat        *catalog.Catalog
	renderer   *renderer.Renderer
	processor  payment.Processor
	uploads    *upload.Store
	feed       *events.Feed
	dispatcher *events.Dispatcher
	hub        *Hub
	opts       Options
	upgrader   websocket.Upgrader
}

// NewServer creates a new API server
func NewServer(cat *catalog.Catalog, processor payment.Processor, uploads *upload.Store, feed *events.Feed, opts Options) *Server {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.MinAmount <= 0 {
		opts.MinAmount = 50
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(recoveryHandler))

	// CORS middleware
	router.Use(corsMiddleware())
	router.Use(bodyLimitMiddleware(MaxBodyBytes))

	server := &Server{
		router:     router,
		cat:        cat,
		renderer:   renderer.New(cat),
		processor:  processor,
		uploads:    uploads,
		feed:       feed,
		dispatcher: events.NewDispatcher(feed),
		hub:        NewHub(),
		opts:       opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}

	feed.OnRecord(server.broadcastPayment)
	server.hub.Start()

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	// Storefront API
	s.router.POST("/upload-design", s.handleUploadDesign)
	s.router.POST("/create-payment-intent", s.handleCreatePaymentIntent)
	s.router.POST("/webhook", s.handleWebhook)
	s.router.GET("/order-status/:id", s.handleOrderStatus)
	s.router.GET("/order-status/:id/label.png", s.handleOrderLabel)

	s.router.GET("/uploads/:filename", s.handleGetUpload)
	s.router.GET("/catalog", s.handleGetCatalog)
	s.router.GET("/preview", s.handlePreview)
	s.router.GET("/payments", s.handleGetPayments)

	// WebSocket
	s.router.GET("/ws", s.handleWebSocket)

	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Feed is the recent-payments feed the server records into
func (s *Server) Feed() *events.Feed {
	return s.feed
}

// Uploads is the server's upload store
func (s *Server) Uploads() *upload.Store {
	return s.uploads
}

// Hub is the websocket broadcast hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run starts the API server and blocks until it stops
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and closes websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(c *gin.Context) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.Data(200, "text/html; charset=utf-8", data)
}

func recoveryHandler(c *gin.Context, recovered interface{}) {
	log.Printf("❌ Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
	c.AbortWithStatusJSON(500, gin.H{"error": "Something went wrong!"})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Stripe-Signature")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func bodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
