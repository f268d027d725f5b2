package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

// Trigger is the slice of the lifecycle pipeline the manual endpoints
// invoke.
type Trigger interface {
	RunDiscovery(ctx context.Context) error
	ProcessURL(ctx context.Context, rawURL string) (*domain.Article, error)
}

// Server exposes the read-only query surface and the manual triggers. It
// consumes the store directly for reads and the pipeline for writes.
type Server struct {
	repo     ports.ArticleRepository
	pipeline Trigger
	logger   *slog.Logger
}

// NewServer wires the repository and the pipeline.
func NewServer(repo ports.ArticleRepository, pipeline Trigger, logger *slog.Logger) *Server {
	return &Server{repo: repo, pipeline: pipeline, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.GET("/articles", s.listArticles)
	api.GET("/articles/stats", s.stats)
	api.POST("/articles", s.submitArticle)
	api.POST("/discover", s.triggerDiscovery)

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func (s *Server) listArticles(c *gin.Context) {
	filter, ok := s.parseFilter(c)
	if !ok {
		return
	}

	articles, err := s.repo.Query(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

func (s *Server) parseFilter(c *gin.Context) (domain.Filter, bool) {
	filter := domain.Filter{
		Search:     c.Query("q"),
		OrderBy:    c.DefaultQuery("order_by", "created_at"),
		Descending: c.DefaultQuery("order", "desc") == "desc",
	}

	if status := c.Query("status"); status != "" {
		if !domain.ValidStatus(domain.Status(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + status})
			return domain.Filter{}, false
		}
		filter.Status = domain.Status(status)
	}
	if lang := c.Query("language"); lang != "" {
		filter.Language = domain.ParseLanguage(lang)
	}
	if !domain.OrderColumns[filter.OrderBy] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot order by " + filter.OrderBy})
		return domain.Filter{}, false
	}

	filter.Limit = intQuery(c, "limit", 50)
	filter.Offset = intQuery(c, "offset", 0)
	return filter, true
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.repo.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type submitRequest struct {
	URL string `json:"url" binding:"required"`
}

// submitArticle runs the single-URL path synchronously and reports the
// resulting record, which for an already-known URL is its current state.
func (s *Server) submitArticle(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	article, err := s.pipeline.ProcessURL(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("manual processing failed", "url", req.URL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, article)
}

// triggerDiscovery kicks off a full discovery run in the background; the
// run outlives the request.
func (s *Server) triggerDiscovery(c *gin.Context) {
	go func() {
		if err := s.pipeline.RunDiscovery(context.Background()); err != nil {
			s.logger.Error("triggered discovery failed", "error", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "discovery started"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
