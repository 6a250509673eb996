// Package inspect serves an HTTP debugging surface for attribute lists:
// decode captured wire bytes, encode documents, and replay a typed scan
// under a chosen policy.
package inspect

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/danmuck/attrwire/internal/attr"
	"github.com/danmuck/attrwire/internal/attrdoc"
	"github.com/danmuck/attrwire/internal/config"
	"github.com/danmuck/attrwire/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// maxBody caps request bodies; a list is many lines of at most one token each.
const maxBody = 1 << 20

type Server struct {
	Name     string
	Addr     string
	Appeared time.Time

	policy  attr.Policy
	decoder *attr.Decoder
	encoder *attr.Encoder
	log     zerolog.Logger
	router  *gin.Engine
}

func New(cfg config.Config, logger zerolog.Logger) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(RequestMetricsMiddleware(cfg.Server.Name))
	if len(cfg.Server.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.Server.CorsOrigins,
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Name:     cfg.Server.Name,
		Addr:     cfg.Server.Addr,
		Appeared: time.Now(),
		policy:   cfg.Policy,
		decoder:  attr.NewDecoder(cfg.Codec(), logger),
		encoder:  attr.NewEncoder(cfg.Codec(), logger),
		log:      logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.log.Info().Str("addr", s.Addr).Str("name", s.Name).Msg("inspect server listening")
	return s.router.Run(s.Addr)
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/decode", s.handleDecode)
	v1.POST("/encode", s.handleEncode)
	v1.POST("/scan", s.handleScan)
}

func (s *Server) handleDecode(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fields, err := s.decoder.ReadList(attr.NewReader(bytes.NewReader(body), peerName(c)))
	resp := gin.H{
		"complete": err == nil,
		"document": attrdoc.FromFields(fields),
	}
	if err != nil {
		resp["error"] = err.Error()
		resp["kind"] = attr.ViolationKind(err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEncode(c *gin.Context) {
	doc, ok := s.bindDocument(c)
	if !ok {
		return
	}
	attrs, err := doc.Attributes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := s.encoder.Encode(&buf, attrs...); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", buf.Bytes())
}

// scanRequest carries the raw list base64 encoded so it survives JSON.
type scanRequest struct {
	Want   attrdoc.Document `json:"want"`
	Wire   string           `json:"wire"`
	Policy *scanPolicy      `json:"policy,omitempty"`
}

type scanPolicy struct {
	WarnOnMissing bool `json:"warn_on_missing"`
	AbortOnExtra  bool `json:"abort_on_extra"`
}

func (s *Server) handleScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Wire)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wire must be base64: " + err.Error()})
		return
	}
	wants, collect, err := req.Want.Wants()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	policy := s.policy
	if req.Policy != nil {
		policy = attr.Policy{WarnOnMissing: req.Policy.WarnOnMissing, AbortOnExtra: req.Policy.AbortOnExtra}
	}

	out := s.decoder.Decode(attr.NewReader(bytes.NewReader(raw), peerName(c)), policy, wants...)
	doc := collect()
	doc.Attributes = doc.Attributes[:out.Conversions]
	resp := gin.H{
		"conversions": out.Conversions,
		"expected":    len(wants),
		"complete":    out.Complete(len(wants)),
		"kind":        attr.ViolationKind(out.Err),
		"document":    doc,
	}
	if out.Err != nil {
		resp["error"] = out.Err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) bindDocument(c *gin.Context) (attrdoc.Document, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return attrdoc.Document{}, false
	}
	doc, err := attrdoc.ParseJSON(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return attrdoc.Document{}, false
	}
	return doc, true
}

func peerName(c *gin.Context) string {
	return "http:" + c.ClientIP()
}
