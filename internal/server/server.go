// Package server is the web surface: a single page with the four vault forms.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/bridge"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server serves the vault page and routes form posts to bound handlers.
type Server struct {
	engine   *gin.Engine
	log      *zap.Logger
	registry *prometheus.Registry
	vault    string
	warning  string

	requests *prometheus.CounterVec

	mu       sync.RWMutex
	handlers map[string]bridge.Handler
	displays map[string]string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithRegistry exposes reg on /metrics and registers the HTTP metrics in it.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithVaultAddress shows the contract address on the page.
func WithVaultAddress(addr string) Option {
	return func(s *Server) { s.vault = addr }
}

// WithWarning shows a persistent banner, e.g. when no signing wallet exists.
func WithWarning(msg string) Option {
	return func(s *Server) { s.warning = msg }
}

// New creates a Server. Bind handlers before serving.
func New(opts ...Option) *Server {
	s := &Server{
		log:      zap.NewNop(),
		handlers: make(map[string]bridge.Handler),
		displays: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3vault_http_requests_total",
		Help: "HTTP requests served by the web surface.",
	}, []string{"method", "path", "status"})
	s.registry.MustRegister(s.requests)

	s.engine = s.routes()
	return s
}

// Bind implements bridge.Surface.
func (s *Server) Bind(form string, h bridge.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[form] = h
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web surface listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("web surface shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), s.prometheusMiddleware())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/index.html")))

	r.GET("/", s.index)
	r.POST("/forms/:form", s.submitForm)
	r.POST("/api/forms/:form", s.submitAPI)
	r.GET("/api/displays", s.getDisplays)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

// prometheusMiddleware counts requests by route template, ignoring unmatched routes.
func (s *Server) prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		c.Next()
		if path != "" {
			s.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		}
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

type pageData struct {
	Vault       string
	Warning     string
	Notices     []noticeView
	Balance     string
	Beneficiary string
}

type noticeView struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (s *Server) index(c *gin.Context) {
	s.render(c, http.StatusOK, nil)
}

func (s *Server) render(c *gin.Context, status int, notices []bridge.Notice) {
	displays := s.snapshot()
	c.HTML(status, "index.html", pageData{
		Vault:       s.vault,
		Warning:     s.warning,
		Notices:     views(notices),
		Balance:     displays[bridge.ElementBalance],
		Beneficiary: displays[bridge.ElementBeneficiary],
	})
}

// submitForm handles a plain HTML form post and re-renders the page with
// the resulting notices.
func (s *Server) submitForm(c *gin.Context) {
	h, ok := s.handler(c.Param("form"))
	if !ok {
		s.render(c, http.StatusNotFound, []bridge.Notice{{Level: bridge.LevelFailure, Message: "Unknown form."}})
		return
	}
	out := s.run(c, h, c.PostForm("input"))
	s.render(c, http.StatusOK, out.notices)
}

type apiRequest struct {
	Input string `json:"input"`
}

type apiResponse struct {
	Notices  []noticeView      `json:"notices"`
	Displays map[string]string `json:"displays"`
}

// submitAPI is the JSON variant of submitForm.
func (s *Server) submitAPI(c *gin.Context) {
	h, ok := s.handler(c.Param("form"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown form " + c.Param("form")})
		return
	}
	var req apiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := s.run(c, h, req.Input)
	c.JSON(http.StatusOK, apiResponse{Notices: views(out.notices), Displays: s.snapshot()})
}

func (s *Server) getDisplays(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot())
}

// run invokes h on the request goroutine. The call is detached from the
// client connection so a closed tab does not abandon a broadcast transaction.
func (s *Server) run(c *gin.Context, h bridge.Handler, input string) *requestOutput {
	out := &requestOutput{srv: s}
	h(context.WithoutCancel(c.Request.Context()), input, out)
	return out
}

func (s *Server) handler(form string) (bridge.Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[form]
	return h, ok
}

func (s *Server) setDisplay(element, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displays[element] = text
}

func (s *Server) snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.displays))
	for k, v := range s.displays {
		out[k] = v
	}
	return out
}

// requestOutput collects notices for one request; display writes go straight
// to the shared page state, last writer wins.
type requestOutput struct {
	srv     *Server
	notices []bridge.Notice
}

func (o *requestOutput) Notify(n bridge.Notice) { o.notices = append(o.notices, n) }

func (o *requestOutput) Display(element, text string) { o.srv.setDisplay(element, text) }

func views(notices []bridge.Notice) []noticeView {
	out := make([]noticeView, 0, len(notices))
	for _, n := range notices {
		out = append(out, noticeView{Level: n.Level.String(), Message: n.Message})
	}
	return out
}
