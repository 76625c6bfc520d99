package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pocketbook/internal/cache"
	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/middleware/ratelimit"
	"pocketbook/internal/middleware/security"
	"pocketbook/internal/middleware/trace"
	"pocketbook/internal/services"
)

// Options tunes the server. Zero values select defaults.
type Options struct {
	RateLimitPerMinute int
	CacheTTL           time.Duration
	Logger             *log.Logger
	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

type Server struct {
	http.Server
	ledger  *services.LedgerService
	capture *services.CaptureService
	ready   func(ctx context.Context) error
	now     func() time.Time
	logger  *log.Logger

	limiter *ratelimit.Limiter
	clients *security.ClientIPResolver
	caches  *cache.Manager

	summaries  *cache.Memo[summaryResponse]
	breakdowns *cache.Memo[[]core.CategoryShare]
	dailies    *cache.Memo[[]core.DayTotal]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a server ready to
// ListenAndServe on addr.
func NewServer(addr string, ledger *services.LedgerService, capture *services.CaptureService, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	summaryCache := cache.NewLRUCache[summaryResponse](100, opts.CacheTTL)
	breakdownCache := cache.NewLRUCache[[]core.CategoryShare](200, opts.CacheTTL)
	dailyCache := cache.NewLRUCache[[]core.DayTotal](200, opts.CacheTTL)
	caches := cache.NewManager()
	caches.Register(summaryCache)
	caches.Register(breakdownCache)
	caches.Register(dailyCache)

	s := &Server{
		ledger:     ledger,
		capture:    capture,
		ready:      opts.Ready,
		now:        opts.Now,
		logger:     opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:    ratelimit.NewLimiter(opts.RateLimitPerMinute),
		clients:    security.NewClientIPResolver(),
		caches:     caches,
		summaries:  cache.NewMemo[summaryResponse](summaryCache),
		breakdowns: cache.NewMemo[[]core.CategoryShare](breakdownCache),
		dailies:    cache.NewMemo[[]core.DayTotal](dailyCache),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/stats/categories", s.handleCategoryStats)
	mux.HandleFunc("GET /api/stats/daily", s.handleDailyStats)

	mux.HandleFunc("GET /api/budget", s.handleBudgetStatus)
	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)
	mux.HandleFunc("POST /api/budget", s.handleSetBudget)
	mux.HandleFunc("POST /api/budget/dismiss", s.handleDismissAlert)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("POST /api/receipts", s.handleReceipt)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.clients.ClientIP, s.onRateLimited, http.MethodPost, http.MethodPut, http.MethodDelete)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.withProbeWarning(handler)
	handler = trace.Middleware(s.logger, s.clients.ClientIP)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// RunMaintenance sweeps expired cache entries and idle rate limit windows
// until ctx is cancelled.
func (s *Server) RunMaintenance(ctx context.Context) {
	go s.limiter.Run(ctx, 5*time.Minute)
	s.caches.Run(ctx, 10*time.Minute)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) withProbeWarning(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if security.IsProbe(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldPath, r.URL.Path, log.FieldClientIP, s.clients.ClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.clients.ClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
