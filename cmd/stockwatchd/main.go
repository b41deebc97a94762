package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"stockwatch/internal/aggregate"
	"stockwatch/internal/calendar"
	"stockwatch/internal/config"
	"stockwatch/internal/httpx"
	"stockwatch/internal/manager"
	"stockwatch/internal/provider"
	"stockwatch/internal/provider/ratelimit"
	"stockwatch/internal/provider/sina"
	"stockwatch/internal/scheduler"
	"stockwatch/internal/search"
	"stockwatch/internal/util"
	"stockwatch/internal/watchlist"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	store, err := watchlist.Open(cfg.Storage.WatchlistPath)
	if err != nil {
		logger.Error("watchlist", "err", err)
		os.Exit(1)
	}

	httpClient := httpx.New(cfg.RequestTimeout())

	var fetcher provider.Fetcher = sina.New(sina.Config{URL: cfg.Quotes.Endpoint}, httpClient)
	if cfg.Quotes.MinFetchIntervalSec > 0 {
		fetcher = &ratelimit.MinInterval{F: fetcher, Interval: time.Duration(cfg.Quotes.MinFetchIntervalSec) * time.Second}
	}

	var searchOpts []search.Option
	searchOpts = append(searchOpts, search.WithHTTPClient(httpClient.HTTP), search.WithTimeout(cfg.SearchTimeout()))
	primaryOpts := searchOpts
	if cfg.Search.SuggestEndpoint != "" {
		primaryOpts = append(primaryOpts, search.WithBaseURL(cfg.Search.SuggestEndpoint))
	}
	fallbackOpts := searchOpts
	if cfg.Search.SmartboxEndpoint != "" {
		fallbackOpts = append(fallbackOpts, search.WithBaseURL(cfg.Search.SmartboxEndpoint))
	}
	searcher := search.NewChain(search.NewSinaSuggest(primaryOpts...), search.NewSmartbox(fallbackOpts...))

	mgr := &manager.Manager{Store: store, Fetcher: fetcher, Searcher: searcher}

	board := aggregate.NewBoard()
	board.OnRefresh(func(s aggregate.Snapshot) {
		logger.Info("refresh complete", "quotes", len(s.Quotes), "failed", s.Failed)
	})

	runCycle := newRefreshCycle(store, fetcher, board, logger, cfg.RequestTimeout())

	sched := scheduler.New(cfg.RefreshInterval(), calendar.IsTradingTime, runCycle, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)
	// Initial fill regardless of market hours so the board is never empty on
	// startup during a session.
	sched.RefreshNow(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handleGetQuotes(w, board)
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		sched.RefreshNow(r.Context())
		handleGetQuotes(w, board)
	})
	mux.HandleFunc("/api/watchlist", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handleGetWatchlist(w, store)
		case http.MethodPost:
			handleAddWatchlist(w, r, mgr, sched)
		case http.MethodDelete:
			handleRemoveWatchlist(w, r, mgr, sched)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// newRefreshCycle builds the function the scheduler runs each tick: fetch
// the whole watch-list in one batch and swap the board. Transport failures
// keep the previous snapshot; the next tick retries implicitly.
func newRefreshCycle(store *watchlist.Store, fetcher provider.Fetcher, board *aggregate.Board, logger *slog.Logger, timeout time.Duration) func(context.Context) {
	return func(ctx context.Context) {
		codes := store.Codes()
		if len(codes) == 0 {
			return
		}
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		fetched, err := fetcher.Fetch(cctx, codes)
		if err != nil {
			logger.Warn("quote fetch failed", "err", err)
			return
		}
		board.Update(codes, fetched, time.Now())
	}
}

type quotesResponse struct {
	Snapshot aggregate.Snapshot `json:"snapshot"`
}

func handleGetQuotes(w http.ResponseWriter, board *aggregate.Board) {
	writeJSON(w, http.StatusOK, quotesResponse{Snapshot: board.Latest()})
}

type watchlistResponse struct {
	Stocks []string `json:"stocks"`
}

func handleGetWatchlist(w http.ResponseWriter, store *watchlist.Store) {
	writeJSON(w, http.StatusOK, watchlistResponse{Stocks: store.Strings()})
}

type addBody struct {
	Input string `json:"input"`
}

type addResponse struct {
	Added string `json:"added"`
	Name  string `json:"name"`
}

func handleAddWatchlist(w http.ResponseWriter, r *http.Request, mgr *manager.Manager, sched *scheduler.Scheduler) {
	var b addBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil || strings.TrimSpace(b.Input) == "" {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	q, err := mgr.Add(r.Context(), strings.TrimSpace(b.Input))
	switch {
	case errors.Is(err, manager.ErrDuplicate):
		http.Error(w, "already on watch-list", http.StatusConflict)
		return
	case errors.Is(err, manager.ErrNotFound):
		http.Error(w, "symbol not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	sched.RefreshNow(r.Context())
	writeJSON(w, http.StatusOK, addResponse{Added: q.FullCode, Name: q.Name})
}

func handleRemoveWatchlist(w http.ResponseWriter, r *http.Request, mgr *manager.Manager, sched *scheduler.Scheduler) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code query param", http.StatusBadRequest)
		return
	}
	removed, err := mgr.Remove(r.Context(), code)
	if errors.Is(err, manager.ErrNotFound) {
		http.Error(w, "unrecognized code", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "not on watch-list", http.StatusNotFound)
		return
	}
	sched.RefreshNow(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses the response when the client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(gw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
