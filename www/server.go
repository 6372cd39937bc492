package www

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/database"
	"github.com/icodeforyou/spotprice-go/types"
)

// DayPricer is the part of the pricing engine served over HTTP.
type DayPricer interface {
	GetDayResult(ctx context.Context, date time.Time) (types.DayResult, error)
	Today(ctx context.Context, now time.Time) (types.DayResult, error)
	Tomorrow(ctx context.Context, now time.Time) (types.DayResult, error)
	CurrentHour(ctx context.Context, now time.Time) (types.HourRecord, bool, error)
	Location() *time.Location
}

type LogReader interface {
	GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]database.LogEntryRow, error)
}

type Server struct {
	logger  *slog.Logger
	config  config.AppConfigApi
	pricer  DayPricer
	logs    LogReader
	metrics http.Handler
	hub     *Hub
	now     func() time.Time
}

func NewServer(pricer DayPricer, logs LogReader, metrics http.Handler, config config.AppConfigApi) *Server {
	logger := slog.Default().With("module", "www")
	return &Server{
		logger:  logger,
		config:  config,
		pricer:  pricer,
		logs:    logs,
		metrics: metrics,
		hub:     NewHub(logger),
		now:     time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequest)

	r.Get("/today", NewDayHandler(s.logger.With(slog.String("handler", "today")), s.pricer.Today, s.now))
	r.Get("/tomorrow", NewDayHandler(s.logger.With(slog.String("handler", "tomorrow")), s.pricer.Tomorrow, s.now))
	r.Get("/prices/{date}", NewDateHandler(s.logger.With(slog.String("handler", "prices")), s.pricer, s.now))
	r.Get("/now", NewCurrentHourHandler(s.logger.With(slog.String("handler", "now")), s.pricer, s.now))
	r.Get("/log", NewLogHandler(s.logger.With(slog.String("handler", "log")), s.logs))
	r.Get("/ws", s.serveWebsocket)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return r
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("url", r.URL.String()),
			slog.String("remoteAddr", r.RemoteAddr))
		next.ServeHTTP(w, r)
	})
}

// Run serves HTTP until ctx is done and pushes the current hour to the
// websocket clients every tick.
func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", slog.Int("port", int(s.config.Port)))
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)

	srvErrors := make(chan error, 1)
	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	ticker := time.NewTicker(time.Second * 30)
	defer ticker.Stop()

	// Keeping state to avoid spamming logs
	currentHourErrorState := false

	for {
		select {
		case err := <-srvErrors:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("server error", slog.Any("error", err))
			}
			return

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			msg, err := s.currentHourMessage(ctx)
			if err != nil {
				if !currentHourErrorState {
					currentHourErrorState = true
					s.logger.Warn("failed to get current hour", slog.Any("error", err))
				}
				continue
			}
			currentHourErrorState = false
			s.hub.Broadcast(msg)
		}
	}
}
