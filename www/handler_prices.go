package www

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/pricing"
	"github.com/icodeforyou/spotprice-go/types"
)

type dayFunc func(ctx context.Context, now time.Time) (types.DayResult, error)

// NewDayHandler serves today or tomorrow. A day without published prices is
// answered with an empty list.
func NewDayHandler(logger *slog.Logger, day dayFunc, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := now()
		d, err := day(r.Context(), t)
		if errors.Is(err, pricing.ErrNoData) {
			respondJSON(w, http.StatusOK, []HourJSON{})
			return
		}
		if err != nil {
			logger.Error("handling day request", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, parseFilter(r, t).apply(d.Hours()))
	}
}

// NewDateHandler serves /prices/{date}, date as YYYY-MM-DD in local time.
func NewDateHandler(logger *slog.Logger, pricer DayPricer, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := hours.ParseDay(chi.URLParam(r, "date"), pricer.Location())
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		d, err := pricer.GetDayResult(r.Context(), date)
		if errors.Is(err, pricing.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			logger.Error("handling prices request", slog.String("date", chi.URLParam(r, "date")), slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, parseFilter(r, now()).apply(d.Hours()))
	}
}

func NewCurrentHourHandler(logger *slog.Logger, pricer DayPricer, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, ok, err := pricer.CurrentHour(r.Context(), now())
		if errors.Is(err, pricing.ErrNoData) || (err == nil && !ok) {
			respondError(w, http.StatusNotFound, "current hour unknown")
			return
		}
		if err != nil {
			logger.Error("handling current hour request", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, NewHourJSON(h))
	}
}

func parseFilter(r *http.Request, now time.Time) hourFilter {
	q := r.URL.Query()
	f := hourFilter{onlyHighCost: boolOrDefault(r.URL, "onlyHighCost", false)}
	if q.Get("from") == "now" {
		f.from = now
	}
	return f
}
