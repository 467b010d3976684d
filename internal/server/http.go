// Package server exposes the small HTTP surface of the price core:
// the keep-alive ping target and the synchronous price lookup the
// dashboard's route layer calls.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"assetwatch/internal/application/service"
	"assetwatch/internal/domain/model"
)

func NewMux(prices *service.PriceService) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pong"))
	})
	mux.HandleFunc("GET /api/price", priceHandler(prices))
	mux.HandleFunc("GET /api/fx/usdjpy", fxHandler(prices))
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func priceHandler(prices *service.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := model.ParseAssetKind(r.URL.Query().Get("kind"))
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown asset kind"})
			return
		}
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "symbol is required"})
			return
		}

		quote, err := prices.GetPrice(r.Context(), model.PriceQuery{Kind: kind, Symbol: symbol})
		if err != nil {
			writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, quote)
	}
}

func fxHandler(prices *service.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rate := prices.USDJPY(r.Context())
		writeJSON(w, http.StatusOK, map[string]string{"pair": "USDJPY", "rate": rate.String()})
	}
}

// statusFor maps the fetch error taxonomy onto HTTP statuses: caller
// errors are 4xx, upstream trouble is a 502.
func statusFor(err error) int {
	if errors.Is(err, model.ErrUnsupportedAsset) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response failed")
	}
}

// Serve runs the listener until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, addr string, mux *http.ServeMux) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().Str("addr", addr).Msg("http server started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
