// Package server exposes the connector's HTTP API.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/internal/marketplace"
	"github.com/tournevent/shipping-connector/internal/shipping"
	"github.com/tournevent/shipping-connector/internal/telemetry"
	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// Server is the HTTP server for the shipping connector.
type Server struct {
	port     int
	secret   string
	channels marketplace.Channels
	service  *shipping.Service
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port         int
	SharedSecret string
	Channels     marketplace.Channels
}

// New creates a new server instance.
func New(cfg Config, service *shipping.Service, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:     cfg.Port,
		secret:   cfg.SharedSecret,
		channels: cfg.Channels,
		service:  service,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("POST /api/shipments/v1/{channel}/validateAddress", s.channelHandler("validate_address", s.handleValidateAddress))
	mux.Handle("POST /api/shipments/v1/{channel}/quote", s.channelHandler("quote", s.handleQuote))
	mux.Handle("POST /api/shipments/v1/{channel}/shipment", s.channelHandler("shipment", s.handleShipment))
	mux.Handle("GET /api/shipments/v1/{channel}/tracking/status", s.channelHandler("tracking_status", s.handleTrackingStatus))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// channelHandler wraps an API handler with authentication, channel
// resolution and request metrics.
func (s *Server) channelHandler(operation string, h func(w http.ResponseWriter, r *http.Request, channel marketplace.Channel)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if !s.authorized(r) {
			s.writeError(w, r, operation, shipper.ErrValidation.
				WithMessage("missing or invalid credentials"), http.StatusUnauthorized)
			return
		}

		channel, err := s.channels.Lookup(r.PathValue("channel"))
		if err != nil {
			s.writeError(w, r, operation, err, 0)
			return
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r, channel)
		s.metrics.RecordRequest(operation, "UPS", fmt.Sprintf("%d", sw.status), time.Since(start).Seconds())
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.secret == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) == 1
}

func (s *Server) handleValidateAddress(w http.ResponseWriter, r *http.Request, _ marketplace.Channel) {
	var addr shipper.Address
	if err := decodeJSON(r, &addr); err != nil {
		s.writeError(w, r, "validate_address", err, 0)
		return
	}
	validated, err := s.service.ValidateAddress(r.Context(), addr)
	if err != nil {
		s.writeError(w, r, "validate_address", err, 0)
		return
	}
	writeJSON(w, http.StatusOK, validated)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request, channel marketplace.Channel) {
	var req shipper.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, "quote", err, 0)
		return
	}
	rates, err := s.service.GetQuotes(r.Context(), channel.Partner, req)
	if err != nil {
		s.writeError(w, r, "quote", err, 0)
		return
	}
	if rates == nil {
		rates = []shipper.RateView{}
	}
	writeJSON(w, http.StatusOK, rates)
}

func (s *Server) handleShipment(w http.ResponseWriter, r *http.Request, _ marketplace.Channel) {
	var req shipper.ShipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, "shipment", err, 0)
		return
	}
	view, err := s.service.CreateShipment(r.Context(), req)
	if err != nil {
		s.writeError(w, r, "shipment", err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleTrackingStatus(w http.ResponseWriter, r *http.Request, _ marketplace.Channel) {
	view, err := s.service.TrackingStatus(r.Context(), r.URL.Query().Get("trackingNumber"))
	if err != nil {
		s.writeError(w, r, "tracking_status", err, 0)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeError maps a workflow error onto its HTTP representation. The
// statusOverride is used where the transport status differs from the
// error's own mapping, such as auth failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, operation string, err error, statusOverride int) {
	status := shipper.HTTPStatus(err)
	if statusOverride != 0 {
		status = statusOverride
	}

	var shipErr *shipper.Error
	body := errorBody{Code: "internal", Message: "internal error"}
	if errors.As(err, &shipErr) {
		body = errorBody{
			Code:    shipErr.Code,
			Message: shipErr.Message,
			Detail:  shipper.ErrorDetail(err),
		}
	}

	if status >= 500 {
		s.logger.Ctx(r.Context()).Error("request failed",
			zap.String("operation", operation),
			zap.Int("status", status),
			zap.Error(err))
	} else {
		s.logger.Ctx(r.Context()).Warn("request rejected",
			zap.String("operation", operation),
			zap.Int("status", status),
			zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: body})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return shipper.ErrValidation.WithMessage("invalid JSON: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusWriter records the response status for metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
