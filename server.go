package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/4O4-Not-F0und/gura-langid/detection"
	"github.com/4O4-Not-F0und/gura-langid/detection/detector"
	"github.com/4O4-Not-F0und/gura-langid/langdetect"
	"github.com/4O4-Not-F0und/gura-langid/metrics"
)

const (
	streamReadTimeout  = 60 * time.Second
	streamPingInterval = 30 * time.Second
)

type ServerConfig struct {
	Listen       string `yaml:"listen"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

func newServerConfig() ServerConfig {
	return ServerConfig{
		Listen:       ":8080",
		MaxBodyBytes: 1 << 20,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Language   string              `json:"language"`
	Confidence float64             `json:"confidence"`
	Detector   string              `json:"detector,omitempty"`
	Ranking    []langdetect.Result `json:"ranking,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the detection service over HTTP.
type Server struct {
	service      *detection.DetectService
	maxBodyBytes int64
	mu           *sync.RWMutex
	logger       *logrus.Entry
}

func newServer(conf ServerConfig, service *detection.DetectService) *Server {
	return &Server{
		service:      service,
		maxBodyBytes: conf.MaxBodyBytes,
		mu:           &sync.RWMutex{},
		logger:       logrus.WithField("component", "server"),
	}
}

// Reload swaps the detection service used by new requests.
func (s *Server) Reload(service *detection.DetectService) {
	s.mu.Lock()
	s.service = service
	s.mu.Unlock()
}

func (s *Server) detectService() *detection.DetectService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/detect", s.instrument("detect", s.handleDetect))
	mux.Handle("GET /api/v1/languages", s.instrument("languages", s.handleLanguages))
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	mux.Handle("GET /healthz", s.instrument("healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	}))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Serve(listen string) {
	s.logger.Infof("API server listening on %s", listen)
	if err := http.ListenAndServe(listen, s.Handler()); err != nil {
		logrus.Fatalf("Failed to start API server: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.MetricHTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func requestTraceId(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return fmt.Sprintf("%x", md5.Sum(fmt.Appendf(nil, "%s%d", r.RemoteAddr, time.Now().UnixNano())))
}

// detectErrorStatus maps a detection error to an HTTP status: rejected text
// is the client's problem, everything else is ours.
func detectErrorStatus(err error) int {
	if detector.CheckWeakError(err) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusServiceUnavailable
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	traceId := requestTraceId(r)
	logger := s.logger.WithField("trace_id", traceId)

	resp, name, err := s.detectService().Detect(r.Context(), detector.DetectRequest{
		Text:    req.Text,
		TraceId: traceId,
	})
	if err != nil {
		logger.WithField("detector_name", name).Infof("detection failed: %v", err)
		writeJSON(w, detectErrorStatus(err), errorResponse{Error: err.Error()})
		return
	}

	logger.WithFields(logrus.Fields{
		"detector_name":   name,
		"lang":            resp.Language,
		"lang_confidence": resp.Confidence,
	}).Debug("detected")
	writeJSON(w, http.StatusOK, detectResponse{
		Language:   resp.Language,
		Confidence: resp.Confidence,
		Detector:   name,
		Ranking:    resp.Ranking,
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"languages": s.detectService().Languages(),
	})
}

// handleStream accumulates every text message of a connection in one
// classifier and answers each with the current ranking.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	stream, name, err := s.detectService().NewStream()
	if err != nil {
		metrics.MetricHTTPRequests.WithLabelValues("stream", strconv.Itoa(http.StatusServiceUnavailable)).Inc()
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("failed to upgrade connection to websocket: %v", err)
		return
	}
	defer conn.Close()
	metrics.MetricHTTPRequests.WithLabelValues("stream", strconv.Itoa(http.StatusSwitchingProtocols)).Inc()

	metrics.MetricStreamConnections.Inc()
	defer metrics.MetricStreamConnections.Dec()

	logger := s.logger.WithFields(logrus.Fields{
		"trace_id":      requestTraceId(r),
		"detector_name": name,
	})
	logger.Debug("stream opened")

	conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	writeMu := &sync.Mutex{}
	go func() {
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("stream closed: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		stream.Append(string(data))
		var msg any
		if ranking, err := stream.DetectAll(); err != nil {
			msg = errorResponse{Error: err.Error()}
		} else {
			msg = detectResponse{
				Language:   ranking[0].Language,
				Confidence: ranking[0].Probability,
				Detector:   name,
				Ranking:    ranking,
			}
		}

		writeMu.Lock()
		err = conn.WriteJSON(msg)
		writeMu.Unlock()
		if err != nil {
			logger.Warnf("write stream response failed: %v", err)
			return
		}
	}
}
