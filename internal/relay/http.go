package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/your-org/alert-relay/pkg/bus"
)

// HTTPHandler exposes the relay's REST endpoints, the dashboard WebSocket,
// and static asset serving.
type HTTPHandler struct {
	service      *Service
	hub          *bus.Hub
	logger       *zap.Logger
	maxSizeBytes int64
	formMemBytes int64
	uploadsDir   string
	uploadsPath  string
	staticDir    string
	router       chi.Router
}

// HandlerConfig carries the wiring the handler needs beyond its collaborators.
// UploadsDir/UploadsPath are empty unless the local-disk backend is active;
// StaticDir is empty when no dashboard assets are served.
type HandlerConfig struct {
	MaxSizeBytes int64
	FormMemBytes int64
	UploadsDir   string
	UploadsPath  string
	StaticDir    string
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(service *Service, hub *bus.Hub, logger *zap.Logger, cfg HandlerConfig) *HTTPHandler {
	h := &HTTPHandler{
		service:      service,
		hub:          hub,
		logger:       logger,
		maxSizeBytes: cfg.MaxSizeBytes,
		formMemBytes: cfg.FormMemBytes,
		uploadsDir:   cfg.UploadsDir,
		uploadsPath:  cfg.UploadsPath,
		staticDir:    cfg.StaticDir,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.handleHealth)
	r.Get("/ws", h.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(2 * time.Minute))
		r.Post("/api/send-alert", h.handleSendAlert)
		r.Post("/api/upload-recording", h.handleUploadRecording)
	})

	if h.uploadsDir != "" && h.uploadsPath != "" {
		fs := http.StripPrefix(h.uploadsPath, http.FileServer(http.Dir(h.uploadsDir)))
		r.Handle(h.uploadsPath+"/*", fs)
	}
	if h.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(h.staticDir)))
	}

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type alertRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *HTTPHandler) handleSendAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	if _, err := h.service.ProcessAlert(r.Context(), *req.Latitude, *req.Longitude); err != nil {
		writeError(w, http.StatusBadRequest, "invalid coordinates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Alert sent successfully",
	})
}

func (h *HTTPHandler) handleUploadRecording(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > 0 && r.ContentLength > h.maxSizeBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	if err := r.ParseMultipartForm(h.formMemBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Debug("upload rejected", zap.Error(ErrMissingFile))
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxSizeBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds max size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	asset, err := h.service.ProcessRecording(r.Context(), file, header.Size, contentType)
	if err != nil {
		h.logger.Error("recording upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store recording")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Recording uploaded successfully",
		"audioUrl": asset.URL,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": msg,
	})
}
