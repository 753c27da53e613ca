package webui

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/chat-insight/internal/api"
	"github.com/lueurxax/chat-insight/internal/dashboard"
	"github.com/lueurxax/chat-insight/internal/daterange"
)

// Rate limiting constants.
const (
	rateLimitRequests = 30
	rateLimitBurst    = 60
	rateLimitWindow   = time.Minute
)

// HTTP header constants.
const (
	headerContentType        = "Content-Type"
	headerContentDisposition = "Content-Disposition"
)

// Form field names.
const (
	fieldChatID  = "chat_id"
	fieldPreset  = "preset"
	fieldFrom    = "from"
	fieldTo      = "to"
	fieldReply   = "reply_text"
	fieldAction  = "action"
	fieldKBType  = "type"
	fieldContent = "content"
)

// Log field constants.
const (
	logFieldRoute     = "route"
	logFieldRequestID = "request_id"
)

const (
	noticeReplySent = "Reply sent."
	noticeKBSaved   = "Knowledge base saved."

	defaultReportContentType = "application/octet-stream"
)

// Handler serves the dashboard web UI.
type Handler struct {
	ctrl     *dashboard.Controller
	renderer *Renderer
	logger   *zerolog.Logger

	// IP-based rate limiting
	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex
}

// NewHandler creates a dashboard web UI handler.
func NewHandler(ctrl *dashboard.Controller, logger *zerolog.Logger) (*Handler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	return &Handler{
		ctrl:     ctrl,
		renderer: renderer,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}, nil
}

// Register mounts the UI routes on a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.wrap("index", h.handleIndex))
	mux.HandleFunc("/refresh", h.wrap("refresh", h.handleRefresh))
	mux.HandleFunc("/select", h.wrap("select", h.handleSelect))
	mux.HandleFunc("/analyze", h.wrap("analyze", h.handleAnalyze))
	mux.HandleFunc("/reply", h.wrap("reply", h.handleReply))
	mux.HandleFunc("/kb", h.wrap("kb", h.handleKnowledge))
	mux.HandleFunc("/download", h.wrap("download", h.handleDownload))
}

// wrap applies the shared request plumbing: security headers, per-IP rate
// limiting, request-id logging, and latency observation.
func (h *Handler) wrap(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		defer func() {
			LatencyHistogram.Observe(time.Since(start).Seconds())
		}()

		w.Header().Set("X-Robots-Tag", "noindex, nofollow")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "private, no-store")

		if !h.allowRequest(clientIP(r)) {
			HitsTotal.WithLabelValues(route, StatusLimited).Inc()
			h.renderErrorPage(w, http.StatusTooManyRequests, "Too Many Requests", "Please wait before trying again.")

			return
		}

		requestID := uuid.NewString()
		h.logger.Debug().
			Str(logFieldRoute, route).
			Str(logFieldRequestID, requestID).
			Str("method", r.Method).
			Msg("ui request")

		fn(w, r)
		HitsTotal.WithLabelValues(route, StatusOK).Inc()
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.renderErrorPage(w, http.StatusNotFound, "Not Found", "This page does not exist.")

		return
	}

	h.renderPage(w, "")
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	from := strings.TrimSpace(r.FormValue(fieldFrom))
	to := strings.TrimSpace(r.FormValue(fieldTo))

	if from != "" && to != "" {
		start, err := daterange.ParseFlexible(from)
		if err != nil {
			h.renderErrorPage(w, http.StatusBadRequest, "Bad Request", err.Error())

			return
		}

		end, err := daterange.ParseFlexible(to)
		if err != nil {
			h.renderErrorPage(w, http.StatusBadRequest, "Bad Request", err.Error())

			return
		}

		h.ctrl.SetCustomRange(start, end)
	} else {
		h.ctrl.SetPreset(daterange.Preset(r.FormValue(fieldPreset)))
	}

	// Failures land in the operation state and render inline.
	_ = h.ctrl.LoadChats(r.Context())

	h.renderPage(w, "")
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	chatID, ok := h.chatID(w, r)
	if !ok {
		return
	}

	h.ctrl.SelectChat(chatID)
	h.renderPage(w, "")
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	chatID, ok := h.chatID(w, r)
	if !ok {
		return
	}

	h.ctrl.SelectChat(chatID)
	_, _ = h.ctrl.AnalyzeChat(r.Context(), chatID)

	h.renderPage(w, "")
}

func (h *Handler) handleReply(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	chatID, ok := h.chatID(w, r)
	if !ok {
		return
	}

	text := r.FormValue(fieldReply)

	notice := ""
	if err := h.ctrl.SendReply(r.Context(), chatID, text); err == nil && strings.TrimSpace(text) != "" {
		notice = noticeReplySent
	}

	h.renderPage(w, notice)
}

func (h *Handler) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	kbType := api.KnowledgeType(r.FormValue(fieldKBType))

	notice := ""

	switch r.FormValue(fieldAction) {
	case "save":
		if err := h.ctrl.SaveKnowledgeBase(r.Context(), kbType, r.FormValue(fieldContent)); err == nil {
			notice = noticeKBSaved
		}
	default:
		_, _ = h.ctrl.LoadKnowledgeBase(r.Context(), kbType)
	}

	h.renderPage(w, notice)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	file, err := h.ctrl.FetchReport(r.Context())
	if err != nil {
		// The failed state renders inline on the dashboard.
		h.renderPage(w, "")

		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = defaultReportContentType
	}

	name := dashboard.ReportFileName(file, time.Now())

	w.Header().Set(headerContentType, contentType)
	w.Header().Set(headerContentDisposition, `attachment; filename="`+name+`"`)

	if _, err := w.Write(file.Data); err != nil {
		h.logger.Error().Err(err).Msg("failed to stream report")
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, notice string) {
	w.Header().Set(headerContentType, "text/html; charset=utf-8")

	data := BuildPageData(h.ctrl.Snapshot(), notice)

	if err := h.renderer.RenderDashboard(w, data); err != nil {
		// Can't render the error page since we already started writing.
		h.logger.Error().Err(err).Msg("failed to render dashboard")
	}
}

func (h *Handler) renderErrorPage(w http.ResponseWriter, code int, title, message string) {
	w.Header().Set(headerContentType, "text/html; charset=utf-8")
	w.WriteHeader(code)

	if err := h.renderer.RenderError(w, &ErrorData{Code: code, Title: title, Message: message}); err != nil {
		h.logger.Error().Err(err).Msg("failed to render error page")
	}
}

func (h *Handler) chatID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	chatID, err := strconv.ParseInt(r.FormValue(fieldChatID), 10, 64)
	if err != nil {
		h.renderErrorPage(w, http.StatusBadRequest, "Bad Request", "Invalid chat id.")

		return 0, false
	}

	return chatID, true
}

func (h *Handler) allowRequest(ip string) bool {
	h.limitersMu.Lock()

	limiter, ok := h.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rateLimitWindow/rateLimitRequests), rateLimitBurst)
		h.limiters[ip] = limiter
	}

	h.limitersMu.Unlock()

	return limiter.Allow()
}

func (h *Handler) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		h.renderErrorPage(w, http.StatusMethodNotAllowed, "Method Not Allowed", "This action requires a form post.")

		return false
	}

	return true
}

func clientIP(r *http.Request) string {
	// Check X-Forwarded-For header (common with reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
