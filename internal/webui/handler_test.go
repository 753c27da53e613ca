package webui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/chat-insight/internal/api"
	"github.com/lueurxax/chat-insight/internal/dashboard"
)

// backendStub fakes the analysis backend over httptest.
type backendStub struct {
	mux *http.ServeMux

	reportData     []byte
	reportErr      string
	knowledge      map[api.KnowledgeType]string
	lastReplyText  string
	lastSavedKB    string
	analyzeReport  string
	analyzedChatID int64
}

func newBackendStub() *backendStub {
	stub := &backendStub{
		mux:           http.NewServeMux(),
		knowledge:     map[api.KnowledgeType]string{api.KnowledgePrices: "base prices"},
		analyzeReport: "Customer asked about pricing.",
	}

	stub.mux.HandleFunc("/api/chats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"chats": []map[string]any{
			{"chat_id": 101, "chat_title": "Support Group", "chat_type": "group", "message_count": 1234},
			{"chat_id": 102, "chat_title": "Alice", "chat_type": "user", "message_count": 7},
		}})
	})
	stub.mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		var req api.AnalyzeRequest

		_ = json.NewDecoder(r.Body).Decode(&req)
		stub.analyzedChatID = req.ChatID

		writeJSON(w, map[string]any{"confidence": 85, "report": stub.analyzeReport, "from_cache": false})
	})
	stub.mux.HandleFunc("/api/send_reply", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ReplyText string `json:"reply_text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		stub.lastReplyText = req.ReplyText

		writeJSON(w, map[string]any{"success": true, "message": "sent"})
	})
	stub.mux.HandleFunc("/api/analytics_report", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"total_chats": 12, "total_messages": 3456, "analyzed_chats": 5, "replies_sent": 3, "avg_confidence": 81.5})
	})
	stub.mux.HandleFunc("/api/analytics_download", func(w http.ResponseWriter, _ *http.Request) {
		if stub.reportErr != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": stub.reportErr})

			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="analytics_report_2024-01-08.xlsx"`)
		_, _ = w.Write(stub.reportData)
	})
	stub.mux.HandleFunc("/api/knowledge_base", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req struct {
				Type    api.KnowledgeType `json:"type"`
				Content string            `json:"content"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			stub.knowledge[req.Type] = req.Content
			stub.lastSavedKB = req.Content

			writeJSON(w, map[string]any{"success": true})

			return
		}

		writeJSON(w, map[string]any{"content": stub.knowledge[api.KnowledgeType(r.URL.Query().Get("type"))]})
	})
	stub.mux.HandleFunc("/api/auth/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"authorized": true, "phone": "+15550100"})
	})

	return stub
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestHandler(t *testing.T, stub *backendStub) (*Handler, *http.ServeMux) {
	t.Helper()

	backend := httptest.NewServer(stub.mux)
	t.Cleanup(backend.Close)

	logger := zerolog.Nop()
	ctrl := dashboard.New(dashboard.Config{
		API:    api.New(api.Config{BaseURL: backend.URL}),
		Saver:  &dashboard.DirSaver{Dir: t.TempDir()},
		Logger: &logger,
		Now:    func() time.Time { return time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) },
	})

	handler, err := NewHandler(ctrl, &logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	handler.Register(mux)

	return handler, mux
}

func postForm(mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func TestHandlerRefreshRendersChats(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/refresh", url.Values{"preset": {"168"}})

	require.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	require.Contains(t, page, "Support Group")
	require.Contains(t, page, "1,234")
	require.Contains(t, page, "Alice")
}

func TestHandlerRefreshBadCustomRange(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/refresh", url.Values{"from": {"not a date"}, "to": {"also bad"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Bad Request")
}

func TestHandlerIndexStartsEmpty(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No chats in the selected period.")
	require.Equal(t, "noindex, nofollow", rec.Header().Get("X-Robots-Tag"))
}

func TestHandlerIndexUnknownPath(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerAnalyze(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/analyze", url.Values{"chat_id": {"101"}})

	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 101, stub.analyzedChatID)
	require.Contains(t, rec.Body.String(), "Customer asked about pricing.")
	require.Contains(t, rec.Body.String(), "85%")
}

func TestHandlerAnalyzeInvalidChatID(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/analyze", url.Values{"chat_id": {"abc"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerReply(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/reply", url.Values{"chat_id": {"102"}, "reply_text": {"  thanks for reaching out  "}})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "thanks for reaching out", stub.lastReplyText)
	require.Contains(t, rec.Body.String(), "Reply sent.")
}

func TestHandlerReplyBlankIsSilent(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/reply", url.Values{"chat_id": {"102"}, "reply_text": {"   "}})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, stub.lastReplyText)
	require.NotContains(t, rec.Body.String(), "Reply sent.")
}

func TestHandlerKnowledgeLoadAndSave(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/kb", url.Values{"type": {"prices"}, "action": {"load"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "base prices")

	rec = postForm(mux, "/kb", url.Values{"type": {"prices"}, "action": {"save"}, "content": {"updated price sheet"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "updated price sheet", stub.lastSavedKB)
	require.Contains(t, rec.Body.String(), "Knowledge base saved.")
}

func TestHandlerKnowledgeSaveTooShort(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	rec := postForm(mux, "/kb", url.Values{"type": {"prices"}, "action": {"save"}, "content": {"tiny"}})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, stub.lastSavedKB)
	require.NotContains(t, rec.Body.String(), "Knowledge base saved.")
}

func TestHandlerDownloadStreams(t *testing.T) {
	stub := newBackendStub()
	stub.reportData = []byte("PK\x03\x04 spreadsheet bytes")
	_, mux := newTestHandler(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/download", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "analytics_report_2024-01-08.xlsx")

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, stub.reportData, body)
}

func TestHandlerDownloadUnavailable(t *testing.T) {
	stub := newBackendStub()
	stub.reportErr = "No analytics data available"
	_, mux := newTestHandler(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/download", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No analytics data available")
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	stub := newBackendStub()
	_, mux := newTestHandler(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
