package dashboard

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lueurxax/chat-insight/internal/api"
	"github.com/lueurxax/chat-insight/internal/daterange"
)

// Status badge and cache label text.
const (
	BadgeReplied = "Replied"
	BadgePending = "Pending"

	CacheLabelCached = "Cached"
	CacheLabelFresh  = "Fresh"
)

// countPrinter formats message counts with locale-aware grouping.
var countPrinter = message.NewPrinter(language.English)

// View is a pure snapshot of the dashboard state. Renderers translate it
// into platform UI without touching controller internals, which keeps the
// state-to-view mapping testable without a browser or terminal.
type View struct {
	GeneratedAt    time.Time
	Preset         daterange.Preset
	WindowLabel    string
	Chats          []ChatItem
	Empty          bool
	SelectedChatID int64
	Analysis       *AnalysisView
	Knowledge      *KnowledgeView
	Stats          *api.AnalyticsReport
	Auth           *api.AuthStatus
	Ops            map[Operation]OpState
}

// ChatItem is one renderable chat row.
type ChatItem struct {
	ID                int64
	Title             string
	TypeLabel         string
	MessageCount      int
	MessageCountLabel string
	Badge             string
	Selected          bool
	Analyzed          bool
}

// AnalysisView is the renderable form of the current analysis result.
type AnalysisView struct {
	ConfidenceLabel string
	CacheLabel      string
	Report          string
}

// KnowledgeView carries the currently loaded knowledge-base blob.
type KnowledgeView struct {
	Type    api.KnowledgeType
	Content string
}

// Snapshot builds a view of the current state.
func (c *Controller) Snapshot() View {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	window := daterange.PresetRange(c.st.preset, c.now())
	if c.st.preset == daterange.PresetCustom && !c.st.customStart.IsZero() && !c.st.customEnd.IsZero() {
		window = daterange.Range{Start: c.st.customStart, End: c.st.customEnd}
	}

	view := View{
		GeneratedAt:    c.now(),
		Preset:         c.st.preset,
		WindowLabel:    fmt.Sprintf("%s — %s", daterange.FormatDisplay(window.Start), daterange.FormatDisplay(window.End)),
		Chats:          buildChatItems(c.st.chats, c.st.selectedChatID),
		Empty:          len(c.st.chats) == 0,
		SelectedChatID: c.st.selectedChatID,
		Analysis:       buildAnalysisView(c.st.current),
		Stats:          c.st.stats,
		Auth:           c.st.auth,
		Ops:            copyOps(c.st.ops),
	}

	if c.st.kbContent != "" {
		view.Knowledge = &KnowledgeView{Type: c.st.kbType, Content: c.st.kbContent}
	}

	return view
}

func buildChatItems(chats []api.Chat, selectedID int64) []ChatItem {
	items := make([]ChatItem, 0, len(chats))

	for _, chat := range chats {
		badge := BadgePending
		if chat.Analyzed {
			badge = BadgeReplied
		}

		items = append(items, ChatItem{
			ID:                chat.ChatID,
			Title:             chat.ChatTitle,
			TypeLabel:         chat.ChatType,
			MessageCount:      chat.MessageCount,
			MessageCountLabel: countPrinter.Sprintf("%d", chat.MessageCount),
			Badge:             badge,
			Selected:          chat.ChatID == selectedID,
			Analyzed:          chat.Analyzed,
		})
	}

	return items
}

func buildAnalysisView(result *api.AnalysisResult) *AnalysisView {
	if result == nil {
		return nil
	}

	// ForceRefresh makes "Cached" unreachable in practice, but the label is
	// kept for servers that ignore the flag.
	cacheLabel := CacheLabelFresh
	if result.FromCache {
		cacheLabel = CacheLabelCached
	}

	return &AnalysisView{
		ConfidenceLabel: fmt.Sprintf("%d%%", result.Confidence),
		CacheLabel:      cacheLabel,
		Report:          result.Report,
	}
}

func copyOps(ops map[Operation]OpState) map[Operation]OpState {
	copied := make(map[Operation]OpState, len(ops))
	for op, st := range ops {
		copied[op] = st
	}

	return copied
}

// OpState reports the recorded state of one operation, defaulting to idle.
func (v View) OpState(op Operation) OpState {
	if st, ok := v.Ops[op]; ok {
		return st
	}

	return OpState{Status: StatusIdle}
}
