package dashboard

import (
	"sync"
	"time"

	"github.com/lueurxax/chat-insight/internal/api"
	"github.com/lueurxax/chat-insight/internal/daterange"
)

// state is the controller's mutable view of the world. It is the single
// shared resource between operations; the mutex guards it because renderers
// (web handlers in particular) call operations concurrently.
type state struct {
	mu sync.Mutex

	chats          []api.Chat
	preset         daterange.Preset
	customStart    time.Time
	customEnd      time.Time
	selectedChatID int64
	current        *api.AnalysisResult
	kbType         api.KnowledgeType
	kbContent      string
	stats          *api.AnalyticsReport
	auth           *api.AuthStatus
	ops            map[Operation]OpState
}

func newState(preset daterange.Preset) *state {
	return &state{
		preset: preset,
		kbType: api.KnowledgePrices,
		ops:    make(map[Operation]OpState),
	}
}

// replaceChats swaps in a fresh snapshot list, carrying the session-only
// Analyzed flag over by chat id when the same chat reappears.
func (s *state) replaceChats(chats []api.Chat) {
	analyzed := make(map[int64]bool, len(s.chats))

	for _, chat := range s.chats {
		if chat.Analyzed {
			analyzed[chat.ChatID] = true
		}
	}

	for i := range chats {
		if analyzed[chats[i].ChatID] {
			chats[i].Analyzed = true
		}
	}

	s.chats = chats
}

// markAnalyzed flips the Analyzed flag for the given chat id.
func (s *state) markAnalyzed(chatID int64) {
	for i := range s.chats {
		if s.chats[i].ChatID == chatID {
			s.chats[i].Analyzed = true

			return
		}
	}
}
