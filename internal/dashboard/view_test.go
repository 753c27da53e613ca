package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lueurxax/chat-insight/internal/api"
)

func TestSnapshotEmptyList(t *testing.T) {
	ctrl := newTestController(&stubAPI{}, &memorySaver{})

	view := ctrl.Snapshot()
	require.True(t, view.Empty)
	require.Empty(t, view.Chats)
}

func TestSnapshotChatItems(t *testing.T) {
	stub := &stubAPI{chats: []api.Chat{
		{ChatID: 101, ChatTitle: "Alice", ChatType: "user", MessageCount: 1234},
		{ChatID: 102, ChatTitle: "Deal group", ChatType: "group", MessageCount: 7, Analyzed: true},
	}}
	ctrl := newTestController(stub, &memorySaver{})
	require.NoError(t, ctrl.LoadChats(context.Background()))
	ctrl.SelectChat(102)

	view := ctrl.Snapshot()
	require.False(t, view.Empty)
	require.Len(t, view.Chats, 2)

	alice := view.Chats[0]
	require.Equal(t, "Alice", alice.Title)
	require.Equal(t, "1,234", alice.MessageCountLabel)
	require.Equal(t, BadgePending, alice.Badge)
	require.False(t, alice.Selected)

	group := view.Chats[1]
	require.Equal(t, BadgeReplied, group.Badge)
	require.True(t, group.Selected)
	require.Equal(t, "group", group.TypeLabel)
}

func TestSnapshotCacheLabel(t *testing.T) {
	tests := []struct {
		name      string
		fromCache bool
		want      string
	}{
		{name: "fresh result", fromCache: false, want: CacheLabelFresh},
		{name: "cached result", fromCache: true, want: CacheLabelCached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAPI{
				chats:    []api.Chat{{ChatID: 101}},
				analysis: &api.AnalysisResult{Confidence: 50, Report: "r", FromCache: tt.fromCache},
			}
			ctrl := newTestController(stub, &memorySaver{})
			require.NoError(t, ctrl.LoadChats(context.Background()))

			_, err := ctrl.AnalyzeChat(context.Background(), 101)
			require.NoError(t, err)

			require.Equal(t, tt.want, ctrl.Snapshot().Analysis.CacheLabel)
		})
	}
}

func TestRenderTextEmptyList(t *testing.T) {
	ctrl := newTestController(&stubAPI{}, &memorySaver{})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, ctrl.Snapshot()))

	out := buf.String()
	require.Contains(t, out, emptyListPlaceholder)
	require.NotContains(t, out, "Status") // no table header without rows
}

func TestRenderTextChatTable(t *testing.T) {
	stub := &stubAPI{
		chats:    []api.Chat{{ChatID: 101, ChatTitle: "Alice", ChatType: "user", MessageCount: 12}},
		analysis: &api.AnalysisResult{Confidence: 87, Report: "Looks promising."},
	}
	ctrl := newTestController(stub, &memorySaver{})
	require.NoError(t, ctrl.LoadChats(context.Background()))
	ctrl.SelectChat(101)

	_, err := ctrl.AnalyzeChat(context.Background(), 101)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, ctrl.Snapshot()))

	out := buf.String()
	require.Contains(t, out, "Alice")
	require.Contains(t, out, BadgeReplied)
	require.Contains(t, out, "confidence 87%")
	require.Contains(t, out, "Looks promising.")

	// Selected row carries the marker.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Alice") {
			require.True(t, strings.HasPrefix(line, selectedMarker), "selected chat row should start with %q: %q", selectedMarker, line)
		}
	}
}

func TestRenderTextInlineError(t *testing.T) {
	stub := &stubAPI{listErr: &api.StatusError{Code: 500, Message: "backend down"}}
	ctrl := newTestController(stub, &memorySaver{})

	_ = ctrl.LoadChats(context.Background())

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, ctrl.Snapshot()))
	require.Contains(t, buf.String(), "backend down")
}
