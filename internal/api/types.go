package api

// KnowledgeType names an editable knowledge-base text blob.
type KnowledgeType string

// Knowledge-base blob types supported by the backend.
const (
	KnowledgePrices       KnowledgeType = "prices"
	KnowledgeInstructions KnowledgeType = "instructions"
)

// defaultChatType is assumed when the server omits chat_type.
const defaultChatType = "user"

// Chat is a conversation snapshot as returned by the list endpoint.
// Analyzed is a client-side session flag and never travels on the wire.
type Chat struct {
	ChatID       int64  `json:"chat_id"`
	ChatTitle    string `json:"chat_title"`
	ChatType     string `json:"chat_type"`
	MessageCount int    `json:"message_count"`

	Analyzed bool `json:"-"`
}

type chatsResponse struct {
	Chats []Chat `json:"chats"`
}

// ListChatsParams filters the chat list to a time window.
// Hours is always sent; StartDate/EndDate are optional explicit bounds in
// the wire timestamp format.
type ListChatsParams struct {
	Hours     int
	StartDate string
	EndDate   string
}

// AnalyzeRequest asks the server to analyze one chat over a time window.
type AnalyzeRequest struct {
	ChatID       int64  `json:"chat_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	ForceRefresh bool   `json:"force_refresh"`
}

// AnalysisResult is the outcome of a server-side chat analysis.
type AnalysisResult struct {
	Confidence int    `json:"confidence"`
	Report     string `json:"report"`
	FromCache  bool   `json:"from_cache"`
}

type replyRequest struct {
	ChatID    int64  `json:"chat_id"`
	ReplyText string `json:"reply_text"`
}

// ReplyResult is the messaging integration's delivery acknowledgement.
type ReplyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AnalyticsReport holds aggregate statistics for the stats panel.
type AnalyticsReport struct {
	TotalChats    int     `json:"total_chats"`
	TotalMessages int     `json:"total_messages"`
	AnalyzedChats int     `json:"analyzed_chats"`
	RepliesSent   int     `json:"replies_sent"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// ReportFile is a downloaded binary report.
type ReportFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

type knowledgeResponse struct {
	Content string `json:"content"`
}

type knowledgeUpdateRequest struct {
	Type    KnowledgeType `json:"type"`
	Content string        `json:"content"`
}

// AuthStatus reports the backend's messaging session state.
type AuthStatus struct {
	Authorized bool   `json:"authorized"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
