package dashboard

// Operation names a user-triggered dashboard action. Each operation owns an
// independent status slot; nothing prevents two operations from being
// in flight at the same time, and the last one to finish wins the shared
// view regions it touches.
type Operation string

// Dashboard operations.
const (
	OpLoadChats Operation = "load_chats"
	OpAnalyze   Operation = "analyze"
	OpReply     Operation = "send_reply"
	OpDownload  Operation = "download"
	OpKnowledge Operation = "knowledge_base"
	OpStats     Operation = "stats"
	OpAuth      Operation = "auth"
)

// Status is the lifecycle state of one operation.
type Status int

// Operation statuses.
const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSucceeded
	StatusFailed
)

// String returns the status name for logs and labels.
func (s Status) String() string {
	switch s {
	case StatusInFlight:
		return "in-flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusIdle:
		return "idle"
	default:
		return "idle"
	}
}

// OpState is the recorded outcome of an operation's last run.
type OpState struct {
	Status Status
	Err    string
}
