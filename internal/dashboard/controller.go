// Package dashboard owns the client-side state of the chat-analysis
// dashboard and orchestrates backend calls on behalf of its renderers.
//
// The controller holds the loaded chat list, the active date filter, the
// current analysis result, and the selected chat id. Every operation records
// an explicit per-operation status (idle, in-flight, succeeded, failed) that
// renderers translate into loading indicators and inline error messages.
// Failures are never retried and never fatal: each operation returns the
// controller to a runnable state regardless of outcome.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/lueurxax/chat-insight/internal/api"
	"github.com/lueurxax/chat-insight/internal/daterange"
)

// minKnowledgeLength is the local minimum for knowledge-base content,
// enforced before any network call.
const minKnowledgeLength = 10

const (
	downloadNameFmt  = "analytics_report_%s.xlsx"
	downloadDateOnly = "2006-01-02"

	logFieldChatID = "chat_id"
	logFieldOp     = "op"
)

// Service is the backend API surface the controller depends on. *api.Client
// satisfies it; tests substitute a double.
type Service interface {
	ListChats(ctx context.Context, params api.ListChatsParams) ([]api.Chat, error)
	Analyze(ctx context.Context, req api.AnalyzeRequest) (*api.AnalysisResult, error)
	SendReply(ctx context.Context, chatID int64, text string) (*api.ReplyResult, error)
	AnalyticsReport(ctx context.Context) (*api.AnalyticsReport, error)
	DownloadReport(ctx context.Context) (*api.ReportFile, error)
	KnowledgeBase(ctx context.Context, kbType api.KnowledgeType) (string, error)
	UpdateKnowledgeBase(ctx context.Context, kbType api.KnowledgeType, content string) error
	AuthStatus(ctx context.Context) (*api.AuthStatus, error)
}

// ReportSaver persists a downloaded report and returns its final location.
type ReportSaver interface {
	Save(name string, data []byte) (string, error)
}

// Config wires the controller's dependencies.
type Config struct {
	API    Service
	Saver  ReportSaver
	Logger *zerolog.Logger

	// Preset is the initial date filter. Empty selects the 24-hour preset.
	Preset daterange.Preset

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Controller owns dashboard state and drives backend calls.
type Controller struct {
	api    Service
	saver  ReportSaver
	logger *zerolog.Logger
	now    func() time.Time

	st *state
}

// New creates a controller. The API service and saver are injected so tests
// can substitute doubles; there are no package-level singletons.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	preset := cfg.Preset
	if preset == "" {
		preset = daterange.PresetDay
	}

	return &Controller{
		api:    cfg.API,
		saver:  cfg.Saver,
		logger: logger,
		now:    now,
		st:     newState(preset),
	}
}

// SetPreset switches the active date filter to a relative preset.
func (c *Controller) SetPreset(p daterange.Preset) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	c.st.preset = p
}

// SetCustomRange switches the filter to an explicit window.
func (c *Controller) SetCustomRange(start, end time.Time) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	c.st.preset = daterange.PresetCustom
	c.st.customStart = start
	c.st.customEnd = end
}

// SelectChat records the chosen chat id and nothing else; it never fetches.
// A selection pointing at a chat that later drops out of the filtered list
// is deliberately kept, matching the original dashboard's behavior.
func (c *Controller) SelectChat(chatID int64) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	c.st.selectedChatID = chatID
}

// LoadChats fetches the chat list for the active window and replaces the
// in-memory array. On failure the previous list is left untouched and the
// error is recorded in the operation state.
func (c *Controller) LoadChats(ctx context.Context) error {
	c.begin(OpLoadChats)

	chats, err := c.api.ListChats(ctx, c.listParams())
	if err != nil {
		c.fail(OpLoadChats, err)

		return err
	}

	c.st.mu.Lock()
	c.st.replaceChats(chats)
	c.st.mu.Unlock()

	c.finish(OpLoadChats)
	c.logger.Debug().Int("count", len(chats)).Msg("chat list loaded")

	return nil
}

// AnalyzeChat requests server-side analysis of one chat over the active
// window, always bypassing the server-side cache. On success the result
// replaces the current analysis wholesale and the chat's Analyzed flag is
// flipped; on failure neither is touched.
func (c *Controller) AnalyzeChat(ctx context.Context, chatID int64) (*api.AnalysisResult, error) {
	c.begin(OpAnalyze)

	window := c.window()

	result, err := c.api.Analyze(ctx, api.AnalyzeRequest{
		ChatID:       chatID,
		StartDate:    daterange.FormatISO(window.Start),
		EndDate:      daterange.FormatISO(window.End),
		ForceRefresh: true,
	})
	if err != nil {
		c.fail(OpAnalyze, err)

		return nil, err
	}

	c.st.mu.Lock()
	c.st.current = result
	c.st.markAnalyzed(chatID)
	c.st.mu.Unlock()

	c.finish(OpAnalyze)
	c.logger.Info().Int64(logFieldChatID, chatID).Int("confidence", result.Confidence).Msg("chat analyzed")

	return result, nil
}

// SendReply submits trimmed reply text for delivery. Blank or
// whitespace-only text aborts silently: no request is sent and no operation
// state changes.
func (c *Controller) SendReply(ctx context.Context, chatID int64, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	c.begin(OpReply)

	result, err := c.api.SendReply(ctx, chatID, trimmed)
	if err != nil {
		c.fail(OpReply, err)

		return err
	}

	if !result.Success {
		err := fmt.Errorf("%w: %s", ErrReplyRejected, result.Message)
		c.fail(OpReply, err)

		return err
	}

	c.finish(OpReply)
	c.logger.Info().Int64(logFieldChatID, chatID).Msg("reply sent")

	return nil
}

// FetchReport retrieves the binary report without persisting it. A
// JSON-typed response body is an error channel, not a file; the API client
// converts it before the payload reaches any consumer.
func (c *Controller) FetchReport(ctx context.Context) (*api.ReportFile, error) {
	c.begin(OpDownload)

	file, err := c.api.DownloadReport(ctx)
	if err != nil {
		c.fail(OpDownload, err)

		return nil, err
	}

	c.finish(OpDownload)

	return file, nil
}

// DownloadAnalytics fetches the binary report and saves it under a dated
// file name.
func (c *Controller) DownloadAnalytics(ctx context.Context) (string, error) {
	file, err := c.FetchReport(ctx)
	if err != nil {
		return "", err
	}

	path, err := c.saver.Save(ReportFileName(file, c.now()), file.Data)
	if err != nil {
		wrapped := fmt.Errorf("save report: %w", err)
		c.fail(OpDownload, wrapped)

		return "", wrapped
	}

	c.finish(OpDownload)
	c.logger.Info().Str("path", path).Msg("analytics report saved")

	return path, nil
}

// ReportFileName picks the server-supplied name or a dated default.
func ReportFileName(file *api.ReportFile, now time.Time) string {
	if file.Filename != "" {
		return file.Filename
	}

	return fmt.Sprintf(downloadNameFmt, now.Format(downloadDateOnly))
}

// LoadKnowledgeBase fetches a named text blob into the editable state.
func (c *Controller) LoadKnowledgeBase(ctx context.Context, kbType api.KnowledgeType) (string, error) {
	if err := validateKnowledgeType(kbType); err != nil {
		c.fail(OpKnowledge, err)

		return "", err
	}

	c.begin(OpKnowledge)

	content, err := c.api.KnowledgeBase(ctx, kbType)
	if err != nil {
		c.fail(OpKnowledge, err)

		return "", err
	}

	c.st.mu.Lock()
	c.st.kbType = kbType
	c.st.kbContent = content
	c.st.mu.Unlock()

	c.finish(OpKnowledge)

	return content, nil
}

// SaveKnowledgeBase persists a named text blob. Content shorter than the
// 10-character minimum is rejected locally before any network call.
func (c *Controller) SaveKnowledgeBase(ctx context.Context, kbType api.KnowledgeType, content string) error {
	if err := validateKnowledgeType(kbType); err != nil {
		c.fail(OpKnowledge, err)

		return err
	}

	if utf8.RuneCountInString(strings.TrimSpace(content)) < minKnowledgeLength {
		c.fail(OpKnowledge, ErrContentTooShort)

		return ErrContentTooShort
	}

	c.begin(OpKnowledge)

	if err := c.api.UpdateKnowledgeBase(ctx, kbType, content); err != nil {
		c.fail(OpKnowledge, err)

		return err
	}

	c.st.mu.Lock()
	c.st.kbType = kbType
	c.st.kbContent = content
	c.st.mu.Unlock()

	c.finish(OpKnowledge)
	c.logger.Info().Str("type", string(kbType)).Msg("knowledge base saved")

	return nil
}

// RefreshStats fetches the aggregate statistics panel data.
func (c *Controller) RefreshStats(ctx context.Context) (*api.AnalyticsReport, error) {
	c.begin(OpStats)

	report, err := c.api.AnalyticsReport(ctx)
	if err != nil {
		c.fail(OpStats, err)

		return nil, err
	}

	c.st.mu.Lock()
	c.st.stats = report
	c.st.mu.Unlock()

	c.finish(OpStats)

	return report, nil
}

// RefreshAuth fetches the backend's messaging session state.
func (c *Controller) RefreshAuth(ctx context.Context) (*api.AuthStatus, error) {
	c.begin(OpAuth)

	status, err := c.api.AuthStatus(ctx)
	if err != nil {
		c.fail(OpAuth, err)

		return nil, err
	}

	c.st.mu.Lock()
	c.st.auth = status
	c.st.mu.Unlock()

	c.finish(OpAuth)

	return status, nil
}

// listParams builds the chat list query for the active window. Hours and
// explicit ISO bounds are both sent, so the worked window is reproducible
// regardless of which one the server honors.
func (c *Controller) listParams() api.ListChatsParams {
	window := c.window()

	hours := int(window.End.Sub(window.Start) / time.Hour)
	if hours <= 0 {
		hours = daterange.PresetDay.Hours()
	}

	return api.ListChatsParams{
		Hours:     hours,
		StartDate: daterange.FormatISO(window.Start),
		EndDate:   daterange.FormatISO(window.End),
	}
}

// window resolves the active filter to concrete bounds.
func (c *Controller) window() daterange.Range {
	c.st.mu.Lock()
	preset := c.st.preset
	start := c.st.customStart
	end := c.st.customEnd
	c.st.mu.Unlock()

	if preset == daterange.PresetCustom && !start.IsZero() && !end.IsZero() {
		return daterange.Range{Start: start, End: end}
	}

	return daterange.PresetRange(preset, c.now())
}

func (c *Controller) begin(op Operation) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	c.st.ops[op] = OpState{Status: StatusInFlight}
}

func (c *Controller) finish(op Operation) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	c.st.ops[op] = OpState{Status: StatusSucceeded}
}

func (c *Controller) fail(op Operation, err error) {
	c.st.mu.Lock()
	c.st.ops[op] = OpState{Status: StatusFailed, Err: err.Error()}
	c.st.mu.Unlock()

	c.logger.Error().Err(err).Str(logFieldOp, string(op)).Msg("operation failed")
}

func validateKnowledgeType(kbType api.KnowledgeType) error {
	switch kbType {
	case api.KnowledgePrices, api.KnowledgeInstructions:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKnowledgeType, kbType)
	}
}
