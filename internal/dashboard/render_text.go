package dashboard

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Plain-text rendering constants.
const (
	emptyListPlaceholder = "No chats in the selected period."
	selectedMarker       = ">"

	tabwriterMinWidth = 2
	tabwriterPadding  = 2
)

// RenderText writes a plain-text rendition of the view. It is the terminal
// counterpart of the web renderer: both consume the same view records.
func RenderText(w io.Writer, v View) error {
	fmt.Fprintf(w, "Period: %s\n\n", v.WindowLabel)

	if err := renderChatTable(w, v); err != nil {
		return err
	}

	renderAnalysis(w, v.Analysis)
	renderStats(w, v)
	renderAuth(w, v)
	renderErrors(w, v)

	return nil
}

func renderChatTable(w io.Writer, v View) error {
	if v.Empty {
		fmt.Fprintln(w, emptyListPlaceholder)

		return nil
	}

	tw := tabwriter.NewWriter(w, tabwriterMinWidth, 0, tabwriterPadding, ' ', 0)
	fmt.Fprintln(tw, " \tID\tTitle\tMessages\tType\tStatus")

	for _, chat := range v.Chats {
		marker := " "
		if chat.Selected {
			marker = selectedMarker
		}

		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			marker, chat.ID, chat.Title, chat.MessageCountLabel, chat.TypeLabel, chat.Badge)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush chat table: %w", err)
	}

	return nil
}

func renderAnalysis(w io.Writer, analysis *AnalysisView) {
	if analysis == nil {
		return
	}

	fmt.Fprintf(w, "\nAnalysis (%s, confidence %s):\n%s\n", analysis.CacheLabel, analysis.ConfidenceLabel, analysis.Report)
}

func renderStats(w io.Writer, v View) {
	if v.Stats == nil {
		return
	}

	fmt.Fprintf(w, "\nTotals: %d chats, %d messages, %d analyzed, %d replies, avg confidence %.1f\n",
		v.Stats.TotalChats, v.Stats.TotalMessages, v.Stats.AnalyzedChats, v.Stats.RepliesSent, v.Stats.AvgConfidence)
}

func renderAuth(w io.Writer, v View) {
	if v.Auth == nil {
		return
	}

	if v.Auth.Authorized {
		fmt.Fprintf(w, "\nMessaging session: authorized (%s)\n", v.Auth.Phone)

		return
	}

	fmt.Fprintf(w, "\nMessaging session: not authorized. %s\n", v.Auth.Message)
}

func renderErrors(w io.Writer, v View) {
	for _, op := range []Operation{OpLoadChats, OpAnalyze, OpReply, OpDownload, OpKnowledge, OpStats, OpAuth} {
		st := v.OpState(op)
		if st.Status == StatusFailed {
			fmt.Fprintf(w, "\n[%s] error: %s\n", op, st.Err)
		}
	}
}
