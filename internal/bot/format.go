package bot

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
)

// escapeHTML escapes special HTML characters for Telegram HTML parse mode.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}

// formatExpenseLine renders one expense as "• 14:05 ₹15.00 Taxi".
// withCategory appends the category in brackets.
func formatExpenseLine(e models.Expense, loc *time.Location, withCategory bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "• %s <b>%s</b> %s",
		e.Timestamp.In(loc).Format("15:04"),
		models.FormatAmount(e.Amount),
		escapeHTML(e.Title))
	if withCategory {
		fmt.Fprintf(&sb, " [%s]", escapeHTML(e.Category))
	}
	if e.HasReceipt() {
		sb.WriteString(" 📎")
	}
	if e.Notes != "" {
		fmt.Fprintf(&sb, "\n  <i>%s</i>", escapeHTML(e.Notes))
	}
	return sb.String()
}
