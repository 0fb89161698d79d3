package bot

import (
	"regexp"
	"strings"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
)

// ParsedExpense represents a parsed expense from user input.
type ParsedExpense struct {
	Amount       int64
	Title        string
	CategoryName string
	Notes        string
}

// amountRegex matches a leading amount like "5", "5.50", "5,50" or "₹250".
var amountRegex = regexp.MustCompile(`^₹?\s*(\d+(?:[.,]\d{1,2})?)(?:\s|$)`)

// notesSeparator splits the title part from free-form notes.
const notesSeparator = "|"

// ParseExpenseInput parses free-text input like "250 Taxi Travel | airport run".
// Returns nil if the input cannot be parsed as an expense.
func ParseExpenseInput(input string) *ParsedExpense {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	m := amountRegex.FindStringSubmatch(input)
	if m == nil {
		return nil
	}

	amount, err := models.ParseAmount(m[1])
	if err != nil {
		return nil
	}

	rest := strings.TrimSpace(input[len(m[0]):])
	var notes string
	if idx := strings.Index(rest, notesSeparator); idx != -1 {
		notes = strings.TrimSpace(rest[idx+len(notesSeparator):])
		rest = strings.TrimSpace(rest[:idx])
	}

	if rest == "" {
		return nil
	}

	parsed := &ParsedExpense{
		Amount: amount,
		Title:  rest,
		Notes:  models.TruncateNotes(notes),
	}
	matchCategorySuffix(parsed)
	parsed.Title = truncateTitle(parsed.Title)

	return parsed
}

// ParseAddCommand parses the /add command format:
// /add <amount> <title> [category] [| notes].
func ParseAddCommand(input string) *ParsedExpense {
	return ParseExpenseInput(extractCommandArgs(input, "/add"))
}

// matchCategorySuffix moves a trailing category word from the title into
// CategoryName. A title made only of the category name is left intact.
func matchCategorySuffix(parsed *ParsedExpense) {
	words := strings.Fields(parsed.Title)
	if len(words) < 2 {
		return
	}
	last := words[len(words)-1]
	cat, ok := models.IsKnownCategory(last)
	if !ok {
		return
	}
	parsed.Title = strings.TrimSpace(strings.TrimSuffix(parsed.Title, last))
	parsed.CategoryName = cat
}

func truncateTitle(title string) string {
	r := []rune(title)
	if len(r) <= models.MaxTitleLength {
		return title
	}
	return strings.TrimSpace(string(r[:models.MaxTitleLength]))
}

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}
