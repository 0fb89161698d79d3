package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"google.golang.org/genai"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
)

// MaxTitleLength is the longest expense title embedded in a prompt.
const MaxTitleLength = 120

const (
	suggestTimeout     = 10 * time.Second
	maxReasoningLength = 300
	maxOutputTokens    = 300
	temperature        = 0.2

	systemInstruction = "You are a JSON API. Respond with ONLY one valid JSON object."
)

// Errors returned by SuggestCategory. API failures are wrapped as-is.
var (
	ErrNotInitialized  = errors.New("gemini client not initialized")
	ErrEmptyTitle      = errors.New("title is required")
	ErrNoCategories    = errors.New("no categories available")
	ErrInvalidResponse = errors.New("invalid Gemini response")
	ErrUnknownCategory = errors.New("suggested category not in available categories")
)

// CategorySuggestion is the model's pick for an expense title.
type CategorySuggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SuggestCategory asks Gemini to pick one of categories for an expense title.
// The returned category is spelled exactly as in categories.
func (c *Client) SuggestCategory(ctx context.Context, title string, categories []string) (*CategorySuggestion, error) {
	if c == nil || c.generator == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	log := logger.Log.With().Str("title", logger.SanitizeText(title)).Logger()

	ctx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(buildCategoryPrompt(SanitizeForPrompt(title, MaxTitleLength), categories), genai.RoleUser),
	}

	resp, err := c.generator.GenerateContent(ctx, c.model, contents, suggestionConfig(categories))
	if err != nil {
		log.Error().Err(err).Msg("SuggestCategory: Gemini API call failed")
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	suggestion, err := parseSuggestion(resp)
	if err != nil {
		log.Warn().Err(err).Msg("SuggestCategory: unusable response")
		return nil, err
	}

	i := slices.IndexFunc(categories, func(cat string) bool {
		return strings.EqualFold(cat, strings.TrimSpace(suggestion.Category))
	})
	if i < 0 {
		log.Warn().Str("suggested_category", suggestion.Category).Msg("SuggestCategory: unknown category")
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, suggestion.Category)
	}
	suggestion.Category = categories[i]

	log.Debug().
		Str("category", suggestion.Category).
		Float64("confidence", suggestion.Confidence).
		Msg("SuggestCategory: matched category")

	return suggestion, nil
}

// suggestionConfig constrains the reply to a JSON object whose category is
// one of categories.
func suggestionConfig(categories []string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxOutputTokens,
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {
					Type:        genai.TypeString,
					Enum:        categories,
					Description: "The most appropriate category from the provided list",
				},
				"confidence": {
					Type:        genai.TypeNumber,
					Description: "Confidence score between 0 and 1",
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "Brief explanation for the categorization",
				},
			},
			Required: []string{"category", "confidence"},
		},
	}
}

// parseSuggestion decodes the JSON object in resp and checks its confidence.
func parseSuggestion(resp *genai.GenerateContentResponse) (*CategorySuggestion, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: no response from Gemini", ErrInvalidResponse)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: no text content in response", ErrInvalidResponse)
	}
	raw := extractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON found in response", ErrInvalidResponse)
	}

	var s CategorySuggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %w", ErrInvalidResponse, err)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence out of range: %f", ErrInvalidResponse, s.Confidence)
	}
	s.Reasoning = sanitizeReasoning(s.Reasoning)
	return &s, nil
}

func buildCategoryPrompt(title string, categories []string) string {
	return fmt.Sprintf(`Categorize this expense: "%s"

Available categories:
- %s

Rules:
- Choose the MOST appropriate category from the list
- "Travel" for taxi, fuel, train, bus, flights, hotels
- "Food" for meals, snacks, groceries, coffee
- "Utility" for electricity, water, internet, phone bills, rent
- "Staff" for wages, salaries, and payments to helpers
- Higher confidence (0.8-1.0) for obvious categories, lower (0.3-0.6) for ambiguous ones

Return JSON only:
{"category": "exact category name", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`,
		title, strings.Join(categories, "\n- "))
}

// extractJSON returns the outermost braced span of text, or "".
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// SanitizeForPrompt strips characters that could break the prompt structure,
// collapses whitespace, and truncates to maxLength runes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.NewReplacer(`"`, `'`, "`", "'", "\x00", "").Replace(input)
	return truncateRunes(strings.Join(strings.Fields(input), " "), maxLength)
}

func sanitizeReasoning(reasoning string) string {
	return truncateRunes(strings.Join(strings.Fields(reasoning), " "), maxReasoningLength)
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return strings.TrimSpace(string(r[:n]))
	}
	return s
}
