package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// Extraction kinds understood by Extractor.
const (
	KindInterest = "interest"
	KindLocation = "location"
	KindBudget   = "budget"
)

// Unclear is returned when the model cannot find the requested field.
const Unclear = "UNCLEAR"

const maxExtractInput = 500

// Extractor pulls single structured fields out of free text with an LLM.
type Extractor struct {
	client Client
	model  string
	logger *logging.Logger
}

func NewExtractor(client Client, model string, logger *logging.Logger) *Extractor {
	if client == nil {
		panic("llm: extractor client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{client: client, model: model, logger: logger}
}

// Extract returns the value of kind found in freeText, or Unclear. The value
// is normalized: interests are lower-case enum values, budgets are digits.
func (e *Extractor) Extract(ctx context.Context, kind, freeText string) (string, error) {
	tmpl, ok := extractorPrompts[kind]
	if !ok {
		return "", fmt.Errorf("llm: unknown extraction kind %q", kind)
	}
	freeText = strings.TrimSpace(freeText)
	if freeText == "" {
		return Unclear, nil
	}
	if runes := []rune(freeText); len(runes) > maxExtractInput {
		freeText = string(runes[:maxExtractInput])
	}

	resp, err := e.client.Complete(ctx, Request{
		Model:       e.model,
		System:      []string{extractorSystemPrompt},
		Messages:    []ChatMessage{{Role: RoleUser, Content: fmt.Sprintf(tmpl, freeText)}},
		MaxTokens:   32,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("llm: extract %s: %w", kind, err)
	}

	value := cleanValue(resp.Text)
	normalized := normalizeValue(kind, value)
	e.logger.Debug("llm extraction", "kind", kind, "raw", value, "value", normalized)
	return normalized, nil
}

func cleanValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[:i]
	}
	return strings.Trim(strings.TrimSpace(raw), "\"'`.")
}

func normalizeValue(kind, value string) string {
	if value == "" || strings.EqualFold(value, Unclear) {
		return Unclear
	}
	switch kind {
	case KindInterest:
		v := strings.ToLower(value)
		switch v {
		case "buy", "rent", "commercial", "plot":
			return v
		}
		return Unclear
	case KindBudget:
		digits := strings.NewReplacer(",", "", " ", "", "₹", "").Replace(value)
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || n <= 0 {
			return Unclear
		}
		return strconv.FormatInt(n, 10)
	}
	return value
}
