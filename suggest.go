package expenses

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// suggestionModel is the Gemini model used for category suggestions. Flash is
// plenty for a classification task and keeps the calls cheap.
const suggestionModel = "gemini-2.0-flash"

// buildCategoryGuidance tells the model which categories already exist, so
// suggestions land in the user's taxonomy instead of inventing a parallel one.
func buildCategoryGuidance(existing []string, txType TxType) string {
	if len(existing) == 0 {
		return ""
	}
	label := "expense"
	if txType == Income {
		label = "income"
	}
	return fmt.Sprintf(
		"Please use one of the following %s categories if appropriate: %s. "+
			"If none are suitable, you may suggest a new, concise category.",
		label, strings.Join(existing, ", "))
}

// buildSuggestionPrompt assembles the full prompt: role, contract, an example
// per transaction type, and the names to categorize. The contract is a single
// JSON object mapping each name to a category, nothing else.
func buildSuggestionPrompt(merchants []string, guidance string, txType TxType) string {
	var names strings.Builder
	for _, name := range merchants {
		fmt.Fprintf(&names, "- %s\n", name)
	}

	context := "merchant names for expenses"
	exampleInput := "- Starbucks\n- Whole Foods\n- Shell\n- Netflix"
	exampleOutput := `{
  "Starbucks": "Coffee",
  "Whole Foods": "Groceries",
  "Shell": "Fuel",
  "Netflix": "Subscriptions"
}`
	if txType == Income {
		context = "income sources"
		exampleInput = "- ACME Corporation\n- PayPal Transfer\n- Dividend Payment"
		exampleOutput = `{
  "ACME Corporation": "Salary/Wages",
  "PayPal Transfer": "Freelance Income",
  "Dividend Payment": "Dividends"
}`
	}

	return fmt.Sprintf(`You are an AI assistant that categorizes %s for personal finance tracking.
Given a list of names, return a single JSON object that maps each name
to a concise, relevant category. %s

Example Input:
%s

Example Output:
`+"```json\n%s\n```"+`

Here is the list to categorize:
%s
Return only the JSON object.
`, context, guidance, exampleInput, exampleOutput, names.String())
}

// parseSuggestionResponse strips the markdown fences models like to add and
// decodes the JSON map.
func parseSuggestionResponse(text string) (map[string]string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	suggestions := map[string]string{}
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil {
		return nil, fmt.Errorf("cannot parse suggestion response: %w", err)
	}
	return suggestions, nil
}

// SuggestCategories asks Gemini for one category per merchant name. The
// existing names steer the suggestions toward the user's taxonomy.
//
// The caller owns the client so tests and commands can decide how to
// authenticate, the usual way is genai.NewClient with the GEMINI_API_KEY
// environment variable set.
func SuggestCategories(ctx context.Context, client *genai.Client, merchants []string, txType TxType, existing []string) (map[string]string, error) {
	if len(merchants) == 0 {
		return map[string]string{}, nil
	}

	prompt := buildSuggestionPrompt(merchants, buildCategoryGuidance(existing, txType), txType)
	logger.Info().Int("merchants", len(merchants)).Str("model", suggestionModel).Msg("requesting category suggestions")

	resp, err := client.Models.GenerateContent(ctx, suggestionModel, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot get category suggestions: %w", err)
	}
	suggestions, err := parseSuggestionResponse(resp.Text())
	if err != nil {
		return nil, err
	}
	logger.Info().Int("suggestions", len(suggestions)).Msg("received category suggestions")
	return suggestions, nil
}
