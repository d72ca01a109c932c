package services

// charsPerToken is the rough characters-per-token ratio used to estimate
// excerpt cost against the context budget. Exact tokenization is model
// specific; the budget only needs a stable, conservative estimate.
const charsPerToken = 4

// EstimateTokens estimates the token count of text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
