package utils

// Token estimates for prompt budgeting. The heuristic is ~4 characters per
// token, which is close enough for cost previews across providers.

// CountTokens estimates the tokens in text; any non-empty text counts as at least 1.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if n := len([]rune(text)) / 4; n > 0 {
		return n
	}
	return 1
}

// TruncateToTokenLimit cuts text to roughly limit tokens.
func TruncateToTokenLimit(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if max := limit * 4; max < len(runes) {
		return string(runes[:max])
	}
	return text
}

// TokenBreakdown estimates tokens per labeled prompt section.
func TokenBreakdown(sections map[string]string) map[string]int {
	out := make(map[string]int, len(sections))
	for k, v := range sections {
		out[k] = CountTokens(v)
	}
	return out
}
