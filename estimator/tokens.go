package estimator

// EstimateTokens estimates the CLIP token count of a prompt string using
// the rule of thumb of ~4 characters per token. The frontend uses this to
// prefill the prompt_length field; it is a hint, not a real tokenizer.
func EstimateTokens(prompt string) int {
	if len(prompt) == 0 {
		return 0
	}
	return (len(prompt) + 3) / 4
}

// EstimateTokensClamped estimates the token count and clamps it to the CLIP
// context window [0, MaxPromptTokens]. The second return reports whether
// clamping occurred.
func EstimateTokensClamped(prompt string) (int, bool) {
	tokens := EstimateTokens(prompt)
	if tokens > MaxPromptTokens {
		return MaxPromptTokens, true
	}
	return tokens, false
}
