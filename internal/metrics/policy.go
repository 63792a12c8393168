package metrics

// Matches applies the match policy to the ranked ids of one image.
// Strict mode accepts only the top id; otherwise any of the first topK ids may
// equal expected. Unresolved ids ("") never match.
func Matches(ids []string, expected string, strict bool, topK int) bool {
	if expected == "" || len(ids) == 0 {
		return false
	}
	if strict {
		return ids[0] == expected
	}
	for _, id := range ids[:min(topK, len(ids))] {
		if id == expected {
			return true
		}
	}
	return false
}

// Percentage is matched/total scaled to 0..100. A zero total yields 0.
func Percentage(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) * 100 / float64(total)
}
