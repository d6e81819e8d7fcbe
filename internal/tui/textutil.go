package tui

// truncateEnd cuts s to limit runes, ending in an ellipsis when shortened.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which is what matters for links.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	left := (limit - 1) / 2
	right := limit - 1 - left
	return string(r[:left]) + "…" + string(r[len(r)-right:])
}
