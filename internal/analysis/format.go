package analysis

import "strconv"

// TypeLabel names the date mode of a stored analysis.
func TypeLabel(isCustom bool) string {
	if isCustom {
		return "Customizado"
	}
	return "Padrão"
}

// FormatScore renders an IEDI score on its 0-10 scale with two decimals.
func FormatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score, 'f', 2, 64)
}

// FormatVolume renders a mention volume with one decimal.
func FormatVolume(volume *float64) string {
	if volume == nil {
		return "-"
	}
	return strconv.FormatFloat(*volume, 'f', 1, 64)
}
