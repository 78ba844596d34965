package scoring

// StarLevel maps a percentage score to the 0-5 SLIPTA star rating.
//
// Bands: <55 → 0, 55-64 → 1, 65-74 → 2, 75-84 → 3, 85-94 → 4, ≥95 → 5.
// The function is monotonically non-decreasing in percentage.
func StarLevel(percentage float64) int {
	switch {
	case percentage >= 95:
		return 5
	case percentage >= 85:
		return 4
	case percentage >= 75:
		return 3
	case percentage >= 65:
		return 2
	case percentage >= 55:
		return 1
	default:
		return 0
	}
}
