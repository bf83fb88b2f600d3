package domain

import "fmt"

// FormatRate prints a rate at board precision. Sub-unit rates such as
// JPY/CNY carry two extra digits so a tick is still visible.
func FormatRate(rate float64) string {
	if rate >= 1 {
		return fmt.Sprintf("%.4f", rate)
	}
	return fmt.Sprintf("%.6f", rate)
}
