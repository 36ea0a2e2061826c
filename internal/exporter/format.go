package exporter

import "fmt"

// formatFloat formats a value for CSV output with a fixed number of
// decimal places, so 104.5 appears as 104.5000 alongside 104.5671.
func formatFloat(f float64, places int) string {
	return fmt.Sprintf("%.*f", places, f)
}

// formatOptFloat formats a nullable percentage; absent values stay
// blank rather than zero.
func formatOptFloat(f *float64, places int) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f, places)
}

// formatInt formats an int for CSV output.
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
