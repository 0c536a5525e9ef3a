package utils

import "time"

// ReportTimestampLayout is the layout of the "Generated on" line.
const ReportTimestampLayout = "2006-01-02 15:04"

// ReportTimestamp formats t for report headers.
func ReportTimestamp(t time.Time) string {
	return t.Format(ReportTimestampLayout)
}

// FormatDuration formats a duration for log and CLI output.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
