package helpers

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
)

// Date formats the timestamp in the provided layout (defaults to 2006-01-02 15:04 MST).
func Date(ts time.Time, layout string) string {
	if ts.IsZero() {
		return ""
	}
	if layout == "" {
		layout = "2006-01-02 15:04 MST"
	}
	return ts.In(time.Local).Format(layout)
}

// Relative returns a coarse "time ago" string.
func Relative(ts time.Time) string {
	return relativeTo(ts, time.Now())
}

func relativeTo(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	diff := now.Sub(ts)
	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	}
	if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return ts.Format("2006-01-02")
}

// ProgressStyle returns the inline width of a progress bar fill.
func ProgressStyle(p checklist.Progress) template.CSS {
	pct := min(max(p.Percent, 0), 100)
	return template.CSS(fmt.Sprintf("width: %d%%", pct))
}

// NavClass returns navigation button classes.
func NavClass(active bool) string {
	if active {
		return "nav-item active"
	}
	return "nav-item"
}

// PanelClass returns panel section classes.
func PanelClass(active bool) string {
	if active {
		return "panel active"
	}
	return "panel"
}

// FlashClass maps a flash kind onto its banner classes.
func FlashClass(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "warning":
		return "flash flash-warning"
	case "error":
		return "flash flash-error"
	default:
		return "flash flash-success"
	}
}

// ImageURI marks a stored avatar data URI as safe for an img src. Anything
// other than a base64 PNG, JPEG or GIF data URI yields "".
func ImageURI(raw string) template.URL {
	for _, mime := range []string{"image/png", "image/jpeg", "image/gif"} {
		if strings.HasPrefix(raw, "data:"+mime+";base64,") {
			return template.URL(raw)
		}
	}
	return ""
}
