package domain

import (
	"time"
	"unicode/utf8"
)

// AlertLevel is the rendered severity of an alert digest.
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical"
	AlertWarning  AlertLevel = "warning"
)

// excerptBudget is the character budget for synthesized excerpts.
const excerptBudget = 100

// locationFallback marks alerts with no location and no organization.
const locationFallback = "National"

// AlertDigest is a rendered public alert entry.
type AlertDigest struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Excerpt  string  `json:"excerpt"`
	Level    string  `json:"level"`
	Location string  `json:"location"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Slug     *string `json:"slug,omitempty"`
}

// DigestFromAnnouncement renders an eligible announcement into an alert
// digest. now anchors the relative date.
func DigestFromAnnouncement(a Announcement, now time.Time) AlertDigest {
	return AlertDigest{
		ID:       a.ID,
		Title:    a.Title,
		Excerpt:  alertExcerpt(a),
		Level:    string(levelForUrgency(a.Urgency)),
		Location: alertLocation(a),
		Date:     RelativeDate(a.CreatedAt, now),
		Type:     "announcement",
		Slug:     a.Slug,
	}
}

// levelForUrgency maps selected urgencies to display levels. Only HIGH and
// URGENT announcements are ever selected, so the mapping is total.
func levelForUrgency(u Urgency) AlertLevel {
	if u == UrgencyUrgent {
		return AlertCritical
	}
	return AlertWarning
}

func alertExcerpt(a Announcement) string {
	if a.Summary != nil && *a.Summary != "" {
		return *a.Summary
	}
	return Truncate(a.Body, excerptBudget)
}

func alertLocation(a Announcement) string {
	if a.LocationCity != nil && *a.LocationCity != "" {
		return *a.LocationCity
	}
	if a.OrgName != nil && *a.OrgName != "" {
		return *a.OrgName
	}
	return locationFallback
}

// Truncate cuts s to at most budget characters, appending an ellipsis when
// anything was cut. Counts runes, not bytes, so accented text is not split.
func Truncate(s string, budget int) string {
	if utf8.RuneCountInString(s) <= budget {
		return s
	}
	runes := []rune(s)
	return string(runes[:budget]) + "…"
}

// RelativeDate renders t as a small set of human buckets relative to now.
func RelativeDate(t, now time.Time) string {
	age := now.Sub(t)
	switch {
	case age < time.Hour:
		return "less than an hour ago"
	case age < 24*time.Hour:
		return "today"
	case age < 48*time.Hour:
		return "yesterday"
	default:
		return t.Format("02 Jan 2006")
	}
}
