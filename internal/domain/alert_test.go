package domain

import (
	"strings"
	"testing"
	"time"
)

func strptr(s string) *string { return &s }

func TestLevelForUrgency(t *testing.T) {
	if got := levelForUrgency(UrgencyUrgent); got != AlertCritical {
		t.Errorf("URGENT: want critical, got %s", got)
	}
	if got := levelForUrgency(UrgencyHigh); got != AlertWarning {
		t.Errorf("HIGH: want warning, got %s", got)
	}
}

func TestDigestFromAnnouncement_UsesSummary(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	a := Announcement{
		ID:        "a1",
		Title:     "Alerte Choléra",
		Summary:   strptr("Cas confirmés dans la région du Littoral"),
		Body:      strings.Repeat("x", 500),
		Urgency:   UrgencyUrgent,
		CreatedAt: now.Add(-30 * time.Minute),
	}

	d := DigestFromAnnouncement(a, now)
	if d.Excerpt != "Cas confirmés dans la région du Littoral" {
		t.Errorf("excerpt should use the stored summary, got %q", d.Excerpt)
	}
	if d.Level != "critical" {
		t.Errorf("want level critical, got %q", d.Level)
	}
	if d.Type != "announcement" {
		t.Errorf("want type announcement, got %q", d.Type)
	}
}

func TestDigestFromAnnouncement_SynthesizesExcerpt(t *testing.T) {
	now := time.Now()
	a := Announcement{
		ID:        "a2",
		Title:     "Campagne de vaccination",
		Body:      strings.Repeat("é", 150),
		Urgency:   UrgencyHigh,
		CreatedAt: now,
	}

	d := DigestFromAnnouncement(a, now)
	if !strings.HasSuffix(d.Excerpt, "…") {
		t.Errorf("synthesized excerpt must end with ellipsis, got %q", d.Excerpt)
	}
	// 100 runes + ellipsis
	if got := len([]rune(d.Excerpt)); got != 101 {
		t.Errorf("want 101 runes, got %d", got)
	}
}

func TestDigestFromAnnouncement_LocationFallbacks(t *testing.T) {
	now := time.Now()
	base := Announcement{ID: "a3", Title: "t", Body: "b", Urgency: UrgencyHigh, CreatedAt: now}

	withCity := base
	withCity.LocationCity = strptr("Douala")
	withCity.OrgName = strptr("Hôpital Laquintinie")
	if d := DigestFromAnnouncement(withCity, now); d.Location != "Douala" {
		t.Errorf("city must win, got %q", d.Location)
	}

	withOrg := base
	withOrg.OrgName = strptr("Hôpital Laquintinie")
	if d := DigestFromAnnouncement(withOrg, now); d.Location != "Hôpital Laquintinie" {
		t.Errorf("org name is the second fallback, got %q", d.Location)
	}

	if d := DigestFromAnnouncement(base, now); d.Location != "National" {
		t.Errorf("want National fallback, got %q", d.Location)
	}
}

func TestTruncate_ShortStringUntouched(t *testing.T) {
	if got := Truncate("court", 100); got != "court" {
		t.Errorf("got %q", got)
	}
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Minute, "less than an hour ago"},
		{59*time.Minute + 59*time.Second, "less than an hour ago"},
		{2 * time.Hour, "today"},
		{23 * time.Hour, "today"},
		{30 * time.Hour, "yesterday"},
		{47 * time.Hour, "yesterday"},
		{72 * time.Hour, "12 Jun 2025"},
	}
	for _, tt := range tests {
		if got := RelativeDate(now.Add(-tt.age), now); got != tt.want {
			t.Errorf("age %v: want %q, got %q", tt.age, tt.want, got)
		}
	}
}
