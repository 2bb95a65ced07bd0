package domain

import "time"

// Urgency is the ordered severity tag on an announcement.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
	UrgencyUrgent Urgency = "URGENT"
)

// PublicationStatus is shared by announcements and articles.
type PublicationStatus string

const (
	StatusDraft     PublicationStatus = "DRAFT"
	StatusPublished PublicationStatus = "PUBLISHED"
	StatusArchived  PublicationStatus = "ARCHIVED"
)

// AudienceAll is the universal audience tag. Only announcements carrying it
// are broadly targeted enough for the public alert digest.
const AudienceAll = "ALL"

// Announcement is an alert source record as read by the discovery core,
// joined with its optional location city and owning organization name.
type Announcement struct {
	ID           string
	Title        string
	Summary      *string
	Body         string
	Urgency      Urgency
	Status       PublicationStatus
	Audience     []string
	LocationCity *string
	OrgName      *string
	Slug         *string
	CreatedAt    time.Time
}
