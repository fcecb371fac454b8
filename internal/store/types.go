package store

import (
	"fmt"
	"time"
)

// Group is a chat group the monitor is configured to poll.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Message is a scraped chat message. The tuple (GroupName, Sender, Text,
// Timestamp) identifies it; re-scraping the same tuple is a no-op.
type Message struct {
	ID              int64
	GroupName       string
	Sender          string
	Text            string
	Timestamp       string // display string as rendered by the source page
	Picture         []byte
	HasPicture      bool // set by queries, which leave Picture unloaded
	IsReply         bool
	RepliedToText   string
	RepliedToSender string
	SentAt          time.Time // parsed from Timestamp when possible, zero otherwise
	ScrapedAt       time.Time
}

// CatalogItem is a product the seller lists for matching against buying requests.
type CatalogItem struct {
	ID           int64     `json:"id"`
	Product      string    `json:"product"`
	Make         string    `json:"make,omitempty"`
	Type         string    `json:"type,omitempty"`
	Year         string    `json:"year,omitempty"`
	Price        int64     `json:"price_ksh"`
	OtherDetails string    `json:"other_details,omitempty"`
	CreatedAt    time.Time `json:"-"`
}

// Scope tags which population a fraud report belongs to.
type Scope string

const (
	// ScopeLocal reports are entered by the local user and never leave agent.db.
	ScopeLocal Scope = "local"
	// ScopeCommunity reports live in the shared store and are visible to every consumer.
	ScopeCommunity Scope = "community"
)

// FraudReport flags a phone number. PhoneNumber is stored in canonical form
// and is unique within its store.
type FraudReport struct {
	ID          int64
	Scope       Scope
	PhoneNumber string
	Reason      string
	ReportedBy  string
	ReportedAt  time.Time
}

func (r FraudReport) String() string {
	return fmt.Sprintf("%s reported by %s: %s", r.PhoneNumber, r.ReportedBy, r.Reason)
}

// CallLog is an append-only record of a customer call.
type CallLog struct {
	ID           int64
	CustomerName string
	PhoneNumber  string
	Notes        string
	LoggedAt     time.Time
}

// Order selects the direction of a message listing.
type Order int

const (
	// OldestFirst orders by id ascending (the order messages were stored).
	OldestFirst Order = iota
	// NewestFirst orders by send time when known, else by store order, descending.
	NewestFirst
)

// MessageFilter narrows QueryMessages. Zero values mean "no constraint".
type MessageFilter struct {
	AfterID     int64
	Group       string
	RepliesOnly bool
	// RepliedTo is a coarse SQL pre-filter on replied_to_sender; callers refine
	// the result with phone.Matches.
	RepliedTo   string
	WithPicture bool
	Limit       int
	Order       Order
}
