// Package agentv1 declares the salesagent.v1.Agent control service spoken
// between salesd and its clients over the profile's Unix socket.
package agentv1

import (
	"time"

	"github.com/ebosoh/sales-agent/internal/pipeline"
)

// Empty is the request or response of calls that carry no data.
type Empty struct{}

type Group struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type AddGroupRequest struct {
	Name string `json:"name"`
}

type RemoveGroupRequest struct {
	Name string `json:"name"`
}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type CatalogItem struct {
	ID           int64  `json:"id"`
	Product      string `json:"product"`
	Make         string `json:"make,omitempty"`
	Type         string `json:"type,omitempty"`
	Year         string `json:"year,omitempty"`
	PriceKSh     int64  `json:"price_ksh"`
	OtherDetails string `json:"other_details,omitempty"`
}

type AddCatalogItemRequest struct {
	Item CatalogItem `json:"item"`
}

type AddCatalogItemResponse struct {
	ID int64 `json:"id"`
}

type RemoveCatalogItemRequest struct {
	ID int64 `json:"id"`
}

type ListCatalogResponse struct {
	Items []CatalogItem `json:"items"`
}

// FraudReport is a flagged phone number. Scope is "local" or "community".
type FraudReport struct {
	Scope       string    `json:"scope"`
	PhoneNumber string    `json:"phone_number"`
	Reason      string    `json:"reason"`
	ReportedBy  string    `json:"reported_by"`
	ReportedAt  time.Time `json:"reported_at"`
}

// ReportFraudRequest flags a number locally. With Share set the local
// report is also copied to the community list.
type ReportFraudRequest struct {
	PhoneNumber string `json:"phone_number"`
	Reason      string `json:"reason"`
	Share       bool   `json:"share,omitempty"`
}

type ReportFraudResponse struct {
	Recorded bool `json:"recorded"`
	Shared   bool `json:"shared"`
}

type ShareFraudRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type ShareFraudResponse struct {
	Shared bool `json:"shared"`
}

type ListFraudReportsResponse struct {
	Reports []FraudReport `json:"reports"`
}

type CheckNumberRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type CheckNumberResponse struct {
	Number    string       `json:"number"`
	Flagged   bool         `json:"flagged"`
	Local     *FraudReport `json:"local,omitempty"`
	Community *FraudReport `json:"community,omitempty"`
	// CommunityChecked is false when the community list was unreachable.
	CommunityChecked bool `json:"community_checked"`
}

type CallLog struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	PhoneNumber  string    `json:"phone_number"`
	Notes        string    `json:"notes"`
	LoggedAt     time.Time `json:"logged_at"`
}

type LogCallRequest struct {
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	Notes        string `json:"notes"`
}

type LogCallResponse struct {
	ID int64 `json:"id"`
}

type ListCallLogsResponse struct {
	Logs []CallLog `json:"logs"`
}

// MonitorStatusResponse describes the scraping session.
type MonitorStatusResponse struct {
	State string    `json:"state"`
	Group string    `json:"group,omitempty"`
	Since time.Time `json:"since"`
	// LastError is the fatal error that ended the previous session.
	LastError string `json:"last_error,omitempty"`
	Messages  int64  `json:"messages"`
}

type Message struct {
	ID              int64     `json:"id"`
	Group           string    `json:"group"`
	Sender          string    `json:"sender"`
	Text            string    `json:"text"`
	Timestamp       string    `json:"timestamp"`
	HasPicture      bool      `json:"has_picture"`
	IsReply         bool      `json:"is_reply"`
	RepliedToText   string    `json:"replied_to_text,omitempty"`
	RepliedToSender string    `json:"replied_to_sender,omitempty"`
	SentAt          time.Time `json:"sent_at,omitzero"`
}

type GetPictureRequest struct {
	MessageID int64 `json:"message_id"`
}

type GetPictureResponse struct {
	PNG []byte `json:"png"`
}

// RepliesRequest lists replies to Me. An empty Me uses the daemon's
// configured identity.
type RepliesRequest struct {
	Me string `json:"me,omitempty"`
}

type Reply struct {
	Message    Message             `json:"message"`
	Extraction pipeline.Extraction `json:"extraction"`
	Risk       string              `json:"risk"`
}

type RepliesResponse struct {
	Rows []Reply `json:"rows"`
}

type PopularRequest struct {
	Limit int `json:"limit,omitempty"`
}

type Product struct {
	Message    Message             `json:"message"`
	Extraction pipeline.Extraction `json:"extraction"`
}

type PopularResponse struct {
	Rows []Product `json:"rows"`
}

type Match struct {
	Request Message     `json:"request"`
	Item    CatalogItem `json:"item"`
}

type MatchesResponse struct {
	Rows []Match `json:"rows"`
}

// WatchStatusRequest selects event kinds by prefix. No prefix means every
// monitor and fraud event.
type WatchStatusRequest struct {
	Prefixes []string `json:"prefixes,omitempty"`
}

// StatusEvent is one entry of the status stream.
type StatusEvent struct {
	EventID          string `json:"event_id"`
	Profile          string `json:"profile"`
	OccurredAtUnixMs int64  `json:"occurred_at_unix_ms"`
	Kind             string `json:"kind"`
	Text             string `json:"text"`
	State            string `json:"state,omitempty"`
	Group            string `json:"group,omitempty"`
}
