// Package query composes the read views shown to the user from the stores
// and the text pipeline. Views never modify messages or the catalog.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ebosoh/sales-agent/internal/monitor"
	"github.com/ebosoh/sales-agent/internal/phone"
	"github.com/ebosoh/sales-agent/internal/pipeline"
	"github.com/ebosoh/sales-agent/internal/store"
)

// MaxPopular caps the popular view.
const MaxPopular = 50

// SelfLabel is how the client names the user in a quoted message.
const SelfLabel = "You"

var (
	// ErrEmptyCatalog is returned by Matches when there is nothing to match.
	ErrEmptyCatalog = errors.New("catalog is empty")
	// ErrNoIdentity is returned by Replies when the user's identifier is unknown.
	ErrNoIdentity = errors.New("own identifier not set")
	// ErrNoCommunity is returned when sharing without a community store.
	ErrNoCommunity = errors.New("community store unavailable")
)

// Store is the local store as read by the views.
type Store interface {
	QueryMessages(f store.MessageFilter) ([]store.Message, error)
	ListCatalogItems() ([]store.CatalogItem, error)
	ListFraudReports() ([]store.FraudReport, error)
	FindFraudReport(number string) (*store.FraudReport, error)
	InsertFraudReport(r *store.FraudReport) (bool, error)
}

// Pipeline is the text analysis the views depend on.
type Pipeline interface {
	Classify(ctx context.Context, text string) pipeline.Class
	Extract(ctx context.Context, text string) pipeline.Extraction
	Match(ctx context.Context, text string, catalog []store.CatalogItem) []store.CatalogItem
}

// Risk is the fraud highlight for a message sender.
type Risk string

const (
	Flagged Risk = "FLAGGED"
	Clear   Risk = "CLEAR"
	// Unknown means the community list could not be consulted.
	Unknown Risk = "UNKNOWN"
)

// ReplyRow is a reply to one of the user's messages.
type ReplyRow struct {
	Message    store.Message
	Extraction pipeline.Extraction
	Risk       Risk
}

// ProductRow is a recent message with the product it mentions.
type ProductRow struct {
	Message    store.Message
	Extraction pipeline.Extraction
}

// MatchRow pairs a buying request with a catalog item that can serve it.
type MatchRow struct {
	Request store.Message
	Item    store.CatalogItem
}

// NumberCheck is what the stores know about a phone number.
type NumberCheck struct {
	Number    string
	Local     *store.FraudReport
	Community *store.FraudReport
	// CommunityChecked is false when the community list was unreachable.
	CommunityChecked bool
}

// Flagged reports whether any store holds a report for the number.
func (c NumberCheck) Flagged() bool {
	return c.Local != nil || c.Community != nil
}

// Service answers the read views.
type Service struct {
	db        Store
	community store.Community
	pipe      Pipeline
	logger    *zap.Logger
}

// New creates a Service. community may be nil.
func New(db Store, community store.Community, pipe Pipeline, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, community: community, pipe: pipe, logger: logger.Named("query")}
}

// Replies lists replies to messages sent by me, newest first, with the
// product each mentions and the fraud risk of its sender.
func (s *Service) Replies(ctx context.Context, me string) ([]ReplyRow, error) {
	if me == "" {
		return nil, ErrNoIdentity
	}
	msgs, err := s.db.QueryMessages(store.MessageFilter{RepliesOnly: true, Order: store.NewestFirst})
	if err != nil {
		return nil, fmt.Errorf("load replies: %w", err)
	}

	flagged, checked := s.flaggedNumbers(ctx)
	var rows []ReplyRow
	for _, m := range msgs {
		if !repliesTo(m, me) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, ReplyRow{
			Message:    m,
			Extraction: s.pipe.Extract(ctx, m.Text),
			Risk:       riskOf(m.Sender, flagged, checked),
		})
	}
	return rows, nil
}

// Popular lists the n most recent messages with their products. n is
// capped at MaxPopular. Rows whose extraction failed are kept.
func (s *Service) Popular(ctx context.Context, n int) ([]ProductRow, error) {
	if n <= 0 || n > MaxPopular {
		n = MaxPopular
	}
	msgs, err := s.db.QueryMessages(store.MessageFilter{Limit: n, Order: store.NewestFirst})
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	rows := make([]ProductRow, 0, len(msgs))
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, ProductRow{Message: m, Extraction: s.pipe.Extract(ctx, m.Text)})
	}
	return rows, nil
}

// Matches classifies every stored message and matches each buying request
// against the catalog. It makes two model calls per distinct message text
// at most and is meant to be triggered by the user, not run in the
// background.
func (s *Service) Matches(ctx context.Context) ([]MatchRow, error) {
	catalog, err := s.db.ListCatalogItems()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	msgs, err := s.db.QueryMessages(store.MessageFilter{Order: store.NewestFirst})
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	seen := make(map[string][]store.CatalogItem)
	var rows []MatchRow
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.Text == "" || m.Text == monitor.ImagePost {
			continue
		}
		items, ok := seen[m.Text]
		if !ok {
			if s.pipe.Classify(ctx, m.Text) == pipeline.BuyingRequest {
				items = s.pipe.Match(ctx, m.Text, catalog)
			}
			seen[m.Text] = items
		}
		for _, item := range items {
			rows = append(rows, MatchRow{Request: m, Item: item})
		}
	}
	s.logger.Info("matched buying requests",
		zap.Int("messages", len(msgs)),
		zap.Int("catalog", len(catalog)),
		zap.Int("matches", len(rows)))
	return rows, nil
}

// CheckNumber looks a phone number up in the local and community lists.
func (s *Service) CheckNumber(ctx context.Context, number string) (NumberCheck, error) {
	canon, ok := phone.Normalize(number)
	if !ok {
		return NumberCheck{}, fmt.Errorf("phone number %q: %w", number, store.ErrInvalid)
	}
	check := NumberCheck{Number: canon}
	local, err := s.db.FindFraudReport(canon)
	if err != nil {
		return NumberCheck{}, err
	}
	check.Local = local

	if s.community == nil {
		return check, nil
	}
	reports, err := s.community.ListFraudReports(ctx)
	if err != nil {
		s.logger.Warn("community lookup failed", zap.Error(err))
		return check, nil
	}
	check.CommunityChecked = true
	for i := range reports {
		if reports[i].PhoneNumber == canon {
			check.Community = &reports[i]
			break
		}
	}
	return check, nil
}

// ReportFraud records a report in the local list. The first report for a
// number wins; inserted is false for a repeat.
func (s *Service) ReportFraud(_ context.Context, number, reason, reportedBy string) (bool, error) {
	if reportedBy == "" {
		reportedBy = "me"
	}
	return s.db.InsertFraudReport(&store.FraudReport{
		PhoneNumber: number,
		Reason:      reason,
		ReportedBy:  reportedBy,
	})
}

// ShareFraud copies the local report for number to the community list.
func (s *Service) ShareFraud(ctx context.Context, number string) (bool, error) {
	if s.community == nil {
		return false, ErrNoCommunity
	}
	local, err := s.db.FindFraudReport(number)
	if err != nil {
		return false, err
	}
	if local == nil {
		return false, fmt.Errorf("no local report for %s: %w", number, store.ErrNotFound)
	}
	shared := *local
	shared.ID = 0
	return s.community.InsertFraudReport(ctx, &shared)
}

// FraudReports lists local reports followed by community ones. A
// community failure is logged and yields the local list only.
func (s *Service) FraudReports(ctx context.Context) ([]store.FraudReport, error) {
	reports, err := s.db.ListFraudReports()
	if err != nil {
		return nil, err
	}
	if s.community == nil {
		return reports, nil
	}
	shared, err := s.community.ListFraudReports(ctx)
	if err != nil {
		s.logger.Warn("community list failed", zap.Error(err))
		return reports, nil
	}
	return append(reports, shared...), nil
}

// flaggedNumbers merges local and community reports. checked is false when
// the community list was unavailable.
func (s *Service) flaggedNumbers(ctx context.Context) (map[string]struct{}, bool) {
	set := make(map[string]struct{})
	if local, err := s.db.ListFraudReports(); err == nil {
		for _, r := range local {
			set[r.PhoneNumber] = struct{}{}
		}
	} else {
		s.logger.Warn("local fraud list failed", zap.Error(err))
	}
	if s.community == nil {
		return set, false
	}
	shared, err := s.community.PhoneSet(ctx)
	if err != nil {
		s.logger.Warn("community fraud set failed", zap.Error(err))
		return set, false
	}
	for p := range shared {
		set[p] = struct{}{}
	}
	return set, true
}

func repliesTo(m store.Message, me string) bool {
	if strings.EqualFold(strings.TrimSpace(m.RepliedToSender), SelfLabel) {
		return true
	}
	return phone.Matches(m.RepliedToSender, me)
}

func riskOf(sender string, flagged map[string]struct{}, checked bool) Risk {
	if canon, ok := phone.Normalize(sender); ok {
		if _, hit := flagged[canon]; hit {
			return Flagged
		}
	}
	if !checked {
		return Unknown
	}
	return Clear
}
