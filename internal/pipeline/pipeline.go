package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ebosoh/sales-agent/internal/phone"
	"github.com/ebosoh/sales-agent/internal/store"
)

// Pipeline runs the text operations against a model. None of its methods
// return errors: model and parse failures are logged and mapped to the
// neutral result for each operation.
type Pipeline struct {
	model  Model
	cache  Cache
	logger *zap.Logger
}

// New creates a Pipeline. cache may be nil.
func New(model Model, cache Cache, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{model: model, cache: cache, logger: logger}
}

// Classify reports whether text is a buying request. Any reply other than
// the exact BUYING_REQUEST token counts as Other.
func (p *Pipeline) Classify(ctx context.Context, text string) Class {
	reply, err := p.model.Generate(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		p.logger.Warn("classify failed", zap.Error(err))
		return Other
	}
	token := strings.ToUpper(strings.Trim(strings.TrimSpace(stripFences(reply)), " .!\"'`*"))
	if token == string(BuyingRequest) {
		return BuyingRequest
	}
	return Other
}

type extractReply struct {
	Product      looseString `json:"product"`
	Make         looseString `json:"make"`
	Type         looseString `json:"type"`
	Year         looseString `json:"year"`
	PriceKSh     looseInt    `json:"price_ksh"`
	OtherDetails looseString `json:"other_details"`
}

// Extract reads product attributes from text. Extraction.OK is false when
// the model failed or answered with something that is not a JSON object.
func (p *Pipeline) Extract(ctx context.Context, text string) Extraction {
	if p.cache != nil {
		if e, ok, err := p.cache.GetExtraction(ctx, text); err != nil {
			p.logger.Debug("extraction cache read failed", zap.Error(err))
		} else if ok {
			return e
		}
	}

	reply, err := p.model.Generate(ctx, fmt.Sprintf(extractPrompt, text))
	if err != nil {
		p.logger.Warn("extract failed", zap.Error(err))
		return Extraction{}
	}
	var r extractReply
	if !decodeObject(reply, &r) {
		p.logger.Debug("extract reply not json", zap.String("reply", truncate(reply, 200)))
		return Extraction{}
	}
	e := Extraction{
		OK:           true,
		Product:      orNA(r.Product),
		Make:         orNA(r.Make),
		Type:         orNA(r.Type),
		Year:         orNA(r.Year),
		PriceKSh:     max(int64(r.PriceKSh), 0),
		OtherDetails: orNA(r.OtherDetails),
	}

	if p.cache != nil {
		if err := p.cache.PutExtraction(ctx, text, e); err != nil {
			p.logger.Debug("extraction cache write failed", zap.Error(err))
		}
	}
	return e
}

type fraudReply struct {
	PhoneNumber looseString `json:"phone_number"`
	Reason      looseString `json:"reason"`
}

// DetectFraud reports whether text names a fraudulent phone number. A
// number that cannot be normalized is not a finding.
func (p *Pipeline) DetectFraud(ctx context.Context, text string) (FraudFinding, bool) {
	reply, err := p.model.Generate(ctx, fmt.Sprintf(fraudPrompt, text))
	if err != nil {
		p.logger.Warn("fraud detection failed", zap.Error(err))
		return FraudFinding{}, false
	}
	var r fraudReply
	if !decodeObject(reply, &r) {
		return FraudFinding{}, false
	}
	raw := strings.TrimSpace(string(r.PhoneNumber))
	if raw == "" || strings.EqualFold(raw, "null") {
		return FraudFinding{}, false
	}
	number, ok := phone.Normalize(raw)
	if !ok {
		p.logger.Debug("fraud finding with unusable number", zap.String("raw", raw))
		return FraudFinding{}, false
	}
	reason := strings.TrimSpace(string(r.Reason))
	if strings.EqualFold(reason, "null") {
		reason = ""
	}
	return FraudFinding{PhoneNumber: number, Reason: reason}, true
}

type matchItem struct {
	ID           int64       `json:"id"`
	Product      looseString `json:"product"`
	Make         looseString `json:"make"`
	Type         looseString `json:"type"`
	Year         looseString `json:"year"`
	PriceKSh     looseInt    `json:"price_ksh"`
	OtherDetails looseString `json:"other_details"`
}

// Match returns the catalog items the model judges relevant to text. The
// result is always a subset of catalog; items the model invents are
// dropped. An empty catalog makes no model call.
func (p *Pipeline) Match(ctx context.Context, text string, catalog []store.CatalogItem) []store.CatalogItem {
	if len(catalog) == 0 {
		return nil
	}

	var lines strings.Builder
	for _, item := range catalog {
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		lines.Write(b)
		lines.WriteByte('\n')
	}

	reply, err := p.model.Generate(ctx, fmt.Sprintf(matchPrompt, strings.TrimSpace(lines.String()), text))
	if err != nil {
		p.logger.Warn("match failed", zap.Error(err))
		return nil
	}
	var picked []matchItem
	if !decodeArray(reply, &picked) {
		return nil
	}

	byID := make(map[int64]int, len(catalog))
	for i, item := range catalog {
		byID[item.ID] = i
	}
	seen := make(map[int]bool)
	var out []store.CatalogItem
	for _, m := range picked {
		i, ok := byID[m.ID]
		if m.ID == 0 || !ok {
			i, ok = findByFields(catalog, m)
		}
		if !ok || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, catalog[i])
	}
	return out
}

func findByFields(catalog []store.CatalogItem, m matchItem) (int, bool) {
	for i, item := range catalog {
		if strings.EqualFold(item.Product, string(m.Product)) &&
			strings.EqualFold(item.Make, string(m.Make)) &&
			strings.EqualFold(item.Type, string(m.Type)) &&
			strings.EqualFold(item.Year, string(m.Year)) {
			return i, true
		}
	}
	return 0, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
