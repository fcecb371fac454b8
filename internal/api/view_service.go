package api

import (
	"context"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
)

func (a *Agent) Replies(ctx context.Context, req *agentv1.RepliesRequest) (*agentv1.RepliesResponse, error) {
	me := req.Me
	if me == "" {
		me = a.identity
	}
	rows, err := a.views.Replies(ctx, me)
	if err != nil {
		return nil, toStatus("replies", err)
	}
	resp := &agentv1.RepliesResponse{Rows: make([]agentv1.Reply, 0, len(rows))}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, agentv1.Reply{
			Message:    messageToWire(r.Message),
			Extraction: r.Extraction,
			Risk:       string(r.Risk),
		})
	}
	return resp, nil
}

func (a *Agent) Popular(ctx context.Context, req *agentv1.PopularRequest) (*agentv1.PopularResponse, error) {
	rows, err := a.views.Popular(ctx, req.Limit)
	if err != nil {
		return nil, toStatus("popular", err)
	}
	resp := &agentv1.PopularResponse{Rows: make([]agentv1.Product, 0, len(rows))}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, agentv1.Product{Message: messageToWire(r.Message), Extraction: r.Extraction})
	}
	return resp, nil
}

func (a *Agent) Matches(ctx context.Context, _ *agentv1.Empty) (*agentv1.MatchesResponse, error) {
	rows, err := a.views.Matches(ctx)
	if err != nil {
		return nil, toStatus("matches", err)
	}
	resp := &agentv1.MatchesResponse{Rows: make([]agentv1.Match, 0, len(rows))}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, agentv1.Match{Request: messageToWire(r.Request), Item: catalogToWire(r.Item)})
	}
	return resp, nil
}

func (a *Agent) GetPicture(_ context.Context, req *agentv1.GetPictureRequest) (*agentv1.GetPictureResponse, error) {
	pic, err := a.db.GetPicture(req.MessageID)
	if err != nil {
		return nil, toStatus("get picture", err)
	}
	return &agentv1.GetPictureResponse{PNG: pic}, nil
}
