package api

import (
	"context"

	"go.uber.org/zap"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
)

// ReportFraud records a local report signed with the daemon's identity.
// With Share set it is also copied to the community list; a sharing
// failure is reported after the local write has happened.
func (a *Agent) ReportFraud(ctx context.Context, req *agentv1.ReportFraudRequest) (*agentv1.ReportFraudResponse, error) {
	recorded, err := a.views.ReportFraud(ctx, req.PhoneNumber, req.Reason, a.identity)
	if err != nil {
		return nil, toStatus("report fraud", err)
	}
	a.logger.Info("fraud reported", zap.String("phone", req.PhoneNumber), zap.Bool("recorded", recorded))
	resp := &agentv1.ReportFraudResponse{Recorded: recorded}
	if !req.Share {
		return resp, nil
	}
	shared, err := a.views.ShareFraud(ctx, req.PhoneNumber)
	if err != nil {
		return nil, toStatus("share fraud report", err)
	}
	resp.Shared = shared
	return resp, nil
}

func (a *Agent) ShareFraud(ctx context.Context, req *agentv1.ShareFraudRequest) (*agentv1.ShareFraudResponse, error) {
	shared, err := a.views.ShareFraud(ctx, req.PhoneNumber)
	if err != nil {
		return nil, toStatus("share fraud report", err)
	}
	return &agentv1.ShareFraudResponse{Shared: shared}, nil
}

func (a *Agent) ListFraudReports(ctx context.Context, _ *agentv1.Empty) (*agentv1.ListFraudReportsResponse, error) {
	reports, err := a.views.FraudReports(ctx)
	if err != nil {
		return nil, toStatus("list fraud reports", err)
	}
	resp := &agentv1.ListFraudReportsResponse{Reports: make([]agentv1.FraudReport, 0, len(reports))}
	for i := range reports {
		resp.Reports = append(resp.Reports, *reportToWire(&reports[i]))
	}
	return resp, nil
}

func (a *Agent) CheckNumber(ctx context.Context, req *agentv1.CheckNumberRequest) (*agentv1.CheckNumberResponse, error) {
	check, err := a.views.CheckNumber(ctx, req.PhoneNumber)
	if err != nil {
		return nil, toStatus("check number", err)
	}
	return &agentv1.CheckNumberResponse{
		Number:           check.Number,
		Flagged:          check.Flagged(),
		Local:            reportToWire(check.Local),
		Community:        reportToWire(check.Community),
		CommunityChecked: check.CommunityChecked,
	}, nil
}
