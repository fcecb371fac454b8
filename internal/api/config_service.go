package api

import (
	"context"

	"go.uber.org/zap"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/store"
)

func (a *Agent) AddGroup(_ context.Context, req *agentv1.AddGroupRequest) (*agentv1.Empty, error) {
	if err := a.db.InsertGroup(req.Name); err != nil {
		return nil, toStatus("add group", err)
	}
	a.logger.Info("group added", zap.String("group", req.Name))
	return &agentv1.Empty{}, nil
}

func (a *Agent) RemoveGroup(_ context.Context, req *agentv1.RemoveGroupRequest) (*agentv1.Empty, error) {
	if err := a.db.DeleteGroup(req.Name); err != nil {
		return nil, toStatus("remove group", err)
	}
	a.logger.Info("group removed", zap.String("group", req.Name))
	return &agentv1.Empty{}, nil
}

func (a *Agent) ListGroups(_ context.Context, _ *agentv1.Empty) (*agentv1.ListGroupsResponse, error) {
	groups, err := a.db.ListGroups()
	if err != nil {
		return nil, toStatus("list groups", err)
	}
	resp := &agentv1.ListGroupsResponse{Groups: make([]agentv1.Group, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, groupToWire(g))
	}
	return resp, nil
}

func (a *Agent) AddCatalogItem(_ context.Context, req *agentv1.AddCatalogItemRequest) (*agentv1.AddCatalogItemResponse, error) {
	item := catalogFromWire(req.Item)
	if err := a.db.InsertCatalogItem(&item); err != nil {
		return nil, toStatus("add catalog item", err)
	}
	a.logger.Info("catalog item added", zap.Int64("id", item.ID), zap.String("product", item.Product))
	return &agentv1.AddCatalogItemResponse{ID: item.ID}, nil
}

func (a *Agent) RemoveCatalogItem(_ context.Context, req *agentv1.RemoveCatalogItemRequest) (*agentv1.Empty, error) {
	if err := a.db.DeleteCatalogItem(req.ID); err != nil {
		return nil, toStatus("remove catalog item", err)
	}
	return &agentv1.Empty{}, nil
}

func (a *Agent) ListCatalog(_ context.Context, _ *agentv1.Empty) (*agentv1.ListCatalogResponse, error) {
	items, err := a.db.ListCatalogItems()
	if err != nil {
		return nil, toStatus("list catalog", err)
	}
	resp := &agentv1.ListCatalogResponse{Items: make([]agentv1.CatalogItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, catalogToWire(it))
	}
	return resp, nil
}

func (a *Agent) LogCall(_ context.Context, req *agentv1.LogCallRequest) (*agentv1.LogCallResponse, error) {
	l := store.CallLog{CustomerName: req.CustomerName, PhoneNumber: req.PhoneNumber, Notes: req.Notes}
	if err := a.db.InsertCallLog(&l); err != nil {
		return nil, toStatus("log call", err)
	}
	return &agentv1.LogCallResponse{ID: l.ID}, nil
}

func (a *Agent) ListCallLogs(_ context.Context, _ *agentv1.Empty) (*agentv1.ListCallLogsResponse, error) {
	logs, err := a.db.ListCallLogs()
	if err != nil {
		return nil, toStatus("list call logs", err)
	}
	resp := &agentv1.ListCallLogsResponse{Logs: make([]agentv1.CallLog, 0, len(logs))}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, callToWire(l))
	}
	return resp, nil
}
