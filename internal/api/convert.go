package api

import (
	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/status"
	"github.com/ebosoh/sales-agent/internal/store"
)

func groupToWire(g store.Group) agentv1.Group {
	return agentv1.Group{Name: g.Name, CreatedAt: g.CreatedAt}
}

func catalogToWire(c store.CatalogItem) agentv1.CatalogItem {
	return agentv1.CatalogItem{
		ID:           c.ID,
		Product:      c.Product,
		Make:         c.Make,
		Type:         c.Type,
		Year:         c.Year,
		PriceKSh:     c.Price,
		OtherDetails: c.OtherDetails,
	}
}

func catalogFromWire(c agentv1.CatalogItem) store.CatalogItem {
	return store.CatalogItem{
		Product:      c.Product,
		Make:         c.Make,
		Type:         c.Type,
		Year:         c.Year,
		Price:        c.PriceKSh,
		OtherDetails: c.OtherDetails,
	}
}

func reportToWire(r *store.FraudReport) *agentv1.FraudReport {
	if r == nil {
		return nil
	}
	return &agentv1.FraudReport{
		Scope:       string(r.Scope),
		PhoneNumber: r.PhoneNumber,
		Reason:      r.Reason,
		ReportedBy:  r.ReportedBy,
		ReportedAt:  r.ReportedAt,
	}
}

func callToWire(l store.CallLog) agentv1.CallLog {
	return agentv1.CallLog{
		ID:           l.ID,
		CustomerName: l.CustomerName,
		PhoneNumber:  l.PhoneNumber,
		Notes:        l.Notes,
		LoggedAt:     l.LoggedAt,
	}
}

func messageToWire(m store.Message) agentv1.Message {
	return agentv1.Message{
		ID:              m.ID,
		Group:           m.GroupName,
		Sender:          m.Sender,
		Text:            m.Text,
		Timestamp:       m.Timestamp,
		HasPicture:      m.HasPicture || len(m.Picture) > 0,
		IsReply:         m.IsReply,
		RepliedToText:   m.RepliedToText,
		RepliedToSender: m.RepliedToSender,
		SentAt:          m.SentAt,
	}
}

func snapshotToWire(s status.Snapshot) *agentv1.MonitorStatusResponse {
	return &agentv1.MonitorStatusResponse{
		State: string(s.State),
		Group: s.Group,
		Since: s.Since,
	}
}
