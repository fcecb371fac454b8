package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/pipeline"
	"github.com/ebosoh/sales-agent/internal/tui/client"
)

func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printStatus(resp *agentv1.MonitorStatusResponse) {
	fmt.Printf("State:    %s\n", resp.State)
	if resp.Group != "" {
		fmt.Printf("Group:    %s\n", resp.Group)
	}
	fmt.Printf("Since:    %s\n", resp.Since.Format(time.RFC3339))
	fmt.Printf("Messages: %d\n", resp.Messages)
	if resp.LastError != "" {
		fmt.Printf("Error:    %s\n", resp.LastError)
	}
}

func cmdStatus(ctx context.Context, c *client.Client, out *printer) {
	resp, err := c.Agent.MonitorStatus(ctx, &agentv1.Empty{})
	if err != nil {
		fail(err)
	}
	if out.emit(resp) {
		return
	}
	printStatus(resp)
}

func cmdMonitor(ctx context.Context, c *client.Client, action string, out *printer) {
	var (
		resp *agentv1.MonitorStatusResponse
		err  error
	)
	if action == "start" {
		resp, err = c.Agent.StartMonitor(ctx, &agentv1.Empty{})
	} else {
		resp, err = c.Agent.StopMonitor(ctx, &agentv1.Empty{})
	}
	if err != nil {
		fail(err)
	}
	if out.emit(resp) {
		return
	}
	printStatus(resp)
}

func cmdWatch(ctx context.Context, c *client.Client, prefixes []string, out *printer) {
	stream, err := c.Agent.WatchStatus(ctx, &agentv1.WatchStatusRequest{Prefixes: prefixes})
	if err != nil {
		fail(err)
	}
	for {
		evt, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fail(err)
		}
		if out.emit(evt) {
			continue
		}
		ts := time.UnixMilli(evt.OccurredAtUnixMs).Format("15:04:05")
		if evt.Kind == "monitor.login" {
			fmt.Printf("%s %s: scan this code with WhatsApp > Linked devices\n", ts, evt.Kind)
			printQR(evt.Text)
			continue
		}
		fmt.Printf("%s %-22s %s\n", ts, evt.Kind, evt.Text)
	}
}

func cmdGroups(ctx context.Context, c *client.Client, args []string, out *printer) {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "list":
		resp, err := c.Agent.ListGroups(ctx, &agentv1.Empty{})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		if len(resp.Groups) == 0 {
			fmt.Println("No groups configured.")
			return
		}
		for _, g := range resp.Groups {
			fmt.Println(g.Name)
		}
	case "add", "rm":
		if len(args) < 2 {
			usage("groups " + sub + " <name>")
		}
		name := strings.Join(args[1:], " ")
		var err error
		if sub == "add" {
			_, err = c.Agent.AddGroup(ctx, &agentv1.AddGroupRequest{Name: name})
		} else {
			_, err = c.Agent.RemoveGroup(ctx, &agentv1.RemoveGroupRequest{Name: name})
		}
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s: %s\n", sub, name)
	default:
		usage("groups [list|add|rm] [name]")
	}
}

func cmdCatalog(ctx context.Context, c *client.Client, args []string, out *printer) {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "list":
		resp, err := c.Agent.ListCatalog(ctx, &agentv1.Empty{})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		w := table()
		_, _ = fmt.Fprintln(w, "ID\tPRODUCT\tMAKE\tTYPE\tYEAR\tPRICE (KSh)\tDETAILS")
		for _, it := range resp.Items {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n", it.ID, it.Product, it.Make, it.Type, it.Year, it.PriceKSh, it.OtherDetails)
		}
		_ = w.Flush()
	case "add":
		fs := flag.NewFlagSet("catalog add", flag.ExitOnError)
		var item agentv1.CatalogItem
		fs.StringVar(&item.Product, "product", "", "product name (required)")
		fs.StringVar(&item.Make, "make", "", "vehicle make")
		fs.StringVar(&item.Type, "type", "", "vehicle model or type")
		fs.StringVar(&item.Year, "year", "", "model year")
		fs.Int64Var(&item.PriceKSh, "price", 0, "price in KSh")
		fs.StringVar(&item.OtherDetails, "details", "", "other details")
		_ = fs.Parse(args[1:])
		resp, err := c.Agent.AddCatalogItem(ctx, &agentv1.AddCatalogItemRequest{Item: item})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		fmt.Printf("added catalog item %d\n", resp.ID)
	case "rm":
		if len(args) < 2 {
			usage("catalog rm <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fail(fmt.Errorf("catalog id %q: %w", args[1], err))
		}
		if _, err := c.Agent.RemoveCatalogItem(ctx, &agentv1.RemoveCatalogItemRequest{ID: id}); err != nil {
			fail(err)
		}
		fmt.Printf("removed catalog item %d\n", id)
	default:
		usage("catalog [list|add|rm]")
	}
}

func cmdFraud(ctx context.Context, c *client.Client, args []string, out *printer) {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "list":
		resp, err := c.Agent.ListFraudReports(ctx, &agentv1.Empty{})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		w := table()
		_, _ = fmt.Fprintln(w, "SCOPE\tNUMBER\tREASON\tREPORTED BY\tWHEN")
		for _, r := range resp.Reports {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Scope, r.PhoneNumber, r.Reason, r.ReportedBy, r.ReportedAt.Format("2006-01-02 15:04"))
		}
		_ = w.Flush()
	case "report":
		fs := flag.NewFlagSet("fraud report", flag.ExitOnError)
		share := fs.Bool("share", false, "also share with the community list")
		_ = fs.Parse(args[1:])
		if fs.NArg() < 1 {
			usage("fraud report [--share] <phone> [reason...]")
		}
		resp, err := c.Agent.ReportFraud(ctx, &agentv1.ReportFraudRequest{
			PhoneNumber: fs.Arg(0),
			Reason:      strings.Join(fs.Args()[1:], " "),
			Share:       *share,
		})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		fmt.Printf("recorded: %v, shared: %v\n", resp.Recorded, resp.Shared)
	case "share":
		if len(args) < 2 {
			usage("fraud share <phone>")
		}
		resp, err := c.Agent.ShareFraud(ctx, &agentv1.ShareFraudRequest{PhoneNumber: args[1]})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		fmt.Printf("shared: %v\n", resp.Shared)
	case "check":
		if len(args) < 2 {
			usage("fraud check <phone>")
		}
		resp, err := c.Agent.CheckNumber(ctx, &agentv1.CheckNumberRequest{PhoneNumber: strings.Join(args[1:], " ")})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		printCheck(resp)
	default:
		usage("fraud [list|report|check|share]")
	}
}

func printCheck(resp *agentv1.CheckNumberResponse) {
	if !resp.Flagged {
		fmt.Printf("%s: no reports\n", resp.Number)
	}
	for _, r := range []*agentv1.FraudReport{resp.Local, resp.Community} {
		if r != nil {
			fmt.Printf("%s: FLAGGED (%s) by %s: %s\n", resp.Number, r.Scope, r.ReportedBy, r.Reason)
		}
	}
	if !resp.CommunityChecked {
		fmt.Println("community list unavailable")
	}
}

func cmdCalls(ctx context.Context, c *client.Client, args []string, out *printer) {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "list":
		resp, err := c.Agent.ListCallLogs(ctx, &agentv1.Empty{})
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		w := table()
		_, _ = fmt.Fprintln(w, "WHEN\tNAME\tPHONE\tNOTES")
		for _, l := range resp.Logs {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.LoggedAt.Format("2006-01-02 15:04"), l.CustomerName, l.PhoneNumber, l.Notes)
		}
		_ = w.Flush()
	case "log":
		fs := flag.NewFlagSet("calls log", flag.ExitOnError)
		var req agentv1.LogCallRequest
		fs.StringVar(&req.CustomerName, "name", "", "customer name")
		fs.StringVar(&req.PhoneNumber, "phone", "", "customer phone number")
		fs.StringVar(&req.Notes, "notes", "", "call notes (required)")
		_ = fs.Parse(args[1:])
		resp, err := c.Agent.LogCall(ctx, &req)
		if err != nil {
			fail(err)
		}
		if out.emit(resp) {
			return
		}
		fmt.Printf("logged call %d\n", resp.ID)
	default:
		usage("calls [list|log]")
	}
}

func cmdReplies(ctx context.Context, c *client.Client, args []string, out *printer) {
	fs := flag.NewFlagSet("replies", flag.ExitOnError)
	me := fs.String("me", "", "your phone number or display name (default: configured identity)")
	_ = fs.Parse(args)

	resp, err := c.Agent.Replies(ctx, &agentv1.RepliesRequest{Me: *me})
	if err != nil {
		fail(err)
	}
	if out.emit(resp) {
		return
	}
	w := table()
	_, _ = fmt.Fprintln(w, "TIME\tGROUP\tSENDER\tRISK\tPRODUCT\tREPLY")
	for _, r := range resp.Rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Message.Timestamp, r.Message.Group, r.Message.Sender, r.Risk, product(r.Extraction), oneLine(r.Message.Text))
	}
	_ = w.Flush()
}

func cmdPopular(ctx context.Context, c *client.Client, args []string, out *printer) {
	fs := flag.NewFlagSet("popular", flag.ExitOnError)
	limit := fs.Int("limit", 0, "number of messages (max 50)")
	_ = fs.Parse(args)

	resp, err := c.Agent.Popular(ctx, &agentv1.PopularRequest{Limit: *limit})
	if err != nil {
		fail(err)
	}
	if out.emit(resp) {
		return
	}
	w := table()
	_, _ = fmt.Fprintln(w, "TIME\tGROUP\tSENDER\tPRODUCT\tPRICE (KSh)\tMESSAGE")
	for _, r := range resp.Rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", r.Message.Timestamp, r.Message.Group, r.Message.Sender, product(r.Extraction), r.Extraction.PriceKSh, oneLine(r.Message.Text))
	}
	_ = w.Flush()
}

func cmdMatches(ctx context.Context, c *client.Client, out *printer) {
	resp, err := c.Agent.Matches(ctx, &agentv1.Empty{})
	if err != nil {
		fail(err)
	}
	if out.emit(resp) {
		return
	}
	if len(resp.Rows) == 0 {
		fmt.Println("No buying requests match the catalog.")
		return
	}
	w := table()
	_, _ = fmt.Fprintln(w, "SENDER\tGROUP\tITEM\tPRICE (KSh)\tREQUEST")
	for _, m := range resp.Rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d %s\t%d\t%s\n", m.Request.Sender, m.Request.Group, m.Item.ID, m.Item.Product, m.Item.PriceKSh, oneLine(m.Request.Text))
	}
	_ = w.Flush()
}

func cmdPicture(ctx context.Context, c *client.Client, args []string) {
	if len(args) < 2 {
		usage("picture <message-id> <file>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail(fmt.Errorf("message id %q: %w", args[0], err))
	}
	resp, err := c.Agent.GetPicture(ctx, &agentv1.GetPictureRequest{MessageID: id})
	if err != nil {
		fail(err)
	}
	if len(resp.PNG) == 0 {
		fail(fmt.Errorf("message %d has no picture", id))
	}
	if err := os.WriteFile(args[1], resp.PNG, 0600); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", args[1], len(resp.PNG))
}

func product(e pipeline.Extraction) string {
	if !e.OK {
		return "-"
	}
	var parts []string
	for _, s := range []string{e.Product, e.Make, e.Type, e.Year} {
		if s != "" && s != pipeline.NotAvailable {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
