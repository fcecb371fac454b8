package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/pipeline"
	"github.com/ebosoh/sales-agent/internal/tui/ui"
)

// Column is a result table header.
type Column struct {
	Title     string
	Expansion int
}

// Row is one table row. Color overrides the theme foreground when set.
type Row struct {
	Cells []string
	Color tcell.Color
}

// ResultTable renders one of the query views.
type ResultTable struct {
	*tview.Table
	theme   *ui.Theme
	columns []Column
	empty   string
}

// NewResultTable creates a table with a title and fixed columns. empty is
// shown when there are no rows.
func NewResultTable(theme *ui.Theme, title, empty string, columns ...Column) *ResultTable {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" " + title + " ")
	table.SetTitleColor(theme.TitleColor)

	return &ResultTable{Table: table, theme: theme, columns: columns, empty: empty}
}

// Update replaces the rows.
func (t *ResultTable) Update(rows []Row) {
	t.Clear()
	for col, c := range t.columns {
		t.SetCell(0, col, tview.NewTableCell(" "+strings.ToUpper(c.Title)).
			SetSelectable(false).
			SetTextColor(t.theme.TableHeaderFg).
			SetBackgroundColor(t.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(c.Expansion))
	}
	if len(rows) == 0 {
		t.SetCell(1, 0, tview.NewTableCell(" "+t.empty).SetSelectable(false).SetTextColor(t.theme.FgColor))
		return
	}
	for i, r := range rows {
		color := t.theme.FgColor
		if r.Color != tcell.ColorDefault {
			color = r.Color
		}
		for col, text := range r.Cells {
			exp := 0
			if col < len(t.columns) {
				exp = t.columns[col].Expansion
			}
			t.SetCell(i+1, col, tview.NewTableCell(" "+displayText(text)).
				SetExpansion(exp).
				SetTextColor(color))
		}
	}
	t.Select(1, 0)
}

// ReplyColumns are the columns of ReplyRows.
var ReplyColumns = []Column{{"Time", 0}, {"Group", 0}, {"Sender", 0}, {"Reply", 2}, {"Product", 1}, {"Risk", 0}}

// ReplyRows formats replies. Flagged senders are drawn in the flagged
// color, unknown risk in the warning color.
func ReplyRows(theme *ui.Theme, replies []agentv1.Reply) []Row {
	rows := make([]Row, 0, len(replies))
	for _, r := range replies {
		row := Row{Cells: []string{
			r.Message.Timestamp,
			r.Message.Group,
			r.Message.Sender,
			r.Message.Text,
			product(r.Extraction),
			r.Risk,
		}}
		switch r.Risk {
		case "FLAGGED":
			row.Color = theme.FlaggedColor
		case "UNKNOWN":
			row.Color = theme.UnknownColor
		}
		rows = append(rows, row)
	}
	return rows
}

// PopularColumns are the columns of PopularRows.
var PopularColumns = []Column{{"Time", 0}, {"Group", 0}, {"Sender", 0}, {"Message", 2}, {"Product", 1}, {"Price", 0}}

// PopularRows formats the recent products.
func PopularRows(products []agentv1.Product) []Row {
	rows := make([]Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, Row{Cells: []string{
			p.Message.Timestamp,
			p.Message.Group,
			p.Message.Sender,
			p.Message.Text,
			product(p.Extraction),
			price(p.Extraction.PriceKSh),
		}})
	}
	return rows
}

// MatchColumns are the columns of MatchRows.
var MatchColumns = []Column{{"Sender", 0}, {"Request", 2}, {"Catalog item", 1}, {"Price", 0}}

// MatchRows formats matched buying requests.
func MatchRows(matches []agentv1.Match) []Row {
	rows := make([]Row, 0, len(matches))
	for _, m := range matches {
		item := strings.Join(nonEmpty(m.Item.Product, m.Item.Make, m.Item.Type, m.Item.Year), " ")
		rows = append(rows, Row{Cells: []string{
			m.Request.Sender,
			m.Request.Text,
			item,
			price(m.Item.PriceKSh),
		}})
	}
	return rows
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

func price(ksh int64) string {
	if ksh <= 0 {
		return "-"
	}
	return fmt.Sprintf("KSh %d", ksh)
}

func nonEmpty(ss ...string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
