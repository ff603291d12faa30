package ui

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/riskdesk/console/internal/view"
	"github.com/rivo/tview"
)

var transactionHeaders = []string{"Order / Txn", "User", "Score", "Status", "Amount", "Device", "Time"}

// TransactionsView displays one page of the filtered snapshot.
type TransactionsView struct {
	flex   *tview.Flex
	table  *tview.Table
	footer *tview.TextView
	rows   []view.Row
}

// NewTransactionsView creates the table. onSelect is called with the order id
// of the row the user opens.
func NewTransactionsView(onSelect func(orderID int64)) *TransactionsView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false)

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	v := &TransactionsView{
		table:  table,
		footer: footer,
	}

	table.SetSelectedFunc(func(row, _ int) {
		if id, ok := v.orderIDAt(row); ok {
			onSelect(id)
		}
	})

	v.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(table, 0, 1, true).
		AddItem(footer, 1, 0, false)
	v.flex.SetTitle(" Transactions ").SetBorder(true)

	v.setHeader()
	return v
}

// Widget returns the tview primitive.
func (v *TransactionsView) Widget() tview.Primitive {
	return v.flex
}

// Table returns the focusable table.
func (v *TransactionsView) Table() *tview.Table {
	return v.table
}

// Update redraws the table for page. sortLabel describes the active ordering.
// The highlighted transaction stays selected while it is still on the page.
func (v *TransactionsView) Update(page view.Page, loading bool, sortLabel string) {
	prevID, hadSelection := v.Selected()

	v.table.Clear()
	v.setHeader()
	v.rows = page.Rows

	if len(page.Rows) == 0 {
		msg := "No transactions found."
		if loading {
			msg = "Loading transactions..."
		}
		v.table.SetCell(1, 0, tview.NewTableCell(msg).
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
	}

	for i, r := range page.Rows {
		row := i + 1

		cells := []*tview.TableCell{
			tview.NewTableCell(fmt.Sprintf("#%d / %d", r.Item.OrderID, r.Item.TransactionID)),
			tview.NewTableCell(strconv.FormatInt(r.Item.UserID, 10)),
			tview.NewTableCell(strconv.Itoa(r.Score)).
				SetTextColor(toneColor(view.BandTone(r.Band))),
			tview.NewTableCell(tview.Escape(r.Badge)).
				SetTextColor(toneColor(r.Tone)),
			tview.NewTableCell(r.Amount).
				SetAlign(tview.AlignRight),
			tview.NewTableCell(tview.Escape(r.Device)),
			tview.NewTableCell(r.Timestamp),
		}

		for col, cell := range cells {
			v.table.SetCell(row, col, cell.SetExpansion(1))
		}
	}

	if row, ok := v.rowOf(prevID); hadSelection && ok {
		v.table.Select(row, 0)
	} else if selected, _ := v.table.GetSelection(); selected < 1 || selected > len(page.Rows) {
		v.table.Select(1, 0)
	}

	pages := max(page.TotalPages, 1)
	footer := fmt.Sprintf("Page %d of %d  |  %d matching of %d fetched  |  sort: %s  |  [::d]n/p page, s sort, Enter details[::-]",
		page.PageIndex+1, pages, page.Matched, page.Fetched, sortLabel)
	v.footer.SetText(footer)

	v.flex.SetTitle(fmt.Sprintf(" Transactions (%d) ", page.Matched))
}

// Selected returns the order id of the highlighted row.
func (v *TransactionsView) Selected() (int64, bool) {
	row, _ := v.table.GetSelection()
	return v.orderIDAt(row)
}

func (v *TransactionsView) rowOf(orderID int64) (int, bool) {
	for i, r := range v.rows {
		if r.Item.OrderID == orderID {
			return i + 1, true
		}
	}
	return 0, false
}

func (v *TransactionsView) orderIDAt(row int) (int64, bool) {
	i := row - 1
	if i < 0 || i >= len(v.rows) {
		return 0, false
	}
	return v.rows[i].Item.OrderID, true
}

func (v *TransactionsView) setHeader() {
	for col, header := range transactionHeaders {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		v.table.SetCell(0, col, cell)
	}
}
