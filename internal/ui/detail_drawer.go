package ui

import (
	"fmt"
	"strings"

	"github.com/riskdesk/console/internal/view"
	"github.com/rivo/tview"
)

// DetailDrawerView shows the full record of one transaction.
type DetailDrawerView struct {
	textView *tview.TextView
	orderID  int64
}

// NewDetailDrawerView creates a new detail drawer.
func NewDetailDrawerView() *DetailDrawerView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)

	textView.SetTitle(" Transaction Details ").SetBorder(true)

	return &DetailDrawerView{
		textView: textView,
	}
}

// Widget returns the tview primitive.
func (v *DetailDrawerView) Widget() tview.Primitive {
	return v.textView
}

// OrderID returns the order currently shown.
func (v *DetailDrawerView) OrderID() int64 {
	return v.orderID
}

// Show renders d.
func (v *DetailDrawerView) Show(d view.Detail) {
	v.orderID = d.Item.OrderID
	v.textView.Clear()
	v.textView.SetTitle(fmt.Sprintf(" Order #%d  [gray](Esc to close)[-] ", d.Item.OrderID))

	item := d.Item
	var b strings.Builder

	fmt.Fprintf(&b, "[yellow]Risk Status[-]  [%s]%s[-]   Recommended: %s\n",
		toneTag(d.Tone), tview.Escape(d.Badge), tview.Escape(view.OrDefault(item.RecommendedAction, view.Placeholder)))
	fmt.Fprintf(&b, "[yellow]Risk Score[-]   [%s]%d[-] (%s)   Confidence: %.2f\n\n",
		toneTag(view.BandTone(d.Band)), d.Score, d.Band, item.Confidence)

	b.WriteString("[yellow]Top Risk Signals[-]\n")
	if len(d.Signals) == 0 {
		b.WriteString("  [gray]No specific signals recorded.[-]\n")
	}
	for _, s := range d.Signals {
		fmt.Fprintf(&b, "  [white::b]%s[-::-]\n", tview.Escape(view.SignalLabel(s.Signal)))
		if s.Why != "" {
			fmt.Fprintf(&b, "    %s\n", tview.Escape(s.Why))
		}
		fmt.Fprintf(&b, "    [gray]Value: %s[-]\n", tview.Escape(s.Value.String()))
	}

	b.WriteString("\n[yellow]Reasons[-]\n")
	if len(d.Reasons) == 0 {
		b.WriteString("  [gray]No reasons provided.[-]\n")
	}
	for _, r := range d.Reasons {
		fmt.Fprintf(&b, "  - %s\n", tview.Escape(r))
	}

	b.WriteString("\n[yellow]Device & User[-]\n")
	fmt.Fprintf(&b, "  User ID    %d\n", item.UserID)
	fmt.Fprintf(&b, "  Customer   %s\n", tview.Escape(view.OrDefault(item.CustomerName, view.Placeholder)))
	fmt.Fprintf(&b, "  Device ID  %s\n", tview.Escape(view.OrDefault(item.DeviceID, view.Placeholder)))

	b.WriteString("\n[yellow]Payment & Cart[-]\n")
	fmt.Fprintf(&b, "  Amount     %s\n", d.Amount)
	fmt.Fprintf(&b, "  Item cost  %s\n", view.FormatCurrency(item.ItemCost))
	fmt.Fprintf(&b, "  Items      %d\n", item.TotalItemsInCart)
	fmt.Fprintf(&b, "  Time       %s\n", d.CreatedAt)
	fmt.Fprintf(&b, "  Txn ID     %d\n", item.TransactionID)

	b.WriteString("\n[yellow]Cart Contents[-]\n")
	fmt.Fprintf(&b, "  %s\n", tview.Escape(view.OrDefault(item.CartItemNames, "No items listed")))
	fmt.Fprintf(&b, "  [gray]Categories: %s[-]\n", tview.Escape(view.OrDefault(item.CartItemCategories, view.Placeholder)))

	b.WriteString("\n[yellow]Ops Decision[-]\n")
	fmt.Fprintf(&b, "  Status    %s\n", tview.Escape(view.OrDefault(item.OpsStatus, view.Placeholder)))
	fmt.Fprintf(&b, "  Decision  %s\n", tview.Escape(view.OrDefault(item.OpsDecision, view.Placeholder)))
	fmt.Fprintf(&b, "  Notes     %s\n", tview.Escape(view.OrDefault(item.OpsNotes, "None")))

	fmt.Fprint(v.textView, b.String())
	v.textView.ScrollToBeginning()
}
