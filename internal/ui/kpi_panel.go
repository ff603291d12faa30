package ui

import (
	"fmt"

	"github.com/riskdesk/console/internal/view"
	"github.com/rivo/tview"
)

// KPIPanelView displays the aggregate figures of the current snapshot.
type KPIPanelView struct {
	textView *tview.TextView
}

// NewKPIPanelView creates a new KPI panel.
func NewKPIPanelView() *KPIPanelView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Overview ").SetBorder(true)

	return &KPIPanelView{
		textView: textView,
	}
}

// Widget returns the tview primitive.
func (v *KPIPanelView) Widget() tview.Primitive {
	return v.textView
}

// Update refreshes the KPI display. loaded is false until the first snapshot
// arrives, in which case nothing is shown.
func (v *KPIPanelView) Update(k view.KPIs, loaded bool) {
	v.textView.Clear()
	if !loaded {
		fmt.Fprint(v.textView, "[gray]Waiting for first snapshot...[-]")
		return
	}

	text := fmt.Sprintf(`[yellow]Total Transactions[-]  %d
[gray]recent batch, %d fetched[-]

[green]Passed[-]        %s%%  [gray]%d approved[-]
[yellow]Under Review[-]  %s%%  [gray]%d pending[-]
[red]Blocked[-]       %s%%  [gray]%d declined[-]

[yellow]Avg Risk Score[-]  %d [gray](0-100 scale)[-]
`,
		k.Total, k.Fetched,
		k.PassedPct, k.Passed,
		k.ReviewPct, k.Review,
		k.BlockedPct, k.Blocked,
		k.AvgRiskScore,
	)

	fmt.Fprint(v.textView, text)
}
