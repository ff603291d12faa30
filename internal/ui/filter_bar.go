package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskdesk/console/internal/store"
	"github.com/riskdesk/console/internal/view"
	"github.com/rivo/tview"
)

var riskLevelLabels = map[store.RiskLevel]string{
	store.RiskAll:    "All Levels",
	store.RiskPass:   "Pass",
	store.RiskReview: "Review",
	store.RiskBlock:  "Block",
}

// FilterBarView holds the search input, the risk level drop-down and the
// refresh status line.
type FilterBarView struct {
	flex     *tview.Flex
	input    *tview.InputField
	dropDown *tview.DropDown
	status   *tview.TextView

	// syncing suppresses the drop-down callback while the level is being
	// set from store state rather than by the user.
	syncing bool
}

// NewFilterBarView creates the filter bar. onSearch receives every change of
// the search text; onLevel receives levels picked by the user.
func NewFilterBarView(onSearch func(string), onLevel func(store.RiskLevel)) *FilterBarView {
	v := &FilterBarView{}

	v.input = tview.NewInputField().
		SetLabel("Search: ").
		SetPlaceholder("Order ID, User ID, Txn ID or customer").
		SetFieldWidth(40).
		SetChangedFunc(onSearch)

	labels := make([]string, len(store.AllRiskLevels))
	for i, level := range store.AllRiskLevels {
		labels[i] = riskLevelLabels[level]
	}
	v.dropDown = tview.NewDropDown().
		SetLabel(" Level: ").
		SetOptions(labels, func(_ string, index int) {
			if v.syncing || index < 0 || index >= len(store.AllRiskLevels) {
				return
			}
			onLevel(store.AllRiskLevels[index])
		})

	v.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)

	v.flex = tview.NewFlex().
		AddItem(v.input, 0, 2, true).
		AddItem(v.dropDown, 20, 0, false).
		AddItem(v.status, 0, 2, false)
	v.flex.SetBorder(true).SetTitle(" Filters ")

	return v
}

// Widget returns the tview primitive.
func (v *FilterBarView) Widget() tview.Primitive {
	return v.flex
}

// Input returns the search field so the app can focus it.
func (v *FilterBarView) Input() *tview.InputField {
	return v.input
}

// SetRiskLevel moves the drop-down to level without firing the level callback.
func (v *FilterBarView) SetRiskLevel(level store.RiskLevel) {
	for i, l := range store.AllRiskLevels {
		if l != level {
			continue
		}
		if current, _ := v.dropDown.GetCurrentOption(); current != i {
			v.syncing = true
			v.dropDown.SetCurrentOption(i)
			v.syncing = false
		}
		return
	}
}

// Update refreshes the status line.
func (v *FilterBarView) Update(loading bool, errMsg string, lastUpdated time.Time) {
	var parts []string
	if loading {
		parts = append(parts, "[yellow]Loading...[-]")
	}
	if errMsg != "" {
		parts = append(parts, fmt.Sprintf("[red]%s[-]", tview.Escape(errMsg)))
	}
	parts = append(parts, "Last updated: "+view.FormatTime(lastUpdated))

	v.status.SetText(strings.Join(parts, "  "))
}
