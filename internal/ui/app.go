// Package ui provides the terminal user interface.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/riskdesk/console/internal/metrics"
	"github.com/riskdesk/console/internal/poller"
	"github.com/riskdesk/console/internal/store"
	"github.com/riskdesk/console/internal/view"
	"github.com/rivo/tview"
)

const (
	pageMain   = "main"
	pageDetail = "detail"
)

// Controller is the part of the polling store the UI drives.
type Controller interface {
	State() poller.State
	Refresh()
	SetRiskLevel(level store.RiskLevel) error
	Subscribe(fn func(poller.State))
}

type sortMode struct {
	key   view.SortKey
	desc  bool
	label string
}

var sortModes = []sortMode{
	{view.SortNone, false, "server order"},
	{view.SortRiskScore, true, "score, highest first"},
	{view.SortRiskScore, false, "score, lowest first"},
	{view.SortAmount, true, "amount, highest first"},
	{view.SortCreatedAt, true, "newest first"},
	{view.SortOrderID, false, "order id"},
}

// App is the main TUI application.
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	layout *tview.Flex

	// Views
	kpiPanel     *KPIPanelView
	filterBar    *FilterBarView
	transactions *TransactionsView
	detailDrawer *DetailDrawerView
	feedStatus   *FeedStatusView

	controller Controller
	tracker    *metrics.Tracker

	// View state. Only touched on the event loop goroutine.
	state  poller.State
	search string
	pager  *view.Pager
	sort   int
	page   view.Page

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new TUI application driving controller. It subscribes to
// state changes immediately so none are missed before Run.
func NewApp(controller Controller, tracker *metrics.Tracker, pageSize int) *App {
	if tracker == nil {
		tracker = metrics.NewTracker()
	}
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:        tview.NewApplication(),
		controller: controller,
		tracker:    tracker,
		state:      controller.State(),
		pager:      view.NewPager(pageSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	// Initialize views
	a.kpiPanel = NewKPIPanelView()
	a.filterBar = NewFilterBarView(a.setSearch, a.requestRiskLevel)
	a.transactions = NewTransactionsView(a.openDetail)
	a.detailDrawer = NewDetailDrawerView()
	a.feedStatus = NewFeedStatusView()

	a.setupLayout()
	a.setupKeyboard()
	a.render()

	controller.Subscribe(a.onState)

	return a
}

// setupLayout stacks the KPI and feed panels, the filter bar and the table,
// with the detail drawer as an overlay page on the right.
func (a *App) setupLayout() {
	topRow := tview.NewFlex().
		AddItem(a.kpiPanel.Widget(), 0, 2, false).
		AddItem(a.feedStatus.Widget(), 0, 1, false)

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 13, 0, false).
		AddItem(a.filterBar.Widget(), 3, 0, false).
		AddItem(a.transactions.Widget(), 0, 1, true)

	drawer := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(a.detailDrawer.Widget(), 0, 2, true)

	a.pages = tview.NewPages().
		AddPage(pageMain, a.layout, true, true).
		AddPage(pageDetail, drawer, true, false)

	a.app.SetRoot(a.pages, true).SetFocus(a.transactions.Table())
}

// setupKeyboard configures keyboard shortcuts.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.handleKey(event.Key(), event.Rune()) {
			return nil
		}
		return event
	})
}

// handleKey applies a global shortcut and reports whether the key was used.
func (a *App) handleKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyCtrlC {
		a.Stop()
		return true
	}

	if a.detailOpen() {
		if key == tcell.KeyEscape {
			a.closeDetail()
			return true
		}
		return false
	}

	// Keys typed into the search box belong to it.
	if a.app.GetFocus() == a.filterBar.Input() {
		if key == tcell.KeyEscape || key == tcell.KeyEnter || key == tcell.KeyTab {
			a.app.SetFocus(a.transactions.Table())
			return true
		}
		return false
	}

	if key != tcell.KeyRune {
		return false
	}

	switch r {
	case 'q', 'Q':
		a.Stop()
	case 'r', 'R':
		a.refresh()
	case '/':
		a.app.SetFocus(a.filterBar.Input())
	case '1', '2', '3', '4':
		a.requestRiskLevel(store.AllRiskLevels[r-'1'])
	case 'n':
		if a.pager.Next(a.page.Matched) {
			a.render()
		}
	case 'p':
		if a.pager.Prev() {
			a.render()
		}
	case 's':
		a.sort = (a.sort + 1) % len(sortModes)
		a.pager.Reset()
		a.render()
	default:
		return false
	}
	return true
}

// Run starts the TUI application (blocking).
func (a *App) Run() error {
	go a.updateLoop()

	// Run the TUI (blocking)
	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// onState is the store listener. It runs on the store's goroutines.
func (a *App) onState(st poller.State) {
	if a.ctx.Err() != nil {
		return
	}
	a.app.QueueUpdateDraw(func() {
		a.applyState(st)
	})
}

func (a *App) applyState(st poller.State) {
	a.state = st
	a.render()
}

// updateLoop periodically refreshes the feed status panel.
func (a *App) updateLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			snapshot := a.tracker.Snapshot()

			a.app.QueueUpdateDraw(func() {
				a.feedStatus.Update(snapshot, a.state.RiskLevel)
			})
		}
	}
}

// render derives the current page and redraws every view.
func (a *App) render() {
	mode := sortModes[a.sort]
	a.page = view.Build(a.state.Snapshot, view.Query{
		Search:   a.search,
		Page:     a.pager.Index,
		PageSize: a.pager.Size,
		Sort:     mode.key,
		Desc:     mode.desc,
	})
	a.pager.Clamp(a.page.Matched)

	a.kpiPanel.Update(a.page.KPIs, a.state.Snapshot != nil)
	a.filterBar.SetRiskLevel(a.state.RiskLevel)
	a.filterBar.Update(a.state.Loading, a.state.Error, a.state.LastUpdated)
	a.transactions.Update(a.page, a.state.Loading, mode.label)
	a.feedStatus.Update(a.tracker.Snapshot(), a.state.RiskLevel)

	if a.detailOpen() {
		if item, ok := view.FindByOrderID(a.state.Snapshot, a.detailDrawer.OrderID()); ok {
			a.detailDrawer.Show(view.NewDetail(item))
		}
	}
}

// setSearch is the search box callback.
func (a *App) setSearch(text string) {
	a.search = text
	a.pager.Reset()
	a.render()
}

// requestRiskLevel asks the store for a new level off the event loop, since
// the store notifies listeners synchronously.
func (a *App) requestRiskLevel(level store.RiskLevel) {
	a.pager.Reset()
	go func() {
		if err := a.controller.SetRiskLevel(level); err != nil {
			slog.Warn("risk_level_rejected", "risk_level", level, "error", err)
		}
	}()
}

// refresh asks for an immediate fetch unless one is already showing as loading.
func (a *App) refresh() {
	if a.state.Loading {
		return
	}
	go a.controller.Refresh()
}

func (a *App) openDetail(orderID int64) {
	item, ok := view.FindByOrderID(a.state.Snapshot, orderID)
	if !ok {
		return
	}
	a.detailDrawer.Show(view.NewDetail(item))
	a.pages.ShowPage(pageDetail)
	a.app.SetFocus(a.detailDrawer.Widget())
}

func (a *App) closeDetail() {
	a.pages.HidePage(pageDetail)
	a.app.SetFocus(a.transactions.Table())
}

func (a *App) detailOpen() bool {
	name, _ := a.pages.GetFrontPage()
	return name == pageDetail
}
