package view

import "github.com/riskdesk/console/internal/store"

// Query is the view-side state a surface keeps: search text, page and sort.
type Query struct {
	Search   string  `json:"search"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Sort     SortKey `json:"sort"`
	Desc     bool    `json:"desc"`
}

// Row is one table row with its presentational classification.
type Row struct {
	Item      store.TransactionItem `json:"item"`
	Score     int                   `json:"score"`
	Band      ScoreBand             `json:"score_band"`
	Tone      Tone                  `json:"tone"`
	Badge     string                `json:"badge"`
	Amount    string                `json:"amount"`
	Device    string                `json:"device"`
	Timestamp string                `json:"timestamp"`
}

// Page is the whole derived view of a snapshot for one query.
type Page struct {
	KPIs       KPIs  `json:"kpis"`
	Rows       []Row `json:"rows"`
	PageIndex  int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	Matched    int   `json:"matched"`
	Fetched    int   `json:"fetched"`
}

// Build derives the page for q from resp. The page index is clamped into
// range for the filtered set; resp may be nil.
func Build(resp *store.RiskDecisionResponse, q Query) Page {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	var items []store.TransactionItem
	if resp != nil {
		items = resp.Items
	}

	filtered := SortItems(FilterItems(items, q.Search), q.Sort, q.Desc)
	pager := &Pager{Index: q.Page, Size: size}
	pager.Clamp(len(filtered))

	pageItems := pager.Slice(filtered)
	rows := make([]Row, 0, len(pageItems))
	for _, item := range pageItems {
		rows = append(rows, NewRow(item))
	}

	return Page{
		KPIs:       ComputeKPIs(resp),
		Rows:       rows,
		PageIndex:  pager.Index,
		PageSize:   size,
		TotalPages: TotalPages(len(filtered), size),
		HasNext:    pager.HasNext(len(filtered)),
		HasPrev:    pager.HasPrev(),
		Matched:    len(filtered),
		Fetched:    len(items),
	}
}

// NewRow classifies one item for display.
func NewRow(item store.TransactionItem) Row {
	return Row{
		Item:      item,
		Score:     ClampScore(item.RiskScore),
		Band:      ScoreBandOf(item.RiskScore),
		Tone:      RiskTone(item.RiskLevel),
		Badge:     BadgeLabel(item.RiskLevel),
		Amount:    FormatCurrency(Amount(item)),
		Device:    ShortDevice(item.DeviceID),
		Timestamp: FormatDateTime(Timestamp(item)),
	}
}

// Detail is the drawer content for one transaction.
type Detail struct {
	Row
	Signals   []store.Signal `json:"signals"`
	Reasons   []string       `json:"reasons"`
	CreatedAt string         `json:"created_at"`
}

// NewDetail decodes the embedded signals and reasons of item.
func NewDetail(item store.TransactionItem) Detail {
	return Detail{
		Row:       NewRow(item),
		Signals:   DecodeSignals(item.TopSignalsJSON),
		Reasons:   SplitReasons(item.Reasons),
		CreatedAt: FormatDateTime(item.CreatedAt),
	}
}

// FindByOrderID returns the first item in resp with the given order id.
func FindByOrderID(resp *store.RiskDecisionResponse, orderID int64) (store.TransactionItem, bool) {
	if resp == nil {
		return store.TransactionItem{}, false
	}
	for _, item := range resp.Items {
		if item.OrderID == orderID {
			return item, true
		}
	}
	return store.TransactionItem{}, false
}
