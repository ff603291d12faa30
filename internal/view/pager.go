package view

import "github.com/riskdesk/console/internal/store"

// DefaultPageSize is the number of table rows per page.
const DefaultPageSize = 50

// TotalPages returns ceil(n/size).
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Pager tracks the current page over a filtered item set of changing size.
type Pager struct {
	Index int
	Size  int
}

// NewPager creates a Pager at page 0.
func NewPager(size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{Size: size}
}

// HasNext reports whether a page follows the current one for n items.
func (p *Pager) HasNext(n int) bool {
	return p.Index < TotalPages(n, p.Size)-1
}

// HasPrev reports whether the current page is past the first.
func (p *Pager) HasPrev() bool {
	return p.Index > 0
}

// Next advances one page. It is a no-op on the last page.
func (p *Pager) Next(n int) bool {
	if !p.HasNext(n) {
		return false
	}
	p.Index++
	return true
}

// Prev goes back one page. It is a no-op on the first page.
func (p *Pager) Prev() bool {
	if !p.HasPrev() {
		return false
	}
	p.Index--
	return true
}

// Reset returns to page 0. Called whenever the search or filter changes.
func (p *Pager) Reset() {
	p.Index = 0
}

// Clamp pulls the index back into range after the item set shrank.
func (p *Pager) Clamp(n int) {
	p.Index = clampPage(p.Index, n, p.Size)
}

// Slice returns the current page of items.
func (p *Pager) Slice(items []store.TransactionItem) []store.TransactionItem {
	return Paginate(items, p.Index, p.Size)
}

// Paginate returns page index of items, or nil when the page is out of range.
func Paginate(items []store.TransactionItem, index, size int) []store.TransactionItem {
	if size <= 0 || index < 0 {
		return nil
	}
	lo := index * size
	if lo >= len(items) {
		return nil
	}
	hi := min(lo+size, len(items))
	return items[lo:hi]
}

func clampPage(index, n, size int) int {
	last := TotalPages(n, size) - 1
	if index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	return index
}
