package diag

import (
	"sort"

	"corvid/internal/source"
)

// Bag collects diagnostics. A zero max means unlimited.
type Bag struct {
	items []*Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{
		items: make([]*Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil {
		return false
	}
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddAll adds every diagnostic until the limit is hit.
func (b *Bag) AddAll(ds []*Diagnostic) {
	for _, d := range ds {
		if !b.Add(d) {
			return
		}
	}
}

// HasErrors возвращает true, если есть хотя бы одна видимая ошибка.
func (b *Bag) HasErrors() bool {
	return HasErrors(b.items)
}

// HasWarnings возвращает true, если есть хотя бы одно видимое предупреждение.
func (b *Bag) HasWarnings() bool {
	for _, d := range b.items {
		if d.Counts() && d.Severity == SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, игнорируя лимит.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics deterministically: file order (as given by rank), start, end,
// severity (desc), code (asc). Spans without a file come first.
func (b *Bag) Sort(rank func(source.FileID) int) {
	SortDiagnostics(b.items, rank)
}

// SortDiagnostics sorts in place; rank maps a file to its unit ordinal.
func SortDiagnostics(items []*Diagnostic, rank func(source.FileID) int) {
	if rank == nil {
		rank = func(id source.FileID) int { return int(id) }
	}
	key := func(d *Diagnostic) int {
		if d.Primary.IsNone() {
			return -1
		}
		return rank(d.Primary.File)
	}
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i], items[j]
		if ki, kj := key(di), key(dj); ki != kj {
			return ki < kj
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// HasErrors reports whether any visible diagnostic is an error.
func HasErrors(items []*Diagnostic) bool {
	for _, d := range items {
		if d.Counts() && d.Severity >= SevError {
			return true
		}
	}
	return false
}
