package crawler

import "github.com/nao1215/crawler/internal/model"

// Frontier holds findings awaiting admission. Order carries no meaning.
type Frontier struct {
	pending []model.Finding
}

// NewFrontier returns a frontier holding findings.
func NewFrontier(findings ...model.Finding) *Frontier {
	f := &Frontier{}
	f.Push(findings...)
	return f
}

// Push adds findings.
func (f *Frontier) Push(findings ...model.Finding) {
	f.pending = append(f.pending, findings...)
}

// Drain removes and returns every pending finding.
func (f *Frontier) Drain() []model.Finding {
	pending := f.pending
	f.pending = nil
	return pending
}

// Len returns the number of pending findings.
func (f *Frontier) Len() int {
	return len(f.pending)
}

// Empty reports whether nothing is pending.
func (f *Frontier) Empty() bool {
	return len(f.pending) == 0
}
