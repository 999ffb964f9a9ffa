package crawler

import "github.com/nao1215/crawler/internal/model"

// Archive is the set of findings already known to the crawl.
// It only grows. Not safe for concurrent use; the dispatcher owns it.
type Archive struct {
	seen map[model.Finding]struct{}
}

// NewArchive returns an archive holding the given findings.
func NewArchive(findings ...model.Finding) *Archive {
	a := &Archive{seen: make(map[model.Finding]struct{}, len(findings))}
	a.InsertAll(findings...)
	return a
}

// Contains reports whether f is already known.
func (a *Archive) Contains(f model.Finding) bool {
	_, ok := a.seen[f]
	return ok
}

// InsertAll adds findings to the archive.
func (a *Archive) InsertAll(findings ...model.Finding) {
	for _, f := range findings {
		a.seen[f] = struct{}{}
	}
}

// Difference returns the findings that are not in the archive, in input
// order, with duplicates inside findings collapsed. It does not insert them.
func (a *Archive) Difference(findings []model.Finding) []model.Finding {
	fresh := make([]model.Finding, 0, len(findings))
	batch := make(map[model.Finding]struct{}, len(findings))
	for _, f := range findings {
		if a.Contains(f) {
			continue
		}
		if _, dup := batch[f]; dup {
			continue
		}
		batch[f] = struct{}{}
		fresh = append(fresh, f)
	}
	return fresh
}

// Len returns the number of known findings.
func (a *Archive) Len() int {
	return len(a.seen)
}
