package crawler

import (
	"testing"

	"github.com/nao1215/crawler/internal/model"
)

func TestArchive(t *testing.T) {
	t.Parallel()

	t.Run("seeds are known at construction", func(t *testing.T) {
		t.Parallel()

		seed := model.NewPage("https://a.test/", 0)
		a := NewArchive(seed)
		if !a.Contains(seed) {
			t.Error("expected seed to be contained")
		}
		if a.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", a.Len())
		}
	})

	t.Run("difference skips known findings", func(t *testing.T) {
		t.Parallel()

		a := NewArchive(model.NewPage("https://a.test/", 0))
		input := []model.Finding{
			model.NewPage("https://a.test/", 0),
			model.NewPage("https://a.test/", 1),
			model.NewImage("https://a.test/i.png"),
		}

		got := a.Difference(input)
		if len(got) != 2 {
			t.Fatalf("expected 2 fresh findings, got %v", got)
		}
		if got[0] != input[1] || got[1] != input[2] {
			t.Errorf("unexpected difference %v", got)
		}
	})

	t.Run("difference collapses duplicates in the input", func(t *testing.T) {
		t.Parallel()

		a := NewArchive()
		img := model.NewImage("https://a.test/i.png")
		got := a.Difference([]model.Finding{img, img, img})
		if len(got) != 1 {
			t.Errorf("expected 1 finding, got %v", got)
		}
	})

	t.Run("difference does not insert", func(t *testing.T) {
		t.Parallel()

		a := NewArchive()
		a.Difference([]model.Finding{model.NewImage("https://a.test/i.png")})
		if a.Len() != 0 {
			t.Errorf("expected empty archive, got %d entries", a.Len())
		}
	})

	t.Run("dedup is idempotent", func(t *testing.T) {
		t.Parallel()

		a := NewArchive()
		input := []model.Finding{
			model.NewPage("https://a.test/x", 1),
			model.NewPage("https://a.test/y", 1),
			model.NewImage("https://a.test/z.png"),
		}

		first := a.Difference(input)
		a.InsertAll(first...)
		second := a.Difference(input)

		if len(first) != 3 {
			t.Errorf("expected 3 findings on first pass, got %d", len(first))
		}
		if len(second) != 0 {
			t.Errorf("expected nothing on second pass, got %v", second)
		}
	})
}

func TestFrontier(t *testing.T) {
	t.Parallel()

	f := NewFrontier(model.NewPage("https://a.test/", 0))
	f.Push(model.NewImage("https://a.test/i.png"))
	if f.Len() != 2 || f.Empty() {
		t.Fatalf("expected 2 pending findings, got %d", f.Len())
	}

	drained := f.Drain()
	if len(drained) != 2 {
		t.Errorf("expected 2 drained findings, got %d", len(drained))
	}
	if !f.Empty() {
		t.Errorf("expected empty frontier after drain, got %d", f.Len())
	}

	f.Push(drained[0])
	if f.Len() != 1 {
		t.Errorf("expected 1 pending finding after push, got %d", f.Len())
	}
}
