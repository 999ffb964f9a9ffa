package crawler

import (
	"context"

	"github.com/nao1215/crawler/internal/model"
)

// Recorder receives one record per harvested task.
// The dispatcher calls it from its own goroutine, so implementations need
// not be safe for concurrent use. Errors are logged and otherwise ignored.
type Recorder interface {
	RecordPage(ctx context.Context, visit model.PageVisit) error
	RecordResource(ctx context.Context, visit model.ResourceVisit) error
}

// nopRecorder discards every record.
type nopRecorder struct{}

func (nopRecorder) RecordPage(context.Context, model.PageVisit) error { return nil }

func (nopRecorder) RecordResource(context.Context, model.ResourceVisit) error { return nil }
