package extension

import (
	"context"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/core"
)

const (
	MsgSelectMore       = "Please select more text to simplify."
	MsgCouldNotSimplify = "Could not simplify text. Please try again."
)

// API is the part of the HTTP client the flows depend on.
type API interface {
	Simplify(ctx context.Context, text string) (*core.SimplifyResponse, error)
}

// Background handles "Unpack this" on a page selection.
type Background struct {
	API    API
	Logger *logging.Logger
}

func NewBackground(api API, logger *logging.Logger) *Background {
	return &Background{API: api, Logger: logger}
}

// HandleSelection simplifies a selection and reports progress to sink.
// Short selections never reach the API. Any API failure is reported with
// the same generic message.
func (b *Background) HandleSelection(ctx context.Context, selection string, sink Sink) {
	if sink == nil {
		sink = SinkFunc(func(Message) {})
	}
	if core.TextLength(core.TrimText(selection)) < core.MinTextLength {
		sink.Send(Error(MsgSelectMore))
		return
	}

	sink.Send(Loading())

	if b.API == nil {
		sink.Send(Error(MsgCouldNotSimplify))
		return
	}
	resp, err := b.API.Simplify(ctx, selection)
	if err != nil {
		if b.Logger != nil {
			b.Logger.Warn("Selection simplify failed", zap.Error(err))
		}
		sink.Send(Error(MsgCouldNotSimplify))
		return
	}

	sink.Send(Result(selection, resp.Simplified))
}
