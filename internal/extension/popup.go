package extension

import (
	"context"
	"errors"

	"github.com/unpackhq/unpack/internal/client"
	"github.com/unpackhq/unpack/internal/core"
)

const (
	MsgEnterMore     = "Please enter at least 10 characters."
	MsgPopupFallback = "Failed to simplify. Please try again."
	MsgRequestFailed = "Request failed"
	PopupCopyLabel   = "Copy"
	CopiedLabel      = "Copied!"
)

// Popup is the toolbar popup: a text box, a button and one output area.
// Result and Error are mutually exclusive.
type Popup struct {
	API API

	Loading        bool
	ButtonDisabled bool
	Result         string
	Error          string
	CopyLabel      string
}

func NewPopup(api API) *Popup {
	return &Popup{API: api, CopyLabel: PopupCopyLabel}
}

// Submit simplifies the trimmed input. Loading and the disabled button are
// cleared on every path once the call returns.
func (p *Popup) Submit(ctx context.Context, input string) {
	text := core.TrimText(input)
	if core.TextLength(text) < core.MinTextLength {
		p.showError(MsgEnterMore)
		return
	}

	p.Result, p.Error = "", ""
	p.Loading = true
	p.ButtonDisabled = true
	defer func() {
		p.Loading = false
		p.ButtonDisabled = false
	}()

	if p.API == nil {
		p.showError(MsgPopupFallback)
		return
	}
	resp, err := p.API.Simplify(ctx, text)
	if err != nil {
		p.showError(popupErrorMessage(err))
		return
	}
	p.Result = resp.Simplified
	p.Error = ""
}

// Copy returns the result text and switches the button label to Copied!.
func (p *Popup) Copy() string {
	p.CopyLabel = CopiedLabel
	return p.Result
}

// ResetCopyLabel restores the label after the copied notice.
func (p *Popup) ResetCopyLabel() {
	p.CopyLabel = PopupCopyLabel
}

func (p *Popup) showError(msg string) {
	p.Error = msg
	p.Result = ""
}

// popupErrorMessage prefers the API's message. A non-2xx reply without one
// reads "Request failed"; transport errors get the generic fallback.
func popupErrorMessage(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return MsgPopupFallback
	}
	if msg := client.ErrorMessage(err); msg != "" {
		return msg
	}
	return MsgRequestFailed
}
