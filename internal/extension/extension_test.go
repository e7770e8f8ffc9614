package extension

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpackhq/unpack/internal/client"
	"github.com/unpackhq/unpack/internal/core"
)

type apiFunc func(ctx context.Context, text string) (*core.SimplifyResponse, error)

func (f apiFunc) Simplify(ctx context.Context, text string) (*core.SimplifyResponse, error) {
	return f(ctx, text)
}

type recorder struct {
	msgs []Message
}

func (r *recorder) Send(msg Message) { r.msgs = append(r.msgs, msg) }

func TestBackgroundShortSelection(t *testing.T) {
	called := false
	bg := NewBackground(apiFunc(func(ctx context.Context, text string) (*core.SimplifyResponse, error) {
		called = true
		return nil, nil
	}), nil)

	rec := &recorder{}
	bg.HandleSelection(context.Background(), "   tiny   ", rec)

	assert.False(t, called)
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, Error(MsgSelectMore), rec.msgs[0])
}

func TestBackgroundSuccess(t *testing.T) {
	selection := "  The utilization of the mechanism.  "
	var sent string
	bg := NewBackground(apiFunc(func(ctx context.Context, text string) (*core.SimplifyResponse, error) {
		sent = text
		return &core.SimplifyResponse{Simplified: "We used the tool."}, nil
	}), nil)

	rec := &recorder{}
	bg.HandleSelection(context.Background(), selection, rec)

	assert.Equal(t, selection, sent)
	require.Len(t, rec.msgs, 2)
	assert.Equal(t, MessageLoading, rec.msgs[0].Type)
	assert.Equal(t, Result(selection, "We used the tool."), rec.msgs[1])
}

func TestBackgroundFailureIsGeneric(t *testing.T) {
	bg := NewBackground(apiFunc(func(ctx context.Context, text string) (*core.SimplifyResponse, error) {
		return nil, &client.APIError{StatusCode: http.StatusServiceUnavailable, Message: "Service busy. Please try again in a moment."}
	}), nil)

	rec := &recorder{}
	bg.HandleSelection(context.Background(), "The utilization of the mechanism.", rec)

	require.Len(t, rec.msgs, 2)
	assert.Equal(t, Error(MsgCouldNotSimplify), rec.msgs[1])
}

func TestBackgroundDrivesPanel(t *testing.T) {
	panel := NewPanel()
	bg := NewBackground(apiFunc(func(ctx context.Context, text string) (*core.SimplifyResponse, error) {
		assert.Equal(t, PhaseLoading, panel.Phase)
		assert.True(t, panel.Visible)
		return &core.SimplifyResponse{Simplified: "Plain."}, nil
	}), nil)

	bg.HandleSelection(context.Background(), "The utilization of the mechanism.", panel)

	assert.Equal(t, PhaseResult, panel.Phase)
	assert.Equal(t, "Plain.", panel.Text())
	assert.Equal(t, ShowingSimplified, panel.Showing)
}

func TestPopupShortInput(t *testing.T) {
	p := NewPopup(apiFunc(func(ctx context.Context, text string) (*core.SimplifyResponse, error) {
		t.Fatal("api must not be called")
		return nil, nil
	}))
	p.Submit(context.Background(), " short ")
	assert.Equal(t, MsgEnterMore, p.Error)
	assert.False(t, p.Loading)

	p.Error = ""
	p.Submit(context.Background(), "\uFEFF123456789\uFEFF")
	assert.Equal(t, MsgEnterMore, p.Error)
}

func TestPopupClearsLoadingOnEveryPath(t *testing.T) {
	cases := map[string]struct {
		err       error
		wantError string
	}{
		"success":      {},
		"api message":  {err: &client.APIError{StatusCode: 400, Message: "Text too short to simplify"}, wantError: "Text too short to simplify"},
		"no message":   {err: &client.APIError{StatusCode: 502}, wantError: MsgRequestFailed},
		"wrapped":      {err: fmt.Errorf("simplify: %w", &client.APIError{StatusCode: 500}), wantError: MsgRequestFailed},
		"network down": {err: errors.New("dial tcp: refused"), wantError: MsgPopupFallback},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var p *Popup
			var sent string
			p = NewPopup(apiFunc(func(ctx context.Context, text string) (*core.SimplifyResponse, error) {
				sent = text
				assert.True(t, p.Loading)
				assert.True(t, p.ButtonDisabled)
				if tc.err != nil {
					return nil, tc.err
				}
				return &core.SimplifyResponse{Simplified: "Plain."}, nil
			}))

			p.Submit(context.Background(), "  The utilization of the mechanism.  ")

			assert.Equal(t, "The utilization of the mechanism.", sent)
			assert.False(t, p.Loading)
			assert.False(t, p.ButtonDisabled)
			if tc.wantError == "" {
				assert.Equal(t, "Plain.", p.Result)
				assert.Empty(t, p.Error)
			} else {
				assert.Equal(t, tc.wantError, p.Error)
				assert.Empty(t, p.Result)
			}
		})
	}
}

func TestPopupCopyLabel(t *testing.T) {
	p := NewPopup(nil)
	p.Result = "Plain."
	assert.Equal(t, "Plain.", p.Copy())
	assert.Equal(t, CopiedLabel, p.CopyLabel)
	p.ResetCopyLabel()
	assert.Equal(t, PopupCopyLabel, p.CopyLabel)
}

func TestPanelTransitions(t *testing.T) {
	p := NewPanel()
	assert.Equal(t, PhaseIdle, p.Phase)

	p.Apply(Loading())
	assert.Equal(t, PhaseLoading, p.Phase)
	assert.True(t, p.Visible)

	p.Apply(Result("Hard words here.", "Easy words."))
	assert.Equal(t, PhaseResult, p.Phase)

	text, label := p.CopyText()
	assert.Equal(t, "Easy words.", text)
	assert.Equal(t, LabelCopySimplified, label)

	p.Toggle()
	text, label = p.CopyText()
	assert.Equal(t, "Hard words here.", text)
	assert.Equal(t, LabelCopyOriginal, label)
	copyLabel, toggleLabel := p.Labels()
	assert.Equal(t, LabelCopyOriginal, copyLabel)
	assert.Equal(t, LabelShowSimplified, toggleLabel)

	// A new run starts from the simplified view.
	p.Apply(Loading())
	p.Apply(Result("Second.", "2nd."))
	assert.Equal(t, "2nd.", p.Text())
	_, toggleLabel = p.Labels()
	assert.Equal(t, LabelShowOriginal, toggleLabel)

	p.Apply(Error("nope"))
	assert.Equal(t, PhaseError, p.Phase)
	assert.Equal(t, "nope", p.Error)

	p.Hide()
	assert.False(t, p.Visible)
}

func TestPanelResultAfterHideStaysHidden(t *testing.T) {
	p := NewPanel()
	p.Apply(Loading())
	p.Hide()
	p.Apply(Result("a", "b"))
	assert.False(t, p.Visible)
	assert.Equal(t, PhaseResult, p.Phase)
}

func TestPanelToggleOutsideResultIsNoop(t *testing.T) {
	p := NewPanel()
	p.Apply(Error("x"))
	p.Toggle()
	assert.Equal(t, ShowingSimplified, p.Showing)
}

func TestPanelFontClamp(t *testing.T) {
	p := NewPanel()
	assert.Equal(t, DefaultFontSize, p.FontSize)

	for i := 0; i < 20; i++ {
		p.AdjustFont(1)
	}
	assert.Equal(t, MaxFontSize, p.FontSize)
	assert.False(t, p.AdjustFont(1))

	for i := 0; i < 30; i++ {
		p.AdjustFont(-1)
	}
	assert.Equal(t, MinFontSize, p.FontSize)
	assert.False(t, p.AdjustFont(-1))
	assert.True(t, p.AdjustFont(1))
}

func TestPosition(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800, ScrollY: 200}
	panel := Size{Width: 300, Height: 150}

	// Centred below the selection.
	got := Position(Rect{Left: 400, Top: 100, Width: 200, Height: 20}, panel, vp)
	assert.Equal(t, Point{Left: 350, Top: 330}, got)

	// Clamped to the left margin.
	got = Position(Rect{Left: 0, Top: 100, Width: 20, Height: 20}, panel, vp)
	assert.Equal(t, 10.0, got.Left)

	// Clamped to the right margin.
	got = Position(Rect{Left: 980, Top: 100, Width: 20, Height: 20}, panel, vp)
	assert.Equal(t, 690.0, got.Left)

	// Flipped above when it would overflow the bottom.
	got = Position(Rect{Left: 400, Top: 700, Width: 200, Height: 20}, panel, vp)
	assert.Equal(t, 700.0-150-10+200, got.Top)
}

func TestDecodeMessage(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"UNPACK_RESULT","original":"a","simplified":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, Result("a", "b"), msg)

	_, err = DecodeMessage([]byte(`{"type":"UNPACK_OTHER"}`))
	assert.Error(t, err)
}
