package extension

import (
	"math"
	"sync"
)

// Phase is the panel's content state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResult
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseResult:
		return "result"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Showing says which text a result panel displays.
type Showing string

const (
	ShowingSimplified Showing = "simplified"
	ShowingOriginal   Showing = "original"
)

const (
	DefaultFontSize = 15
	MinFontSize     = 12
	MaxFontSize     = 28

	panelMargin = 10
)

// Button labels.
const (
	LabelCopySimplified = "Copy simplified text"
	LabelCopyOriginal   = "Copy original text"
	LabelShowOriginal   = "Show original"
	LabelShowSimplified = "Show simplified"
)

// Panel is the in-page result panel. A page has one; every invocation
// reuses it.
type Panel struct {
	mu sync.Mutex

	Phase      Phase
	Original   string
	Simplified string
	Visible    bool
	Showing    Showing
	FontSize   int
	Error      string
}

func NewPanel() *Panel {
	return &Panel{FontSize: DefaultFontSize, Showing: ShowingSimplified}
}

// Send implements Sink.
func (p *Panel) Send(msg Message) {
	p.Apply(msg)
}

// Apply moves the panel to the state msg describes. Loading and error make
// the panel visible. A result fills a panel that is already open and stays
// hidden if the user closed it while waiting.
func (p *Panel) Apply(msg Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch msg.Type {
	case MessageLoading:
		p.Phase = PhaseLoading
		p.Error = ""
		p.Visible = true
	case MessageResult:
		p.Phase = PhaseResult
		p.Original = msg.Original
		p.Simplified = msg.Simplified
		p.Showing = ShowingSimplified
		p.Error = ""
	case MessageError:
		p.Phase = PhaseError
		p.Error = msg.Error
		p.Visible = true
	}
}

// Toggle flips a result panel between the simplified and original text.
func (p *Panel) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Phase != PhaseResult {
		return
	}
	if p.Showing == ShowingOriginal {
		p.Showing = ShowingSimplified
	} else {
		p.Showing = ShowingOriginal
	}
}

// Text is the body currently displayed.
func (p *Panel) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text()
}

func (p *Panel) text() string {
	if p.Showing == ShowingOriginal {
		return p.Original
	}
	return p.Simplified
}

// CopyText returns the displayed text and the copy button label that goes
// with it.
func (p *Panel) CopyText() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text(), p.copyLabel()
}

// Labels returns the copy and toggle button labels.
func (p *Panel) Labels() (copyLabel, toggleLabel string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Showing == ShowingOriginal {
		return p.copyLabel(), LabelShowSimplified
	}
	return p.copyLabel(), LabelShowOriginal
}

func (p *Panel) copyLabel() string {
	if p.Showing == ShowingOriginal {
		return LabelCopyOriginal
	}
	return LabelCopySimplified
}

// AdjustFont changes the result font size. Changes that would leave
// [MinFontSize, MaxFontSize] are ignored.
func (p *Panel) AdjustFont(delta int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	size := p.FontSize + delta
	if size < MinFontSize || size > MaxFontSize {
		return false
	}
	p.FontSize = size
	return true
}

func (p *Panel) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Visible = false
}

// Rect is a selection's bounding box in viewport coordinates.
type Rect struct {
	Left, Top, Width, Height float64
}

func (r Rect) Bottom() float64 { return r.Top + r.Height }

type Size struct {
	Width, Height float64
}

type Viewport struct {
	Width, Height, ScrollY float64
}

// Point is a page-coordinate position for the panel's top-left corner.
type Point struct {
	Left, Top float64
}

// Position places the panel centred below the selection, kept inside the
// viewport horizontally, and flipped above the selection when it would run
// past the bottom of the viewport.
func Position(selection Rect, panel Size, vp Viewport) Point {
	left := selection.Left + selection.Width/2 - panel.Width/2
	left = math.Max(panelMargin, math.Min(left, vp.Width-panel.Width-panelMargin))

	top := selection.Bottom() + panelMargin + vp.ScrollY
	if top+panel.Height > vp.Height+vp.ScrollY {
		top = selection.Top - panel.Height - panelMargin + vp.ScrollY
	}
	return Point{Left: left, Top: top}
}
