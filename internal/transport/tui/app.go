package tui

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/state"
	"github.com/kailas-cloud/boostube/internal/usecase/page"
)

const (
	promptMarker = "> "
	helpText     = "Enter submit  Ctrl-R reset  Esc quit  click to pop particles"
	inputRow     = 3
	panelTop     = 5
)

// App runs one tool page on a terminal screen.
type App struct {
	screen tcell.Screen
	page   *page.Page
	canvas *Canvas
	editor LineEditor
	logger *zap.Logger
	redraw chan struct{}
}

// New creates an app for p on an initialised screen. The caller owns the
// screen and finalises it after Run returns.
func New(screen tcell.Screen, p *page.Page, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		screen: screen,
		page:   p,
		canvas: NewCanvas(screen),
		logger: logger,
		redraw: make(chan struct{}, 1),
	}
}

// Run opens the page and processes input until the user quits or ctx is
// done. The page is closed before Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.screen.EnableMouse()
	a.resize()

	a.page.Animator.OnFrame(a.requestRedraw)
	unsubscribe := a.page.Pipeline.OnChange(func(state.State) { a.requestRedraw() })
	defer unsubscribe()

	a.page.Open(ctx)
	defer a.page.Close()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.logger.Info("Page opened", zap.String("tool", string(a.page.Tool.ID)))
	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !a.handleEvent(ctx, ev) {
				a.logger.Info("Page closed", zap.String("tool", string(a.page.Tool.ID)))
				return nil
			}
			a.draw()
		case <-a.redraw:
			a.draw()
		}
	}
}

func (a *App) requestRedraw() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// handleEvent applies one terminal event. It returns false when the user quits.
func (a *App) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			a.submit(ctx, a.editor.Text())
		case tcell.KeyCtrlR:
			a.page.Pipeline.Reset()
			a.editor.SetText("")
		default:
			a.editor.HandleKey(ev)
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := PointAt(ev.Position())
			if n := a.page.Animator.Hit(x, y); n > 0 {
				a.logger.Debug("Particles removed", zap.Int("count", n), zap.Float64("x", x), zap.Float64("y", y))
			}
		}
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	}
	return true
}

// submit runs the submission in the background; the pipeline reports
// progress through OnChange.
func (a *App) submit(ctx context.Context, input string) {
	go func() {
		_, err := a.page.Pipeline.Submit(ctx, input)
		switch {
		case err == nil, errors.Is(err, domain.ErrEmptyInput):
		case errors.Is(err, domain.ErrStaleResponse), errors.Is(err, domain.ErrPipelineClosed),
			errors.Is(err, context.Canceled):
			a.logger.Debug("Submission dropped", zap.Error(err))
		default:
			a.logger.Error("Submission error", zap.Error(err))
		}
	}()
}

func (a *App) resize() {
	a.page.Animator.Resize(Viewport(a.screen.Size()))
}

func (a *App) draw() {
	s := a.screen
	s.Clear()
	a.page.Animator.Render(a.canvas)

	w, h := s.Size()
	inner := max(w-2, 0)
	t := a.page.Tool

	putString(s, 1, 0, inner, t.Title, styleTitle)
	putString(s, 1, 1, inner, t.Description, styleDim)

	x := 1 + putString(s, 1, inputRow, inner, promptMarker, styleText)
	if input := a.editor.Text(); input == "" {
		putString(s, x, inputRow, inner-x+1, t.Placeholder, styleDim)
	} else {
		putString(s, x, inputRow, inner-x+1, input, styleText)
	}
	s.ShowCursor(x+a.editor.Cursor(), inputRow)

	for i, l := range resultLines(t, a.page.Pipeline.State(), inner) {
		y := panelTop + i
		if y >= h-1 {
			break
		}
		putString(s, 1, y, inner, l.text, l.style)
	}

	putString(s, 1, h-1, inner, helpText, styleDim)
	s.Show()
}
