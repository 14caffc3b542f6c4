package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kailas-cloud/boostube/internal/domain"
	"github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/domain/particle"
	"github.com/kailas-cloud/boostube/internal/domain/state"
	"github.com/kailas-cloud/boostube/internal/domain/tool"
	"github.com/kailas-cloud/boostube/internal/usecase/page"
)

type stubSource struct {
	payload state.Payload
	err     error
	inputs  chan string
}

func (s *stubSource) Fetch(_ context.Context, input string) (state.Payload, error) {
	if s.inputs != nil {
		s.inputs <- input
	}
	return s.payload, s.err
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func newApp(t *testing.T, id tool.ID, src *stubSource) (*App, tcell.SimulationScreen) {
	t.Helper()
	tl, err := tool.Default().Lookup(id)
	if err != nil {
		t.Fatal(err)
	}
	tl.Preset = Preset(tl.Preset)
	screen := newScreen(t)
	w, h := Viewport(screen.Size())
	p := page.New(tl, src, page.Viewport{Width: w, Height: h}, nil)
	t.Cleanup(p.Close)
	return New(screen, p, nil), screen
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func waitState(t *testing.T, a *App, kind state.Kind) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for a.page.Pipeline.State().Kind() != kind {
		if time.Now().After(deadline) {
			t.Fatalf("state %s not reached, got %s", kind, a.page.Pipeline.State().Kind())
		}
		time.Sleep(time.Millisecond)
	}
}

func typeText(a *App, s string) {
	for _, r := range s {
		a.handleEvent(context.Background(), tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func TestCanvas_DrawsGlyphAtCell(t *testing.T) {
	screen := newScreen(t)
	c := NewCanvas(screen)

	c.DrawParticle(particle.Particle{X: 20, Y: 40, Radius: 5}, particle.Glow)
	screen.Show()

	r, _, style, _ := screen.GetContent(2, 2)
	if r != '●' {
		t.Fatalf("expected large dot at (2, 2), got %q", r)
	}
	fg, _, _ := style.Decompose()
	r8, g8, b8 := particle.Glow.Over(Background)
	if fg != tcell.NewRGBColor(int32(r8), int32(g8), int32(b8)) || g8 < 178 {
		t.Errorf("expected glow composited over black, got %v", fg)
	}
}

func TestCanvas_ClipsOffscreen(t *testing.T) {
	screen := newScreen(t)
	c := NewCanvas(screen)
	c.DrawParticle(particle.Particle{X: 80 * CellWidth, Y: 0, Radius: 1}, particle.Glow)
	c.DrawParticle(particle.Particle{X: -1, Y: -1, Radius: 1}, particle.Glow)
	screen.Show()

	for y := 0; y < 24; y++ {
		if strings.ContainsAny(rowText(screen, y), "·•●") {
			t.Fatalf("offscreen particle drawn on row %d", y)
		}
	}
}

func TestCellAt_FloorsNegative(t *testing.T) {
	tests := []struct {
		x, y         float64
		wantX, wantY int
	}{
		{-1, -1, -1, -1},
		{-7.9, 3, -1, 0},
		{-8, -16, -1, -1},
		{-8.1, 0, -2, 0},
		{0, 0, 0, 0},
		{7.9, 15.9, 0, 0},
	}
	for _, tc := range tests {
		if x, y := CellAt(tc.x, tc.y); x != tc.wantX || y != tc.wantY {
			t.Errorf("CellAt(%v, %v) = (%d, %d), want (%d, %d)", tc.x, tc.y, x, y, tc.wantX, tc.wantY)
		}
	}
}

func TestCellAt_AgreesWithCellBox(t *testing.T) {
	box := particle.CellBox{W: CellWidth, H: CellHeight}
	points := [][2]float64{{-1, -1}, {-7.9, 3}, {5, 5}, {-9, 20}}
	for _, pt := range points {
		col, row := CellAt(pt[0], pt[1])
		x, y := PointAt(col, row)
		if !box.Hit(particle.Particle{X: pt[0], Y: pt[1]}, x, y) {
			t.Errorf("point %v drawn in cell (%d, %d) but not hit at its centre", pt, col, row)
		}
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		radius float64
		want   rune
	}{
		{1, '·'}, {1.9, '·'}, {2, '•'}, {3.5, '•'}, {4, '●'}, {6, '●'},
	}
	for _, tc := range tests {
		if got := Glyph(tc.radius); got != tc.want {
			t.Errorf("Glyph(%v) = %q, want %q", tc.radius, got, tc.want)
		}
	}
}

func TestCellMapping(t *testing.T) {
	if x, y := CellAt(17, 33); x != 2 || y != 2 {
		t.Errorf("CellAt(17, 33) = (%d, %d)", x, y)
	}
	if x, y := PointAt(2, 2); x != 20 || y != 40 {
		t.Errorf("PointAt(2, 2) = (%f, %f)", x, y)
	}
	if w, h := Viewport(80, 24); w != 640 || h != 384 {
		t.Errorf("Viewport(80, 24) = (%f, %f)", w, h)
	}
}

func TestPreset_HitsWholeCell(t *testing.T) {
	p := Preset(particle.Preset{Hit: particle.Circle{Radius: 1}})
	// Same cell as the click centre (20, 40) but farther than the circle radius.
	pt := particle.Particle{X: 17, Y: 33, Radius: 1}
	if !p.Hit.Hit(pt, 20, 40) {
		t.Error("cell hit not applied")
	}
	if p.Hit.Hit(particle.Particle{X: 100, Y: 100, Radius: 1}, 20, 40) {
		t.Error("distant particle hit")
	}
}

func TestLineEditor(t *testing.T) {
	var e LineEditor
	for _, r := range "helo" {
		e.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	e.HandleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	e.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone))
	if e.Text() != "hello" || e.Cursor() != 4 {
		t.Fatalf("got %q cursor %d", e.Text(), e.Cursor())
	}

	e.HandleKey(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	e.HandleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	if e.Text() != "hell" {
		t.Fatalf("backspace: got %q", e.Text())
	}

	e.HandleKey(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	e.HandleKey(tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone))
	if e.Text() != "ell" || e.Cursor() != 0 {
		t.Fatalf("delete: got %q cursor %d", e.Text(), e.Cursor())
	}

	if e.HandleKey(tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone)) {
		t.Error("unhandled key reported as handled")
	}
}

func TestLineEditor_WideRunes(t *testing.T) {
	var e LineEditor
	e.SetText("日本")
	if e.Cursor() != 4 {
		t.Errorf("expected display cursor 4, got %d", e.Cursor())
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a  b", 10, []string{"a b"}},
	}
	for _, tc := range tests {
		got := wrap(tc.in, tc.width)
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Errorf("wrap(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestResultLines_List(t *testing.T) {
	tl, _ := tool.Default().Lookup(tool.Ideas)
	st := state.NewSuccess(1, state.Payload{Items: []string{"A", "B"}})

	lines := resultLines(tl, st, 40)
	if len(lines) != 2 || lines[0].text != "1. A" || lines[1].text != "2. B" {
		t.Errorf("unexpected lines %+v", lines)
	}
}

func TestResultLines_Script(t *testing.T) {
	tl, _ := tool.Default().Lookup(tool.Script)
	st := state.NewSuccess(1, state.Payload{Items: []string{"Intro\nHello there friends"}})

	lines := resultLines(tl, st, 12)
	var texts []string
	for _, l := range lines {
		texts = append(texts, l.text)
	}
	if fmt.Sprint(texts) != fmt.Sprint([]string{"Intro", "Hello there", "friends"}) {
		t.Errorf("unexpected script layout %q", texts)
	}
}

func TestResultLines_Keyword(t *testing.T) {
	tl, _ := tool.Default().Lookup(tool.Keywords)
	st := state.NewSuccess(1, state.Payload{Keyword: &keyword.Metric{
		Keyword: "golang", PopularityScore: 55, SearchVolume: keyword.VolumeLow,
	}})

	lines := resultLines(tl, st, 80)
	var bar, arrow string
	for _, l := range lines {
		if strings.HasPrefix(l.text, "Popularity") {
			bar = l.text
		}
		if strings.HasSuffix(l.text, "▲") {
			arrow = l.text
		}
	}
	if !strings.Contains(bar, strings.Repeat("█", barWidth)) || !strings.Contains(bar, "55 / 55") {
		t.Errorf("unexpected bar %q", bar)
	}
	// low sits 20% along the scale.
	want := (len(volumeScale) - 1) * 20 / 100
	if strings.Index(arrow, "▲") != want {
		t.Errorf("arrow at %d, want %d", strings.Index(arrow, "▲"), want)
	}
}

func TestResultLines_States(t *testing.T) {
	tl, _ := tool.Default().Lookup(tool.Titles)

	if l := resultLines(tl, state.NewLoading(1), 40); l[0].text != loadingText {
		t.Errorf("loading: %+v", l)
	}
	l := resultLines(tl, state.NewFailure(1, tl.Failure), 80)
	if l[0].text != tl.Failure || l[0].style != styleFailure {
		t.Errorf("failure: %+v", l)
	}
}

func TestApp_DrawsPage(t *testing.T) {
	a, screen := newApp(t, tool.Titles, &stubSource{})
	a.page.Animator.Initialize(10)
	a.draw()

	if !strings.Contains(rowText(screen, 0), "YouTube Title Generator") {
		t.Errorf("title row: %q", rowText(screen, 0))
	}
	if !strings.Contains(rowText(screen, inputRow), "Describe your video idea") {
		t.Errorf("placeholder missing: %q", rowText(screen, inputRow))
	}
	if !strings.Contains(rowText(screen, 23), "Esc quit") {
		t.Errorf("help row: %q", rowText(screen, 23))
	}
}

func TestApp_EnterSubmits(t *testing.T) {
	src := &stubSource{payload: state.Payload{Items: []string{"Title one", "Title two"}}, inputs: make(chan string, 1)}
	a, screen := newApp(t, tool.Titles, src)

	typeText(a, "cats")
	a.handleEvent(context.Background(), tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	if got := <-src.inputs; got != "cats" {
		t.Fatalf("submitted %q", got)
	}
	waitState(t, a, state.Success)
	a.draw()

	if !strings.Contains(rowText(screen, panelTop), "1. Title one") {
		t.Errorf("result row: %q", rowText(screen, panelTop))
	}
	if !strings.Contains(rowText(screen, inputRow), "cats") {
		t.Errorf("input cleared: %q", rowText(screen, inputRow))
	}
}

func TestApp_FailureShownInRed(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("status 503: %w", domain.ErrTransport)}
	a, screen := newApp(t, tool.Ideas, src)

	typeText(a, "tech")
	a.handleEvent(context.Background(), tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	waitState(t, a, state.Failure)
	a.draw()

	if !strings.Contains(rowText(screen, panelTop), "Failed to fetch ideas. Please try again.") {
		t.Fatalf("failure row: %q", rowText(screen, panelTop))
	}
	_, _, style, _ := screen.GetContent(1, panelTop)
	if fg, _, _ := style.Decompose(); fg != tcell.ColorRed {
		t.Errorf("failure not red: %v", fg)
	}
}

func TestApp_CtrlRResets(t *testing.T) {
	src := &stubSource{payload: state.Payload{Items: []string{"Idea"}}}
	a, screen := newApp(t, tool.Ideas, src)

	typeText(a, "tech")
	a.handleEvent(context.Background(), tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	waitState(t, a, state.Success)

	a.handleEvent(context.Background(), tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModNone))
	if k := a.page.Pipeline.State().Kind(); k != state.Idle {
		t.Fatalf("expected idle after reset, got %s", k)
	}
	if a.editor.Text() != "" {
		t.Fatalf("input not cleared: %q", a.editor.Text())
	}
	a.draw()
	if strings.Contains(rowText(screen, panelTop), "Idea") {
		t.Errorf("result still drawn: %q", rowText(screen, panelTop))
	}
	if !strings.Contains(rowText(screen, inputRow), "Enter your niche") {
		t.Errorf("placeholder not restored: %q", rowText(screen, inputRow))
	}
}

func TestApp_QuitKeys(t *testing.T) {
	a, _ := newApp(t, tool.Ideas, &stubSource{})
	for _, k := range []tcell.Key{tcell.KeyEscape, tcell.KeyCtrlC} {
		if a.handleEvent(context.Background(), tcell.NewEventKey(k, 0, tcell.ModNone)) {
			t.Errorf("key %v did not quit", k)
		}
	}
}

func TestApp_ClickRemovesParticles(t *testing.T) {
	a, _ := newApp(t, tool.Keywords, &stubSource{})
	a.page.Animator.Initialize(80)
	target := a.page.Animator.Snapshot().Nodes[0]
	col, row := CellAt(target.X, target.Y)

	a.handleEvent(context.Background(), tcell.NewEventMouse(col, row, tcell.Button1, tcell.ModNone))

	if a.page.Animator.Len() >= 80 {
		t.Fatalf("click at (%d, %d) removed nothing", col, row)
	}
	for _, n := range a.page.Animator.Snapshot().Nodes {
		if c, r := CellAt(n.X, n.Y); c == col && r == row {
			t.Fatalf("particle %d left in the clicked cell", n.ID)
		}
	}
}

func TestApp_RunQuitsOnEscape(t *testing.T) {
	a, screen := newApp(t, tool.Script, &stubSource{})

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for !a.page.Animator.Running() {
		if time.Now().After(deadline) {
			t.Fatal("page not opened")
		}
		time.Sleep(time.Millisecond)
	}
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Esc")
	}
	if a.page.Animator.Running() || a.page.Animator.Len() != 0 {
		t.Error("page not closed after Run")
	}
}
