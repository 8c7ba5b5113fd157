// Package monitor draws the live diagnostics view: scheduler table, a
// position plot per motor and a console pane fed by the log.
package monitor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"twinloop/hal"
	"twinloop/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	StateIdle kernel.State = iota
	StateDraw
)

// DefaultPeriod redraws at 20 frames per second.
const DefaultPeriod = 50 * time.Millisecond

const (
	consoleRows    = 5
	maxPendingLogs = 32
)

var ErrConfig = errors.New("monitor: bad config")

type Config struct {
	Display   hal.Display
	Scheduler *kernel.Scheduler
	// Positions and Setpoints are plotted pairwise, one color per axis.
	Positions []*kernel.Share[int32]
	Setpoints []*kernel.Share[int32]
	Title     string
}

// Task renders one frame per run. Without a usable framebuffer it only
// drains its console. It also implements hal.Logger: logged lines show
// up in the console pane on the next frame.
type Task struct {
	cfg Config
	fb  hal.Framebuffer
	d   *fbDisplay

	font                              tinyfont.Fonter
	fontWidth, fontHeight, fontOffset int16
	cols                              int

	laidOut       bool
	headerH       int16
	tableY        int16
	plotY, plotH  int16
	pane          *paneDisplay
	term          *tinyterm.Terminal
	consoleUsed   bool
	rows          []kernel.TaskInfo
	hist          [][]int32
	histLen, head int

	mu      sync.Mutex
	pending []string
	banner  string
	frames  uint32
}

func New(cfg Config) (*Task, error) {
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("%w: no scheduler", ErrConfig)
	}
	if len(cfg.Positions) != len(cfg.Setpoints) {
		return nil, fmt.Errorf("%w: %d positions for %d setpoints", ErrConfig, len(cfg.Positions), len(cfg.Setpoints))
	}
	if cfg.Title == "" {
		cfg.Title = "twinloop"
	}
	t := &Task{cfg: cfg}
	if cfg.Display != nil {
		if fb := cfg.Display.Framebuffer(); fb != nil && fb.Buffer() != nil && fb.Format() == hal.PixelFormatRGB565 {
			t.fb = fb
			t.d = &fbDisplay{fb: fb}
		}
	}
	if t.fb != nil {
		var ok bool
		t.font, t.fontWidth, t.fontHeight, t.fontOffset, ok = initFont()
		if !ok {
			t.fb, t.d = nil, nil
		} else {
			t.cols = t.fb.Width() / int(t.fontWidth)
		}
	}
	return t, nil
}

// Active reports whether the monitor has a framebuffer to draw on.
func (t *Task) Active() bool { return t.fb != nil }

// Frames returns the number of frames presented.
func (t *Task) Frames() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

func (t *Task) WriteLineString(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == maxPendingLogs {
		copy(t.pending, t.pending[1:])
		t.pending = t.pending[:maxPendingLogs-1]
	}
	t.pending = append(t.pending, s)
}

func (t *Task) WriteLineBytes(b []byte) { t.WriteLineString(string(b)) }

// ShowFault pins a fault banner over the header until the run ends.
func (t *Task) ShowFault(f kernel.Fault) {
	t.mu.Lock()
	t.banner = fmt.Sprintf("FAULT %s: %v", f.Task, f.Value)
	t.mu.Unlock()
	t.WriteLineString(f.Error())
}

func (t *Task) Step(now time.Duration) (kernel.State, error) {
	t.mu.Lock()
	lines := t.pending
	t.pending = nil
	banner := t.banner
	t.mu.Unlock()

	if t.fb == nil {
		return StateIdle, nil
	}
	if !t.laidOut {
		t.layout()
	}

	t.sample()
	t.renderHeader(now, banner)
	t.renderTable(now)
	t.renderPlot()
	for _, l := range lines {
		if len(l) >= t.cols {
			l = l[:t.cols-1]
		}
		// The cursor stays at the end of the last line, so the newest
		// line sits on the bottom row of the pane.
		if t.consoleUsed {
			_, _ = t.term.Write([]byte("\n"))
		}
		t.consoleUsed = true
		_, _ = t.term.Write([]byte(l))
	}
	_ = t.pane.Display()

	if err := t.d.Display(); err != nil {
		return StateDraw, fmt.Errorf("monitor: present: %w", err)
	}
	t.mu.Lock()
	t.frames++
	t.mu.Unlock()
	return StateDraw, nil
}

// layout runs on the first frame, once the task registry is sealed.
func (t *Task) layout() {
	t.laidOut = true
	w := int16(t.fb.Width())
	h := int16(t.fb.Height())
	fh := t.fontHeight

	t.headerH = fh + 2
	t.tableY = t.headerH + 1
	tableH := fh * int16(len(t.cfg.Scheduler.Tasks())+1)
	consoleH := fh * consoleRows
	t.plotY = t.tableY + tableH + 2
	t.plotH = h - t.plotY - consoleH - 2
	if t.plotH < 2*fh {
		consoleH = fh
		t.plotH = h - t.plotY - consoleH - 2
	}

	t.pane = newPane(t.d, 0, h-consoleH, w, consoleH)
	t.term = tinyterm.NewTerminal(t.pane)
	t.term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: t.fontHeight,
		FontOffset: t.fontOffset,
	})

	t.hist = make([][]int32, len(t.cfg.Positions))
	for i := range t.hist {
		t.hist[i] = make([]int32, w)
	}
	_ = t.d.FillRectangle(0, 0, w, h-consoleH, colorBG)
}

func (t *Task) sample() {
	n := len(t.hist)
	if n == 0 {
		return
	}
	w := len(t.hist[0])
	if w == 0 {
		return
	}
	for i, p := range t.cfg.Positions {
		t.hist[i][t.head] = p.Get()
	}
	t.head = (t.head + 1) % w
	if t.histLen < w {
		t.histLen++
	}
}
