package viewer

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Fepozopo/tiv/pkg/raster"
)

// Messages delivered from outside the event loop. The watcher pump and the
// reload command are the only senders; every state mutation happens here, on
// the loop goroutine.

// FileChangedMsg reports that the watched file changed on disk. At least one
// arrives per burst of writes; the loop responds by scheduling a reload.
type FileChangedMsg struct{}

// WatchErrMsg reports that live watching is broken. The viewer keeps showing
// the last good frame and says so once.
type WatchErrMsg struct{ Err error }

type reloadedMsg struct {
	buf *raster.Buffer
	err error
}

type snapshotMsg struct {
	path string
	err  error
}

const (
	panelWidth    = 30
	panelBarWidth = 18
	chromeRows    = 2 // title + status
)

type dragTarget int

const (
	dragNone dragTarget = iota
	dragLo
	dragHi
	dragIso
)

// Model is the interactive surface: the image canvas, an optional level and
// histogram sidebar, and a one-line readout for the pixel under the pointer.
type Model struct {
	st   *raster.State
	keys keyMap
	help help.Model

	width, height int
	place         placement

	hist      raster.HistogramData
	bins      int
	showPanel bool

	hover bool
	pr    probe

	reloading     bool
	reloadPending bool
	dragging      dragTarget

	note      string
	noteIsErr bool
	watchNote string

	showHelp bool
}

// New builds the model around an already-loaded State.
func New(st *raster.State, bins int) Model {
	m := Model{
		st:        st,
		keys:      keys,
		help:      help.New(),
		bins:      bins,
		showPanel: true,
	}
	m.hist = raster.ComputeHistogram(st.Buffer(), bins)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("tiv: " + m.st.Path)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recomputeLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case FileChangedMsg:
		debugf("reloading file: %s", m.st.Path)
		return m.scheduleReload()

	case reloadedMsg:
		m.reloading = false
		if msg.err != nil {
			// Keep the previous buffer; half-written files resolve on
			// the next notification.
			m.note, m.noteIsErr = msg.err.Error(), true
			debugf("reload failed: %v", msg.err)
		} else {
			m.st.ApplyReload(msg.buf)
			m.hist = raster.ComputeHistogram(msg.buf, m.bins)
			m.note, m.noteIsErr = "", false
			m.recomputeLayout()
		}
		if m.reloadPending {
			m.reloadPending = false
			m.reloading = true
			return m, reloadCmd(m.st.Path)
		}
		return m, nil

	case WatchErrMsg:
		if m.watchNote == "" {
			m.watchNote = "watch unavailable: " + msg.Err.Error()
			debugf("watch failed: %v", msg.Err)
		}
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.note, m.noteIsErr = "snapshot failed: "+msg.err.Error(), true
		} else {
			m.note, m.noteIsErr = "snapshot saved: "+msg.path, false
		}
		return m, nil
	}
	return m, nil
}

// scheduleReload starts an asynchronous decode unless one is already in
// flight, in which case it queues exactly one follow-up. Collapsing the
// queue to a single pending reload keeps a hot writer from piling up work;
// the final reload always sees the newest bytes.
func (m Model) scheduleReload() (tea.Model, tea.Cmd) {
	if m.reloading {
		m.reloadPending = true
		return m, nil
	}
	m.reloading = true
	return m, reloadCmd(m.st.Path)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		return m.scheduleReload()
	case key.Matches(msg, m.keys.Reset):
		m.st.ResetRange()
	case key.Matches(msg, m.keys.Pin):
		m.st.SetPinned(!m.st.Pinned())
	case key.Matches(msg, m.keys.LoDown):
		r := m.st.LevelRange()
		m.st.SetLevelRange(r.Lo-m.levelStep(), r.Hi)
	case key.Matches(msg, m.keys.LoUp):
		r := m.st.LevelRange()
		m.st.SetLevelRange(r.Lo+m.levelStep(), r.Hi)
	case key.Matches(msg, m.keys.HiDown):
		r := m.st.LevelRange()
		m.st.SetLevelRange(r.Lo, r.Hi-m.levelStep())
	case key.Matches(msg, m.keys.HiUp):
		r := m.st.LevelRange()
		m.st.SetLevelRange(r.Lo, r.Hi+m.levelStep())
	case key.Matches(msg, m.keys.IsoDown):
		m.st.SetIsoline(m.st.Isoline() - m.levelStep())
	case key.Matches(msg, m.keys.IsoUp):
		m.st.SetIsoline(m.st.Isoline() + m.levelStep())
	case key.Matches(msg, m.keys.Panel):
		m.showPanel = !m.showPanel
		m.recomputeLayout()
	case key.Matches(msg, m.keys.Snapshot):
		return m, snapshotCmd(m.st)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.recomputeLayout()
	}
	return m, nil
}

// handleMouse tracks the hover readout on plain motion and drives the
// sidebar's window and isoline handles on wheel and drag.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	cw, ch := m.canvasSize()
	bodyY := msg.Y - 1
	inBody := bodyY >= 0 && bodyY < ch
	inCanvas := inBody && msg.X >= 0 && msg.X < cw
	inPanel := m.showPanel && inBody && msg.X > cw

	if msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonNone {
		if inCanvas {
			m.pr, m.hover = probeAt(m.place, m.st.Buffer(), msg.X, bodyY)
		} else {
			m.hover = false
		}
		return m
	}

	if msg.Action == tea.MouseActionRelease {
		m.dragging = dragNone
		return m
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if inPanel {
			m.st.SetIsoline(m.st.Isoline() + m.levelStep())
		}
	case tea.MouseButtonWheelDown:
		if inPanel {
			m.st.SetIsoline(m.st.Isoline() - m.levelStep())
		}
	case tea.MouseButtonLeft:
		if !inPanel {
			return m
		}
		v := panelValueAt(bodyY, ch, m.hist.Min, m.hist.Max)
		if msg.Action == tea.MouseActionPress {
			m.dragging = m.nearestHandle(v)
		}
		m.applyDrag(v)
	}
	return m
}

// nearestHandle picks which of the three horizontal handles a press grabs.
func (m Model) nearestHandle(v float64) dragTarget {
	r := m.st.LevelRange().Normalized()
	dLo := abs(v - r.Lo)
	dHi := abs(v - r.Hi)
	dIso := abs(v - m.st.Isoline())
	switch {
	case dIso <= dLo && dIso <= dHi:
		return dragIso
	case dLo <= dHi:
		return dragLo
	default:
		return dragHi
	}
}

func (m Model) applyDrag(v float64) {
	r := m.st.LevelRange()
	switch m.dragging {
	case dragLo:
		m.st.SetLevelRange(v, r.Hi)
	case dragHi:
		m.st.SetLevelRange(r.Lo, v)
	case dragIso:
		m.st.SetIsoline(v)
	}
}

// levelStep is one nudge of a handle: 1% of the data span, so adjustment
// speed is independent of the sample scale.
func (m Model) levelStep() float64 {
	span := raster.DefaultRange(m.st.Buffer()).Span()
	if span <= 0 {
		return 1
	}
	return span / 100
}

func (m Model) canvasSize() (int, int) {
	w := m.width
	if m.showPanel {
		w -= panelWidth + 1
	}
	h := m.height - chromeRows - m.helpHeight()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func (m Model) helpHeight() int {
	if m.showHelp {
		return 4
	}
	return 1
}

func (m *Model) recomputeLayout() {
	cw, ch := m.canvasSize()
	b := m.st.Buffer()
	if b == nil {
		m.place = placement{}
		return
	}
	m.place = computePlacement(b.W, b.H, cw, ch)
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	cw, ch := m.canvasSize()

	body := renderCanvas(m.st.Buffer(), m.st.LevelRange(), m.place, cw, ch)
	if m.showPanel {
		panel := histPanel(m.hist, m.st.LevelRange(), m.st.Isoline(), ch, panelBarWidth)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", panel)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.titleLine(),
		body,
		m.statusBar(),
		m.help.View(m.keys),
	)
}

func (m Model) titleLine() string {
	line := titleStyle.Render("tiv") + statusStyle.Render(" "+m.st.Path)
	if m.st.Pinned() {
		line += pinnedStyle.Render("  [pinned]")
	}
	if m.watchNote != "" {
		line += errorStyle.Render("  [static]")
	}
	return line
}

// statusBar shows the hover readout while the pointer is over the image and
// clears it the moment it leaves. Notes and watch failures use the same line
// when there's no readout to show.
func (m Model) statusBar() string {
	switch {
	case m.hover:
		return statusStyle.Render(statusLine(m.st.Buffer(), m.pr))
	case m.note != "" && m.noteIsErr:
		return errorStyle.Render(m.note)
	case m.note != "":
		return mutedStyle.Render(m.note)
	case m.watchNote != "":
		return errorStyle.Render(m.watchNote)
	default:
		return ""
	}
}

// reloadCmd decodes off the event loop; the result is applied back on it.
func reloadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		buf, err := raster.Load(path)
		return reloadedMsg{buf: buf, err: err}
	}
}

// snapshotCmd exports the current tone-mapped frame. The buffer and window
// are captured on the loop goroutine; only the encode runs concurrently.
func snapshotCmd(st *raster.State) tea.Cmd {
	buf := st.Buffer()
	rng := st.LevelRange()
	return func() tea.Msg {
		path := fmt.Sprintf("tiv-%s.png", time.Now().Format("20060102-150405"))
		if err := raster.Save(path, raster.ToneMap(buf, rng)); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{path: path}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
