package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pinnbar/internal/optim"
	"github.com/san-kum/pinnbar/internal/physics"
	"github.com/san-kum/pinnbar/internal/train"
)

const (
	graphWidth   = 60
	graphHeight  = 10
	profilePts   = 60
	sparkWidth   = 24
	maxPerTick   = 64
	tickInterval = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model trains a PINN one epoch per tick and redraws the loss curve and the
// displacement profile as it goes.
type Model struct {
	trainer  *train.Trainer
	cfg      train.Config
	initial  []float64
	xs       []float64
	perTick  int
	running  bool
	finished bool
	stop     string
	err      error
	showHelp bool
	theme    int
	style    styles
	title    string
}

// NewModel wraps trainer. The network's current weights are kept so that a
// reset restarts training from the same initialization.
func NewModel(trainer *train.Trainer, cfg train.Config, title string) Model {
	model := trainer.Model()
	xs, err := physics.Collocation(model.Bar.L, profilePts, physics.SamplingLinspace, nil)
	if err != nil {
		xs = nil
	}
	trainer.Reset()
	return Model{
		trainer: trainer,
		cfg:     cfg,
		initial: append([]float64(nil), model.Params()...),
		xs:      xs,
		perTick: 1,
		running: true,
		style:   newStyles(Themes[0]),
		title:   title,
	}
}

// WithTheme selects a theme by name.
func (m Model) WithTheme(name string) Model {
	m.theme = themeIndex(name)
	m.style = newStyles(Themes[m.theme])
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Err reports the error that ended training, if any.
func (m Model) Err() error { return m.err }

// Finished reports whether training has ended and why.
func (m Model) Finished() (bool, string) { return m.finished, m.stop }

// Update handles input events and advances training.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.perTick = min(m.perTick*2, maxPerTick)
		case "-", "_":
			m.perTick = max(m.perTick/2, 1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.style = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}

	case TickMsg:
		if m.running && !m.finished {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.perTick; i++ {
		if m.trainer.Epoch() >= m.cfg.Epochs {
			m.finish(train.StopEpochs, nil)
			return
		}
		loss, err := m.trainer.Step(m.cfg)
		if err != nil {
			if errors.Is(err, optim.ErrConverged) {
				m.finish(train.StopConverged, nil)
			} else {
				m.finish("", err)
			}
			return
		}
		if m.cfg.Tolerance > 0 && loss.Total < m.cfg.Tolerance {
			m.finish(train.StopTolerance, nil)
			return
		}
	}
}

func (m *Model) finish(stop string, err error) {
	m.finished = true
	m.running = false
	m.stop = stop
	m.err = err
}

func (m *Model) reset() {
	if err := m.trainer.Model().SetParams(m.initial); err != nil {
		m.err = err
		return
	}
	m.trainer.Reset()
	m.finished = false
	m.running = true
	m.stop = ""
	m.err = nil
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.style.failed.Render("FAILED")
	case m.finished:
		return m.style.done.Render("DONE (" + m.stop + ")")
	case m.running:
		return m.style.running.Render("TRAINING")
	}
	return m.style.paused.Render("PAUSED")
}

func (m Model) View() string {
	s := m.style
	history := m.trainer.History()
	model := m.trainer.Model()

	header := s.header.Render(fmt.Sprintf("pinnbar  %s  %s", m.title, m.status()))

	lossGraph := LossPlot(history, graphWidth, graphHeight)
	if lossGraph == "" {
		lossGraph = "waiting for first epoch..."
	}

	var profile string
	if len(m.xs) > 0 {
		profile = ProfilePlot(model.Displacements(m.xs), model.Exact(m.xs), graphWidth, graphHeight)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		s.graph.Render(lossGraph),
		s.graph.Render(profile),
	)

	row := func(label, value string) string {
		return s.label.Render(label) + s.value.Render(value)
	}

	epoch := m.trainer.Epoch()
	fraction := 0.0
	if m.cfg.Epochs > 0 {
		fraction = float64(epoch) / float64(m.cfg.Epochs)
	}

	var stats []string
	stats = append(stats,
		row("optimizer", m.trainer.Optimizer().Name()),
		row("epoch", fmt.Sprintf("%d/%d", epoch, m.cfg.Epochs)),
		s.ProgressBar(fraction, sparkWidth),
		row("steps/tick", fmt.Sprintf("%d", m.perTick)),
		"",
	)
	if n := len(history); n > 0 {
		last := history[n-1]
		_, pde, bc := LossSeries(history)
		stats = append(stats,
			row("total", fmt.Sprintf("%.4e", last.Total)),
			row("pde", fmt.Sprintf("%.4e", last.PDE)),
			s.Sparkline(pde, sparkWidth),
			row("bc", fmt.Sprintf("%.4e", last.BC)),
			s.Sparkline(bc, sparkWidth),
		)
	}
	if m.err != nil {
		stats = append(stats, "", s.failed.Render(m.err.Error()))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, s.stats.Render(strings.Join(stats, "\n")))

	help := "space pause • r reset • +/- speed • t theme • ? help • q quit"
	if m.showHelp {
		help = strings.Join([]string{
			"space  pause or resume training",
			"r      restore the initial weights and restart",
			"+/-    double or halve epochs per frame",
			"t      cycle themes (" + strings.Join(ThemeNames(), ", ") + ")",
			"q      quit",
		}, "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, s.help.Render(help))
}
