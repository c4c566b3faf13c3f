// Package tui implements the interactive sysinsight dashboard on Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
	"gitlab.com/tinyland/lab/sysinsight/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/sysinsight/display/widgets"
	"gitlab.com/tinyland/lab/sysinsight/insight"
	"gitlab.com/tinyland/lab/sysinsight/internal/format"
)

// Notices shown in the insight panel.
const (
	noticeNoData    = "Not enough data collected yet. Please wait a moment."
	noticeAnalyzing = "[Analyzing system state with Gemini... Please wait.]"
)

const explainZone = "explain"

// Explainer turns a snapshot into an AI insight. *insight.Client satisfies it.
type Explainer interface {
	ExplainSnapshot(ctx context.Context, snap collectors.SystemSnapshot) <-chan insight.Result
}

// SnapshotMsg delivers a fresh snapshot to the model. Send it with
// tea.Program.Send from the scheduler consumer.
type SnapshotMsg struct {
	Snapshot collectors.SystemSnapshot
}

// insightMsg carries the outcome of one explain request.
type insightMsg struct {
	result insight.Result
}

// Options configures a Model.
type Options struct {
	// Context bounds explain requests. Defaults to context.Background.
	Context context.Context
	// Explainer is nil when no API key is configured.
	Explainer Explainer
	// DisabledReason is shown when explain is requested without an Explainer.
	DisabledReason string
	// Latest, when set, supplies the snapshot explained on request. Otherwise
	// the most recent SnapshotMsg is used.
	Latest   *collectors.Latest
	Host     sysmetrics.HostInfo
	Interval time.Duration
	Theme    string
	Logger   *slog.Logger
}

// Model is the top-level Bubbletea model for the sysinsight dashboard.
type Model struct {
	ctx            context.Context
	explainer      Explainer
	disabledReason string
	latest         *collectors.Latest
	host           sysmetrics.HostInfo
	interval       time.Duration
	logger         *slog.Logger

	styles  styles
	help    help.Model
	spinner spinner.Model
	zones   *zone.Manager

	width  int
	height int
	ready  bool

	snapshot    collectors.SystemSnapshot
	hasSnapshot bool
	cpuHistory  widgets.Series
	memHistory  widgets.Series

	explaining bool
	insight    string
	notice     string
	failure    error
}

// NewModel returns an initialized Model.
func NewModel(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.DisabledReason == "" {
		opts.DisabledReason = "AI insight is not configured."
	}

	st := newStyles(GetThemePreset(opts.Theme))

	return Model{
		ctx:            opts.Context,
		explainer:      opts.Explainer,
		disabledReason: opts.DisabledReason,
		latest:         opts.Latest,
		host:           opts.Host,
		interval:       opts.Interval,
		logger:         opts.Logger,
		styles:         st,
		help:           help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(st.preset.Accent)),
		),
		zones: zone.New(),
	}
}

// Init implements tea.Model. No initial commands are needed.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Explain):
			return m.requestExplain()
		case key.Matches(msg, keys.Clear):
			if !m.explaining {
				m.insight, m.notice, m.failure = "", "", nil
			}
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			if z := m.zones.Get(explainZone); z != nil && z.InBounds(msg) {
				return m.requestExplain()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case SnapshotMsg:
		m.snapshot = msg.Snapshot
		m.hasSnapshot = true
		m.cpuHistory.Append(msg.Snapshot.CPU().Load)
		mem := msg.Snapshot.Memory()
		m.memHistory.Append(format.Percent(mem.UsedBytes, mem.TotalBytes))
		// Clear the "no data" notice once data arrives.
		if m.notice == noticeNoData {
			m.notice = ""
		}

	case insightMsg:
		m.explaining = false
		m.notice = ""
		if msg.result.Err != nil {
			m.failure = msg.result.Err
			m.logger.Warn("insight request failed",
				"request_id", msg.result.RequestID,
				"error", msg.result.Err,
			)
			return m, nil
		}
		m.failure = nil
		m.insight = msg.result.Text
		m.logger.Debug("insight received",
			"request_id", msg.result.RequestID,
			"elapsed", msg.result.Elapsed,
		)

	case spinner.TickMsg:
		if !m.explaining {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// requestExplain starts an explain request for the current snapshot unless
// one is already running.
func (m Model) requestExplain() (tea.Model, tea.Cmd) {
	if m.explaining {
		return m, nil
	}
	if m.explainer == nil {
		m.failure = errors.New(m.disabledReason)
		return m, nil
	}

	snap, ok := m.snapshot, m.hasSnapshot
	if m.latest != nil {
		snap, ok = m.latest.Load()
	}
	if !ok {
		m.notice = noticeNoData
		return m, nil
	}

	m.explaining = true
	m.notice = noticeAnalyzing
	m.failure = nil
	m.logger.Debug("insight requested", "taken_at", snap.TakenAt())

	return m, tea.Batch(m.spinner.Tick, explainCmd(m.ctx, m.explainer, snap))
}

// explainCmd waits for the single result of an explain request.
func explainCmd(ctx context.Context, e Explainer, snap collectors.SystemSnapshot) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-e.ExplainSnapshot(ctx, snap)
		if !ok {
			res = insight.Result{Err: errors.New("insight request ended without a result")}
		}
		return insightMsg{result: res}
	}
}

// View implements tea.Model. It renders the header, dashboard, and footer.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	l := layoutFor(m.width)

	body := []string{m.renderCards(l)}
	if m.hasSnapshot {
		body = append(body, "", m.renderHistory(l))
	}
	if l.showHost {
		body = append(body, "", m.renderHost(l.tableWidth))
	}
	body = append(body,
		"",
		m.styles.title.Render(sectionTitle("Top Processes", l.tableWidth)),
		widgets.ProcessTable(m.snapshot.TopProcesses(), l.tableWidth),
		"",
		m.renderInsight(l.tableWidth),
	)

	content := m.styles.content.Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left, body...))
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderFooter()))
}

// renderFooter renders the help text and last updated timestamp.
func (m Model) renderFooter() string {
	var timestamp string
	if m.hasSnapshot {
		taken := m.snapshot.TakenAt()
		timestamp = fmt.Sprintf("  Updated: %s (%s)", taken.Format("15:04:05"), format.TimeSince(taken))
	}
	return m.styles.footer.Width(m.width).Render(m.help.View(keys) + timestamp)
}
