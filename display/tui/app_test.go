package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
	"gitlab.com/tinyland/lab/sysinsight/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/sysinsight/insight"
)

// isQuitCmd executes a tea.Cmd and returns true if it produces a tea.QuitMsg.
func isQuitCmd(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	msg := cmd()
	_, ok := msg.(tea.QuitMsg)
	return ok
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// fakeExplainer answers every request with a fixed result.
type fakeExplainer struct {
	result insight.Result
	calls  int
}

func (f *fakeExplainer) ExplainSnapshot(_ context.Context, _ collectors.SystemSnapshot) <-chan insight.Result {
	f.calls++
	ch := make(chan insight.Result, 1)
	ch <- f.result
	close(ch)
	return ch
}

func testSnapshot() collectors.SystemSnapshot {
	return collectors.Assemble(
		time.Date(2026, 3, 1, 14, 30, 5, 0, time.UTC),
		collectors.CPUMetrics{Load: 42},
		collectors.MemoryMetrics{UsedBytes: 8 << 30, TotalBytes: 16 << 30},
		collectors.DiskMetrics{DriveLabel: "/dev/sda1", UsedBytes: 100 << 30, TotalBytes: 400 << 30},
		[]collectors.ProcessRecord{
			{PID: 4242, Name: "chrome", CPUPercent: 37.5, MemoryLabel: "512.0 MB"},
		},
		231,
	)
}

func readyModel(opts Options) Model {
	m := NewModel(opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func withSnapshot(m Model) Model {
	updated, _ := m.Update(SnapshotMsg{Snapshot: testSnapshot()})
	return updated.(Model)
}

func TestNewModel(t *testing.T) {
	m := NewModel(Options{})

	if m.ready {
		t.Error("expected ready to be false")
	}
	if m.hasSnapshot {
		t.Error("expected no snapshot")
	}
	if m.explaining {
		t.Error("expected explaining to be false")
	}
	if m.styles.preset.Name != "monitoring" {
		t.Errorf("expected monitoring theme by default, got %s", m.styles.preset.Name)
	}
	if m.Init() != nil {
		t.Error("expected Init() to return nil Cmd")
	}
}

func TestModel_Update_Quit(t *testing.T) {
	m := NewModel(Options{})

	if _, cmd := m.Update(runeKey('q')); !isQuitCmd(cmd) {
		t.Error("expected 'q' key to produce tea.Quit command")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuitCmd(cmd) {
		t.Error("expected ctrl+c to produce tea.Quit command")
	}
}

func TestModel_View_NotReady(t *testing.T) {
	m := NewModel(Options{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("expected 'Initializing...' before the first resize, got %q", got)
	}
}

func TestModel_Update_Snapshot(t *testing.T) {
	m := withSnapshot(readyModel(Options{}))

	if !m.hasSnapshot {
		t.Fatal("expected snapshot to be stored")
	}
	if m.cpuHistory.Len() != 1 || m.memHistory.Len() != 1 {
		t.Fatalf("expected one history point each, got cpu=%d mem=%d", m.cpuHistory.Len(), m.memHistory.Len())
	}
	if got := m.memHistory.Last(1)[0]; got != 50 {
		t.Errorf("memory history = %.1f, want 50", got)
	}

	m = withSnapshot(m)
	if m.cpuHistory.Len() != 2 {
		t.Errorf("expected history to grow, got %d", m.cpuHistory.Len())
	}
}

func TestModel_Explain_BeforeData(t *testing.T) {
	exp := &fakeExplainer{}
	m := readyModel(Options{Explainer: exp})

	updated, cmd := m.Update(runeKey('e'))
	m = updated.(Model)

	if cmd != nil {
		t.Error("expected no command without data")
	}
	if m.notice != noticeNoData {
		t.Errorf("notice = %q, want %q", m.notice, noticeNoData)
	}
	if exp.calls != 0 {
		t.Error("explainer must not be called without data")
	}

	// The notice clears when the first snapshot arrives.
	m = withSnapshot(m)
	if m.notice != "" {
		t.Errorf("expected notice to clear, got %q", m.notice)
	}
}

func TestModel_Explain_Disabled(t *testing.T) {
	m := withSnapshot(readyModel(Options{DisabledReason: "Set GEMINI_API_KEY to enable AI insight."}))

	updated, cmd := m.Update(runeKey('e'))
	m = updated.(Model)

	if cmd != nil {
		t.Error("expected no command without an explainer")
	}
	if m.failure == nil || !strings.Contains(m.failure.Error(), "GEMINI_API_KEY") {
		t.Errorf("expected disabled reason, got %v", m.failure)
	}
	if !strings.Contains(m.View(), "GEMINI_API_KEY") {
		t.Error("expected disabled reason in view")
	}
}

func TestModel_Explain_Gated(t *testing.T) {
	exp := &fakeExplainer{result: insight.Result{Text: "All good."}}
	m := withSnapshot(readyModel(Options{Explainer: exp}))

	updated, cmd := m.Update(runeKey('e'))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected explain command")
	}
	if !m.explaining || m.notice != noticeAnalyzing {
		t.Fatalf("expected analyzing state, got explaining=%v notice=%q", m.explaining, m.notice)
	}
	if !strings.Contains(m.View(), noticeAnalyzing) {
		t.Error("expected analyzing notice in view")
	}

	// A second request while one is outstanding is ignored.
	updated, cmd = m.Update(runeKey('e'))
	m = updated.(Model)
	if cmd != nil {
		t.Error("expected explain to be disabled while a request is outstanding")
	}
}

func TestModel_Explain_Success(t *testing.T) {
	exp := &fakeExplainer{result: insight.Result{RequestID: "r1", Text: "## Cause\n* **chrome** is busy"}}
	m := withSnapshot(readyModel(Options{Explainer: exp}))

	updated, _ := m.Update(runeKey('e'))
	m = updated.(Model)

	msg := explainCmd(context.Background(), exp, m.snapshot)()
	updated, _ = m.Update(msg)
	m = updated.(Model)

	if m.explaining {
		t.Error("expected explain to be re-enabled after the result")
	}
	if m.notice != "" || m.failure != nil {
		t.Errorf("expected clean state, got notice=%q failure=%v", m.notice, m.failure)
	}
	if m.insight != exp.result.Text {
		t.Errorf("insight = %q", m.insight)
	}

	view := m.View()
	for _, want := range []string{"[AI System Insight]", "Cause", "• ", "[Analysis provided by Gemini]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	// Clear drops the insight.
	updated, _ = m.Update(runeKey('c'))
	m = updated.(Model)
	if m.insight != "" {
		t.Error("expected clear to drop the insight")
	}
}

func TestModel_Explain_Failure(t *testing.T) {
	exp := &fakeExplainer{result: insight.Result{Err: &insight.StatusError{StatusCode: 403, Status: "403 Forbidden"}}}
	m := withSnapshot(readyModel(Options{Explainer: exp}))

	updated, _ := m.Update(runeKey('e'))
	m = updated.(Model)
	updated, _ = m.Update(explainCmd(context.Background(), exp, m.snapshot)())
	m = updated.(Model)

	if m.explaining {
		t.Error("expected explain to be re-enabled after a failure")
	}
	var se *insight.StatusError
	if !errors.As(m.failure, &se) {
		t.Fatalf("expected StatusError, got %v", m.failure)
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("expected error notice in view")
	}
}

func TestExplainCmd_ClosedChannel(t *testing.T) {
	closed := explainerFunc(func(context.Context, collectors.SystemSnapshot) <-chan insight.Result {
		ch := make(chan insight.Result)
		close(ch)
		return ch
	})

	msg, ok := explainCmd(context.Background(), closed, testSnapshot())().(insightMsg)
	if !ok {
		t.Fatal("expected insightMsg")
	}
	if msg.result.Err == nil {
		t.Error("expected an error for a channel closed without a result")
	}
}

type explainerFunc func(context.Context, collectors.SystemSnapshot) <-chan insight.Result

func (f explainerFunc) ExplainSnapshot(ctx context.Context, snap collectors.SystemSnapshot) <-chan insight.Result {
	return f(ctx, snap)
}

func TestModel_View_Dashboard(t *testing.T) {
	m := readyModel(Options{
		Host:     sysmetrics.HostInfo{Hostname: "devbox", OS: "Ubuntu 24.04", CPUModel: "Ryzen 7", PhysicalCores: 8, LogicalCores: 16},
		Interval: 2 * time.Second,
	})

	view := m.View()
	if !strings.Contains(view, "Waiting for the first sample") {
		t.Error("expected waiting text before data")
	}

	m = withSnapshot(m)
	view = m.View()
	for _, want := range []string{
		"devbox", "every 2s",
		"CPU", "42.0%",
		"8.0 GB / 16.0 GB",
		"Disk /dev/sda1", "100.0 GB / 400.0 GB",
		"231",
		"Ubuntu 24.04", "8 physical, 16 logical",
		"Top Processes", "chrome", "512.0 MB",
		"Explain",
		"Updated: 14:30:05",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_View_MissingDisk(t *testing.T) {
	m := readyModel(Options{})
	snap := collectors.Assemble(time.Now(), collectors.CPUMetrics{}, collectors.MemoryMetrics{TotalBytes: 1}, collectors.DiskMetrics{DriveLabel: "N/A"}, nil, 0)
	updated, _ := m.Update(SnapshotMsg{Snapshot: snap})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "Disk N/A") {
		t.Error("expected N/A disk card")
	}
	if !strings.Contains(view, "No process data yet") {
		t.Error("expected empty process table text")
	}
}

func TestModel_Help_Toggle(t *testing.T) {
	m := readyModel(Options{})
	updated, _ := m.Update(runeKey('?'))
	m = updated.(Model)
	if !m.help.ShowAll {
		t.Error("expected '?' to expand help")
	}
}

func TestKeyTable(t *testing.T) {
	table := KeyTable()
	for _, want := range []string{"explain", "quit", "help"} {
		if !strings.Contains(table, want) {
			t.Errorf("key table missing %q", want)
		}
	}
	for _, c := range duplicateKeys() {
		t.Errorf("key conflict: %s", c)
	}
}

func TestGetThemePreset(t *testing.T) {
	for _, name := range []string{"monitoring", "minimal", "full"} {
		if got := GetThemePreset(name); got.Name != name {
			t.Errorf("GetThemePreset(%q) = %s", name, got.Name)
		}
	}
	if got := GetThemePreset("unknown"); got.Name != "monitoring" {
		t.Errorf("unknown theme should fall back to monitoring, got %s", got.Name)
	}
}

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutSize
	}{
		{40, LayoutCompact},
		{59, LayoutCompact},
		{60, LayoutNormal},
		{120, LayoutNormal},
		{121, LayoutWide},
	}
	for _, tt := range tests {
		if got := DetectLayout(tt.width); got != tt.want {
			t.Errorf("DetectLayout(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}

	if l := layoutFor(40); !l.stackCards || l.showHost {
		t.Errorf("compact layout should stack cards and hide host info: %+v", l)
	}
}

func TestSectionTitle(t *testing.T) {
	got := sectionTitle("Top", 11)
	if got != "─── Top ───" {
		t.Errorf("sectionTitle = %q", got)
	}
	if got := sectionTitle("Too long", 4); got != "Too long" {
		t.Errorf("expected bare title when too narrow, got %q", got)
	}
}

func TestModel_Explain_UsesLatest(t *testing.T) {
	exp := &fakeExplainer{result: insight.Result{Text: "ok"}}
	latest := &collectors.Latest{}
	m := readyModel(Options{Explainer: exp, Latest: latest})

	// An empty store reports no data even though a message arrived.
	m = withSnapshot(m)
	updated, cmd := m.Update(runeKey('e'))
	m = updated.(Model)
	if cmd != nil || m.notice != noticeNoData {
		t.Fatalf("expected no-data notice with an empty store, got notice=%q", m.notice)
	}

	latest.Store(testSnapshot())
	updated, cmd = m.Update(runeKey('e'))
	m = updated.(Model)
	if cmd == nil || !m.explaining {
		t.Fatal("expected explain to start once the store has a snapshot")
	}
}
