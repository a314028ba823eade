// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/typinglab/internal/api"
	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/session"
	"github.com/verte-zerg/typinglab/internal/training"
)

type screen uint8

const (
	screenTyping screen = iota
	screenResult
	screenLevels
)

const (
	visibleRows    = 3
	gutterWidth    = 4
	minTextWidth   = 10
	defaultWidth   = 80
	backendTimeout = 10 * time.Second
)

// HistoryStore persists finished sessions and preferences.
type HistoryStore interface {
	InsertSession(ctx context.Context, rec model.SessionRecord, samples []model.MetricSample) (string, error)
	SetPreferredDuration(ctx context.Context, seconds int) error
}

// Options configures a Model.
type Options struct {
	Session model.SessionConfig
	// Prompt is the request used for fresh prompts and casual extensions.
	Prompt  api.PromptRequest
	Backend api.Backend
	History HistoryStore
	// Tracker switches the model to training mode.
	Tracker *training.Tracker
	Logger  *zap.Logger
	Now     func() time.Time
}

type tickMsg struct {
	gen uint64
	at  time.Time
}

type promptMsg struct {
	gen   uint64
	text  string
	level int
	err   error
}

type extendMsg struct {
	gen  uint64
	text string
	err  error
}

type submitMsg struct {
	resp api.SessionResponse
	err  error
}

type historyMsg struct{ err error }

type progressSavedMsg struct{ err error }

type durationSavedMsg struct{ err error }

// Model implements the Bubble Tea typing UI.
type Model struct {
	opts    Options
	backend api.Backend
	tracker *training.Tracker
	log     *zap.Logger
	now     func() time.Time

	sess   *session.Session
	screen screen
	width  int
	height int

	vp         viewport.Model
	scroll     scroller
	measurer   LineMeasurer
	boundaries []int
	lines      int

	tickGen   uint64
	promptGen uint64
	loading   bool
	status    string

	result       *session.Result
	chartHover   int
	trainingNote string
	rating       ratingView

	levelCursor int
	bars        progress.Model

	keys keyMap
	help help.Model
}

// NewModel constructs a typing TUI model.
func NewModel(opts Options) *Model {
	mode := opts.Session.Mode()
	if opts.Tracker != nil {
		mode = model.ModeTraining
	}
	cfg := session.Config{
		Mode:            mode,
		DurationSeconds: opts.Session.DurationSeconds,
	}
	if opts.Session.TrainingLevelID != nil {
		cfg.LevelID = *opts.Session.TrainingLevelID
	}
	if opts.Session.TrainingRequiredWords != nil {
		cfg.RequiredWords = *opts.Session.TrainingRequiredWords
	}

	m := &Model{
		opts:       opts,
		backend:    opts.Backend,
		tracker:    opts.Tracker,
		log:        opts.Logger,
		now:        opts.Now,
		sess:       session.New(cfg, session.Prompt{ID: opts.Session.PromptID, Text: opts.Session.PromptText}),
		vp:         viewport.New(defaultWidth, visibleRows),
		chartHover: -1,
		rating:     newRatingView(),
		bars:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
	if m.backend == nil {
		m.backend = api.NewLocal(api.LocalConfig{})
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.tracker != nil && opts.Session.PromptText == "" {
		m.screen = screenLevels
	}
	m.remeasure()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenTyping && len(m.sess.PromptRunes()) == 0 {
		return m.requestPrompt()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.vp.Width = m.textWidth() + 1
		m.remeasure()
		m.syncViewport()
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		cmd := m.applyEffects(m.sess.Apply(session.Tick{}, m.now()))
		if m.sess.State() == session.Active {
			cmd = tea.Batch(cmd, tickCmd(m.tickGen))
		}
		return m, cmd
	case frameMsg:
		switch msg.kind {
		case animScroll:
			cmd := m.scroll.frame(msg)
			m.syncViewport()
			return m, cmd
		case animRating:
			return m, m.rating.frame(msg)
		}
		return m, nil
	case promptMsg:
		return m, m.handlePrompt(msg)
	case extendMsg:
		if msg.err != nil {
			m.log.Warn("prompt extension failed", zap.Error(msg.err))
			return m, m.applyEffects(m.sess.Apply(session.ExtendFailed{Generation: msg.gen}, m.now()))
		}
		return m, m.applyEffects(m.sess.Apply(session.ExtendPrompt{Generation: msg.gen, Text: msg.text}, m.now()))
	case submitMsg:
		return m, m.handleSubmit(msg)
	case historyMsg:
		if msg.err != nil {
			m.log.Error("failed to save session history", zap.Error(msg.err))
		}
		return m, nil
	case progressSavedMsg:
		if msg.err != nil {
			m.log.Error("failed to save training progress", zap.Error(msg.err))
		}
		return m, nil
	case durationSavedMsg:
		if msg.err != nil {
			m.log.Warn("failed to save preferred duration", zap.Error(msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	switch m.screen {
	case screenLevels:
		return m.handleLevelsKey(msg)
	case screenResult:
		return m.handleResultKey(msg)
	}

	switch {
	case msg.String() == "esc":
		if m.tracker != nil {
			m.applyEffects(m.sess.Apply(session.Reset{}, m.now()))
			m.screen = screenLevels
		}
		return nil
	case msg.Type == tea.KeyTab:
		return m.applyEffects(m.sess.Apply(session.Reset{}, m.now()))
	case msg.Type == tea.KeyCtrlT:
		if m.tracker != nil || m.sess.State() != session.Idle {
			return nil
		}
		return m.applyEffects(m.sess.Apply(session.SetDuration{Seconds: nextDuration(m.sess.Duration())}, m.now()))
	}
	if m.loading {
		return nil
	}
	cmd, ok := commandFor(msg)
	if !ok {
		return nil
	}
	return m.applyEffects(m.sess.Apply(cmd, m.now()))
}

func (m *Model) handleResultKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "tab":
		if m.tracker != nil {
			m.applyEffects(m.sess.Apply(session.Reset{}, m.now()))
			m.screen = screenLevels
			return nil
		}
		return m.applyEffects(m.sess.Apply(session.Reset{}, m.now()))
	case "esc", "q":
		if m.tracker != nil {
			m.applyEffects(m.sess.Apply(session.Reset{}, m.now()))
			m.screen = screenLevels
			return nil
		}
		return tea.Quit
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch m.screen {
	case screenResult:
		m.chartHover = m.hoverAt(msg.X, msg.Y)
	case screenTyping:
		// Wheel and drag events are swallowed; the scroller owns the offset.
		m.syncViewport()
	}
}

func (m *Model) handlePrompt(msg promptMsg) tea.Cmd {
	if msg.gen != m.promptGen {
		return nil
	}
	m.loading = false
	if msg.err != nil {
		m.log.Warn("failed to fetch prompt", zap.Error(msg.err))
		m.status = "Could not load a new prompt."
		return nil
	}
	if msg.level > 0 && m.tracker != nil {
		level, ok := m.tracker.Mode().Level(msg.level)
		if !ok {
			return nil
		}
		cmd := m.applyEffects(m.sess.Apply(session.SetPrompt{
			Prompt:          session.Prompt{Text: msg.text},
			DurationSeconds: level.DurationSeconds,
			LevelID:         level.ID,
			RequiredWords:   level.RequiredWords,
		}, m.now()))
		m.screen = screenTyping
		return cmd
	}
	// Outside training the requirement follows the new prompt's word count.
	required := 0
	if m.sess.Mode() == model.ModeTraining {
		required = m.sess.Required()
	}
	return m.applyEffects(m.sess.Apply(session.SetPrompt{
		Prompt:        session.Prompt{Text: msg.text},
		LevelID:       m.sess.LevelID(),
		RequiredWords: required,
	}, m.now()))
}

func (m *Model) handleSubmit(msg submitMsg) tea.Cmd {
	switch {
	case errors.Is(msg.err, api.ErrStatus):
		m.log.Warn("session submission rejected", zap.Error(msg.err))
		m.status = "Saved locally, but server responded with an error."
		return nil
	case msg.err != nil:
		m.log.Warn("session submission failed", zap.Error(msg.err))
		m.status = "Could not save result (network/server error)."
		return nil
	case !msg.resp.OK:
		m.status = "Saved locally, but server responded with an error."
		return nil
	}
	if msg.resp.Rating == nil {
		return nil
	}
	delta := 0
	if msg.resp.Delta != nil {
		delta = *msg.resp.Delta
	}
	return m.rating.animate(*msg.resp.Rating, delta, m.now())
}

// applyEffects performs the side effects requested by a session transition
// and re-lays out the prompt.
func (m *Model) applyEffects(eff session.Effects) tea.Cmd {
	var cmds []tea.Cmd
	if eff.StopTicker {
		m.tickGen++
	}
	if eff.StartTicker {
		m.tickGen++
		cmds = append(cmds, tickCmd(m.tickGen))
	}
	if eff.ResetView {
		m.scroll.reset()
		m.vp.SetYOffset(0)
		m.status = ""
		m.result = nil
		m.chartHover = -1
		m.trainingNote = ""
		m.rating.clear()
		if m.screen == screenResult {
			m.screen = screenTyping
		}
	}
	if eff.RequestPrompt {
		cmds = append(cmds, m.requestPrompt())
	}
	if eff.PersistDuration > 0 {
		cmds = append(cmds, m.persistDuration(eff.PersistDuration))
	}
	if eff.Extend != nil {
		cmds = append(cmds, m.extend(eff.Extend.Generation))
	}
	if eff.Result != nil {
		cmds = append(cmds, m.finish(*eff.Result)...)
	}
	if eff.End != nil {
		cmds = append(cmds, m.recordTraining(*eff.End))
	}
	m.remeasure()
	cmds = append(cmds, m.scroll.follow(len(m.sess.Typed()), m.now()))
	m.syncViewport()
	return tea.Batch(cmds...)
}

func (m *Model) finish(res session.Result) []tea.Cmd {
	m.result = &res
	m.screen = screenResult
	m.chartHover = -1
	if res.Reason == session.ReasonCompleted {
		m.status = "Completed! Result saved."
	} else {
		m.status = "Time! Result saved."
	}
	cmds := []tea.Cmd{m.saveHistory(res)}
	if res.Mode == model.ModeRanked && m.opts.Session.UserID != nil {
		cmds = append(cmds, m.submit(res))
	}
	return cmds
}

func (m *Model) recordTraining(ev session.EndEvent) tea.Cmd {
	if m.tracker == nil {
		return nil
	}
	score := training.Score(ev, m.sess.Required())
	m.trainingNote = fmt.Sprintf("Level %d complete: %d%%", ev.LevelID, score)
	upd, changed := m.tracker.Record(ev)
	if !changed {
		return nil
	}
	tracker := m.tracker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		return progressSavedMsg{err: tracker.Persist(ctx, upd)}
	}
}

func (m *Model) requestPrompt() tea.Cmd {
	m.promptGen++
	m.loading = true
	gen := m.promptGen
	backend := m.backend
	req := m.opts.Prompt
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		text, err := backend.FetchPrompt(ctx, req)
		return promptMsg{gen: gen, text: text, err: err}
	}
}

func (m *Model) extend(gen uint64) tea.Cmd {
	backend := m.backend
	req := m.opts.Prompt
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		text, err := backend.FetchPrompt(ctx, req)
		return extendMsg{gen: gen, text: text, err: err}
	}
}

func (m *Model) submit(res session.Result) tea.Cmd {
	backend := m.backend
	req := api.SessionRequest{
		WPM:             res.WPM,
		Accuracy:        res.Accuracy,
		DurationSeconds: res.DurationSeconds,
		PromptID:        res.PromptID,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		resp, err := backend.SubmitSession(ctx, req)
		return submitMsg{resp: resp, err: err}
	}
}

func (m *Model) saveHistory(res session.Result) tea.Cmd {
	if m.opts.History == nil {
		return nil
	}
	history := m.opts.History
	rec := model.SessionRecord{
		StartedAt:       res.StartedAt,
		EndedAt:         res.EndedAt,
		Mode:            res.Mode,
		Reason:          res.Reason,
		WPM:             res.WPM,
		Accuracy:        res.Accuracy,
		DurationSeconds: res.DurationSeconds,
		ElapsedSeconds:  res.ElapsedSeconds,
		PromptID:        res.PromptID,
		LevelID:         res.LevelID,
	}
	if m.tracker != nil {
		rec.TrainingMode = m.tracker.Mode().Name
	}
	samples := res.Series
	return func() tea.Msg {
		_, err := history.InsertSession(context.Background(), rec, samples)
		return historyMsg{err: err}
	}
}

func (m *Model) persistDuration(seconds int) tea.Cmd {
	if m.opts.History == nil {
		return nil
	}
	history := m.opts.History
	return func() tea.Msg {
		return durationSavedMsg{err: history.SetPreferredDuration(context.Background(), seconds)}
	}
}

func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func nextDuration(current int) int {
	for i, d := range session.Durations {
		if d == current {
			return session.Durations[(i+1)%len(session.Durations)]
		}
	}
	return session.DefaultDuration
}

func (m *Model) textWidth() int {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	return max(minTextWidth, int(float64(width)*0.70)-gutterWidth)
}

func (m *Model) remeasure() {
	width := m.textWidth()
	m.measurer = NewLineMeasurer(m.sess.Typed(), m.sess.PromptRunes())
	m.boundaries = m.measurer.MeasureLineBoundaries(width)
	m.scroll.setBoundaries(m.boundaries)
	lines := m.measurer.Render(width)
	m.lines = len(lines)
	m.vp.SetContent(strings.Join(lines, "\n"))
}

// syncViewport moves the ghost viewport to the scroller's offset. Outside
// an animation a drifted viewport is snapped back.
func (m *Model) syncViewport() {
	if m.scroll.autoScrolling() {
		m.vp.SetYOffset(m.scroll.row())
		return
	}
	if offset, ok := m.scroll.correct(m.vp.YOffset); ok {
		m.vp.SetYOffset(offset)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenLevels:
		body = m.levelsView()
	case screenResult:
		return m.resultView()
	default:
		body = m.typingView()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) typingView() string {
	text := lipgloss.JoinHorizontal(lipgloss.Top, m.gutterView(), m.vp.View())
	sections := []string{text, "", m.renderFooter()}
	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(typingHelp{keys: m.keys, training: m.tracker != nil}))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// gutterView numbers the visible prompt lines from the viewport's offset.
func (m *Model) gutterView() string {
	rows := make([]string, visibleRows)
	for i := range rows {
		line := m.vp.YOffset + i
		if line < m.lines {
			rows[i] = fmt.Sprintf("%*d ", gutterWidth-1, line+1)
		} else {
			rows[i] = strings.Repeat(" ", gutterWidth)
		}
	}
	return gutterStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("%ds", m.sess.Remaining())}
	if m.tracker == nil && m.sess.State() == session.Idle {
		segments = append(segments, durationPicker(m.sess.Duration()))
	}
	if m.tracker != nil {
		segments = append(segments, fmt.Sprintf("%d/%d words", min(m.sess.CorrectWords(), m.sess.Required()), m.sess.Required()))
	}
	if m.opts.Session.LiveWPM != 0 && m.sess.State() == session.Active {
		if series := m.sess.Series(); len(series) > 0 {
			last := series[len(series)-1]
			segments = append(segments, fmt.Sprintf("%.0f WPM · %.0f%%", last.WPM, last.Accuracy))
		}
	}
	if m.loading {
		segments = append(segments, "loading…")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func durationPicker(current int) string {
	parts := make([]string, len(session.Durations))
	for i, d := range session.Durations {
		if d == current {
			parts[i] = fmt.Sprintf("[%ds]", d)
		} else {
			parts[i] = fmt.Sprintf("%ds", d)
		}
	}
	return strings.Join(parts, " ")
}
