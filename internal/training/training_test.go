package training

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/session"
)

type memStore struct {
	mu       sync.Mutex
	progress model.Progress
	err      error
	saves    []Update
}

func (m *memStore) TrainingProgress(context.Context) (model.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.progress, nil
}

func (m *memStore) SaveTrainingProgress(_ context.Context, mode string, level, percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves = append(m.saves, Update{Mode: mode, Level: level, Percent: percent})
	return nil
}

func t0() time.Time { return time.Unix(1700000000, 0) }

func easyMode(t *testing.T) Mode {
	t.Helper()
	mode, ok := Lookup("easy")
	require.True(t, ok)
	return mode
}

func TestLevelTable(t *testing.T) {
	easy := easyMode(t)
	require.Len(t, easy.Levels, 3)
	assert.Equal(t, 10, easy.Levels[0].RequiredWords)
	assert.Equal(t, "1000", easy.Levels[0].Source)

	advanced, ok := Lookup("advanced")
	require.True(t, ok)
	l3, ok := advanced.Level(3)
	require.True(t, ok)
	assert.Equal(t, 32, l3.RequiredWords)
	assert.Equal(t, "5000", l3.Source)

	_, ok = Lookup("expert")
	assert.False(t, ok)
	assert.Equal(t, []string{"easy", "advanced", "hard"}, ModeNames())
}

func TestScoreTimeoutScenario(t *testing.T) {
	ev := session.EndEvent{Training: true, Reason: session.ReasonTime, TypedText: "the dog sat", PromptText: "the cat sat"}
	assert.Equal(t, 1, CorrectPrefixWords(ev.TypedText, ev.PromptText))
	assert.Equal(t, 33, Score(ev, 3))
	assert.Equal(t, 10, Score(ev, 10))
}

func TestScoreCompletedIsFull(t *testing.T) {
	ev := session.EndEvent{Training: true, Reason: session.ReasonCompleted, TypedText: "the", PromptText: "the cat"}
	assert.Equal(t, 100, Score(ev, 2))
}

func TestScoreFallsBackToPromptWords(t *testing.T) {
	ev := session.EndEvent{Reason: session.ReasonTime, TypedText: "a b", PromptText: "a b c d"}
	assert.Equal(t, 50, Score(ev, 0))
	assert.Equal(t, 0, Score(session.EndEvent{Reason: session.ReasonTime}, 0))
}

func TestRecordIsMonotonic(t *testing.T) {
	tr := NewTracker(easyMode(t), nil, nil, nil)
	prompt := "a b c d e f g h i j k l"

	upd, changed := tr.Record(session.EndEvent{Training: true, Reason: session.ReasonTime, LevelID: 1, TypedText: "a b c d e", PromptText: prompt})
	require.True(t, changed)
	assert.Equal(t, Update{Mode: "easy", Level: 1, Percent: 50}, upd)

	_, changed = tr.Record(session.EndEvent{Training: true, Reason: session.ReasonTime, LevelID: 1, TypedText: "a b", PromptText: prompt})
	assert.False(t, changed)
	assert.Equal(t, 50, tr.Percent(1))

	_, changed = tr.Record(session.EndEvent{Training: true, Reason: session.ReasonCompleted, LevelID: 1, PromptText: prompt})
	assert.True(t, changed)
	assert.Equal(t, 100, tr.Percent(1))
}

func TestRecordIgnoresUnknownLevel(t *testing.T) {
	tr := NewTracker(easyMode(t), nil, nil, nil)
	_, changed := tr.Record(session.EndEvent{Training: true, Reason: session.ReasonCompleted, LevelID: 9})
	assert.False(t, changed)
	_, changed = tr.Record(session.EndEvent{Training: false, Reason: session.ReasonCompleted, LevelID: 1})
	assert.False(t, changed)
}

func TestLockedIffPreviousBelowFull(t *testing.T) {
	tr := NewTracker(easyMode(t), nil, nil, nil)
	assert.False(t, tr.Locked(1))
	assert.True(t, tr.Locked(2))
	assert.True(t, tr.Locked(3))

	tr.Merge(model.Progress{"easy": {1: 99}})
	assert.True(t, tr.Locked(2))

	tr.Merge(model.Progress{"easy": {1: 100}})
	assert.False(t, tr.Locked(2))
	assert.True(t, tr.Locked(3))
}

func TestTotals(t *testing.T) {
	tr := NewTracker(easyMode(t), nil, nil, nil)
	tr.Merge(model.Progress{
		"easy":     {1: 100, 2: 50, 3: 0},
		"advanced": {1: 100, 2: 100, 3: 100},
	})
	assert.Equal(t, 50, tr.ModeTotal("easy"))
	assert.Equal(t, 100, tr.ModeTotal("advanced"))
	assert.Equal(t, 0, tr.ModeTotal("hard"))
	assert.Equal(t, 50, tr.Overall())
	assert.Equal(t, 0, tr.ModeTotal("unknown"))
}

func TestLoadMergesWithMax(t *testing.T) {
	remote := &memStore{progress: model.Progress{"easy": {1: 100, 2: 20}}}
	local := &memStore{progress: model.Progress{"easy": {2: 60}, "hard": {1: 150}}}
	tr := NewTracker(easyMode(t), remote, local, nil)
	require.NoError(t, tr.Load(context.Background()))
	p := tr.Progress()
	assert.Equal(t, 100, p.Percent("easy", 1))
	assert.Equal(t, 60, p.Percent("easy", 2))
	assert.Equal(t, 100, p.Percent("hard", 1))
}

func TestLoadSurvivesOneFailingStore(t *testing.T) {
	remote := &memStore{err: errors.New("offline")}
	local := &memStore{progress: model.Progress{"easy": {1: 40}}}
	tr := NewTracker(easyMode(t), remote, local, nil)
	require.NoError(t, tr.Load(context.Background()))
	assert.Equal(t, 40, tr.Percent(1))

	broken := NewTracker(easyMode(t), remote, &memStore{err: errors.New("disk")}, nil)
	assert.Error(t, broken.Load(context.Background()))
}

func TestPersistWritesBothStores(t *testing.T) {
	remote := &memStore{}
	local := &memStore{}
	tr := NewTracker(easyMode(t), remote, local, nil)
	upd := Update{Mode: "easy", Level: 2, Percent: 70}
	require.NoError(t, tr.Persist(context.Background(), upd))
	assert.Equal(t, []Update{upd}, remote.saves)
	assert.Equal(t, []Update{upd}, local.saves)
}

func TestPersistIgnoresRemoteFailure(t *testing.T) {
	remote := &memStore{err: errors.New("offline")}
	local := &memStore{}
	tr := NewTracker(easyMode(t), remote, local, nil)
	require.NoError(t, tr.Persist(context.Background(), Update{Mode: "easy", Level: 1, Percent: 10}))
	assert.Len(t, local.saves, 1)

	failing := NewTracker(easyMode(t), nil, &memStore{err: errors.New("disk")}, nil)
	assert.Error(t, failing.Persist(context.Background(), Update{Mode: "easy", Level: 1, Percent: 10}))
}

func TestTrainingSessionEndToEnd(t *testing.T) {
	mode := easyMode(t)
	tr := NewTracker(mode, nil, nil, nil)
	s := session.New(session.Config{Mode: model.ModeTraining, DurationSeconds: 30, LevelID: 1, RequiredWords: 2}, session.Prompt{Text: "the cat sat on the mat"})
	var end *session.EndEvent
	for _, r := range "the cat" {
		if eff := s.InsertText(string(r), t0()); eff.End != nil {
			end = eff.End
		}
	}
	require.NotNil(t, end)
	upd, changed := tr.Record(*end)
	require.True(t, changed)
	assert.Equal(t, 100, upd.Percent)
	assert.False(t, tr.Locked(2))
}
