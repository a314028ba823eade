package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/typinglab/internal/generator"
	"github.com/verte-zerg/typinglab/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", append([]ClientOption{WithHTTPClient(ts.Client())}, opts...)...)
}

func TestClientFetchPrompt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prompt", r.URL.Path)
		assert.Equal(t, "120", r.URL.Query().Get("words"))
		assert.Equal(t, "5000", r.URL.Query().Get("source"))
		assert.Equal(t, "0.15", r.URL.Query().Get("number_rate"))
		_ = json.NewEncoder(w).Encode(PromptResponse{Prompt: "alpha beta"})
	})
	got, err := c.FetchPrompt(context.Background(), PromptRequest{Words: 120, Source: "5000", NumberRate: 0.15})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta", got)
}

func TestClientSubmitSendsCookieAndKey(t *testing.T) {
	var keys []string
	var mu sync.Mutex
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); assert.NoError(t, err) {
			assert.Equal(t, "secret", cookie.Value)
		}
		mu.Lock()
		keys = append(keys, r.Header.Get(IdempotencyHeader))
		mu.Unlock()

		var req SessionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 82.5, req.WPM)
		rating, delta := 1512, 12
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: true, Rating: &rating, Delta: &delta})
	}, WithToken("secret"))

	resp, err := c.SubmitSession(context.Background(), SessionRequest{WPM: 82.5, Accuracy: 0.97, DurationSeconds: 60})
	require.NoError(t, err)
	require.NotNil(t, resp.Rating)
	assert.Equal(t, 1512, *resp.Rating)
	assert.Equal(t, 12, *resp.Delta)

	_, err = c.SubmitSession(context.Background(), SessionRequest{WPM: 82.5})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.NotEqual(t, keys[0], keys[1])
}

func TestClientStatusErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/training_progress") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad_wpm"}`))
	})
	_, err := c.SubmitSession(context.Background(), SessionRequest{WPM: 999})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "bad_wpm")

	_, err = c.TrainingProgress(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, errors.Is(err, ErrStatus))
}

func TestClientProgress(t *testing.T) {
	var (
		mu    sync.Mutex
		saved ProgressRequest
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mu.Lock()
			defer mu.Unlock()
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"progress":{"easy":{"1":100,"2":40,"3":0}}}`))
	})
	p, err := c.TrainingProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, p.Percent("easy", 1))
	assert.Equal(t, 40, p.Percent("easy", 2))

	require.NoError(t, c.SaveTrainingProgress(context.Background(), "hard", 2, 55))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ProgressRequest{Mode: "hard", Level: 2, Percent: 55}, saved)
}

func TestValidateSession(t *testing.T) {
	_, err := ValidateSession(SessionRequest{Accuracy: 1.2})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = ValidateSession(SessionRequest{Accuracy: 0.9, WPM: 401})
	assert.ErrorIs(t, err, ErrInvalid)

	req, err := ValidateSession(SessionRequest{Accuracy: 0.9, WPM: 90, DurationSeconds: 45, PromptID: -3})
	require.NoError(t, err)
	assert.Equal(t, 60, req.DurationSeconds)
	assert.Equal(t, 0, req.PromptID)

	req, err = ValidateSession(SessionRequest{Accuracy: 1, WPM: 0, DurationSeconds: 15})
	require.NoError(t, err)
	assert.Equal(t, 15, req.DurationSeconds)
}

func TestValidateProgress(t *testing.T) {
	modes := []string{"easy", "advanced", "hard"}
	_, err := ValidateProgress(ProgressRequest{Mode: "expert", Level: 1}, modes)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = ValidateProgress(ProgressRequest{Mode: "easy", Level: 4}, modes)
	assert.ErrorIs(t, err, ErrInvalid)

	req, err := ValidateProgress(ProgressRequest{Mode: "easy", Level: 3, Percent: 140}, modes)
	require.NoError(t, err)
	assert.Equal(t, 100, req.Percent)
	req, err = ValidateProgress(ProgressRequest{Mode: "hard", Level: 1, Percent: -5}, modes)
	require.NoError(t, err)
	assert.Equal(t, 0, req.Percent)
}

type fakeStore struct {
	subs     []model.Submission
	progress model.Progress
}

func (f *fakeStore) InsertSubmission(_ context.Context, sub model.Submission) (bool, error) {
	f.subs = append(f.subs, sub)
	return true, nil
}

func (f *fakeStore) TrainingProgress(context.Context) (model.Progress, error) {
	return f.progress, nil
}

func (f *fakeStore) SaveTrainingProgress(_ context.Context, mode string, level, percent int) error {
	if f.progress == nil {
		f.progress = model.Progress{}
	}
	f.progress.Set(mode, level, percent)
	return nil
}

func TestLocalBackend(t *testing.T) {
	st := &fakeStore{}
	l := NewLocal(LocalConfig{
		Generator: generator.NewSeeded(7),
		Words:     []string{"alpha", "beta"},
		Store:     st,
		Modes:     []string{"easy"},
	})
	ctx := context.Background()

	prompt, err := l.FetchPrompt(ctx, PromptRequest{Words: 2})
	require.NoError(t, err)
	assert.Len(t, strings.Fields(prompt), generator.MinWords)

	resp, err := l.SubmitSession(ctx, SessionRequest{WPM: 70, Accuracy: 0.95, DurationSeconds: 30})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Nil(t, resp.Rating)
	require.Len(t, st.subs, 1)
	assert.Equal(t, "local", st.subs[0].UserID)
	assert.NotEmpty(t, st.subs[0].ID)

	_, err = l.SubmitSession(ctx, SessionRequest{WPM: 70, Accuracy: 2})
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, l.SaveTrainingProgress(ctx, "easy", 1, 120))
	p, err := l.TrainingProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Percent("easy", 1))
	assert.ErrorIs(t, l.SaveTrainingProgress(ctx, "hard", 1, 10), ErrInvalid)
}
