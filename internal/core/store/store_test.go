package store

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Chatlens/internal/models"
)

// tickingClock advances one second on every call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore() *Store {
	return New(WithClock(tickingClock()))
}

func userMsg(text string) models.Message {
	return models.Message{Role: models.RoleUser, Kind: models.KindPrompt, Text: text}
}

func TestCreateSession(t *testing.T) {
	s := newTestStore()

	a := s.CreateSession()
	b := s.CreateSession()

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, models.DefaultTitle, a.Title)
	assert.Empty(t, a.Messages)

	cur, err := s.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, b.ID, cur.ID)
}

func TestGetCurrentWithoutSession(t *testing.T) {
	s := newTestStore()

	_, err := s.GetCurrent()
	assert.ErrorIs(t, err, ErrNoCurrentSession)

	_, ok := s.CurrentID()
	assert.False(t, ok)
}

func TestSetCurrent(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()
	s.CreateSession()

	require.NoError(t, s.SetCurrent(a.ID))
	cur, err := s.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, a.ID, cur.ID)

	assert.ErrorIs(t, s.SetCurrent("missing"), ErrNotFound)
	cur, err = s.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, a.ID, cur.ID, "failed select keeps the previous current session")
}

func TestRename(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  Trip Plan  ", "Trip Plan"},
		{"empty keeps title", "", "Trip Plan"},
		{"whitespace keeps title", "   ", "Trip Plan"},
		{"replaces title", "Groceries", "Groceries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Rename(a.ID, tt.input))
			got, err := s.Get(a.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Title)
		})
	}

	assert.ErrorIs(t, s.Rename("missing", "x"), ErrNotFound)
}

func TestDeleteCurrentUnsetsPointer(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()
	b := s.CreateSession()

	require.NoError(t, s.Delete(b.ID))

	_, err := s.GetCurrent()
	assert.ErrorIs(t, err, ErrNoCurrentSession)
	_, err = s.Get(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetCurrent(a.ID))
	cur, err := s.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, a.ID, cur.ID)

	assert.ErrorIs(t, s.Delete(b.ID), ErrNotFound)
}

func TestDeleteOtherKeepsPointer(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()
	b := s.CreateSession()

	require.NoError(t, s.Delete(a.ID))

	cur, err := s.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, b.ID, cur.ID)
}

func TestAppendMessageDerivesTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"long message is cut", "What's the weather like tomorrow in Paris?", "What's the weather like t..."},
		{"short message is kept", "Hello there", "Hello there"},
		{"exactly 25 runes", "abcdefghijklmnopqrstuvwxy", "abcdefghijklmnopqrstuvwxy"},
		{"multibyte runes", strings.Repeat("é", 30), strings.Repeat("é", 25) + "..."},
		{"leading spaces count", "   What's the weather like tomorrow in Paris?", "   What's the weather lik..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			a := s.CreateSession()

			_, err := s.AppendMessage(a.ID, userMsg(tt.text))
			require.NoError(t, err)

			got, err := s.Get(a.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Title)
		})
	}
}

func TestAppendMessageTitleOnlyOnce(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()

	_, err := s.AppendMessage(a.ID, models.Message{Role: models.RoleAssistant, Kind: models.KindReply, Text: "greeting"})
	require.NoError(t, err)
	got, _ := s.Get(a.ID)
	assert.Equal(t, models.DefaultTitle, got.Title, "assistant messages never name a session")

	_, err = s.AppendMessage(a.ID, userMsg("first"))
	require.NoError(t, err)
	_, err = s.AppendMessage(a.ID, userMsg("second"))
	require.NoError(t, err)

	got, _ = s.Get(a.ID)
	assert.Equal(t, "first", got.Title)
	assert.Len(t, got.Messages, 3)
}

func TestAppendMessageKeepsExplicitRename(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()
	require.NoError(t, s.Rename(a.ID, "Receipts"))

	_, err := s.AppendMessage(a.ID, userMsg("what did I buy"))
	require.NoError(t, err)

	got, _ := s.Get(a.ID)
	assert.Equal(t, "Receipts", got.Title)
}

func TestAppendMessageStampsMessage(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()

	msg, err := s.AppendMessage(a.ID, userMsg("hi"))
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "09:30", msg.Time)

	got, _ := s.Get(a.ID)
	assert.True(t, got.LastUpdated.After(a.LastUpdated))

	_, err = s.AppendMessage("missing", userMsg("hi"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrderedByRecency(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()
	b := s.CreateSession()

	list := s.ListOrderedByRecency()
	require.Len(t, list, 2)
	assert.Equal(t, []string{b.ID, a.ID}, []string{list[0].ID, list[1].ID})

	_, err := s.AppendMessage(a.ID, userMsg("bump"))
	require.NoError(t, err)

	list = s.ListOrderedByRecency()
	assert.Equal(t, []string{a.ID, b.ID}, []string{list[0].ID, list[1].ID})
}

func TestListOrderedByRecencyTieBreak(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	n := 0
	s := New(
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	s.CreateSession()
	s.CreateSession()
	s.CreateSession()

	for i := 0; i < 5; i++ {
		list := s.ListOrderedByRecency()
		require.Len(t, list, 3)
		assert.Equal(t, "id-1", list[0].ID)
		assert.Equal(t, "id-3", list[2].ID)
	}
}

func TestFilter(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()
	b := s.CreateSession()
	c := s.CreateSession()
	require.NoError(t, s.Rename(a.ID, "Trip to Lisbon"))
	require.NoError(t, s.Rename(b.ID, "Grocery list"))
	require.NoError(t, s.Rename(c.ID, "Lisbon hotels"))

	got := s.Filter("LISBON")
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	assert.Len(t, s.Filter(""), 3)
	assert.Len(t, s.Filter("   "), 3)
	assert.Empty(t, s.Filter("paris"))
}

func TestReadsAreSnapshots(t *testing.T) {
	s := newTestStore()
	a := s.CreateSession()
	_, err := s.AppendMessage(a.ID, userMsg("original"))
	require.NoError(t, err)

	got, _ := s.Get(a.ID)
	got.Messages[0].Text = "mutated"
	got.Title = "mutated"

	again, _ := s.Get(a.ID)
	assert.Equal(t, "original", again.Messages[0].Text)
	assert.Equal(t, "original", again.Title)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()

	const workers = 8
	const perWorker = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sess := s.CreateSession()
			for i := 0; i < perWorker; i++ {
				_, err := s.AppendMessage(sess.ID, userMsg(fmt.Sprintf("worker %d message %d", w, i)))
				assert.NoError(t, err)
				_ = s.ListOrderedByRecency()
				_ = s.Filter("worker")
				_, _ = s.GetCurrent()
			}
			assert.NoError(t, s.SetCurrent(sess.ID))
		}(w)
	}
	wg.Wait()

	all := s.ListOrderedByRecency()
	require.Len(t, all, workers)
	for _, sess := range all {
		assert.Len(t, sess.Messages, perWorker)
		assert.Contains(t, sess.Title, "worker")
	}
	_, ok := s.CurrentID()
	assert.True(t, ok)
}
