package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/alertr/internal/nats"
	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/wizard"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	bus, err := nats.Open(context.Background(), t.TempDir(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return NewStore(bus.JS, bus.Stream)
}

func payload(title string, ids ...string) wizard.Payload {
	return wizard.Payload{
		Title:     title,
		Message:   "corpo",
		SendToday: true,
		RecipientCategories: map[string]recipients.Selection{
			"class": {SelectedIDs: ids, AllSelected: false},
		},
	}
}

func TestStore_SendAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Send(ctx, payload("Reunião", "c1", "c2"))
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reunião", got.Payload.Title)
	assert.Equal(t, []string{"c1", "c2"}, got.Payload.RecipientCategories["class"].SelectedIDs)
	assert.WithinDuration(t, a.SentAt, got.SentAt, time.Millisecond)
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, title := range []string{"primeiro", "segundo", "terceiro"} {
		require.NoError(t, s.SendAlert(ctx, payload(title, "c1")))
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "terceiro", items[0].Title)
	assert.Equal(t, "primeiro", items[2].Title)
	assert.Equal(t, 1, items[0].Recipients)
	assert.Equal(t, wizard.ScheduleToday, items[0].ScheduledFor)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Send(ctx, payload("apagar", "c1"))
	require.NoError(t, err)
	_, err = s.Send(ctx, payload("manter", "c1"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "manter", items[0].Title)

	_, err = s.Get(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.Delete(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "deleting twice fails")
	assert.True(t, errors.Is(s.Delete(ctx, "nope"), ErrNotFound))
}

func TestStore_OnSent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var seen []string
	s.OnSent(func(_ context.Context, a Alert) { seen = append(seen, a.ID) })

	a, err := s.Send(ctx, payload("x"))
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, seen)
}

func TestStore_AsWizardSender(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	reg, err := wizard.DefaultRegistry()
	require.NoError(t, err)
	form := wizard.NewFormData([]recipients.Category{{Key: "class", Items: []recipients.Item{{ID: "c1"}}}})
	c := wizard.NewController(reg, form)
	defer c.Close()

	c.Edit(func(f *wizard.FormData) {
		f.Title = "Passeio"
		f.Message = "Sexta"
		f.Date = "2026-11-20"
		f.Time = "08:00"
		f.Categories.ReplaceSelection("class", []string{"c1"}, true)
	})
	_, err = c.Finish(ctx, s)
	require.NoError(t, err)

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2026-11-20 08:00", items[0].ScheduledFor)
}

func TestState_Apply(t *testing.T) {
	st := &state{alerts: make(map[string]*Alert)}
	st.Apply(Event{Action: nats.ActionSent, AlertID: "a", Data: []byte(`{"title":"t"}`)})
	st.Apply(Event{Action: nats.ActionSent, AlertID: "bad", Data: []byte(`{`)})
	st.Apply(Event{Action: "unknown", AlertID: "a"})

	require.Contains(t, st.alerts, "a")
	assert.NotContains(t, st.alerts, "bad")

	st.Apply(Event{Action: nats.ActionDeleted, AlertID: "a"})
	assert.Empty(t, st.alerts)
}
