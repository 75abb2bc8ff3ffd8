package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Set(t time.Time)         { c.t = t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, open func(t *testing.T, clock *fakeClock) Store) {
	ctx := context.Background()

	t.Run("CreateThenGet", func(t *testing.T) {
		clock := newFakeClock()
		s := open(t, clock)

		id, err := s.Create(ctx, "ticket", Fields{"title": "Printer jam", "assignee": nil})
		require.NoError(t, err)
		require.NoError(t, ValidID(id))

		d, err := s.Get(ctx, "ticket", id)
		require.NoError(t, err)
		assert.Equal(t, id, d.ID)
		assert.Equal(t, "Printer jam", d.Fields["title"])
		assert.Nil(t, d.Fields["assignee"])
		assert.True(t, d.CreatedAt.Equal(clock.Now()))
		assert.True(t, d.CreatedAt.Equal(d.UpdatedAt))
	})

	t.Run("GetMissingAndMalformed", func(t *testing.T) {
		s := open(t, newFakeClock())

		_, err := s.Get(ctx, "ticket", "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.Get(ctx, "ticket", "not-an-id")
		assert.ErrorIs(t, err, ErrMalformedID)

		_, err = s.Update(ctx, "ticket", "1b4e28ba-2fa1-11d2-883f-0016d3cca427", Fields{"status": "closed"})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.Update(ctx, "ticket", "abc", Fields{"status": "closed"})
		assert.ErrorIs(t, err, ErrMalformedID)
	})

	t.Run("CollectionsAreIndependent", func(t *testing.T) {
		s := open(t, newFakeClock())

		id, err := s.Create(ctx, "ticket", Fields{"title": "a"})
		require.NoError(t, err)

		_, err = s.Get(ctx, "comment", id)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.Create(ctx, "comment", Fields{"body": "b"})
		require.NoError(t, err)

		names, err := s.Collections(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"comment", "ticket"}, names)
	})

	t.Run("ListFiltersExactMatchInInsertionOrder", func(t *testing.T) {
		clock := newFakeClock()
		s := open(t, clock)

		seed := []Fields{
			{"title": "t1", "status": "open", "priority": "high"},
			{"title": "t2", "status": "open", "priority": "low"},
			{"title": "t3", "status": "closed", "priority": "high"},
			{"title": "t4", "status": "open", "priority": "high"},
			{"title": "t5", "status": "open", "priority": 1},
		}
		for i, f := range seed {
			// Later inserts get earlier timestamps: insertion order must win.
			clock.Set(time.Date(2024, 3, 1, 9, 0, 10-i, 0, time.UTC))
			_, err := s.Create(ctx, "ticket", f)
			require.NoError(t, err)
		}

		docs, err := s.List(ctx, "ticket", Query{Filter: map[string]string{"status": "open", "priority": "high"}})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "t1", docs[0].Fields["title"])
		assert.Equal(t, "t4", docs[1].Fields["title"])

		docs, err = s.List(ctx, "ticket", Query{Filter: map[string]string{"priority": "1"}})
		require.NoError(t, err)
		assert.Empty(t, docs)

		docs, err = s.List(ctx, "ticket", Query{})
		require.NoError(t, err)
		assert.Len(t, docs, 5)

		docs, err = s.List(ctx, "nothing", Query{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("ListOrderCreatedAsc", func(t *testing.T) {
		clock := newFakeClock()
		s := open(t, clock)

		for _, c := range []struct {
			body string
			sec  int
		}{{"third", 30}, {"first", 10}, {"second", 20}} {
			clock.Set(time.Date(2024, 3, 1, 9, 0, c.sec, 0, time.UTC))
			_, err := s.Create(ctx, "comment", Fields{"ticket_id": "t", "body": c.body})
			require.NoError(t, err)
		}

		docs, err := s.List(ctx, "comment", Query{Filter: map[string]string{"ticket_id": "t"}, OrderBy: OrderCreatedAsc})
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "first", docs[0].Fields["body"])
		assert.Equal(t, "second", docs[1].Fields["body"])
		assert.Equal(t, "third", docs[2].Fields["body"])
	})

	t.Run("RejectsBadFilterField", func(t *testing.T) {
		s := open(t, newFakeClock())

		_, err := s.List(ctx, "ticket", Query{Filter: map[string]string{"status') OR 1=1 --": "x"}})
		assert.ErrorIs(t, err, ErrBadField)
	})

	t.Run("UpdateMergesAndAdvancesUpdatedAt", func(t *testing.T) {
		clock := newFakeClock()
		s := open(t, clock)

		id, err := s.Create(ctx, "ticket", Fields{"title": "VPN", "status": "open", "assignee": "sam"})
		require.NoError(t, err)
		before, err := s.Get(ctx, "ticket", id)
		require.NoError(t, err)

		// Clock does not move: updated_at must still increase.
		after, err := s.Update(ctx, "ticket", id, Fields{"status": "resolved"})
		require.NoError(t, err)
		assert.Equal(t, "resolved", after.Fields["status"])
		assert.Equal(t, "VPN", after.Fields["title"])
		assert.Equal(t, "sam", after.Fields["assignee"])
		assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

		clock.Advance(time.Minute)
		cleared, err := s.Update(ctx, "ticket", id, Fields{"assignee": nil})
		require.NoError(t, err)
		assert.Nil(t, cleared.Fields["assignee"])
		assert.True(t, cleared.UpdatedAt.Equal(clock.Now()))

		var got struct {
			Title    string  `json:"title"`
			Assignee *string `json:"assignee"`
		}
		require.NoError(t, cleared.Decode(&got))
		assert.Equal(t, "VPN", got.Title)
		assert.Nil(t, got.Assignee)

		stored, err := s.Get(ctx, "ticket", id)
		require.NoError(t, err)
		assert.True(t, stored.UpdatedAt.Equal(cleared.UpdatedAt))
	})
}
