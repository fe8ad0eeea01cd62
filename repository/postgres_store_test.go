package repository

import (
	"context"
	"testing"
	"time"

	"hoshikuzu/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Config(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	store := NewPostgresStore(testDB.DB)
	ctx := context.Background()

	t.Run("missing key returns default", func(t *testing.T) {
		assert.Equal(t, "fallback", store.Get(ctx, "100", "lobbyChannelId", "fallback"))
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "123456789012345678"))
		require.NoError(t, store.Set(ctx, "100", "allowLinksEnabled", true))
		require.NoError(t, store.Set(ctx, "100", "allowLinkChannels", []string{"1", "2"}))

		assert.Equal(t, "123456789012345678", store.Get(ctx, "100", "lobbyChannelId", ""))
		assert.Equal(t, true, store.Get(ctx, "100", "allowLinksEnabled", false))
		assert.Equal(t, []any{"1", "2"}, store.Get(ctx, "100", "allowLinkChannels", nil))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "999"))
		assert.Equal(t, "999", store.Get(ctx, "100", "lobbyChannelId", ""))
	})

	t.Run("guilds are isolated", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "200", "lobbyChannelId", "B"))
		assert.Equal(t, "999", store.Get(ctx, "100", "lobbyChannelId", ""))
		assert.Equal(t, "B", store.Get(ctx, "200", "lobbyChannelId", ""))

		values, err := store.GuildValues(ctx, "200")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"lobbyChannelId": "B"}, values)
	})

	t.Run("unset", func(t *testing.T) {
		require.NoError(t, store.Unset(ctx, "100", "lobbyChannelId"))
		require.NoError(t, store.Unset(ctx, "100", "lobbyChannelId"))
		assert.Equal(t, "none", store.Get(ctx, "100", "lobbyChannelId", "none"))
	})
}

func TestPostgresStore_Rooms(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	store := NewPostgresStore(testDB.DB)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 20, 15, 0, 0, time.UTC)
	first := testutil.CreateTestRoomAt("R123", "100", "alice", base)
	second := testutil.CreateTestRoomAt("R456", "100", "bob", base.Add(time.Minute))

	require.NoError(t, store.PutRoom(ctx, second))
	require.NoError(t, store.PutRoom(ctx, first))

	room, err := store.GetRoom(ctx, "R123")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "alice", room.OwnerID)
	assert.Equal(t, "100", room.GuildID)
	assert.True(t, base.Equal(room.CreatedAt))

	missing, err := store.GetRoom(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "R123", rooms[0].ChannelID)
	assert.Equal(t, "R456", rooms[1].ChannelID)

	require.NoError(t, store.DeleteRoom(ctx, "R123"))
	require.NoError(t, store.DeleteRoom(ctx, "R123"))

	room, err = store.GetRoom(ctx, "R123")
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestPostgresStore_Tickets(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	store := NewPostgresStore(testDB.DB)
	ctx := context.Background()

	ticket := testutil.CreateTestTicket("T1", "100", "alice")
	require.NoError(t, store.PutTicket(ctx, ticket))

	got, err := store.GetTicket(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, "Support", got.Reason)

	tickets, err := store.ListTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	require.NoError(t, store.DeleteTicket(ctx, "T1"))
	got, err = store.GetTicket(ctx, "T1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImportDocument(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	doc := newDocument()
	doc.Config["100"] = map[string]any{
		"lobbyChannelId":    "L",
		"allowLinksEnabled": true,
	}
	doc.Config["200"] = map[string]any{"logChannelId": "X"}
	doc.VoiceRooms["R1"] = testutil.CreateTestRoom("R1", "100", "alice")
	doc.Tickets["T1"] = testutil.CreateTestTicket("T1", "100", "bob")
	doc.Tickets["T2"] = testutil.CreateTestTicket("T2", "100", "carol")
	doc.Tickets["T2"].ID = ""

	stats, err := ImportDocument(ctx, testDB.DB, doc)
	require.NoError(t, err)
	assert.Equal(t, &ImportStats{Values: 3, Rooms: 1, Tickets: 2}, stats)

	store := NewPostgresStore(testDB.DB)
	assert.Equal(t, "L", store.Get(ctx, "100", "lobbyChannelId", ""))
	assert.Equal(t, "X", store.Get(ctx, "200", "logChannelId", ""))

	room, err := store.GetRoom(ctx, "R1")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "alice", room.OwnerID)

	ticket, err := store.GetTicket(ctx, "T2")
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.NotEmpty(t, ticket.ID)

	// A second import is an idempotent upsert
	_, err = ImportDocument(ctx, testDB.DB, doc)
	require.NoError(t, err)
	rooms, err := store.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}
