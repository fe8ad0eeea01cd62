package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hoshikuzu/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "hoshikuzu_data.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileStore_GetReturnsDefaultWhenMissing(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	assert.Equal(t, "fallback", store.Get(ctx, "100", "lobbyChannelId", "fallback"))
	assert.Nil(t, store.Get(ctx, "100", "lobbyChannelId", nil))

	require.NoError(t, store.Set(ctx, "100", "logChannelId", "555"))
	assert.Equal(t, 42, store.Get(ctx, "100", "lobbyChannelId", 42))
}

func TestFileStore_SetThenGet(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	values := map[string]any{
		"lobbyChannelId":    "123456789012345678",
		"allowLinksEnabled": true,
		"counter":           7,
	}
	for key, value := range values {
		require.NoError(t, store.Set(ctx, "100", key, value))
	}
	for key, value := range values {
		assert.Equal(t, value, store.Get(ctx, "100", key, "default"), key)
	}

	// Overwrite
	require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "999"))
	assert.Equal(t, "999", store.Get(ctx, "100", "lobbyChannelId", ""))
}

func TestFileStore_GuildsAreIsolated(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "guild-a", "lobbyChannelId", "A"))
	require.NoError(t, store.Set(ctx, "guild-b", "lobbyChannelId", "B"))

	assert.Equal(t, "A", store.Get(ctx, "guild-a", "lobbyChannelId", ""))
	assert.Equal(t, "B", store.Get(ctx, "guild-b", "lobbyChannelId", ""))

	values, err := store.GuildValues(ctx, "guild-a")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"lobbyChannelId": "A"}, values)

	// The copy does not alias the store
	values["lobbyChannelId"] = "mutated"
	assert.Equal(t, "A", store.Get(ctx, "guild-a", "lobbyChannelId", ""))
}

func TestFileStore_SetIsDurableOnReturn(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "L"))

	// The file already holds the value without Close
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	config := doc["config"].(map[string]any)
	assert.Equal(t, "L", config["100"].(map[string]any)["lobbyChannelId"])

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "L", reopened.Get(ctx, "100", "lobbyChannelId", ""))

	// No temp file is left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_Unset(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "100", "welcomeChannelId", "W"))
	require.NoError(t, store.Unset(ctx, "100", "welcomeChannelId"))
	require.NoError(t, store.Unset(ctx, "100", "welcomeChannelId"))
	require.NoError(t, store.Unset(ctx, "unknown-guild", "welcomeChannelId"))

	assert.Equal(t, "none", store.Get(ctx, "100", "welcomeChannelId", "none"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "none", reopened.Get(ctx, "100", "welcomeChannelId", "none"))
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	store, path := newTestFileStore(t)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	rooms, err := store.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestFileStore_CorruptFileResetsToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoshikuzu_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"config": {"100": {"lobbyChannelId": `), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, "default", store.Get(ctx, "100", "lobbyChannelId", "default"))

	// The next write replaces the corrupt file with a valid document
	require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "L"))
	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "L", doc.Config["100"]["lobbyChannelId"])
}

func TestFileStore_WrongShapeIsTreatedAsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoshikuzu_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"config": "nope"}`), 0o644))

	_, err := ReadDocument(path)
	assert.ErrorIs(t, err, ErrCorruptDocument)

	store, err := NewFileStore(path)
	require.NoError(t, err)
	values, err := store.GuildValues(context.Background(), "100")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestFileStore_WriteFailureKeepsPreviousState(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "L"))
	require.NoError(t, store.PutRoom(ctx, &models.VoiceRoom{ChannelID: "R1", GuildID: "100", OwnerID: "alice"}))

	// Removing the directory makes every following write fail
	require.NoError(t, os.RemoveAll(filepath.Dir(path)))

	err := store.Set(ctx, "100", "lobbyChannelId", "other")
	require.Error(t, err)
	assert.Equal(t, "L", store.Get(ctx, "100", "lobbyChannelId", ""))

	err = store.Set(ctx, "200", "logChannelId", "X")
	require.Error(t, err)
	values, err := store.GuildValues(ctx, "200")
	require.NoError(t, err)
	assert.Empty(t, values)

	err = store.PutRoom(ctx, &models.VoiceRoom{ChannelID: "R2", GuildID: "100", OwnerID: "bob"})
	require.Error(t, err)
	room, err := store.GetRoom(ctx, "R2")
	require.NoError(t, err)
	assert.Nil(t, room)

	err = store.DeleteRoom(ctx, "R1")
	require.Error(t, err)
	room, err = store.GetRoom(ctx, "R1")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "alice", room.OwnerID)
}

func TestFileStore_VoiceRooms(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	createdAt := time.Date(2025, 3, 1, 20, 15, 0, 0, time.UTC)
	require.NoError(t, store.PutRoom(ctx, &models.VoiceRoom{
		ChannelID: "R123",
		GuildID:   "100",
		OwnerID:   "alice",
		Name:      "🔊 alice's room",
		CreatedAt: createdAt,
	}))
	require.NoError(t, store.PutRoom(ctx, &models.VoiceRoom{
		ChannelID: "R456",
		GuildID:   "100",
		OwnerID:   "bob",
		CreatedAt: createdAt.Add(time.Minute),
	}))

	room, err := store.GetRoom(ctx, "R123")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "R123", room.ChannelID)
	assert.Equal(t, "alice", room.OwnerID)
	assert.True(t, createdAt.Equal(room.CreatedAt))

	missing, err := store.GetRoom(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Channel ids survive the round trip through map keys
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	rooms, err := reopened.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "R123", rooms[0].ChannelID)
	assert.Equal(t, "R456", rooms[1].ChannelID)

	require.NoError(t, reopened.DeleteRoom(ctx, "R123"))
	require.NoError(t, reopened.DeleteRoom(ctx, "R123"))
	room, err = reopened.GetRoom(ctx, "R123")
	require.NoError(t, err)
	assert.Nil(t, room)

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.NotContains(t, doc.VoiceRooms, "R123")
	assert.Contains(t, doc.VoiceRooms, "R456")
}

func TestFileStore_VoiceRoomJSONLayout(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutRoom(ctx, &models.VoiceRoom{
		ChannelID: "R1",
		GuildID:   "100",
		OwnerID:   "alice",
		CreatedAt: time.Date(2025, 3, 1, 20, 15, 0, 0, time.UTC),
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		VoiceRooms map[string]map[string]any `json:"voiceRooms"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc.VoiceRooms, "R1")
	assert.Equal(t, "alice", doc.VoiceRooms["R1"]["owner"])
	assert.Equal(t, "2025-03-01T20:15:00Z", doc.VoiceRooms["R1"]["createdAt"])
}

func TestFileStore_Tickets(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	ticket := &models.Ticket{
		ID:        "6f1c2b1e-8a4e-4a57-9a61-1f3b1d3c9f10",
		ChannelID: "T1",
		GuildID:   "100",
		OwnerID:   "alice",
		Reason:    "Support",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.PutTicket(ctx, ticket))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	got, err := reopened.GetTicket(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, "T1", got.ChannelID)
	assert.Equal(t, "Support", got.Reason)

	tickets, err := reopened.ListTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	require.NoError(t, reopened.DeleteTicket(ctx, "T1"))
	got, err = reopened.GetTicket(ctx, "T1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_RejectsRoomWithoutChannel(t *testing.T) {
	store, _ := newTestFileStore(t)
	assert.Error(t, store.PutRoom(context.Background(), &models.VoiceRoom{GuildID: "100"}))
	assert.Error(t, store.PutTicket(context.Background(), &models.Ticket{GuildID: "100"}))
}

func TestFileStore_Snapshot(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "L"))
	require.NoError(t, store.PutRoom(ctx, &models.VoiceRoom{ChannelID: "R1", GuildID: "100", OwnerID: "alice"}))

	doc, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "L", doc.Config["100"]["lobbyChannelId"])
	require.Contains(t, doc.VoiceRooms, "R1")
	assert.Equal(t, "R1", doc.VoiceRooms["R1"].ChannelID)

	doc.Config["100"]["lobbyChannelId"] = "changed"
	assert.Equal(t, "L", store.Get(ctx, "100", "lobbyChannelId", ""))
}

func TestFileStore_NumericIDsKeepPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoshikuzu_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"config": {"100": {"lobbyChannelId": 123456789012345678}}}`), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	value := store.Get(context.Background(), "100", "lobbyChannelId", nil)
	assert.Equal(t, json.Number("123456789012345678"), value)
}

func TestFileStore_NullGuildSettingsAcceptWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoshikuzu_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"config": {"100": null}}`), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	values, err := store.GuildValues(ctx, "100")
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NotPanics(t, func() {
		require.NoError(t, store.Set(ctx, "100", "lobbyChannelId", "200"))
	})
	assert.Equal(t, "200", store.Get(ctx, "100", "lobbyChannelId", ""))

	require.NoError(t, store.Unset(ctx, "100", "lobbyChannelId"))
	assert.Equal(t, "", store.Get(ctx, "100", "lobbyChannelId", ""))
}

func TestFileStore_LoadsNumericOwnerIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoshikuzu_data.json")
	legacy := `{
		"config": {"100": {"lobbyChannelId": "200", "temp_voc_300": {"owner": 42}}},
		"tickets": {"700": {"owner": 123456789012345678, "reason": "Support"}},
		"voiceRooms": {"300": {"guild": 100, "owner": 42}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	require.Contains(t, doc.Tickets, "700")
	assert.Equal(t, "123456789012345678", doc.Tickets["700"].OwnerID)

	store, err := NewFileStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "200", store.Get(ctx, "100", "lobbyChannelId", ""))

	ticket, err := store.GetTicket(ctx, "700")
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, "700", ticket.ChannelID)
	assert.Equal(t, "123456789012345678", ticket.OwnerID)
	assert.Equal(t, "Support", ticket.Reason)

	room, err := store.GetRoom(ctx, "300")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "100", room.GuildID)
	assert.Equal(t, "42", room.OwnerID)

	// A later write keeps the loaded data and stores ids as strings
	require.NoError(t, store.Set(ctx, "100", "logChannelId", "500"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lobbyChannelId": "200"`)
	assert.Contains(t, string(raw), `"owner": "123456789012345678"`)
}
