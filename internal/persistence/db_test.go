package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/engine"
	"github.com/talgya/cardcity/internal/entropy"
	"github.com/talgya/cardcity/internal/errx"
	"github.com/talgya/cardcity/internal/world"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "citysim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// playedState returns a game two days in with housing, a road and a seaport.
func playedState(t *testing.T) engine.State {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Seed = 99
	e := engine.New(cfg, entropy.New(99))
	e.StartGame()

	origin := e.Grid().Get(world.Coord{})
	age := 3
	origin.Amenities = append(origin.Amenities,
		world.Amenity{Category: catalog.Housing, Size: 1, Density: 1, Usage: catalog.Medium, Age: &age},
		world.Amenity{Category: catalog.Road},
		world.Amenity{Category: catalog.Seaport, Size: 2, Density: 1, Usage: catalog.High},
	)
	e.Grid().EnsureGrown(world.Coord{})
	_, err := e.StartNewDay()
	require.NoError(t, err)
	e.Deck().Discard(e.Deck().Hand()[:1])
	return e.State()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTemp(t)
	st := playedState(t)
	require.NoError(t, db.Save(st))

	got, err := db.Load(st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	restored, err := engine.Restore(got, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, restored.Grid().Get(world.Coord{}).Assets)
}

func TestSaveReplaces(t *testing.T) {
	db := openTemp(t)
	st := playedState(t)
	require.NoError(t, db.Save(st))

	st.Day = 9
	st.Districts = st.Districts[:1]
	st.Events = nil
	require.NoError(t, db.Save(st))

	got, err := db.Load(st.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Day)
	assert.Len(t, got.Districts, 1)
	assert.Empty(t, got.Events)

	list, err := db.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLoadMissing(t *testing.T) {
	db := openTemp(t)
	_, err := db.Load(uuid.New())
	assert.ErrorIs(t, err, errx.ErrNotFound)
	assert.ErrorIs(t, db.Delete(uuid.New()), errx.ErrNotFound)
	_, err = db.LastSaved()
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestSaveRequiresID(t *testing.T) {
	db := openTemp(t)
	err := db.Save(engine.State{Day: 1})
	assert.ErrorIs(t, err, errx.ErrReqParamERR)
}

func TestListNewestFirst(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	db.now = func() time.Time { return clock }

	first := playedState(t)
	require.NoError(t, db.Save(first))
	clock = base.Add(time.Hour)
	second := playedState(t)
	require.NoError(t, db.Save(second))

	clock = base.Add(3 * time.Hour)
	list, err := db.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, len(second.Districts), list[0].Districts)
	assert.Equal(t, 2, list[0].Day)
	assert.Equal(t, "2 hours ago", list[0].Age)
	assert.True(t, list[1].SavedAt.Equal(base))

	last, err := db.LastSaved()
	require.NoError(t, err)
	assert.Equal(t, second.ID, last)

	require.NoError(t, db.Delete(second.ID))
	_, err = db.LastSaved()
	assert.ErrorIs(t, err, errx.ErrNotFound)
	list, err = db.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
