// Package persistence stores saved games in SQLite.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/engine"
	"github.com/talgya/cardcity/internal/errx"
	"github.com/talgya/cardcity/internal/logs"
	"github.com/talgya/cardcity/internal/world"
)

// timeFormat sorts lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// DB wraps a SQLite connection for saved games.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		day INTEGER NOT NULL,
		topology TEXT NOT NULL,
		lake_level REAL NOT NULL,
		track_level REAL NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS districts (
		game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (game_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS amenities (
		game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		idx INTEGER NOT NULL,
		category TEXT NOT NULL,
		size INTEGER NOT NULL,
		density INTEGER NOT NULL,
		usage TEXT NOT NULL,
		age INTEGER,
		PRIMARY KEY (game_id, x, y, idx)
	);

	CREATE TABLE IF NOT EXISTS decks (
		game_id TEXT PRIMARY KEY REFERENCES games(id) ON DELETE CASCADE,
		available_json TEXT NOT NULL,
		hand_json TEXT NOT NULL,
		discarded_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		day INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		PRIMARY KEY (game_id, seq)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_games_saved_at ON games(saved_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type gameRow struct {
	ID         string  `db:"id"`
	Seed       int64   `db:"seed"`
	Day        int     `db:"day"`
	Topology   string  `db:"topology"`
	LakeLevel  float64 `db:"lake_level"`
	TrackLevel float64 `db:"track_level"`
	SavedAt    string  `db:"saved_at"`
}

type districtRow struct {
	X    int    `db:"x"`
	Y    int    `db:"y"`
	Name string `db:"name"`
}

type amenityRow struct {
	X        int           `db:"x"`
	Y        int           `db:"y"`
	Idx      int           `db:"idx"`
	Category string        `db:"category"`
	Size     int           `db:"size"`
	Density  int           `db:"density"`
	Usage    string        `db:"usage"`
	Age      sql.NullInt64 `db:"age"`
}

type deckRow struct {
	Available string `db:"available_json"`
	Hand      string `db:"hand_json"`
	Discarded string `db:"discarded_json"`
}

// Save writes a game, replacing any earlier save with the same id.
func (db *DB) Save(st engine.State) error {
	if st.ID == uuid.Nil {
		return errx.ErrReqParamERR.WithData("reason", "missing game id")
	}
	id := st.ID.String()

	availableJSON, err := json.Marshal(st.Available)
	if err != nil {
		return fmt.Errorf("encode deck: %w", err)
	}
	handJSON, err := json.Marshal(st.Hand)
	if err != nil {
		return fmt.Errorf("encode hand: %w", err)
	}
	discardedJSON, err := json.Marshal(st.Discarded)
	if err != nil {
		return fmt.Errorf("encode discards: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"events", "decks", "amenities", "districts"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE game_id = ?", id); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, id, err)
		}
	}
	if _, err := tx.Exec("DELETE FROM games WHERE id = ?", id); err != nil {
		return fmt.Errorf("clear game %s: %w", id, err)
	}

	_, err = tx.Exec(`INSERT INTO games
		(id, seed, day, topology, lake_level, track_level, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, st.Seed, st.Day, st.Topology, st.LakeLevel, st.TrackLevel,
		db.now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", id, err)
	}

	districtStmt, err := tx.Preparex("INSERT INTO districts (game_id, x, y, name) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer districtStmt.Close()

	amenityStmt, err := tx.Preparex(`INSERT INTO amenities
		(game_id, x, y, idx, category, size, density, usage, age)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer amenityStmt.Close()

	for _, d := range st.Districts {
		if _, err := districtStmt.Exec(id, d.Coord.X, d.Coord.Y, d.Name); err != nil {
			return fmt.Errorf("insert district %s: %w", d.Coord, err)
		}
		for i, a := range d.Amenities {
			var age sql.NullInt64
			if a.Age != nil {
				age = sql.NullInt64{Int64: int64(*a.Age), Valid: true}
			}
			_, err := amenityStmt.Exec(id, d.Coord.X, d.Coord.Y, i,
				a.Category.String(), a.Size, a.Density, a.Usage.String(), age)
			if err != nil {
				return fmt.Errorf("insert amenity %s/%d: %w", d.Coord, i, err)
			}
		}
	}

	_, err = tx.Exec(`INSERT INTO decks (game_id, available_json, hand_json, discarded_json)
		VALUES (?, ?, ?, ?)`,
		id, string(availableJSON), string(handJSON), string(discardedJSON))
	if err != nil {
		return fmt.Errorf("insert deck: %w", err)
	}

	for i, ev := range st.Events {
		_, err := tx.Exec(
			"INSERT INTO events (game_id, seq, day, description, category) VALUES (?, ?, ?, ?, ?)",
			id, i, ev.Day, ev.Description, ev.Category,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('last_game', ?)", id); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logs.Info("game saved",
		zap.String("game", id),
		zap.Int("day", st.Day),
		zap.Int("districts", len(st.Districts)),
	)
	return nil
}

// Load reads a saved game. A missing id is errx.ErrNotFound.
func (db *DB) Load(id uuid.UUID) (engine.State, error) {
	key := id.String()

	var g gameRow
	err := db.conn.Get(&g, "SELECT id, seed, day, topology, lake_level, track_level, saved_at FROM games WHERE id = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.State{}, errx.ErrNotFound.WithData("game", key)
	}
	if err != nil {
		return engine.State{}, fmt.Errorf("load game %s: %w", key, err)
	}

	st := engine.State{
		ID:         id,
		Seed:       g.Seed,
		Day:        g.Day,
		Topology:   g.Topology,
		LakeLevel:  g.LakeLevel,
		TrackLevel: g.TrackLevel,
	}

	var districts []districtRow
	if err := db.conn.Select(&districts, "SELECT x, y, name FROM districts WHERE game_id = ? ORDER BY y, x", key); err != nil {
		return engine.State{}, fmt.Errorf("load districts: %w", err)
	}
	byCoord := make(map[world.Coord]*world.District, len(districts))
	for _, r := range districts {
		d := &world.District{Coord: world.Coord{X: r.X, Y: r.Y}, Name: r.Name, Amenities: []world.Amenity{}}
		byCoord[d.Coord] = d
		st.Districts = append(st.Districts, d)
	}

	var amenities []amenityRow
	err = db.conn.Select(&amenities, `SELECT x, y, idx, category, size, density, usage, age
		FROM amenities WHERE game_id = ? ORDER BY y, x, idx`, key)
	if err != nil {
		return engine.State{}, fmt.Errorf("load amenities: %w", err)
	}
	for _, r := range amenities {
		d := byCoord[world.Coord{X: r.X, Y: r.Y}]
		if d == nil {
			return engine.State{}, fmt.Errorf("amenity at %d,%d has no district", r.X, r.Y)
		}
		a, err := r.amenity()
		if err != nil {
			return engine.State{}, err
		}
		d.Amenities = append(d.Amenities, a)
	}

	var dr deckRow
	if err := db.conn.Get(&dr, "SELECT available_json, hand_json, discarded_json FROM decks WHERE game_id = ?", key); err != nil {
		return engine.State{}, fmt.Errorf("load deck: %w", err)
	}
	for _, part := range []struct {
		raw string
		dst *[]catalog.CitizenCode
	}{
		{dr.Available, &st.Available},
		{dr.Hand, &st.Hand},
		{dr.Discarded, &st.Discarded},
	} {
		if err := json.Unmarshal([]byte(part.raw), part.dst); err != nil {
			return engine.State{}, fmt.Errorf("decode deck: %w", err)
		}
	}

	err = db.conn.Select(&st.Events, "SELECT day, description, category FROM events WHERE game_id = ? ORDER BY seq", key)
	if err != nil {
		return engine.State{}, fmt.Errorf("load events: %w", err)
	}

	return st, nil
}

func (r amenityRow) amenity() (world.Amenity, error) {
	cat, err := catalog.ParseCategory(r.Category)
	if err != nil {
		return world.Amenity{}, fmt.Errorf("amenity at %d,%d: %w", r.X, r.Y, err)
	}
	usage, err := catalog.ParseTier(r.Usage)
	if err != nil {
		return world.Amenity{}, fmt.Errorf("amenity at %d,%d: %w", r.X, r.Y, err)
	}
	a := world.Amenity{Category: cat, Size: r.Size, Density: r.Density, Usage: usage}
	if r.Age.Valid {
		age := int(r.Age.Int64)
		a.Age = &age
	}
	return a, nil
}

// Summary describes a save for listings.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Day       int       `json:"day"`
	Districts int       `json:"districts"`
	SavedAt   time.Time `json:"saved_at"`
	Age       string    `json:"age"`
}

// List returns all saves, newest first.
func (db *DB) List() ([]Summary, error) {
	var rows []struct {
		gameRow
		Districts int `db:"districts"`
	}
	err := db.conn.Select(&rows, `SELECT g.id, g.seed, g.day, g.topology, g.lake_level, g.track_level, g.saved_at,
			(SELECT COUNT(*) FROM districts d WHERE d.game_id = g.id) AS districts
		FROM games g ORDER BY g.saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	now := db.now()
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("game id %q: %w", r.ID, err)
		}
		saved, err := time.Parse(timeFormat, r.SavedAt)
		if err != nil {
			return nil, fmt.Errorf("game %s saved_at: %w", r.ID, err)
		}
		out = append(out, Summary{
			ID:        id,
			Day:       r.Day,
			Districts: r.Districts,
			SavedAt:   saved,
			Age:       humanize.RelTime(saved, now, "ago", "from now"),
		})
	}
	return out, nil
}

// Delete removes a save. A missing id is errx.ErrNotFound.
func (db *DB) Delete(id uuid.UUID) error {
	key := id.String()
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"events", "decks", "amenities", "districts"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE game_id = ?", key); err != nil {
			return fmt.Errorf("delete %s for %s: %w", table, key, err)
		}
	}
	res, err := tx.Exec("DELETE FROM games WHERE id = ?", key)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errx.ErrNotFound.WithData("game", key)
	}
	if _, err := tx.Exec("DELETE FROM meta WHERE key = 'last_game' AND value = ?", key); err != nil {
		return fmt.Errorf("delete meta: %w", err)
	}
	return tx.Commit()
}

// LastSaved returns the id of the most recent save, or errx.ErrNotFound.
func (db *DB) LastSaved() (uuid.UUID, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = 'last_game'")
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, errx.ErrNotFound.WithData("game", "last")
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(value)
}
