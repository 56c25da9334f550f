/*
Package sqlite provides a SQLite-backed implementation of hotel.Gateway.

PURPOSE:
  Persists floors, elements and reservations in a single SQLite file.
  Each call is one autocommitted statement; there are no multi-row
  transactions (all rollback happens in memory, in the action engine).

INTERFACES IMPLEMENTED:
  hotel.Gateway:                    Floors(), Elements(), Reservations()
  hotel.Table[hotel.FloorRow]:      floors
  hotel.ChildTable[ElementRow]:     elements (by floor_id)
  hotel.ChildTable[ReservationRow]: reservations (by room_id)

KEY TABLES:
  floors:       id, name UNIQUE, level
  elements:     id, element_type, floor_id -> floors.id, x, y,
                number / capacity / price_per_night (NULL unless room)
  reservations: id, reservation_id UNIQUE, room_id, guest_name,
                number_of_guests, check_in_date, check_out_date

IDS:
  Every primary key is AUTOINCREMENT so an id is never handed out twice,
  even after the highest row is deleted. The action engine remaps old ids
  to new ones after undoing a cascade and relies on that.

ERRORS:
  UNIQUE / FOREIGN KEY violations -> hotel.ErrIntegrity
  Update/delete of a missing row  -> hotel.ErrNotFound
  Anything else                   -> hotel.ErrUnavailable

USAGE:
  store, err := sqlite.New("./data/hotel.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  repo := hotel.NewHotelRepository(store, logger)

SEE ALSO:
  - hotel/store.go: Interface definitions
  - hotel/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/hotel-engine/hotel"
)

// Store implements hotel.Gateway using SQLite.
type Store struct {
	db *sql.DB

	floors       *floorTable
	elements     *elementTable
	reservations *reservationTable
}

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: ":memory:" is per-connection, and the editor writes
	// from a single thread anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	store.floors = &floorTable{db: db}
	store.elements = &elementTable{db: db}
	store.reservations = &reservationTable{db: db}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Floors() hotel.Table[hotel.FloorRow]                   { return s.floors }
func (s *Store) Elements() hotel.ChildTable[hotel.ElementRow]         { return s.elements }
func (s *Store) Reservations() hotel.ChildTable[hotel.ReservationRow] { return s.reservations }

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS floors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		level INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS elements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		element_type TEXT NOT NULL CHECK (element_type IN ('room', 'hallway', 'staircase')),
		floor_id INTEGER NOT NULL REFERENCES floors(id),
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		number TEXT,
		capacity INTEGER,
		price_per_night REAL
	);

	CREATE INDEX IF NOT EXISTS idx_elements_floor
		ON elements(floor_id);

	CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reservation_id TEXT UNIQUE NOT NULL,
		room_id INTEGER NOT NULL,
		guest_name TEXT NOT NULL,
		number_of_guests INTEGER NOT NULL,
		check_in_date TEXT NOT NULL,
		check_out_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_room
		ON reservations(room_id);
	CREATE INDEX IF NOT EXISTS idx_reservations_guest
		ON reservations(guest_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// FLOORS
// =============================================================================

type floorTable struct {
	db *sql.DB
}

func (t *floorTable) Insert(ctx context.Context, row hotel.FloorRow) (int64, error) {
	res, err := t.db.ExecContext(ctx,
		"INSERT INTO floors (name, level) VALUES (?, ?)",
		row.Name, row.Level,
	)
	return insertedID(res, err, "floor")
}

func (t *floorTable) UpdateByID(ctx context.Context, id int64, row hotel.FloorRow) error {
	res, err := t.db.ExecContext(ctx,
		"UPDATE floors SET name = ?, level = ? WHERE id = ?",
		row.Name, row.Level, id,
	)
	return affectedOne(res, err, "floor", id)
}

func (t *floorTable) DeleteByID(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, "DELETE FROM floors WHERE id = ?", id)
	return affectedOne(res, err, "floor", id)
}

func (t *floorTable) SelectAll(ctx context.Context) ([]hotel.FloorRow, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT id, name, level FROM floors ORDER BY id")
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query floors: %w", err), err)
	}
	defer rows.Close()

	var floors []hotel.FloorRow
	for rows.Next() {
		var f hotel.FloorRow
		if err := rows.Scan(&f.ID, &f.Name, &f.Level); err != nil {
			return nil, classify(fmt.Errorf("failed to scan floor: %w", err), err)
		}
		floors = append(floors, f)
	}
	return floors, wrapRowsErr(rows.Err())
}

// =============================================================================
// ELEMENTS
// =============================================================================

type elementTable struct {
	db *sql.DB
}

const elementColumns = "id, element_type, floor_id, x, y, number, capacity, price_per_night"

func (t *elementTable) Insert(ctx context.Context, row hotel.ElementRow) (int64, error) {
	number, capacity, price := roomColumns(row)
	res, err := t.db.ExecContext(ctx, `
		INSERT INTO elements (element_type, floor_id, x, y, number, capacity, price_per_night)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.ElementType, row.FloorID, row.X, row.Y, number, capacity, price,
	)
	return insertedID(res, err, "element")
}

func (t *elementTable) UpdateByID(ctx context.Context, id int64, row hotel.ElementRow) error {
	number, capacity, price := roomColumns(row)
	res, err := t.db.ExecContext(ctx, `
		UPDATE elements
		SET element_type = ?, floor_id = ?, x = ?, y = ?, number = ?, capacity = ?, price_per_night = ?
		WHERE id = ?`,
		row.ElementType, row.FloorID, row.X, row.Y, number, capacity, price, id,
	)
	return affectedOne(res, err, "element", id)
}

func (t *elementTable) DeleteByID(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, "DELETE FROM elements WHERE id = ?", id)
	return affectedOne(res, err, "element", id)
}

func (t *elementTable) SelectAll(ctx context.Context) ([]hotel.ElementRow, error) {
	return t.query(ctx, "SELECT "+elementColumns+" FROM elements ORDER BY id")
}

func (t *elementTable) SelectByFK(ctx context.Context, floorID int64) ([]hotel.ElementRow, error) {
	return t.query(ctx, "SELECT "+elementColumns+" FROM elements WHERE floor_id = ? ORDER BY id", floorID)
}

func (t *elementTable) query(ctx context.Context, query string, args ...any) ([]hotel.ElementRow, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query elements: %w", err), err)
	}
	defer rows.Close()

	var elements []hotel.ElementRow
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	return elements, wrapRowsErr(rows.Err())
}

func scanElement(rows *sql.Rows) (hotel.ElementRow, error) {
	var (
		e        hotel.ElementRow
		number   sql.NullString
		capacity sql.NullInt64
		price    decimal.NullDecimal
	)
	err := rows.Scan(&e.ID, &e.ElementType, &e.FloorID, &e.X, &e.Y, &number, &capacity, &price)
	if err != nil {
		return e, classify(fmt.Errorf("failed to scan element: %w", err), err)
	}
	// NULL and the legacy "" / 0 / 0 read back the same way.
	e.Number = number.String
	e.Capacity = int(capacity.Int64)
	e.PricePerNight = decimal.Zero
	if price.Valid {
		e.PricePerNight = price.Decimal
	}
	return e, nil
}

// roomColumns returns NULLs for hallways and staircases.
func roomColumns(row hotel.ElementRow) (sql.NullString, sql.NullInt64, decimal.NullDecimal) {
	if row.ElementType != "room" {
		return sql.NullString{}, sql.NullInt64{}, decimal.NullDecimal{}
	}
	return sql.NullString{String: row.Number, Valid: true},
		sql.NullInt64{Int64: int64(row.Capacity), Valid: true},
		decimal.NullDecimal{Decimal: row.PricePerNight, Valid: true}
}

// =============================================================================
// RESERVATIONS
// =============================================================================

type reservationTable struct {
	db *sql.DB
}

const reservationColumns = "id, reservation_id, room_id, guest_name, number_of_guests, check_in_date, check_out_date"

func (t *reservationTable) Insert(ctx context.Context, row hotel.ReservationRow) (int64, error) {
	res, err := t.db.ExecContext(ctx, `
		INSERT INTO reservations
		(reservation_id, room_id, guest_name, number_of_guests, check_in_date, check_out_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.ReservationID, row.RoomID, row.GuestName, row.NumberOfGuests, row.CheckInDate, row.CheckOutDate,
	)
	return insertedID(res, err, "reservation")
}

func (t *reservationTable) UpdateByID(ctx context.Context, id int64, row hotel.ReservationRow) error {
	res, err := t.db.ExecContext(ctx, `
		UPDATE reservations
		SET reservation_id = ?, room_id = ?, guest_name = ?, number_of_guests = ?,
		    check_in_date = ?, check_out_date = ?
		WHERE id = ?`,
		row.ReservationID, row.RoomID, row.GuestName, row.NumberOfGuests, row.CheckInDate, row.CheckOutDate, id,
	)
	return affectedOne(res, err, "reservation", id)
}

func (t *reservationTable) DeleteByID(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	return affectedOne(res, err, "reservation", id)
}

func (t *reservationTable) SelectAll(ctx context.Context) ([]hotel.ReservationRow, error) {
	return t.query(ctx, "SELECT "+reservationColumns+" FROM reservations ORDER BY id")
}

func (t *reservationTable) SelectByFK(ctx context.Context, roomID int64) ([]hotel.ReservationRow, error) {
	return t.query(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE room_id = ? ORDER BY id", roomID)
}

func (t *reservationTable) query(ctx context.Context, query string, args ...any) ([]hotel.ReservationRow, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query reservations: %w", err), err)
	}
	defer rows.Close()

	var reservations []hotel.ReservationRow
	for rows.Next() {
		var r hotel.ReservationRow
		if err := rows.Scan(&r.ID, &r.ReservationID, &r.RoomID, &r.GuestName,
			&r.NumberOfGuests, &r.CheckInDate, &r.CheckOutDate); err != nil {
			return nil, classify(fmt.Errorf("failed to scan reservation: %w", err), err)
		}
		reservations = append(reservations, r)
	}
	return reservations, wrapRowsErr(rows.Err())
}

// =============================================================================
// HELPERS
// =============================================================================

func insertedID(res sql.Result, err error, what string) (int64, error) {
	if err != nil {
		return 0, classify(fmt.Errorf("failed to insert %s: %w", what, err), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(fmt.Errorf("failed to read %s id: %w", what, err), err)
	}
	return id, nil
}

func affectedOne(res sql.Result, err error, what string, id int64) error {
	if err != nil {
		return classify(fmt.Errorf("failed to write %s %d: %w", what, id, err), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(fmt.Errorf("failed to write %s %d: %w", what, id, err), err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, hotel.ErrNotFound)
	}
	return nil
}

func wrapRowsErr(err error) error {
	if err == nil {
		return nil
	}
	return classify(fmt.Errorf("failed to iterate rows: %w", err), err)
}

// classify tags wrapped with the storage sentinel matching cause.
func classify(wrapped, cause error) error {
	if isConstraintError(cause) {
		return fmt.Errorf("%w: %w", hotel.ErrIntegrity, wrapped)
	}
	return fmt.Errorf("%w: %w", hotel.ErrUnavailable, wrapped)
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
