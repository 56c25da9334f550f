/*
store.go - Persistence interface for floors, elements and reservations

PURPOSE:
  Defines the interface between the repositories and the database.
  The Gateway is a key-value table store: one table per entity, one
  committed write per call, ids assigned by the store.

KEY INTERFACES:
  Table:      insert / update / delete by id, select all
  ChildTable: Table plus select by foreign key
  Gateway:    the three tables of the hotel

CONTRACT:
  - Insert returns the newly assigned row id; ids are never reused
  - Every call is a single autocommitted write; there are no multi-row
    transactions and the gateway neither caches nor reorders writes
  - Failures are ErrIntegrity, ErrUnavailable or ErrNotFound

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite file store
  - hotel/store/memory.go: In-memory for testing

SEE ALSO:
  - rows.go: Entity <-> row conversion
  - errors.go: Storage error sentinels
*/
package hotel

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROWS - One per table, in storage vocabulary
// =============================================================================

// FloorRow is a row of floors(id, name, level).
type FloorRow struct {
	ID    int64
	Name  string
	Level int
}

// ElementRow is a row of elements. Number, Capacity and PricePerNight are
// zero for hallways and staircases.
type ElementRow struct {
	ID            int64
	ElementType   string
	FloorID       int64
	X             int
	Y             int
	Number        string
	Capacity      int
	PricePerNight decimal.Decimal
}

// ReservationRow is a row of reservations. Dates are YYYY-MM-DD strings.
type ReservationRow struct {
	ID             int64
	ReservationID  string
	RoomID         int64
	GuestName      string
	NumberOfGuests int
	CheckInDate    string
	CheckOutDate   string
}

// =============================================================================
// TABLES
// =============================================================================

// Table is the per-table CRUD surface of the gateway.
type Table[R any] interface {
	// Insert persists a new row and returns its assigned id. The id field
	// of the argument is ignored.
	Insert(ctx context.Context, row R) (int64, error)

	// UpdateByID overwrites every column of the row with the given id.
	UpdateByID(ctx context.Context, id int64, row R) error

	// DeleteByID removes the row with the given id.
	DeleteByID(ctx context.Context, id int64) error

	// SelectAll returns every row ordered by id.
	SelectAll(ctx context.Context) ([]R, error)
}

// ChildTable is a Table whose rows reference a parent row.
type ChildTable[R any] interface {
	Table[R]

	// SelectByFK returns the rows whose foreign key equals fk, ordered by id.
	SelectByFK(ctx context.Context, fk int64) ([]R, error)
}

// Gateway groups the three tables of one hotel store.
type Gateway interface {
	Floors() Table[FloorRow]
	Elements() ChildTable[ElementRow]
	Reservations() ChildTable[ReservationRow]
	Close() error
}
