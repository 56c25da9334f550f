/*
hotel_repository.go - Authoritative in-memory model of floors and elements

PURPOSE:
  Owns every floor and element of the hotel, the connectivity graph G
  between elements, and the secondary indexes (by id, by name, by
  capacity). Every mutation is written through the Gateway first and
  only then applied in memory, so a failed write leaves memory untouched.

STATE:
  floorsByID / floorsByName:  live floors
  elementsByID / roomsByID:   live elements, rooms only
  roomsByCapacity:            capacity -> sorted room ids
  graph:                      walkable adjacency across all floors
  per floor grid:             (x,y) -> element id, built lazily

CONNECTIVITY RULES:
  - Hallway/Staircase <-> Hallway/Staircase when grid-adjacent
  - Staircase <-> Staircase at the same (x,y) on floors whose levels
    differ by exactly 1
  - Room <-> its first grid-adjacent Hallway in N, S, E, W order
    (a room has zero or one walkway edge)
  - Nothing else

  Edges are a pure function of the layout. handleConnections keeps G equal
  to what RecomputeEdges would build from scratch: it rebonds the touched
  element and every room around it.

CASCADES:
  RemoveFloor requires an empty floor. Removing a floor's elements and
  their reservations is the caller's job (see action.RemoveFloor).

CONCURRENCY:
  None. The repository runs on the single control thread of the editor.

SEE ALSO:
  - graph.go: Adjacency map
  - hotel_service.go: Validating facade over this repository
  - action/floor.go, action/element.go: Cascading removes with undo
*/
package hotel

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

type floorState struct {
	floor    Floor
	elements map[ElementID]*Element
	grid     map[Position]ElementID
}

// cells returns the floor grid, building it on first use.
func (fs *floorState) cells() map[Position]ElementID {
	if fs.grid == nil {
		fs.grid = make(map[Position]ElementID, len(fs.elements))
		for id, e := range fs.elements {
			fs.grid[e.Position] = id
		}
	}
	return fs.grid
}

func (fs *floorState) at(pos Position) (*Element, bool) {
	id, ok := fs.cells()[pos]
	if !ok {
		return nil, false
	}
	return fs.elements[id], true
}

// HotelRepository holds the floors, elements and connectivity graph.
type HotelRepository struct {
	store Gateway
	log   logrus.FieldLogger

	floorsByID      map[FloorID]*floorState
	floorsByName    map[string]*floorState
	elementsByID    map[ElementID]*Element
	roomsByID       map[ElementID]*Element
	roomsByCapacity map[int][]ElementID
	graph           *Graph
}

// NewHotelRepository creates an empty repository over the gateway.
// Call Load to hydrate it from storage.
func NewHotelRepository(store Gateway, log logrus.FieldLogger) *HotelRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HotelRepository{
		store:           store,
		log:             log.WithField("component", "hotel_repository"),
		floorsByID:      make(map[FloorID]*floorState),
		floorsByName:    make(map[string]*floorState),
		elementsByID:    make(map[ElementID]*Element),
		roomsByID:       make(map[ElementID]*Element),
		roomsByCapacity: make(map[int][]ElementID),
		graph:           NewGraph(),
	}
}

// Load replaces the in-memory state with the stored floors and elements
// and rebuilds the graph from scratch.
func (r *HotelRepository) Load(ctx context.Context) error {
	floorRows, err := r.store.Floors().SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load floors: %w", err)
	}
	elementRows, err := r.store.Elements().SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load elements: %w", err)
	}

	r.floorsByID = make(map[FloorID]*floorState, len(floorRows))
	r.floorsByName = make(map[string]*floorState, len(floorRows))
	r.elementsByID = make(map[ElementID]*Element, len(elementRows))
	r.roomsByID = make(map[ElementID]*Element)
	r.roomsByCapacity = make(map[int][]ElementID)

	for _, row := range floorRows {
		fs := &floorState{floor: floorFromRow(row), elements: make(map[ElementID]*Element)}
		r.floorsByID[fs.floor.ID] = fs
		r.floorsByName[fs.floor.Name] = fs
	}
	for _, row := range elementRows {
		e, err := elementFromRow(row)
		if err != nil {
			return err
		}
		fs, ok := r.floorsByID[e.FloorID]
		if !ok {
			return fmt.Errorf("element %d: %w: %d", e.ID, ErrFloorNotFound, e.FloorID)
		}
		el := &e
		fs.elements[el.ID] = el
		r.elementsByID[el.ID] = el
		if el.IsRoom() {
			r.indexRoom(el)
		}
	}

	r.graph = r.buildGraph()
	r.log.WithFields(logrus.Fields{
		"floors":   len(r.floorsByID),
		"elements": len(r.elementsByID),
		"edges":    len(r.graph.Edges()),
	}).Info("hotel layout loaded")
	return nil
}

// =============================================================================
// FLOORS
// =============================================================================

// AddFloor persists a new floor and returns its id.
func (r *HotelRepository) AddFloor(ctx context.Context, f Floor) (FloorID, error) {
	if err := NewValidationError(f.Validate()); err != nil {
		return 0, err
	}
	if _, ok := r.floorsByID[f.ID]; ok && f.ID != 0 {
		return 0, fmt.Errorf("%w: id %d", ErrFloorAlreadyExists, f.ID)
	}
	if _, ok := r.floorsByName[f.Name]; ok {
		return 0, fmt.Errorf("%w: name %q", ErrFloorAlreadyExists, f.Name)
	}
	if other := r.floorAtLevel(f.Level); other != nil {
		return 0, fmt.Errorf("%w: level %d is held by %q", ErrFloorAlreadyExists, f.Level, other.floor.Name)
	}

	id, err := r.store.Floors().Insert(ctx, floorToRow(f))
	if err != nil {
		return 0, translate(err, ErrFloorNotFound, ErrFloorAlreadyExists)
	}
	f.ID = FloorID(id)

	fs := &floorState{floor: f, elements: make(map[ElementID]*Element)}
	r.floorsByID[f.ID] = fs
	r.floorsByName[f.Name] = fs
	r.refreshStaircases()

	r.log.WithFields(logrus.Fields{"floor_id": f.ID, "name": f.Name, "level": f.Level}).Debug("floor added")
	return f.ID, nil
}

// RenameFloor renames the floor currently called oldName.
func (r *HotelRepository) RenameFloor(ctx context.Context, oldName, newName string) error {
	fs, ok := r.floorsByName[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFloorNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := r.floorsByName[newName]; taken {
		return fmt.Errorf("%w: name %q", ErrFloorAlreadyExists, newName)
	}
	renamed := fs.floor
	renamed.Name = newName
	if err := NewValidationError(renamed.Validate()); err != nil {
		return err
	}

	if err := r.store.Floors().UpdateByID(ctx, int64(fs.floor.ID), floorToRow(renamed)); err != nil {
		return translate(err, ErrFloorNotFound, ErrFloorAlreadyExists)
	}
	delete(r.floorsByName, oldName)
	fs.floor = renamed
	r.floorsByName[newName] = fs
	return nil
}

// MoveFloor changes the stacking level of a floor.
func (r *HotelRepository) MoveFloor(ctx context.Context, id FloorID, newLevel int) error {
	fs, ok := r.floorsByID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrFloorNotFound, id)
	}
	if fs.floor.Level == newLevel {
		return nil
	}
	if other := r.floorAtLevel(newLevel); other != nil {
		return fmt.Errorf("%w: level %d is held by %q", ErrFloorAlreadyExists, newLevel, other.floor.Name)
	}

	moved := fs.floor
	moved.Level = newLevel
	if err := r.store.Floors().UpdateByID(ctx, int64(id), floorToRow(moved)); err != nil {
		return translate(err, ErrFloorNotFound, ErrFloorAlreadyExists)
	}
	fs.floor = moved
	r.refreshStaircases()
	return nil
}

// RemoveFloor deletes an empty floor.
func (r *HotelRepository) RemoveFloor(ctx context.Context, id FloorID) error {
	fs, ok := r.floorsByID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrFloorNotFound, id)
	}
	if len(fs.elements) > 0 {
		return fmt.Errorf("%w: %q holds %d elements", ErrFloorNotEmpty, fs.floor.Name, len(fs.elements))
	}
	if err := r.store.Floors().DeleteByID(ctx, int64(id)); err != nil {
		return translate(err, ErrFloorNotFound, nil)
	}
	delete(r.floorsByID, id)
	delete(r.floorsByName, fs.floor.Name)
	r.refreshStaircases()

	r.log.WithFields(logrus.Fields{"floor_id": id, "name": fs.floor.Name}).Debug("floor removed")
	return nil
}

func (r *HotelRepository) Floor(id FloorID) (Floor, error) {
	fs, ok := r.floorsByID[id]
	if !ok {
		return Floor{}, fmt.Errorf("%w: %d", ErrFloorNotFound, id)
	}
	return fs.floor, nil
}

func (r *HotelRepository) FloorByName(name string) (Floor, error) {
	fs, ok := r.floorsByName[name]
	if !ok {
		return Floor{}, fmt.Errorf("%w: %q", ErrFloorNotFound, name)
	}
	return fs.floor, nil
}

// Floors returns every floor ordered by level.
func (r *HotelRepository) Floors() []Floor {
	out := make([]Floor, 0, len(r.floorsByID))
	for _, fs := range r.floorsByID {
		out = append(out, fs.floor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

func (r *HotelRepository) floorAtLevel(level int) *floorState {
	for _, fs := range r.floorsByID {
		if fs.floor.Level == level {
			return fs
		}
	}
	return nil
}

// =============================================================================
// ELEMENTS
// =============================================================================

// AddElement persists a new element and connects it to its neighbours.
func (r *HotelRepository) AddElement(ctx context.Context, e Element) (ElementID, error) {
	if err := NewValidationError(e.Validate()); err != nil {
		return 0, err
	}
	fs, ok := r.floorsByID[e.FloorID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrFloorNotFound, e.FloorID)
	}
	if occupant, taken := fs.at(e.Position); taken {
		return 0, &PositionOccupiedError{FloorID: e.FloorID, Position: e.Position, Occupant: occupant.ID}
	}

	id, err := r.store.Elements().Insert(ctx, elementToRow(e))
	if err != nil {
		return 0, translate(err, ErrFloorNotFound, nil)
	}
	e.ID = ElementID(id)

	el := &e
	fs.elements[el.ID] = el
	fs.cells()[el.Position] = el.ID
	r.elementsByID[el.ID] = el
	if el.IsRoom() {
		r.indexRoom(el)
	}
	r.graph.AddNode(el.ID)
	r.handleConnections(el)

	r.log.WithFields(logrus.Fields{
		"element_id": el.ID, "floor_id": el.FloorID, "kind": el.Kind.String(), "position": el.Position.String(),
	}).Debug("element added")
	return el.ID, nil
}

// MoveElement moves an element to pos on floorID (possibly another floor).
func (r *HotelRepository) MoveElement(ctx context.Context, id ElementID, floorID FloorID, pos Position) error {
	el, ok := r.elementsByID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrElementNotFound, id)
	}
	if !pos.OnGrid() {
		return &ValidationError{Problems: []string{fmt.Sprintf("position %s is off the %dx%d grid", pos, GridSize, GridSize)}}
	}
	target, ok := r.floorsByID[floorID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrFloorNotFound, floorID)
	}
	if el.FloorID == floorID && el.Position == pos {
		return nil
	}
	if occupant, taken := target.at(pos); taken {
		return &PositionOccupiedError{FloorID: floorID, Position: pos, Occupant: occupant.ID}
	}

	moved := *el
	moved.FloorID = floorID
	moved.Position = pos
	if err := r.store.Elements().UpdateByID(ctx, int64(id), elementToRow(moved)); err != nil {
		return translate(err, ErrElementNotFound, nil)
	}

	source := r.floorsByID[el.FloorID]
	oldPos := el.Position
	delete(source.cells(), oldPos)
	delete(source.elements, id)

	el.FloorID = floorID
	el.Position = pos
	target.elements[id] = el
	target.cells()[pos] = id

	r.handleConnections(el)
	r.rebondRoomsAround(source, oldPos)
	return nil
}

// EditRoom replaces the payload of a room.
func (r *HotelRepository) EditRoom(ctx context.Context, id ElementID, details RoomDetails) error {
	el, ok := r.elementsByID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrElementNotFound, id)
	}
	if !el.IsRoom() {
		return fmt.Errorf("%w: %d is a %s", ErrNotARoom, id, el.Kind)
	}
	if err := NewValidationError(details.Validate()); err != nil {
		return err
	}

	edited := *el
	edited.Room = details
	if err := r.store.Elements().UpdateByID(ctx, int64(id), elementToRow(edited)); err != nil {
		return translate(err, ErrElementNotFound, nil)
	}
	r.unindexRoom(el)
	el.Room = details
	r.indexRoom(el)
	return nil
}

// RemoveElement deletes an element and every edge touching it.
func (r *HotelRepository) RemoveElement(ctx context.Context, id ElementID) error {
	el, ok := r.elementsByID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrElementNotFound, id)
	}
	if err := r.store.Elements().DeleteByID(ctx, int64(id)); err != nil {
		return translate(err, ErrElementNotFound, nil)
	}

	r.graph.RemoveNode(id)
	fs := r.floorsByID[el.FloorID]
	delete(fs.cells(), el.Position)
	delete(fs.elements, id)
	delete(r.elementsByID, id)
	if el.IsRoom() {
		r.unindexRoom(el)
	}
	r.rebondRoomsAround(fs, el.Position)

	r.log.WithFields(logrus.Fields{"element_id": id, "floor_id": el.FloorID}).Debug("element removed")
	return nil
}

func (r *HotelRepository) Element(id ElementID) (Element, error) {
	el, ok := r.elementsByID[id]
	if !ok {
		return Element{}, fmt.Errorf("%w: %d", ErrElementNotFound, id)
	}
	return *el, nil
}

// ElementAt returns the occupant of a cell, if any.
func (r *HotelRepository) ElementAt(floorID FloorID, pos Position) (Element, bool) {
	fs, ok := r.floorsByID[floorID]
	if !ok {
		return Element{}, false
	}
	el, ok := fs.at(pos)
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// Elements returns the elements of one floor ordered by id.
func (r *HotelRepository) Elements(floorID FloorID) ([]Element, error) {
	fs, ok := r.floorsByID[floorID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrFloorNotFound, floorID)
	}
	out := make([]Element, 0, len(fs.elements))
	for _, el := range fs.elements {
		out = append(out, *el)
	}
	sortElements(out)
	return out, nil
}

// AllElements returns every element ordered by id.
func (r *HotelRepository) AllElements() []Element {
	out := make([]Element, 0, len(r.elementsByID))
	for _, el := range r.elementsByID {
		out = append(out, *el)
	}
	sortElements(out)
	return out
}

// =============================================================================
// ROOMS
// =============================================================================

func (r *HotelRepository) Room(id ElementID) (Element, error) {
	el, ok := r.elementsByID[id]
	if !ok {
		return Element{}, fmt.Errorf("%w: %d", ErrElementNotFound, id)
	}
	if !el.IsRoom() {
		return Element{}, fmt.Errorf("%w: %d is a %s", ErrNotARoom, id, el.Kind)
	}
	return *el, nil
}

// Rooms returns every room ordered by id.
func (r *HotelRepository) Rooms() []Element {
	out := make([]Element, 0, len(r.roomsByID))
	for _, el := range r.roomsByID {
		out = append(out, *el)
	}
	sortElements(out)
	return out
}

// RoomsWithCapacity returns the rooms of exactly the given capacity.
func (r *HotelRepository) RoomsWithCapacity(capacity int) []Element {
	ids := r.roomsByCapacity[capacity]
	out := make([]Element, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.roomsByID[id])
	}
	return out
}

// RoomsFitting returns the rooms that can hold at least guests people.
func (r *HotelRepository) RoomsFitting(guests int) []Element {
	var out []Element
	for capacity, ids := range r.roomsByCapacity {
		if capacity < guests {
			continue
		}
		for _, id := range ids {
			out = append(out, *r.roomsByID[id])
		}
	}
	sortElements(out)
	return out
}

func (r *HotelRepository) indexRoom(el *Element) {
	r.roomsByID[el.ID] = el
	ids := append(r.roomsByCapacity[el.Room.Capacity], el.ID)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	r.roomsByCapacity[el.Room.Capacity] = ids
}

func (r *HotelRepository) unindexRoom(el *Element) {
	delete(r.roomsByID, el.ID)
	bucket := r.roomsByCapacity[el.Room.Capacity]
	kept := bucket[:0]
	for _, id := range bucket {
		if id != el.ID {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		delete(r.roomsByCapacity, el.Room.Capacity)
		return
	}
	r.roomsByCapacity[el.Room.Capacity] = kept
}

// =============================================================================
// CONNECTIVITY
// =============================================================================

// Edges returns every edge of G, sorted.
func (r *HotelRepository) Edges() []Edge { return r.graph.Edges() }

func (r *HotelRepository) Neighbours(id ElementID) []ElementID { return r.graph.Neighbours(id) }

func (r *HotelRepository) Degree(id ElementID) int { return r.graph.Degree(id) }

// Route returns a shortest walk between two elements, or nil when they are
// not connected.
func (r *HotelRepository) Route(from, to ElementID) ([]ElementID, error) {
	if _, ok := r.elementsByID[from]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrElementNotFound, from)
	}
	if _, ok := r.elementsByID[to]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrElementNotFound, to)
	}
	return r.graph.Path(from, to), nil
}

// RecomputeEdges builds G from scratch from the current layout without
// touching the live graph.
func (r *HotelRepository) RecomputeEdges() []Edge { return r.buildGraph().Edges() }

func (r *HotelRepository) buildGraph() *Graph {
	g := NewGraph()
	for id := range r.elementsByID {
		g.AddNode(id)
	}
	for _, el := range r.elementsByID {
		r.bond(g, el)
	}
	return g
}

// handleConnections drops every edge of e, rebonds it, then rebonds the
// rooms around it since their first adjacent hallway may have changed.
func (r *HotelRepository) handleConnections(e *Element) {
	r.graph.Detach(e.ID)
	r.bond(r.graph, e)
	r.rebondRoomsAround(r.floorsByID[e.FloorID], e.Position)
}

func (r *HotelRepository) rebondRoomsAround(fs *floorState, pos Position) {
	for _, n := range pos.Neighbours() {
		if el, ok := fs.at(n); ok && el.IsRoom() {
			r.graph.Detach(el.ID)
			r.bond(r.graph, el)
		}
	}
}

// bond adds the edges e is entitled to. Walkway edges are symmetric so the
// neighbour's side needs no extra work.
//
// A room always takes its first adjacent hallway in N, S, E, W order, even
// if it already had a hallway edge, so a new hallway earlier in that order
// steals the room. Rooms never bond with staircases, not even at degree 0.
// Both rules keep the graph a pure function of the layout, which is what
// lets handleConnections agree with buildGraph.
func (r *HotelRepository) bond(g *Graph, e *Element) {
	fs := r.floorsByID[e.FloorID]
	switch e.Kind {
	case KindHallway, KindStaircase:
		for _, pos := range e.Position.Neighbours() {
			if n, ok := fs.at(pos); ok && n.Kind.Walkway() {
				g.AddEdge(e.ID, n.ID)
			}
		}
		if e.Kind == KindStaircase {
			for _, other := range r.floorsByID {
				if abs(other.floor.Level-fs.floor.Level) != 1 {
					continue
				}
				if n, ok := other.at(e.Position); ok && n.Kind == KindStaircase {
					g.AddEdge(e.ID, n.ID)
				}
			}
		}
	case KindRoom:
		for _, pos := range e.Position.Neighbours() {
			if n, ok := fs.at(pos); ok && n.Kind == KindHallway {
				g.AddEdge(e.ID, n.ID)
				return
			}
		}
	}
}

// refreshStaircases rebonds every staircase on every floor. Runs on floor
// add, move and remove.
func (r *HotelRepository) refreshStaircases() {
	for _, fs := range r.floorsByID {
		for _, el := range fs.elements {
			if el.Kind == KindStaircase {
				r.graph.Detach(el.ID)
				r.bond(r.graph, el)
			}
		}
	}
	// Detaching a staircase also dropped its same-floor walkway edges, which
	// bond restored from the staircase side. Rooms never bond to staircases.
}

// =============================================================================
// HELPERS
// =============================================================================

// translate maps storage errors to domain errors where the meaning is clear.
func translate(err error, notFound, conflict error) error {
	switch {
	case notFound != nil && errors.Is(err, ErrNotFound):
		return fmt.Errorf("%w: %w", notFound, err)
	case conflict != nil && errors.Is(err, ErrIntegrity):
		return fmt.Errorf("%w: %w", conflict, err)
	default:
		return err
	}
}

func sortElements(els []Element) {
	sort.Slice(els, func(i, j int) bool { return els[i].ID < els[j].ID })
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
