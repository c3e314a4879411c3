package scene

import (
	"fmt"
	"math"

	"github.com/akmonengine/sculpt/xform"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey - coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

type cell struct {
	objectIndices []int
}

// spatialGrid - uniform hashed grid used as broad phase for range queries
type spatialGrid struct {
	cellSize float64
	cells    []cell
	cellMask int
}

func newSpatialGrid(cellSize float64, numCells int) *spatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]cell, numCells)
	for i := range cells {
		cells[i].objectIndices = make([]int, 0, 8)
	}

	return &spatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo rounds up to the next power of 2
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// insert places an object index into every cell its AABB touches
func (sg *spatialGrid) insert(objectIndex int, aabb AABB) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].objectIndices = append(
					sg.cells[cellIdx].objectIndices,
					objectIndex,
				)
			}
		}
	}
}

func (sg *spatialGrid) clear() {
	for i := range sg.cells {
		sg.cells[i].objectIndices = sg.cells[i].objectIndices[:0]
	}
}

// query visits the indices recorded in every cell the box touches. The same
// index can appear more than once; callers deduplicate.
func (sg *spatialGrid) query(box AABB, fn func(objectIndex int) bool) {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				for _, idx := range sg.cells[cellIdx].objectIndices {
					if !fn(idx) {
						return
					}
				}
			}
		}
	}
}

// worldToCell converts a world position to cell coordinates
func (sg *spatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell hashes a cell to an index in the array
func (sg *spatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

// MemoryWorld is an in-memory World implementation backed by the spatial
// grid. Hosts that mirror engine state use it directly; it also implements
// Spawner so deleted objects can be recreated through it.
type MemoryWorld struct {
	objects map[ObjectID]*Object
	order   []ObjectID
	grid    *spatialGrid
	dirty   bool
}

func NewMemoryWorld(cellSize float64, numCells int) *MemoryWorld {
	return &MemoryWorld{
		objects: make(map[ObjectID]*Object),
		grid:    newSpatialGrid(cellSize, numCells),
	}
}

// Add registers an object. The object is stored by pointer; the world owns
// it from here on.
func (w *MemoryWorld) Add(obj *Object) {
	if _, exists := w.objects[obj.ID]; !exists {
		w.order = append(w.order, obj.ID)
	}
	w.objects[obj.ID] = obj
	w.dirty = true
}

func (w *MemoryWorld) Remove(id ObjectID) {
	if _, exists := w.objects[id]; !exists {
		return
	}
	delete(w.objects, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.dirty = true
}

func (w *MemoryWorld) Lookup(id ObjectID) (*Object, bool) {
	obj, ok := w.objects[id]
	if !ok || obj.Deleted {
		return nil, false
	}
	return obj, true
}

func (w *MemoryWorld) SetTransform(id ObjectID, t xform.Transform, euler mgl64.Vec3) {
	obj, ok := w.objects[id]
	if !ok {
		return
	}
	obj.Transform = t
	obj.Euler = euler
	w.dirty = true
}

func (w *MemoryWorld) ForEachInRange(center mgl64.Vec3, radius float64, fn func(*Object) bool) {
	w.rebuild()

	box := AABB{
		Min: center.Sub(mgl64.Vec3{radius, radius, radius}),
		Max: center.Add(mgl64.Vec3{radius, radius, radius}),
	}

	seen := make(map[int]bool)
	w.grid.query(box, func(idx int) bool {
		if seen[idx] {
			return true
		}
		seen[idx] = true

		obj := w.objects[w.order[idx]]
		if obj.Deleted {
			return true
		}
		if !box.Overlaps(obj.AABB()) {
			return true
		}
		return fn(obj)
	})
}

func (w *MemoryWorld) rebuild() {
	if !w.dirty {
		return
	}
	w.grid.clear()
	for i, id := range w.order {
		obj := w.objects[id]
		if obj.Deleted {
			continue
		}
		w.grid.insert(i, obj.AABB())
	}
	w.dirty = false
}

// Len counts live objects.
func (w *MemoryWorld) Len() int {
	n := 0
	for _, obj := range w.objects {
		if !obj.Deleted {
			n++
		}
	}
	return n
}

// Spawn implements Spawner. The template's metadata is copied when the
// template refers to a known object.
func (w *MemoryWorld) Spawn(template ObjectID, t xform.Transform, euler mgl64.Vec3) (ObjectID, error) {
	obj := &Object{
		ID:        NewObjectID(),
		Template:  template,
		Transform: t,
		Euler:     euler,
	}
	if proto, ok := w.objects[template]; ok {
		obj.Name = proto.Name
		obj.HalfExtents = proto.HalfExtents
		obj.Kind = proto.Kind
		obj.Layer = proto.Layer
	}
	w.Add(obj)
	return obj.ID, nil
}

// Despawn implements Spawner. The object is tombstoned, not forgotten, so a
// later lookup of its template data still works.
func (w *MemoryWorld) Despawn(id ObjectID) error {
	obj, ok := w.objects[id]
	if !ok {
		return fmt.Errorf("despawn %s: unknown object", id)
	}
	if obj.Deleted {
		return fmt.Errorf("despawn %s: already deleted", id)
	}
	obj.Deleted = true
	w.dirty = true
	return nil
}
