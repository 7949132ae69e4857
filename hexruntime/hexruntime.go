// Package hexruntime owns the map data: the tile collection, the drawing
// path overlay, and the grid configuration. All mutation goes through this
// package; callers receive copies or read-only references and are notified
// of changes via callbacks and the change tick channel.
package hexruntime

import (
	"math"
	"sort"
	"sync"

	"hexstudio/hexmath"
	"hexstudio/typedef"
)

type state struct {
	mu sync.RWMutex

	tiles map[string]*typedef.HexTile
	order []string // stable iteration order for GetTiles

	paths []*typedef.DrawingPath

	rows, cols  int
	orientation typedef.HexOrientation
	tileSize    float64

	changeTick uint64
	tickSubs   map[chan uint64]struct{}
	changeCbs  []func()
}

var st = &state{
	tiles:       make(map[string]*typedef.HexTile),
	tickSubs:    make(map[chan uint64]struct{}),
	orientation: typedef.OrientationFlatTop,
	tileSize:    24,
}

// GridConfig returns the current grid dimensions, orientation and tile size.
func GridConfig() (rows, cols int, o typedef.HexOrientation, tileSize float64) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.rows, st.cols, st.orientation, st.tileSize
}

// GetTiles returns the tile collection in a stable order. The slice is a
// copy; the tiles themselves are shared and must be treated as read-only
// by callers.
func GetTiles() []*typedef.HexTile {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make([]*typedef.HexTile, 0, len(st.order))
	for _, id := range st.order {
		result = append(result, st.tiles[id])
	}
	return result
}

// GetTile looks a tile up by its coordinate key. Nil means no such tile.
func GetTile(id string) *typedef.HexTile {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.tiles[id]
}

// TileCount returns the number of tiles in the grid.
func TileCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.tiles)
}

// SetBiomeBatch applies a biome to every existing tile in the batch and
// returns how many tiles changed. Unknown ids are skipped silently.
func SetBiomeBatch(ids []string, biome typedef.Biome) int {
	st.mu.Lock()
	changed := 0
	for _, id := range ids {
		if tile, ok := st.tiles[id]; ok && tile.Biome != biome {
			tile.Biome = biome
			changed++
		}
	}
	st.mu.Unlock()

	if changed > 0 {
		notifyChange()
	}
	return changed
}

// SetTown attaches (or clears, with nil) town metadata on a tile.
func SetTown(id string, town *typedef.Town) error {
	st.mu.Lock()
	tile, ok := st.tiles[id]
	if !ok {
		st.mu.Unlock()
		return typedef.ErrTileNotFound
	}
	tile.Town = town
	st.mu.Unlock()

	notifyChange()
	return nil
}

// SetNotes replaces the free-form notes on a tile.
func SetNotes(id, notes string) error {
	st.mu.Lock()
	tile, ok := st.tiles[id]
	if !ok {
		st.mu.Unlock()
		return typedef.ErrTileNotFound
	}
	tile.Notes = notes
	st.mu.Unlock()

	notifyChange()
	return nil
}

// SetEncounter replaces the encounter reference on a tile.
func SetEncounter(id, encounter string) error {
	st.mu.Lock()
	tile, ok := st.tiles[id]
	if !ok {
		st.mu.Unlock()
		return typedef.ErrTileNotFound
	}
	tile.Encounter = encounter
	st.mu.Unlock()

	notifyChange()
	return nil
}

// AddPath appends a finished drawing path to the overlay layer.
func AddPath(p *typedef.DrawingPath) error {
	if p == nil || len(p.Points) < 2 {
		return typedef.ErrPathTooShort
	}
	st.mu.Lock()
	st.paths = append(st.paths, p)
	st.mu.Unlock()

	notifyChange()
	return nil
}

// GetPaths returns a copy of the overlay path list.
func GetPaths() []*typedef.DrawingPath {
	st.mu.RLock()
	defer st.mu.RUnlock()
	result := make([]*typedef.DrawingPath, len(st.paths))
	copy(result, st.paths)
	return result
}

// ErasePathsNear removes every path with at least one point within radius
// of the given world point and returns how many were removed.
func ErasePathsNear(x, y, radius float64) int {
	st.mu.Lock()
	kept := st.paths[:0]
	removed := 0
	for _, p := range st.paths {
		if pathNear(p, x, y, radius) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	st.paths = kept
	st.mu.Unlock()

	if removed > 0 {
		notifyChange()
	}
	return removed
}

func pathNear(p *typedef.DrawingPath, x, y, radius float64) bool {
	for _, pt := range p.Points {
		if math.Hypot(pt.X-x, pt.Y-y) <= radius {
			return true
		}
	}
	return false
}

// ContentExtent returns the world-pixel size of the generated grid plus a
// margin of hex cells on every side, for viewport fit math. Zero for an
// empty grid.
func ContentExtent(marginCells int) (w, h float64) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if len(st.tiles) == 0 {
		return 0, 0
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, tile := range st.tiles {
		x, y := hexmath.TileCenter(tile.Coordinate, st.tileSize, st.orientation)
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	margin := float64(marginCells) * st.tileSize * 2
	return maxX - minX + margin*2, maxY - minY + margin*2
}

// RegisterChangeCallback registers a function invoked after every map
// mutation. Callbacks run on the mutating goroutine and must be cheap.
func RegisterChangeCallback(fn func()) {
	st.mu.Lock()
	st.changeCbs = append(st.changeCbs, fn)
	st.mu.Unlock()
}

// SubscribeChangeTicks registers a change-tick listener and returns its
// channel. Every subscriber gets its own buffered channel, so the API
// broadcaster and resident scripts can listen independently. Sends are
// non-blocking, slow consumers skip ticks.
func SubscribeChangeTicks() chan uint64 {
	ch := make(chan uint64, 64)
	st.mu.Lock()
	st.tickSubs[ch] = struct{}{}
	st.mu.Unlock()
	return ch
}

// UnsubscribeChangeTicks removes a listener registered with
// SubscribeChangeTicks. The channel is not closed; the caller simply
// stops receiving.
func UnsubscribeChangeTicks(ch chan uint64) {
	st.mu.Lock()
	delete(st.tickSubs, ch)
	st.mu.Unlock()
}

func notifyChange() {
	st.mu.Lock()
	st.changeTick++
	tick := st.changeTick
	cbs := make([]func(), len(st.changeCbs))
	copy(cbs, st.changeCbs)
	subs := make([]chan uint64, 0, len(st.tickSubs))
	for ch := range st.tickSubs {
		subs = append(subs, ch)
	}
	st.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- tick:
		default:
		}
	}
	for _, fn := range cbs {
		fn()
	}
}

// ChangeTick returns the current change counter.
func ChangeTick() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.changeTick
}

// replaceAll swaps the whole map state in one step. Used by generation and
// state loading; the grid is regenerated wholesale, never tile-by-tile.
func replaceAll(tiles []*typedef.HexTile, paths []*typedef.DrawingPath, rows, cols int, o typedef.HexOrientation, tileSize float64) {
	tileMap := make(map[string]*typedef.HexTile, len(tiles))
	order := make([]string, 0, len(tiles))
	for _, tile := range tiles {
		if tile == nil {
			continue
		}
		tileMap[tile.ID] = tile
		order = append(order, tile.ID)
	}
	sort.Strings(order)

	st.mu.Lock()
	st.tiles = tileMap
	st.order = order
	st.paths = paths
	st.rows = rows
	st.cols = cols
	st.orientation = o
	st.tileSize = tileSize
	st.mu.Unlock()

	notifyChange()
}
