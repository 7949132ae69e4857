package hexruntime

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"hexstudio/typedef"
)

func generateTestGrid(t *testing.T) {
	t.Helper()
	err := GenerateGrid(GenConfig{
		Rows:        20,
		Cols:        20,
		Orientation: typedef.OrientationFlatTop,
		TileSize:    12,
		Seed:        42,
	})
	if err != nil {
		t.Fatalf("GenerateGrid: %v", err)
	}
}

func TestGenerateGridSizeAndLabels(t *testing.T) {
	generateTestGrid(t)

	if got := TileCount(); got != 400 {
		t.Fatalf("tile count = %d, want 400", got)
	}

	// The documented origin: user label (10,10) on a 20x20 flat-top grid
	// is axial (0,0).
	origin := GetTile("0,0")
	if origin == nil {
		t.Fatal("no tile at axial origin")
	}
	if origin.Col != 10 || origin.Row != 10 {
		t.Errorf("origin labels = (%d,%d), want (10,10)", origin.Col, origin.Row)
	}

	for _, tile := range GetTiles() {
		c := tile.Coordinate
		if c.Q+c.R+c.S != 0 {
			t.Fatalf("tile %s violates cube invariant", tile.ID)
		}
		if tile.ID != c.Key() {
			t.Fatalf("tile id %q does not match coordinate key %q", tile.ID, c.Key())
		}
	}
}

func TestGenerateGridDeterministicForSeed(t *testing.T) {
	generateTestGrid(t)
	first := make(map[string]typedef.Biome)
	for _, tile := range GetTiles() {
		first[tile.ID] = tile.Biome
	}

	generateTestGrid(t)
	for _, tile := range GetTiles() {
		if first[tile.ID] != tile.Biome {
			t.Fatalf("seeded generation not deterministic at %s", tile.ID)
		}
	}
}

func TestGenerateGridRejectsBadDimensions(t *testing.T) {
	if err := GenerateGrid(GenConfig{Rows: 0, Cols: 10, TileSize: 12}); err == nil {
		t.Error("zero rows accepted")
	}
	if err := GenerateGrid(GenConfig{Rows: 10, Cols: 10, TileSize: -1}); err == nil {
		t.Error("negative tile size accepted")
	}
}

func TestSetBiomeBatch(t *testing.T) {
	generateTestGrid(t)

	// Start from a known biome so the change count below is exact.
	SetBiomeBatch([]string{"0,0", "1,0"}, typedef.BiomePlains)

	before := ChangeTick()
	changed := SetBiomeBatch([]string{"0,0", "1,0", "no-such-tile"}, typedef.BiomeDesert)
	if changed != 2 {
		t.Errorf("changed = %d tiles, want 2", changed)
	}
	if GetTile("0,0").Biome != typedef.BiomeDesert {
		t.Error("biome not applied")
	}
	if changed > 0 && ChangeTick() == before {
		t.Error("mutation did not advance the change tick")
	}

	// Re-applying the same biome is a no-op.
	if again := SetBiomeBatch([]string{"0,0"}, typedef.BiomeDesert); again != 0 {
		t.Errorf("idempotent batch changed %d tiles", again)
	}
}

func TestTownNotesEncounter(t *testing.T) {
	generateTestGrid(t)

	if err := SetTown("0,0", &typedef.Town{Name: "Bramblewick", Population: 312}); err != nil {
		t.Fatalf("SetTown: %v", err)
	}
	if err := SetNotes("0,0", "old watchtower"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if err := SetEncounter("0,0", "bandits"); err != nil {
		t.Fatalf("SetEncounter: %v", err)
	}
	tile := GetTile("0,0")
	if tile.Town == nil || tile.Town.Name != "Bramblewick" || tile.Notes != "old watchtower" || tile.Encounter != "bandits" {
		t.Errorf("metadata not applied: %+v", tile)
	}

	if err := SetTown("999,999", nil); err != typedef.ErrTileNotFound {
		t.Errorf("unknown tile error = %v", err)
	}
}

func testPath(id string, pts ...typedef.PixelPoint) *typedef.DrawingPath {
	return &typedef.DrawingPath{
		ID:          id,
		Points:      pts,
		Color:       color.RGBA{R: 200, A: 255},
		StrokeWidth: 3,
		Kind:        typedef.PathRoad,
	}
}

func TestAddAndErasePaths(t *testing.T) {
	generateTestGrid(t)

	if err := AddPath(testPath("short", typedef.PixelPoint{})); err != typedef.ErrPathTooShort {
		t.Errorf("short path error = %v", err)
	}

	near := testPath("near", typedef.PixelPoint{X: 0, Y: 0}, typedef.PixelPoint{X: 10, Y: 0})
	far := testPath("far", typedef.PixelPoint{X: 500, Y: 500}, typedef.PixelPoint{X: 510, Y: 500})
	if err := AddPath(near); err != nil {
		t.Fatalf("AddPath: %v", err)
	}
	if err := AddPath(far); err != nil {
		t.Fatalf("AddPath: %v", err)
	}

	if removed := ErasePathsNear(2, 2, 5); removed != 1 {
		t.Fatalf("erase removed %d paths, want 1", removed)
	}
	paths := GetPaths()
	if len(paths) != 1 || paths[0].ID != "far" {
		t.Errorf("remaining paths = %v", paths)
	}

	if removed := ErasePathsNear(2, 2, 5); removed != 0 {
		t.Errorf("second erase removed %d paths", removed)
	}
}

func TestContentExtent(t *testing.T) {
	generateTestGrid(t)
	w, h := ContentExtent(2)
	if w <= 0 || h <= 0 {
		t.Errorf("extent = %vx%v, want positive", w, h)
	}

	replaceAll(nil, nil, 0, 0, typedef.OrientationFlatTop, 12)
	if w, h := ContentExtent(2); w != 0 || h != 0 {
		t.Errorf("empty grid extent = %vx%v, want zero", w, h)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	generateTestGrid(t)
	SetBiomeBatch([]string{"0,0"}, typedef.BiomeSwamp)
	if err := AddPath(testPath("p", typedef.PixelPoint{X: 1, Y: 2}, typedef.PixelPoint{X: 3, Y: 4})); err != nil {
		t.Fatalf("AddPath: %v", err)
	}

	path := filepath.Join(t.TempDir(), "roundtrip.hexmap.lz4")
	if err := SaveStateToFile(path); err != nil {
		t.Fatalf("SaveStateToFile: %v", err)
	}

	// Wipe and reload.
	replaceAll(nil, nil, 0, 0, typedef.OrientationFlatTop, 12)
	if err := LoadStateFromFile(path); err != nil {
		t.Fatalf("LoadStateFromFile: %v", err)
	}

	if got := TileCount(); got != 400 {
		t.Errorf("loaded tile count = %d", got)
	}
	if GetTile("0,0").Biome != typedef.BiomeSwamp {
		t.Error("biome lost in round trip")
	}
	paths := GetPaths()
	if len(paths) != 1 || paths[0].ID != "p" || len(paths[0].Points) != 2 {
		t.Errorf("paths lost in round trip: %v", paths)
	}
	rows, cols, o, size := GridConfig()
	if rows != 20 || cols != 20 || o != typedef.OrientationFlatTop || size != 12 {
		t.Errorf("grid config lost: %d %d %v %v", rows, cols, o, size)
	}
}

func TestChangeTickFanOut(t *testing.T) {
	first := SubscribeChangeTicks()
	defer UnsubscribeChangeTicks(first)
	second := SubscribeChangeTicks()
	defer UnsubscribeChangeTicks(second)

	generateTestGrid(t)

	// Every subscriber has its own channel; one consumer must not steal
	// the other's ticks.
	select {
	case <-first:
	default:
		t.Error("first subscriber got no tick")
	}
	select {
	case <-second:
	default:
		t.Error("second subscriber got no tick")
	}

	UnsubscribeChangeTicks(second)
	drain(second)
	if err := SetNotes("0,0", "after unsubscribe"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	select {
	case tick := <-second:
		t.Errorf("unsubscribed channel received tick %d", tick)
	default:
	}
	select {
	case <-first:
	default:
		t.Error("remaining subscriber got no tick")
	}
}

func drain(ch chan uint64) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage")
	if err := os.WriteFile(path, []byte("not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadStateFromFile(path); err == nil {
		t.Error("garbage file accepted")
	}
}
