package javascript

import (
	"testing"
	"time"

	"hexstudio/hexruntime"
	"hexstudio/typedef"
)

func generateTestGrid(t *testing.T) {
	t.Helper()
	err := hexruntime.GenerateGrid(hexruntime.GenConfig{
		Rows:        10,
		Cols:        10,
		Orientation: typedef.OrientationFlatTop,
		TileSize:    12,
		Seed:        7,
	})
	if err != nil {
		t.Fatalf("GenerateGrid: %v", err)
	}
}

func TestExecuteReturnsValue(t *testing.T) {
	val, err := Execute("6*7", "calc")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := val.ToInteger(); got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
}

func TestExecuteUndefinedResult(t *testing.T) {
	if _, err := Execute("var x = 1", "noresult"); err == nil {
		t.Error("expected error for script with no result value")
	}
}

func TestExecuteMapAccess(t *testing.T) {
	generateTestGrid(t)

	val, err := Execute(`hexmap.TileCount()`, "count")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := val.ToInteger(); got != 100 {
		t.Errorf("TileCount from script = %d, want 100", got)
	}
}

func TestRunExecutesInit(t *testing.T) {
	generateTestGrid(t)

	src := `
function init() {
	hexmap.SetNotes("0,0", "resident");
}
function tick() {}
`
	cancel := Run(src, "resident_test.js")
	defer close(cancel)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tile := hexruntime.GetTile("0,0")
		if tile != nil && tile.Notes == "resident" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("init() never ran against the map runtime")
}
