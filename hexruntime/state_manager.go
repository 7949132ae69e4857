package hexruntime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4"

	"hexstudio/storage"
	"hexstudio/typedef"
)

// StateData is the complete map state written to disk as LZ4-compressed
// JSON.
type StateData struct {
	Type      string    `json:"type"`    // "map_save"
	Version   string    `json:"version"` // "1.0"
	Timestamp time.Time `json:"timestamp"`

	Rows        int                    `json:"rows"`
	Cols        int                    `json:"cols"`
	Orientation typedef.HexOrientation `json:"orientation"`
	TileSize    float64                `json:"tileSize"`

	Tiles []*typedef.HexTile     `json:"tiles"`
	Paths []*typedef.DrawingPath `json:"paths"`

	TotalTiles int `json:"totalTiles"`
	TotalPaths int `json:"totalPaths"`
}

const autosaveName = "autosave.hexmap.lz4"

// SaveStateToFile saves the current map state with LZ4 compression.
func SaveStateToFile(filepath string) error {
	var data StateData

	st.mu.RLock()
	data.Type = "map_save"
	data.Version = "1.0"
	data.Timestamp = time.Now()
	data.Rows = st.rows
	data.Cols = st.cols
	data.Orientation = st.orientation
	data.TileSize = st.tileSize
	data.TotalTiles = len(st.tiles)
	data.TotalPaths = len(st.paths)

	// Copy tile values so marshalling happens without holding the lock.
	data.Tiles = make([]*typedef.HexTile, 0, len(st.order))
	for _, id := range st.order {
		tileCopy := *st.tiles[id]
		data.Tiles = append(data.Tiles, &tileCopy)
	}
	data.Paths = make([]*typedef.DrawingPath, len(st.paths))
	copy(data.Paths, st.paths)
	st.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal map state: %v", err)
	}

	compressed, err := compressLZ4(jsonData)
	if err != nil {
		return fmt.Errorf("failed to compress map state: %v", err)
	}

	if err := os.WriteFile(filepath, compressed, 0644); err != nil {
		return fmt.Errorf("failed to write map file: %v", err)
	}

	fmt.Printf("[STATE] Saved %d tiles, %d paths to %s (%s JSON, %s compressed)\n",
		data.TotalTiles, data.TotalPaths, filepath,
		humanize.Bytes(uint64(len(jsonData))), humanize.Bytes(uint64(len(compressed))))
	return nil
}

// LoadStateFromFile loads a map save, replacing the current state
// wholesale.
func LoadStateFromFile(filepath string) error {
	compressed, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("failed to read map file: %v", err)
	}

	jsonData, err := decompressLZ4(compressed)
	if err != nil {
		return fmt.Errorf("failed to decompress map file: %v", err)
	}

	var data StateData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal map state: %v", err)
	}
	if data.Type != "map_save" {
		return fmt.Errorf("unexpected save type %q", data.Type)
	}
	if data.Rows <= 0 || data.Cols <= 0 || data.TileSize <= 0 {
		return typedef.ErrBadDimensions
	}

	replaceAll(data.Tiles, data.Paths, data.Rows, data.Cols, data.Orientation, data.TileSize)
	fmt.Printf("[STATE] Loaded %d tiles, %d paths from %s\n", len(data.Tiles), len(data.Paths), filepath)
	return nil
}

// TriggerAutoSave writes the autosave snapshot into the data directory.
// Failures are logged and non-fatal.
func TriggerAutoSave() {
	if TileCount() == 0 {
		return
	}
	if err := SaveStateToFile(storage.DataFile(autosaveName)); err != nil {
		fmt.Printf("[STATE] Autosave failed: %v\n", err)
	}
}

// LoadAutoSave restores the autosave snapshot if one exists.
func LoadAutoSave() error {
	path := storage.DataFile(autosaveName)
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return LoadStateFromFile(path)
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
