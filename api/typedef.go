package api

import (
	"sync"
	"time"

	"hexstudio/hexruntime"
	"hexstudio/typedef"
)

// WebSocket message types
type MessageType string

const (
	// Outgoing message types (server to client)
	MessageTypeMapTick MessageType = "map_tick"
	MessageTypeMapData MessageType = "map_data"
	MessageTypeError   MessageType = "error"
	MessageTypeAck     MessageType = "ack"

	// Incoming message types (client to server)
	MessageTypeGetMap           MessageType = "get_map"
	MessageTypeGetTile          MessageType = "get_tile"
	MessageTypeSetBiome         MessageType = "set_biome"
	MessageTypeSetTown          MessageType = "set_town"
	MessageTypeSetNotes         MessageType = "set_notes"
	MessageTypeSetEncounter     MessageType = "set_encounter"
	MessageTypeGenerateGrid     MessageType = "generate_grid"
	MessageTypeGetPaths         MessageType = "get_paths"
	MessageTypeErasePaths       MessageType = "erase_paths"
	MessageTypeLoadState        MessageType = "load_state"
	MessageTypeSaveState        MessageType = "save_state"
	MessageTypeGetSystemStats   MessageType = "get_system_stats"
	MessageTypeRunScript        MessageType = "run_script"
	MessageTypeSetClientOptions MessageType = "set_client_options"
)

// Base WebSocket message structure
type WSMessage struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id,omitempty"` // For correlating responses
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Outgoing message data structures

// MapTickData is broadcast after every map mutation.
type MapTickData struct {
	Tick       uint64                 `json:"tick"`
	TotalTiles int                    `json:"total_tiles"`
	TotalPaths int                    `json:"total_paths"`
	Tiles      []*typedef.HexTile     `json:"tiles,omitempty"` // Optional: only include if requested
	Paths      []*typedef.DrawingPath `json:"paths,omitempty"` // Optional: only include if requested
}

// MapData answers a full map query.
type MapData struct {
	Rows        int                    `json:"rows"`
	Cols        int                    `json:"cols"`
	Orientation typedef.HexOrientation `json:"orientation"`
	TileSize    float64                `json:"tile_size"`
	Tiles       []*typedef.HexTile     `json:"tiles"`
	Paths       []*typedef.DrawingPath `json:"paths"`
}

// Incoming message data structures

type GetTileData struct {
	TileID string `json:"tile_id"`
}

type SetBiomeData struct {
	TileIDs []string      `json:"tile_ids"`
	Biome   typedef.Biome `json:"biome"`
}

type SetTownData struct {
	TileID string        `json:"tile_id"`
	Town   *typedef.Town `json:"town"` // null clears the town
}

type SetNotesData struct {
	TileID string `json:"tile_id"`
	Notes  string `json:"notes"`
}

type SetEncounterData struct {
	TileID    string `json:"tile_id"`
	Encounter string `json:"encounter"`
}

type GenerateGridData struct {
	Rows        int                    `json:"rows"`
	Cols        int                    `json:"cols"`
	Orientation typedef.HexOrientation `json:"orientation"`
	TileSize    float64                `json:"tile_size"`
	Seed        int64                  `json:"seed,omitempty"`
}

type ErasePathsData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type LoadStateData struct {
	Filepath string `json:"filepath"`
}

type SaveStateData struct {
	Filepath string `json:"filepath"`
}

type RunScriptData struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Client options for controlling what data to include in map ticks
type ClientOptions struct {
	IncludeTiles bool `json:"include_tiles"`
	IncludePaths bool `json:"include_paths"`
}

// API struct for WebSocket server. clients is touched only by the hub
// goroutine; clientOptions is additionally written from client readPumps
// and read by the tick broadcaster, so it carries its own lock.
type API struct {
	clients       map[*WSClient]bool
	optionsMu     sync.RWMutex
	clientOptions map[*WSClient]*ClientOptions
	broadcast     chan WSMessage
	register      chan *WSClient
	unregister    chan *WSClient
	handlers      map[MessageType]MessageHandler
}

// WebSocket client representation
type WSClient struct {
	conn WSConnection
	send chan WSMessage
	api  *API
	id   string
}

// Interface for WebSocket connection (for easier testing)
type WSConnection interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// Message handler function type
type MessageHandler func(*WSClient, WSMessage) error

// mapSnapshot assembles the full map payload from the runtime.
func mapSnapshot() *MapData {
	rows, cols, orientation, tileSize := hexruntime.GridConfig()
	return &MapData{
		Rows:        rows,
		Cols:        cols,
		Orientation: orientation,
		TileSize:    tileSize,
		Tiles:       hexruntime.GetTiles(),
		Paths:       hexruntime.GetPaths(),
	}
}
