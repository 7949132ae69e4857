package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"hexstudio/hexruntime"
	"hexstudio/javascript"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin for development
		// In production, you should implement proper origin checking
		return true
	},
}

// Global API instance
var apiInstance *API

// Start a WebSocket server on port 42069
func StartWebSocketServer() {
	apiInstance = NewAPI()
	go apiInstance.run()

	http.HandleFunc("/ws", handleWebSocket)

	log.Println("WebSocket server starting on :42069")
	if err := http.ListenAndServe(":42069", nil); err != nil {
		log.Fatal("WebSocket server failed to start:", err)
	}
}

// NewAPI creates a new API instance
func NewAPI() *API {
	api := &API{
		clients:       make(map[*WSClient]bool),
		clientOptions: make(map[*WSClient]*ClientOptions),
		broadcast:     make(chan WSMessage, 256),
		register:      make(chan *WSClient),
		unregister:    make(chan *WSClient),
		handlers:      make(map[MessageType]MessageHandler),
	}

	// Register message handlers
	api.registerHandlers()

	return api
}

// run handles the main WebSocket hub logic
func (api *API) run() {
	// Listen for change ticks from the map runtime
	go api.listenForMapTicks()

	for {
		select {
		case client := <-api.register:
			api.clients[client] = true
			api.setClientOptions(client, &ClientOptions{})

			// Send acknowledgment
			ackMsg := WSMessage{
				Type:      MessageTypeAck,
				Data:      "Connected to hex map runtime",
				Timestamp: time.Now(),
			}
			select {
			case client.send <- ackMsg:
			default:
				close(client.send)
				delete(api.clients, client)
				api.dropClientOptions(client)
			}

			log.Printf("Client %s connected", client.id)

		case client := <-api.unregister:
			if _, ok := api.clients[client]; ok {
				delete(api.clients, client)
				api.dropClientOptions(client)
				close(client.send)
				log.Printf("Client %s disconnected", client.id)
			}

		case message := <-api.broadcast:
			for client := range api.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(api.clients, client)
					api.dropClientOptions(client)
				}
			}
		}
	}
}

// listenForMapTicks broadcasts a tick message after every map mutation
func (api *API) listenForMapTicks() {
	tickChannel := hexruntime.SubscribeChangeTicks()

	for tick := range tickChannel {
		message := WSMessage{
			Type:      MessageTypeMapTick,
			Data:      api.createMapTickData(tick),
			Timestamp: time.Now(),
		}

		select {
		case api.broadcast <- message:
		default:
			// Channel is full, skip this tick
		}
	}
}

// createMapTickData creates the tick payload, including bulk data only if
// some client opted in
func (api *API) createMapTickData(tick uint64) *MapTickData {
	data := &MapTickData{
		Tick:       tick,
		TotalTiles: hexruntime.TileCount(),
		TotalPaths: len(hexruntime.GetPaths()),
	}

	includeTiles := false
	includePaths := false
	api.optionsMu.RLock()
	for _, options := range api.clientOptions {
		if options.IncludeTiles {
			includeTiles = true
		}
		if options.IncludePaths {
			includePaths = true
		}
	}
	api.optionsMu.RUnlock()

	if includeTiles {
		data.Tiles = hexruntime.GetTiles()
	}
	if includePaths {
		data.Paths = hexruntime.GetPaths()
	}

	return data
}

// handleWebSocket handles WebSocket connections
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn: conn,
		send: make(chan WSMessage, 256),
		api:  apiInstance,
		id:   fmt.Sprintf("%d", time.Now().UnixNano()),
	}

	client.api.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// writePump pumps messages from the hub to the websocket connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteJSON(websocket.CloseMessage)
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("Error writing message to client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			if err := c.conn.WriteJSON(WSMessage{
				Type:      "ping",
				Timestamp: time.Now(),
			}); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *WSClient) readPump() {
	defer func() {
		c.api.unregister <- c
		c.conn.Close()
	}()

	for {
		var message WSMessage
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if message.Timestamp.IsZero() {
			message.Timestamp = time.Now()
		}

		if err := c.handleMessage(message); err != nil {
			errorMsg := WSMessage{
				Type:      MessageTypeError,
				RequestID: message.RequestID,
				Error:     err.Error(),
				Timestamp: time.Now(),
			}

			select {
			case c.send <- errorMsg:
			default:
				close(c.send)
				return
			}
		}
	}
}

// handleMessage processes incoming messages from clients
func (c *WSClient) handleMessage(message WSMessage) error {
	handler, exists := c.api.handlers[message.Type]
	if !exists {
		return fmt.Errorf("unknown message type: %s", message.Type)
	}

	return handler(c, message)
}

// registerHandlers registers all message handlers
func (api *API) registerHandlers() {
	api.handlers[MessageTypeGetMap] = api.handleGetMap
	api.handlers[MessageTypeGetTile] = api.handleGetTile
	api.handlers[MessageTypeSetBiome] = api.handleSetBiome
	api.handlers[MessageTypeSetTown] = api.handleSetTown
	api.handlers[MessageTypeSetNotes] = api.handleSetNotes
	api.handlers[MessageTypeSetEncounter] = api.handleSetEncounter
	api.handlers[MessageTypeGenerateGrid] = api.handleGenerateGrid
	api.handlers[MessageTypeGetPaths] = api.handleGetPaths
	api.handlers[MessageTypeErasePaths] = api.handleErasePaths
	api.handlers[MessageTypeLoadState] = api.handleLoadState
	api.handlers[MessageTypeSaveState] = api.handleSaveState
	api.handlers[MessageTypeGetSystemStats] = api.handleGetSystemStats
	api.handlers[MessageTypeRunScript] = api.handleRunScript
	api.handlers[MessageTypeSetClientOptions] = api.handleSetClientOptions
}

// sendResponse queues a response for a client, dropping it if the client
// cannot keep up
func (c *WSClient) sendResponse(msgType MessageType, requestID string, data interface{}) {
	select {
	case c.send <- WSMessage{
		Type:      msgType,
		RequestID: requestID,
		Data:      data,
		Timestamp: time.Now(),
	}:
	default:
	}
}

// Message handlers

func (api *API) handleGetMap(client *WSClient, message WSMessage) error {
	client.sendResponse(MessageTypeMapData, message.RequestID, mapSnapshot())
	return nil
}

func (api *API) handleGetTile(client *WSClient, message WSMessage) error {
	var data GetTileData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	tile := hexruntime.GetTile(data.TileID)
	if tile == nil {
		return fmt.Errorf("tile not found: %s", data.TileID)
	}

	client.sendResponse(MessageTypeMapData, message.RequestID, tile)
	return nil
}

func (api *API) handleSetBiome(client *WSClient, message WSMessage) error {
	var data SetBiomeData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	changed := hexruntime.SetBiomeBatch(data.TileIDs, data.Biome)
	client.sendResponse(MessageTypeAck, message.RequestID,
		fmt.Sprintf("Biome %s applied to %d tiles", data.Biome, changed))
	return nil
}

func (api *API) handleSetTown(client *WSClient, message WSMessage) error {
	var data SetTownData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	if err := hexruntime.SetTown(data.TileID, data.Town); err != nil {
		return fmt.Errorf("set town on %s: %w", data.TileID, err)
	}

	client.sendResponse(MessageTypeAck, message.RequestID, "Town updated")
	return nil
}

func (api *API) handleSetNotes(client *WSClient, message WSMessage) error {
	var data SetNotesData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	if err := hexruntime.SetNotes(data.TileID, data.Notes); err != nil {
		return fmt.Errorf("set notes on %s: %w", data.TileID, err)
	}

	client.sendResponse(MessageTypeAck, message.RequestID, "Notes updated")
	return nil
}

func (api *API) handleSetEncounter(client *WSClient, message WSMessage) error {
	var data SetEncounterData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	if err := hexruntime.SetEncounter(data.TileID, data.Encounter); err != nil {
		return fmt.Errorf("set encounter on %s: %w", data.TileID, err)
	}

	client.sendResponse(MessageTypeAck, message.RequestID, "Encounter updated")
	return nil
}

func (api *API) handleGenerateGrid(client *WSClient, message WSMessage) error {
	var data GenerateGridData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	err := hexruntime.GenerateGrid(hexruntime.GenConfig{
		Rows:        data.Rows,
		Cols:        data.Cols,
		Orientation: data.Orientation,
		TileSize:    data.TileSize,
		Seed:        data.Seed,
	})
	if err != nil {
		return fmt.Errorf("generate grid: %w", err)
	}

	client.sendResponse(MessageTypeAck, message.RequestID,
		fmt.Sprintf("Generated %dx%d grid", data.Cols, data.Rows))
	return nil
}

func (api *API) handleGetPaths(client *WSClient, message WSMessage) error {
	client.sendResponse(MessageTypeMapData, message.RequestID, hexruntime.GetPaths())
	return nil
}

func (api *API) handleErasePaths(client *WSClient, message WSMessage) error {
	var data ErasePathsData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	removed := hexruntime.ErasePathsNear(data.X, data.Y, data.Radius)
	client.sendResponse(MessageTypeAck, message.RequestID,
		fmt.Sprintf("Removed %d paths", removed))
	return nil
}

func (api *API) handleLoadState(client *WSClient, message WSMessage) error {
	var data LoadStateData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	if err := hexruntime.LoadStateFromFile(data.Filepath); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	client.sendResponse(MessageTypeAck, message.RequestID,
		fmt.Sprintf("State loaded from %s", data.Filepath))
	return nil
}

func (api *API) handleSaveState(client *WSClient, message WSMessage) error {
	var data SaveStateData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}

	if err := hexruntime.SaveStateToFile(data.Filepath); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	client.sendResponse(MessageTypeAck, message.RequestID,
		fmt.Sprintf("State saved to %s", data.Filepath))
	return nil
}

func (api *API) handleGetSystemStats(client *WSClient, message WSMessage) error {
	client.sendResponse(MessageTypeMapData, message.RequestID, hexruntime.GetSystemStats())
	return nil
}

func (api *API) handleRunScript(client *WSClient, message WSMessage) error {
	var data RunScriptData
	if err := api.parseMessageData(message.Data, &data); err != nil {
		return err
	}
	if data.Source == "" {
		return fmt.Errorf("empty script source")
	}
	if data.Name == "" {
		data.Name = "inline"
	}

	val, err := javascript.Execute(data.Source, data.Name)
	if err != nil {
		return err
	}

	client.sendResponse(MessageTypeAck, message.RequestID, val.Export())
	return nil
}

func (api *API) handleSetClientOptions(client *WSClient, message WSMessage) error {
	var options ClientOptions
	if err := api.parseMessageData(message.Data, &options); err != nil {
		return err
	}

	api.setClientOptions(client, &options)
	client.sendResponse(MessageTypeAck, message.RequestID, "Options updated")
	return nil
}

// setClientOptions and dropClientOptions serialize access to the options
// map, which is shared between the hub, the tick broadcaster and each
// client's readPump.
func (api *API) setClientOptions(client *WSClient, options *ClientOptions) {
	api.optionsMu.Lock()
	api.clientOptions[client] = options
	api.optionsMu.Unlock()
}

func (api *API) dropClientOptions(client *WSClient) {
	api.optionsMu.Lock()
	delete(api.clientOptions, client)
	api.optionsMu.Unlock()
}

func (api *API) parseMessageData(data interface{}, target interface{}) error {
	// Convert to JSON and back to ensure proper type conversion
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %v", err)
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %v", err)
	}

	return nil
}
