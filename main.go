package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"hexstudio/api"
	"hexstudio/app"
	"hexstudio/hexruntime"
	"hexstudio/javascript"
	"hexstudio/storage"

	"net/http"
	_ "net/http/pprof"

	_ "github.com/ebitengine/hideconsole"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"
)

func init() {
	go func() {
		http.ListenAndServe(":6060", nil)
	}()
}

func main() {
	// Parse command line flags
	var headless bool
	var stateFilePath string
	var scriptPath string
	flag.BoolVar(&headless, "headless", false, "Run in headless mode without GUI")
	flag.BoolVar(&headless, "h", false, "Run in headless mode without GUI (shorthand)")
	flag.StringVar(&stateFilePath, "file", "", "Map file (.hexmap.lz4) to import on launch")
	flag.StringVar(&stateFilePath, "f", "", "Map file (.hexmap.lz4) to import on launch (shorthand)")
	flag.StringVar(&scriptPath, "script", "", "JavaScript file with init()/tick() hooks to run residently")
	flag.Parse()

	// Support positional file argument so double-clicking a map file passes the path through
	if stateFilePath == "" {
		if args := flag.Args(); len(args) > 0 {
			stateFilePath = args[0]
		}
	}

	if stateFilePath != "" {
		cleanPath := filepath.Clean(stateFilePath)
		if _, err := os.Stat(cleanPath); err == nil {
			if err := hexruntime.LoadStateFromFile(cleanPath); err != nil {
				fmt.Printf("Failed to import %s: %v\n", cleanPath, err)
			} else {
				os.Setenv("HEXSTUDIO_SKIP_AUTOSAVE_LOAD", "1")
			}
		}
	}

	lockPath := storage.DataFile(".hexstudio.lock")
	lockFile, lockOwned, cleanupLock, err := prepareLock(lockPath)
	if err != nil {
		os.Exit(1)
	}

	_ = lockFile // retained to keep handle open for lifetime
	defer cleanupLock()

	if headless {
		if !lockOwned {
			fmt.Println("Another instance appears to be running; refusing headless start.")
			os.Exit(1)
		}
		runHeadless(scriptPath)
		return
	}

	if !lockOwned {
		fmt.Println("Lock file already existed; a previous run may not have shut down cleanly.")
	}

	// Run with GUI
	runWithGUI(cleanupLock, scriptPath)
}

// startResidentScript loads a script with init()/tick() hooks and starts
// it against the map runtime. Returns nil when no script is configured or
// it cannot be read.
func startResidentScript(path string) chan struct{} {
	if path == "" {
		return nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read script %s: %v\n", path, err)
		return nil
	}
	fmt.Printf("Starting resident script %s\n", path)
	return javascript.Run(string(src), filepath.Base(path))
}

func prepareLock(lockPath string) (*os.File, bool, func(), error) {
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	owned := true
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			owned = false
			lockFile, err = os.OpenFile(lockPath, os.O_WRONLY, 0o644)
			if err != nil {
				return nil, false, nil, err
			}
		} else {
			return nil, false, nil, err
		}
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if lockFile != nil {
				_ = lockFile.Close()
			}
			if owned {
				os.Remove(lockPath)
			}
		})
	}

	return lockFile, owned, cleanup, nil
}

func runHeadless(scriptPath string) {
	fmt.Println("Starting Hex Map Studio in headless mode...")

	if os.Getenv("HEXSTUDIO_SKIP_AUTOSAVE_LOAD") != "1" {
		if err := hexruntime.LoadAutoSave(); err == nil {
			fmt.Println("Restored autosave")
		}
	}
	if hexruntime.TileCount() == 0 {
		if err := hexruntime.GenerateGrid(hexruntime.DefaultGenConfig()); err != nil {
			fmt.Printf("Default grid generation failed: %v\n", err)
			os.Exit(1)
		}
	}

	// Start WebSocket API server
	go func() {
		fmt.Println("Starting WebSocket API server on port 42069...")
		api.StartWebSocketServer()
	}()

	fmt.Println("WebSocket API is available at ws://localhost:42069/ws")

	scriptCancel := startResidentScript(scriptPath)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("Received shutdown signal. Cleaning up...")
	if scriptCancel != nil {
		close(scriptCancel)
	}
	hexruntime.TriggerAutoSave()

	fmt.Println("Shutdown complete.")
}

func runWithGUI(cleanup func(), scriptPath string) {
	// Start WebSocket API server for GUI mode as well
	go func() {
		fmt.Println("Starting WebSocket API server on port 42069...")
		api.StartWebSocketServer()
	}()
	fmt.Println("WebSocket API is available at ws://localhost:42069/ws")

	// Clipboard is only initialized on supported platforms
	if runtime.GOARCH != "wasm" && runtime.GOOS != "js" {
		initClipboard()
	}

	scriptCancel := startResidentScript(scriptPath)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalChan
		fmt.Println("Received shutdown signal. Cleaning up...")
		if scriptCancel != nil {
			close(scriptCancel)
		}
		hexruntime.TriggerAutoSave()
		if cleanup != nil {
			cleanup()
		}
		os.Exit(0)
	}()

	ebiten.SetWindowTitle("Hex Map Studio")
	ebiten.SetTPS(ebiten.SyncWithFPS)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowDecorated(true)
	ebiten.SetWindowSize(1600, 900)

	game := app.New()
	defer game.MapView().Teardown()

	if err := ebiten.RunGameWithOptions(game, &ebiten.RunGameOptions{
		X11ClassName:    "Hex Map Studio",
		X11InstanceName: "HexStudio",
	}); err != nil {
		panic(err)
	}

	if scriptCancel != nil {
		close(scriptCancel)
	}
	hexruntime.TriggerAutoSave()
}

func initClipboard() error {
	return clipboard.Init()
}
