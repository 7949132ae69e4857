package javascript

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"hexstudio/hexruntime"
	"hexstudio/typedef"
)

// Hexruntime is the scripting facade over the map runtime. Scripts see it
// as the `hexmap` global.
type Hexruntime struct{}

func (h *Hexruntime) GetTiles() []*typedef.HexTile {
	return hexruntime.GetTiles()
}

func (h *Hexruntime) GetTile(id string) *typedef.HexTile {
	return hexruntime.GetTile(id)
}

func (h *Hexruntime) TileCount() int {
	return hexruntime.TileCount()
}

func (h *Hexruntime) SetBiomeBatch(ids []string, biome typedef.Biome) int {
	return hexruntime.SetBiomeBatch(ids, biome)
}

func (h *Hexruntime) SetTown(id string, town *typedef.Town) error {
	return hexruntime.SetTown(id, town)
}

func (h *Hexruntime) SetNotes(id, notes string) error {
	return hexruntime.SetNotes(id, notes)
}

func (h *Hexruntime) SetEncounter(id, encounter string) error {
	return hexruntime.SetEncounter(id, encounter)
}

func (h *Hexruntime) GetPaths() []*typedef.DrawingPath {
	return hexruntime.GetPaths()
}

func (h *Hexruntime) ErasePathsNear(x, y, radius float64) int {
	return hexruntime.ErasePathsNear(x, y, radius)
}

func (h *Hexruntime) GenerateGrid(cfg hexruntime.GenConfig) error {
	return hexruntime.GenerateGrid(cfg)
}

func (h *Hexruntime) SaveState(path string) error {
	return hexruntime.SaveStateToFile(path)
}

func (h *Hexruntime) LoadState(path string) error {
	return hexruntime.LoadStateFromFile(path)
}

func (h *Hexruntime) GetSystemStats() *hexruntime.SystemStats {
	return hexruntime.GetSystemStats()
}

func (h *Hexruntime) ChangeTick() uint64 {
	return hexruntime.ChangeTick()
}

// Timeout after 60 seconds
func Execute(src, scriptName string) (goja.Value, error) {
	vm := goja.New()
	h := &Hexruntime{}

	// Utility functions
	vm.Set("sprintf", fmt.Sprintf)
	vm.Set("printf", fmt.Printf)
	vm.Set("println", fmt.Println)
	vm.Set("hexmap", h)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(60*time.Second))
	defer cancel()

	// Channel to receive result or error
	resultCh := make(chan struct {
		val goja.Value
		err error
	})

	// Run script in a goroutine
	go func() {
		val, err := vm.RunString(src)
		resultCh <- struct {
			val goja.Value
			err error
		}{val, err}
	}()

	select {
	case <-ctx.Done():
		vm.Interrupt("timeout")
		return nil, fmt.Errorf("script %s timed out: %w", scriptName, ctx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("failed to run script %s: %w", scriptName, res.err)
		}
		if res.val == nil || res.val == goja.Undefined() {
			return nil, fmt.Errorf("script %s returned no value", scriptName)
		}
		return res.val, nil
	}
}

// Run executes the script's init() once, then its tick() on every map
// change tick until the returned channel is closed.
func Run(src, scriptName string) (cancel chan struct{}) {
	vm := goja.New()
	h := &Hexruntime{}

	vm.Set("sprintf", fmt.Sprintf)
	vm.Set("printf", fmt.Printf)
	vm.Set("println", fmt.Println)
	vm.Set("hexmap", h)

	cancel = make(chan struct{})

	go func() {
		if _, err := vm.RunString(src); err != nil {
			fmt.Printf("[SCRIPT] %s failed to load: %v\n", scriptName, err)
			return
		}

		// Both hooks must be defined for a resident script.
		tickFn := vm.Get("tick")
		initFn := vm.Get("init")
		if tickFn == nil || initFn == nil {
			return
		}
		if _, ok := goja.AssertFunction(tickFn); !ok {
			return
		}
		if _, ok := goja.AssertFunction(initFn); !ok {
			return
		}

		// Own subscription: sharing a tick channel with the API
		// broadcaster would steal its ticks.
		ticks := hexruntime.SubscribeChangeTicks()
		defer hexruntime.UnsubscribeChangeTicks(ticks)

		if _, err := vm.RunString("init()"); err != nil {
			fmt.Printf("[SCRIPT] %s init failed: %v\n", scriptName, err)
			return
		}

		for {
			select {
			case <-ticks:
				if _, err := vm.RunString("tick()"); err != nil {
					fmt.Printf("[SCRIPT] %s tick failed: %v\n", scriptName, err)
					return
				}
			case <-cancel:
				return
			}
		}
	}()

	return cancel
}
