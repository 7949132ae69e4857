package hexruntime

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"hexstudio/hexmath"
	"hexstudio/typedef"
)

// GenConfig holds grid generation parameters.
type GenConfig struct {
	Rows        int
	Cols        int
	Orientation typedef.HexOrientation
	TileSize    float64
	Seed        int64 // 0 = random
}

// DefaultGenConfig returns the grid the studio opens with.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:        80,
		Cols:        100,
		Orientation: typedef.OrientationFlatTop,
		TileSize:    24,
	}
}

// GenerateGrid builds a fresh rectangular grid and replaces the current
// map wholesale. Biomes come from layered simplex noise (elevation +
// moisture); label coordinates are computed once here, at generation time.
func GenerateGrid(cfg GenConfig) error {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return typedef.ErrBadDimensions
	}
	if cfg.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %v", cfg.TileSize)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	tiles := make([]*typedef.HexTile, 0, cfg.Rows*cfg.Cols)
	for userY := 0; userY < cfg.Rows; userY++ {
		for userX := 0; userX < cfg.Cols; userX++ {
			coord := hexmath.UserToAxial(userX, userY, cfg.Rows, cfg.Cols, cfg.Orientation)
			cx, cy := hexmath.TileCenter(coord, cfg.TileSize, cfg.Orientation)

			// Sample in units of roughly one cell so neighboring tiles get
			// correlated but distinct values.
			nx, ny := cx/cfg.TileSize, cy/cfg.TileSize
			elev := octaveNoise(elevNoise, nx, ny, 4, 0.08, 0.5)
			moist := octaveNoise(moistNoise, nx, ny, 3, 0.06, 0.5)

			tiles = append(tiles, &typedef.HexTile{
				ID:         coord.Key(),
				Coordinate: coord,
				Biome:      deriveBiome(elev, moist),
				Col:        userX,
				Row:        userY,
			})
		}
	}

	replaceAll(tiles, nil, cfg.Rows, cfg.Cols, cfg.Orientation, cfg.TileSize)
	fmt.Printf("[GRID] Generated %dx%d %s grid (%d tiles, seed %d)\n",
		cfg.Cols, cfg.Rows, cfg.Orientation, len(tiles), seed)
	return nil
}

// octaveNoise sums several noise layers, each at double frequency and
// reduced amplitude, normalized back to [0,1].
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, baseFreq, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	freq := baseFreq
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxValue
}

func deriveBiome(elev, moist float64) typedef.Biome {
	switch {
	case elev < 0.3:
		return typedef.BiomeOcean
	case elev < 0.36:
		return typedef.BiomeCoast
	case elev > 0.78:
		return typedef.BiomeMountain
	case elev > 0.64:
		return typedef.BiomeHills
	case moist < 0.3:
		return typedef.BiomeDesert
	case moist > 0.72 && elev < 0.45:
		return typedef.BiomeSwamp
	case moist > 0.55:
		return typedef.BiomeForest
	case elev > 0.6 && moist < 0.4:
		return typedef.BiomeTundra
	default:
		return typedef.BiomePlains
	}
}
