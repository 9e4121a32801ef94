package dataset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veyra/abyss/camera"
	"github.com/veyra/abyss/parameter"
)

// IndexEntry describes one dataset in the top-level index
type IndexEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Index is the dataset catalog
type Index struct {
	Datasets []IndexEntry `json:"datasets"`
}

// PathJSON is the wire layout of an authored camera path
type PathJSON struct {
	Keyframes []camera.KeyframeJSON `json:"keyframes"`
}

// RenderConfig holds renderer-side hints embedded in a dataset config
type RenderConfig struct {
	MaxLevel int       `json:"max_level,omitempty"`
	Path     *PathJSON `json:"path,omitempty"`
}

// Config is one dataset's configuration
type Config struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	TileSize     int           `json:"tile_size"`
	RenderConfig *RenderConfig `json:"render_config,omitempty"`
}

// LoadIndex reads and decodes index.json
func LoadIndex(ctx context.Context, src Source) (*Index, error) {
	b, err := src.Fetch(ctx, "index.json")
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &idx, nil
}

// LoadConfig reads a dataset's config.json, defaulting the tile size
func LoadConfig(ctx context.Context, src Source, dsID string) (*Config, error) {
	b, err := src.Fetch(ctx, "datasets/"+dsID+"/config.json")
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", dsID, err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", dsID, err)
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = parameter.DefaultTileSize
	}
	if cfg.ID == "" {
		cfg.ID = dsID
	}
	return &cfg, nil
}

// LoadPath resolves the dataset's authored path into canonical keyframe
// cameras. A separate paths.json wins over a config-embedded path;
// neither existing is not an error (the dataset is just pathless)
func LoadPath(ctx context.Context, src Source, cfg *Config) ([]camera.Camera, error) {
	var pj *PathJSON

	if b, err := src.Fetch(ctx, "datasets/"+cfg.ID+"/paths.json"); err == nil {
		var file struct {
			Path PathJSON `json:"path"`
		}
		if err := json.Unmarshal(b, &file); err != nil {
			return nil, fmt.Errorf("decode paths.json for %s: %w", cfg.ID, err)
		}
		pj = &file.Path
	} else if cfg.RenderConfig != nil && cfg.RenderConfig.Path != nil {
		pj = cfg.RenderConfig.Path
	}

	if pj == nil {
		return nil, nil
	}
	kfs := make([]camera.Camera, 0, len(pj.Keyframes))
	for i, kj := range pj.Keyframes {
		cam, err := kj.Camera.Resolve()
		if err != nil {
			return nil, fmt.Errorf("keyframe %d of %s: %w", i, cfg.ID, err)
		}
		kfs = append(kfs, cam)
	}
	return kfs, nil
}

// MaxLevel returns the deepest expected level for precision sizing:
// the configured renderer depth raised by the path's deepest keyframe
func MaxLevel(cfg *Config, kfs []camera.Camera) int {
	max := 0
	if cfg.RenderConfig != nil {
		max = cfg.RenderConfig.MaxLevel
	}
	for _, kf := range kfs {
		if l := int(kf.GlobalLevel) + 1; l > max {
			max = l
		}
	}
	return max
}
