package fog

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wandergrid/explorer-bot-discord/internal/domain/game"
	apperr "github.com/wandergrid/explorer-bot-discord/internal/errors"
	"github.com/wandergrid/explorer-bot-discord/internal/repositories/workspaces"
)

// occlusionAlpha is the opacity of the fog overlay. High enough to hide
// cell content, low enough to keep the grid outline readable.
const occlusionAlpha = 200

// Geometry positions grid cells on the base map image, in pixels
type Geometry struct {
	CellWidth  int `json:"cell_width"`
	CellHeight int `json:"cell_height"`
	OffsetX    int `json:"offset_x"`
	OffsetY    int `json:"offset_y"`
}

// CellRect returns the pixel rectangle covering c
func (g Geometry) CellRect(c game.Coord) image.Rectangle {
	x0 := g.OffsetX + c.Col*g.CellWidth
	y0 := g.OffsetY + c.Row*g.CellHeight
	return image.Rect(x0, y0, x0+g.CellWidth, y0+g.CellHeight)
}

// Render composites a semi-opaque occlusion over every grid cell except
// visible and returns the result as PNG bytes.
func Render(base image.Image, geo Geometry, gridWidth, gridHeight int, visible game.Coord) ([]byte, error) {
	if geo.CellWidth <= 0 || geo.CellHeight <= 0 {
		return nil, apperr.InvalidArgument("cell geometry must be positive")
	}

	canvas := image.NewNRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)

	occlusion := image.NewUniform(color.NRGBA{A: occlusionAlpha})
	for col := 0; col < gridWidth; col++ {
		for row := 0; row < gridHeight; row++ {
			c := game.Coord{Col: col, Row: row}
			if c == visible {
				continue
			}
			draw.Draw(canvas, geo.CellRect(c), occlusion, image.Point{}, draw.Over)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, apperr.Wrap(err, "failed to encode fog image")
	}
	return buf.Bytes(), nil
}

// AssetHost stores rendered artifacts and returns a stable URL
type AssetHost interface {
	Host(ctx context.Context, name string, data []byte) (string, error)
}

// Builder renders and hosts the per-coordinate fog artifacts of a map
type Builder struct {
	repository workspaces.Repository
	host       AssetHost
}

// BuilderConfig holds configuration for the builder
type BuilderConfig struct {
	Repository workspaces.Repository // Required
	Host       AssetHost             // Required
}

// NewBuilder creates a fog artifact builder
func NewBuilder(cfg *BuilderConfig) *Builder {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Host == nil {
		panic("asset host is required")
	}
	return &Builder{repository: cfg.Repository, host: cfg.Host}
}

// RebuildAll regenerates the fog artifact of every cell on the map and
// records the hosted URLs. Rendering and hosting fan out concurrently;
// the URLs land in one write so a failed rebuild leaves the previous
// artifacts referenced.
func (b *Builder) RebuildAll(ctx context.Context, workspaceID, mapID string, base image.Image, geo Geometry) error {
	ws, err := b.repository.Get(ctx, workspaceID)
	if err != nil {
		return err
	}
	mapDef, ok := ws.Maps[mapID]
	if !ok {
		return apperr.NotFoundf("map not found: %s", mapID).WithMeta("map_id", mapID)
	}
	width, height := mapDef.GridWidth, mapDef.GridHeight

	urls := make(map[game.Coord]string)
	var urlsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for col := 0; col < width; col++ {
		for row := 0; row < height; row++ {
			coord := game.Coord{Col: col, Row: row}
			g.Go(func() error {
				data, err := Render(base, geo, width, height, coord)
				if err != nil {
					return err
				}
				url, err := b.host.Host(gctx, fmt.Sprintf("%s-%s-%s.png", workspaceID, mapID, coord), data)
				if err != nil {
					return apperr.Wrapf(err, "failed to host fog image for %s", coord)
				}
				urlsMu.Lock()
				urls[coord] = url
				urlsMu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return b.repository.Mutate(ctx, workspaceID, func(ws *game.Workspace) error {
		mapDef, ok := ws.Maps[mapID]
		if !ok {
			return apperr.NotFoundf("map not found: %s", mapID).WithMeta("map_id", mapID)
		}
		for coord, url := range urls {
			mapDef.Cell(coord).FogImageURL = url
		}
		return nil
	})
}
