package config

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/kestrelwave/wfc/internal/grid"
	"github.com/kestrelwave/wfc/internal/tiled"
)

// TileSetDocument mirrors the per-tileset <set> document
// original_source/main.cpp reads from "<subsetDir>/data.xml": the tile
// palette, their left/right adjacency rules, and named subsets that
// restrict which tiles participate (SPEC_FULL §C.6).
type TileSetDocument struct {
	Size      int
	Tiles     []TileEntry
	Neighbors []NeighborEntry
	Subsets   map[string][]string
}

// TileEntry is one <tile> element.
type TileEntry struct {
	Name     string
	Symmetry string
	Weight   float64
}

// NeighborEntry is one <neighbor left="tileA oA" right="tileB oB"/>
// element: tileA at orientation oA may sit immediately left of tileB at
// orientation oB.
type NeighborEntry struct {
	TileA string
	OA    int
	TileB string
	OB    int
}

type rawTileSetDocument struct {
	XMLName xml.Name `xml:"set"`
	Size    string   `xml:"size,attr"`
	Tiles   struct {
		Tile []struct {
			Name     string `xml:"name,attr"`
			Symmetry string `xml:"symmetry,attr"`
			Weight   string `xml:"weight,attr"`
		} `xml:"tile"`
	} `xml:"tiles"`
	Neighbors struct {
		Neighbor []struct {
			Left  string `xml:"left,attr"`
			Right string `xml:"right,attr"`
		} `xml:"neighbor"`
	} `xml:"neighbors"`
	Subsets struct {
		Subset []struct {
			Name string `xml:"name,attr"`
			Tile []struct {
				Name string `xml:"name,attr"`
			} `xml:"tile"`
		} `xml:"subset"`
	} `xml:"subsets"`
}

// ParseTileSet decodes a <set> document.
func ParseTileSet(r io.Reader) (*TileSetDocument, error) {
	var raw rawTileSetDocument
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := &TileSetDocument{Size: parseInt(raw.Size, 0), Subsets: map[string][]string{}}
	for _, t := range raw.Tiles.Tile {
		sym := t.Symmetry
		if sym == "" {
			sym = "X"
		}
		doc.Tiles = append(doc.Tiles, TileEntry{
			Name:     t.Name,
			Symmetry: sym,
			Weight:   parseFloat(t.Weight, 1.0),
		})
	}
	for _, n := range raw.Neighbors.Neighbor {
		tileA, oa, err := parseOriented(n.Left)
		if err != nil {
			return nil, fmt.Errorf("%w: neighbor left=%q: %v", ErrMalformed, n.Left, err)
		}
		tileB, ob, err := parseOriented(n.Right)
		if err != nil {
			return nil, fmt.Errorf("%w: neighbor right=%q: %v", ErrMalformed, n.Right, err)
		}
		doc.Neighbors = append(doc.Neighbors, NeighborEntry{TileA: tileA, OA: oa, TileB: tileB, OB: ob})
	}
	for _, s := range raw.Subsets.Subset {
		names := make([]string, 0, len(s.Tile))
		for _, t := range s.Tile {
			names = append(names, t.Name)
		}
		doc.Subsets[s.Name] = names
	}
	return doc, nil
}

func parseOriented(s string) (name string, orientation int, err error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", 0, fmt.Errorf("empty tile reference")
	}
	if len(fields) == 1 {
		return fields[0], 0, nil
	}
	o, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, err
	}
	return fields[0], o, nil
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// ImageLoader loads the image(s) for a named tile: either the single base
// image to synthesize orientations from, or one image per orientation, in
// collapse8's canonical order (base-spec §4.6's two tile-image sources).
// Implementations live in the CLI layer (internal/imageio + filesystem),
// kept out of this package so XML decoding stays I/O-agnostic.
type ImageLoader func(name string, class tiled.Class) ([]*grid.Array2D[color.RGBA], error)

// CompileTiles applies subset filtering (SPEC_FULL §C.6) and resolves
// named adjacency rules into the index-based tiled.Tile/tiled.Adjacency
// shape base-spec §6's external interface expects, silently discarding
// any rule that names a tile outside the compiled subset (base-spec
// §4.6's "rule against spurious rules").
func CompileTiles(doc *TileSetDocument, subset string, load ImageLoader) ([]tiled.Tile, []tiled.Adjacency, error) {
	var allowed map[string]bool
	if names, ok := doc.Subsets[subset]; ok {
		allowed = make(map[string]bool, len(names))
		for _, n := range names {
			allowed[n] = true
		}
	}

	index := make(map[string]int)
	var tiles []tiled.Tile
	for _, te := range doc.Tiles {
		if allowed != nil && !allowed[te.Name] {
			continue
		}
		class, err := tiled.ParseClass(te.Symmetry)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: tile %q: %v", ErrMalformed, te.Name, err)
		}
		images, err := load(te.Name, class)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: tile %q: %v", ErrMalformed, te.Name, err)
		}
		index[te.Name] = len(tiles)
		tiles = append(tiles, tiled.Tile{Name: te.Name, Class: class, Weight: te.Weight, Images: images})
	}

	var adjacencies []tiled.Adjacency
	for _, n := range doc.Neighbors {
		ia, ok := index[n.TileA]
		if !ok {
			continue
		}
		ib, ok := index[n.TileB]
		if !ok {
			continue
		}
		adjacencies = append(adjacencies, tiled.Adjacency{TileA: ia, OA: n.OA, TileB: ib, OB: n.OB})
	}
	return tiles, adjacencies, nil
}
