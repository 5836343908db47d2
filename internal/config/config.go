// Package config decodes the XML problem format of SPEC_FULL §C.1 (the
// shape original_source/main.cpp reads with rapidxml) into the structured
// OverlappingSpec/TiledSpec values the reducers in internal/overlapping
// and internal/tiled consume, applying the documented defaults of
// base-spec §6 at decode time.
//
// encoding/xml is the stdlib decoder; no third-party XML library appears
// anywhere in the retrieved corpus (DESIGN.md records this as the one
// deliberately stdlib-only component).
package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SamplesDocument is the top-level <samples> document listing every
// overlapping and simpletiled problem instance, mirroring
// original_source/main.cpp's read_config_file/samples.xml.
type SamplesDocument struct {
	Overlapping []OverlappingSpec `xml:"overlapping"`
	SimpleTiled []TiledSpec       `xml:"simpletiled"`
}

// rawSamplesDocument captures attributes as strings so defaults (base-spec
// §6) can be applied for attributes the input omits entirely, which
// encoding/xml's native bool/int unmarshaling cannot distinguish from an
// explicit zero value.
type rawSamplesDocument struct {
	XMLName     xml.Name          `xml:"samples"`
	Overlapping []rawOverlapping  `xml:"overlapping"`
	SimpleTiled []rawSimpleTiled  `xml:"simpletiled"`
}

type rawOverlapping struct {
	Name          string `xml:"name,attr"`
	N             string `xml:"N,attr"`
	Periodic      string `xml:"periodic,attr"`
	PeriodicInput string `xml:"periodicInput,attr"`
	Ground        string `xml:"ground,attr"`
	Symmetry      string `xml:"symmetry,attr"`
	Screenshots   string `xml:"screenshots,attr"`
	Width         string `xml:"width,attr"`
	Height        string `xml:"height,attr"`
}

type rawSimpleTiled struct {
	Name     string `xml:"name,attr"`
	Subset   string `xml:"subset,attr"`
	Periodic string `xml:"periodic,attr"`
	Width    string `xml:"width,attr"`
	Height   string `xml:"height,attr"`
}

// OverlappingSpec is a fully-defaulted overlapping-model problem instance.
type OverlappingSpec struct {
	Name          string
	N             int
	Periodic      bool // output periodicity
	PeriodicInput bool
	Ground        bool
	Symmetry      int
	Screenshots   int
	Width         int
	Height        int
}

// TiledSpec is a fully-defaulted tiled-model problem instance.
type TiledSpec struct {
	Name     string
	Subset   string
	Periodic bool
	Width    int
	Height   int
}

// ParseSamples decodes a <samples> document and applies base-spec §6's
// defaults: periodic=false, periodicInput=true, ground=false, symmetry=8,
// output 48x48, tile subset name "tiles".
func ParseSamples(r io.Reader) (*SamplesDocument, error) {
	var raw rawSamplesDocument
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := &SamplesDocument{}
	for _, o := range raw.Overlapping {
		spec, err := o.resolve()
		if err != nil {
			return nil, err
		}
		doc.Overlapping = append(doc.Overlapping, spec)
	}
	for _, t := range raw.SimpleTiled {
		spec, err := t.resolve()
		if err != nil {
			return nil, err
		}
		doc.SimpleTiled = append(doc.SimpleTiled, spec)
	}
	return doc, nil
}

func (r rawOverlapping) resolve() (OverlappingSpec, error) {
	n, err := strconv.Atoi(r.N)
	if err != nil {
		return OverlappingSpec{}, fmt.Errorf("%w: overlapping %q: N: %v", ErrMalformed, r.Name, err)
	}
	return OverlappingSpec{
		Name:          r.Name,
		N:             n,
		Periodic:      parseBool(r.Periodic, false),
		PeriodicInput: parseBool(r.PeriodicInput, true),
		Ground:        parseBool(r.Ground, false),
		Symmetry:      parseInt(r.Symmetry, 8),
		Screenshots:   parseInt(r.Screenshots, 2),
		Width:         parseInt(r.Width, 48),
		Height:        parseInt(r.Height, 48),
	}, nil
}

func (r rawSimpleTiled) resolve() (TiledSpec, error) {
	subset := r.Subset
	if subset == "" {
		subset = "tiles"
	}
	return TiledSpec{
		Name:     r.Name,
		Subset:   subset,
		Periodic: parseBool(r.Periodic, false),
		Width:    parseInt(r.Width, 48),
		Height:   parseInt(r.Height, 48),
	}, nil
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
