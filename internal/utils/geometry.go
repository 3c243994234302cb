package utils

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// ErrNotLineString is returned when a route path is not a GeoJSON
// LineString with at least two points.
var ErrNotLineString = errors.New("path must be a GeoJSON LineString with at least two points")

// PathToWKB converts a GeoJSON LineString into little-endian WKB for
// storage.  An empty or null document yields nil.
func PathToWKB(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	ls, ok := g.(*geom.LineString)
	if !ok || ls.NumCoords() < 2 {
		return nil, ErrNotLineString
	}
	return wkb.Marshal(ls, binary.LittleEndian)
}

// WKBToPath converts stored WKB back into a GeoJSON document.  Empty input
// yields nil so the field is omitted from responses.
func WKBToPath(b []byte) (json.RawMessage, error) {
	if len(b) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	out, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

// LineString builds a path from [lng, lat] pairs.  The seeder uses it.
func LineString(coords [][2]float64) (*geom.LineString, error) {
	flat := make([]geom.Coord, 0, len(coords))
	for _, c := range coords {
		flat = append(flat, geom.Coord{c[0], c[1]})
	}
	return geom.NewLineString(geom.XY).SetCoords(flat)
}

// LineStringWKB encodes ls for the routes.geometry column.
func LineStringWKB(ls *geom.LineString) ([]byte, error) {
	return wkb.Marshal(ls, binary.LittleEndian)
}
