package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
)

// DefaultFeatureColumns are the audio features read when a schema names none.
var DefaultFeatureColumns = []string{
	"danceability",
	"energy",
	"valence",
	"tempo",
	"acousticness",
	"instrumentalness",
	"liveness",
	"speechiness",
	"loudness",
}

// Schema maps dataset columns onto track fields.
type Schema struct {
	ID         string
	Name       string
	Artists    string
	Album      string
	Popularity string
	Duration   string // optional
	Features   []string
}

// DefaultSchema matches the Spotify track export used by the jukebox dataset.
func DefaultSchema() Schema {
	return Schema{
		ID:         "id",
		Name:       "name",
		Artists:    "artists",
		Album:      "album",
		Popularity: "popularity",
		Duration:   "duration_ms",
		Features:   DefaultFeatureColumns,
	}
}

// WithFeatures returns a copy of the schema reading the given feature columns.
func (s Schema) WithFeatures(columns []string) Schema {
	if len(columns) > 0 {
		s.Features = columns
	}
	return s
}

type columnIndex struct {
	id, name, artists, album, popularity, duration int
	features                                        []int
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, schema Schema) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.DatasetLoadError{Source: path, Reason: "cannot open dataset", Err: err}
	}
	defer f.Close()

	c, err := Load(f, schema)
	if err != nil {
		var dle domain.DatasetLoadError
		if errors.As(err, &dle) && dle.Source == "" {
			dle.Source = path
			return nil, dle
		}
		return nil, err
	}
	return c, nil
}

// Load reads a CSV dataset with a header row. Rows with a blank id or name, or
// with a missing or non-numeric feature, are skipped, as are repeated ids.
// It fails with domain.DatasetLoadError when the header is unusable or no row survives.
func Load(r io.Reader, schema Schema) (*Catalog, error) {
	if len(schema.Features) == 0 {
		schema.Features = DefaultFeatureColumns
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.DatasetLoadError{Reason: "dataset is empty"}
		}
		return nil, domain.DatasetLoadError{Reason: "malformed header", Err: err}
	}

	idx, err := indexColumns(header, schema)
	if err != nil {
		return nil, err
	}

	var (
		tracks  []domain.Track
		skipped int
		seen    = make(map[string]struct{})
		line    = 1
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, domain.DatasetLoadError{Reason: fmt.Sprintf("malformed row at line %d", line), Err: err}
			}
			return nil, domain.DatasetLoadError{Reason: "read failed", Err: err}
		}

		track, ok := parseRow(record, idx)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[track.ID]; dup {
			skipped++
			continue
		}
		seen[track.ID] = struct{}{}
		tracks = append(tracks, track)
	}

	if len(tracks) == 0 {
		return nil, domain.DatasetLoadError{Reason: fmt.Sprintf("no usable rows (%d skipped)", skipped)}
	}

	c := New(tracks, schema.Features)
	c.skipped = skipped
	return c, nil
}

func indexColumns(header []string, schema Schema) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		// spreadsheets sometimes prefix the first header with a BOM
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		positions[strings.ToLower(h)] = i
	}

	var missing []string
	lookup := func(name string, required bool) int {
		if name == "" && !required {
			return -1
		}
		pos, ok := positions[strings.ToLower(name)]
		if !ok {
			if required {
				missing = append(missing, name)
			}
			return -1
		}
		return pos
	}

	idx := columnIndex{
		id:         lookup(schema.ID, true),
		name:       lookup(schema.Name, true),
		artists:    lookup(schema.Artists, true),
		album:      lookup(schema.Album, true),
		popularity: lookup(schema.Popularity, true),
		duration:   lookup(schema.Duration, false),
		features:   make([]int, len(schema.Features)),
	}
	for i, f := range schema.Features {
		idx.features[i] = lookup(f, true)
	}

	if len(missing) > 0 {
		return columnIndex{}, domain.DatasetLoadError{Reason: "missing columns: " + strings.Join(missing, ", ")}
	}
	return idx, nil
}

func parseRow(record []string, idx columnIndex) (domain.Track, bool) {
	cell := func(pos int) string {
		if pos < 0 || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	id, name := cell(idx.id), cell(idx.name)
	if id == "" || name == "" {
		return domain.Track{}, false
	}

	features := make([]float64, len(idx.features))
	for i, pos := range idx.features {
		v, ok := parseFloat(cell(pos))
		if !ok {
			return domain.Track{}, false
		}
		features[i] = v
	}

	track := domain.NewTrack(id, name, parseArtists(cell(idx.artists)), cell(idx.album))
	track.Features = features
	if p, ok := parseFloat(cell(idx.popularity)); ok {
		track.Popularity = p
	}
	if d, ok := parseFloat(cell(idx.duration)); ok && d > 0 {
		track.DurationMs = int(d)
	}
	return track, true
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
