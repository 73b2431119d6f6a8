package brain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxDatasetFileSize caps dataset files read from disk.
const maxDatasetFileSize = 256 * 1024 * 1024

// datasetFile is the on-disk JSON layout. Data nests as
// [case][source][space][time], dropping the case and space levels when the
// matching flag is false.
type datasetFile struct {
	Coords   [][3]float64    `json:"coords"`
	Times    []float64       `json:"times"`
	Data     json.RawMessage `json:"data"`
	HasCases bool            `json:"has_cases"`
	HasSpace bool            `json:"has_space"`
}

// LoadFile reads a JSON dataset and normalises it.
func LoadFile(path string) (*Dataset, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("dataset file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset file: %w", err)
	}
	if info.Size() > maxDatasetFileSize {
		return nil, fmt.Errorf("dataset file too large: %d bytes (max %d)", info.Size(), maxDatasetFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return Decode(data)
}

// Decode parses the JSON dataset layout and normalises it.
func Decode(data []byte) (*Dataset, error) {
	var f datasetFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}

	raw := RawTensor{
		Coords:   make([]Coord, len(f.Coords)),
		Times:    f.Times,
		HasCases: f.HasCases,
		HasSpace: f.HasSpace,
	}
	for i, c := range f.Coords {
		raw.Coords[i] = Coord{X: c[0], Y: c[1], Z: c[2]}
	}

	var err error
	switch {
	case f.HasCases && f.HasSpace:
		err = json.Unmarshal(f.Data, &raw.Values)
	case f.HasCases:
		var v [][][]float64
		if err = json.Unmarshal(f.Data, &v); err == nil {
			raw.Values = make([][][][]float64, len(v))
			for k, kase := range v {
				raw.Values[k] = wrapScalar(kase)
			}
		}
	case f.HasSpace:
		var v [][][]float64
		if err = json.Unmarshal(f.Data, &v); err == nil {
			raw.Values = [][][][]float64{v}
		}
	default:
		var v [][]float64
		if err = json.Unmarshal(f.Data, &v); err == nil {
			raw.Values = [][][][]float64{wrapScalar(v)}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset values: %w", err)
	}
	return Normalize(raw)
}

func wrapScalar(values [][]float64) [][][]float64 {
	out := make([][][]float64, len(values))
	for n, row := range values {
		out[n] = [][]float64{row}
	}
	return out
}
