package brain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Layouts(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		vector    bool
		firstMag0 float64
	}{
		{
			name:      "scalar",
			body:      `{"coords":[[0,0,0],[0.01,0,0]],"times":[0,0.1],"data":[[1,2],[3,4]]}`,
			firstMag0: 1,
		},
		{
			name:      "vector",
			body:      `{"coords":[[0,0,0]],"times":[0],"has_space":true,"data":[[[3],[4],[0]]]}`,
			vector:    true,
			firstMag0: 5,
		},
		{
			name:      "scalar with cases",
			body:      `{"coords":[[0,0,0]],"times":[0],"has_cases":true,"data":[[[2]],[[4]]]}`,
			firstMag0: 3,
		},
		{
			name:      "vector with cases",
			body:      `{"coords":[[0,0,0]],"times":[0],"has_cases":true,"has_space":true,"data":[[[[3],[4],[0]]],[[[3],[4],[0]]]]}`,
			vector:    true,
			firstMag0: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.vector, d.IsVector())
			assert.InDelta(t, tt.firstMag0, d.Magnitude[0][0], 1e-12)
		})
	}
}

func TestDecode_BadJSON(t *testing.T) {
	_, err := Decode([]byte(`{"coords":`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"coords":[[0,0,0]],"times":[0],"data":[[[1]]]}`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"coords":[[0,0,0]],"times":[0,1],"data":[[1,2]]}`), 0644))

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, d.NumTimes())

	_, err = LoadFile(filepath.Join(dir, "data.txt"))
	assert.ErrorContains(t, err, ".json extension")

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
