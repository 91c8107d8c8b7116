package codec

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-housing/internal/testdata"
)

func TestSaveLoad_BitIdenticalTransform(t *testing.T) {
	c, _ := fitHousing(t)
	dir := t.TempDir()
	require.NoError(t, c.Save(dir))

	for _, name := range Files {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	loaded, err := Load(dir)
	require.NoError(t, err)
	if diff := cmp.Diff(c.State(), loaded.State()); diff != "" {
		t.Errorf("state changed across save/load (-saved +loaded):\n%s", diff)
	}

	probe := testdata.SampleRequest()
	want, err := c.Transform(probe)
	require.NoError(t, err)
	got, err := loaded.Transform(probe)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestFromState_Validation(t *testing.T) {
	c, _ := fitHousing(t)

	tests := []struct {
		name   string
		mutate func(s *State)
	}{
		{"three labels", func(s *State) { s.Binary["mainroad"] = []string{"maybe", "no", "yes"} }},
		{"missing encoder", func(s *State) { delete(s.Binary, "prefarea") }},
		{"extra encoder", func(s *State) { s.Binary["garden"] = []string{"no", "yes"} }},
		{"column order", func(s *State) { s.Columns[0], s.Columns[1] = s.Columns[1], s.Columns[0] }},
		{"scaler length", func(s *State) { s.Mean = s.Mean[:3]; s.Scale = s.Scale[:3] }},
		{"unsorted categories", func(s *State) {
			s.OneHot.Categories = []string{"unfurnished", "furnished", "semi-furnished"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := c.State()
			tt.mutate(&s)
			_, err := FromState(s)
			assert.Error(t, err)
		})
	}
}

func TestSave_FeatureNamesFile(t *testing.T) {
	c, _ := fitHousing(t)
	dir := t.TempDir()
	require.NoError(t, c.Save(dir))

	data, err := os.ReadFile(filepath.Join(dir, FeatureNamesFile))
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Equal(t, wantColumns, names)
}
