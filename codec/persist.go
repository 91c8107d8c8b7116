package codec

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
)

// 成果物のファイル名
const (
	ScalerFile        = "scaler.json"
	LabelEncodersFile = "label_encoders.json"
	FeatureNamesFile  = "feature_names.json"
)

// Files は Codec が書き出す成果物のファイル名一覧
var Files = []string{ScalerFile, LabelEncodersFile, FeatureNamesFile}

type scalerFile struct {
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
	NFeatures int       `json:"n_features"`
}

type labelEncodersFile struct {
	Binary map[string][]string `json:"binary"`
	OneHot OneHotState         `json:"onehot"`
}

// Save は状態を3つのJSONファイルとして dir に書き出す
// float64 は最短表現で書かれるため、読み戻した値はビット単位で一致する
func (c *Codec) Save(dir string) error {
	s := c.State()
	files := map[string]interface{}{
		ScalerFile:        scalerFile{Mean: s.Mean, Scale: s.Scale, NFeatures: len(s.Mean)},
		LabelEncodersFile: labelEncodersFile{Binary: s.Binary, OneHot: s.OneHot},
		FeatureNamesFile:  s.Columns,
	}
	for _, name := range Files {
		if err := writeJSON(filepath.Join(dir, name), files[name]); err != nil {
			return err
		}
	}
	return nil
}

// Load は dir から状態を読み込んで Codec を復元する
func Load(dir string) (*Codec, error) {
	var (
		sc  scalerFile
		le  labelEncodersFile
		fns []string
	)
	if err := readJSON(filepath.Join(dir, ScalerFile), &sc); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, LabelEncodersFile), &le); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, FeatureNamesFile), &fns); err != nil {
		return nil, err
	}
	if sc.NFeatures != len(sc.Mean) {
		return nil, errors.NewDimensionError("codec.Load", sc.NFeatures, len(sc.Mean), 1)
	}

	return FromState(State{
		Binary:  le.Binary,
		OneHot:  le.OneHot,
		Columns: fns,
		Mean:    sc.Mean,
		Scale:   sc.Scale,
	})
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}
