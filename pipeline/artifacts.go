package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/scigo-housing/codec"
	"github.com/YuminosukeSato/scigo-housing/core/model"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
)

// 成果物のファイル名
const (
	ModelFile  = "model.gob"
	ReportFile = "model_results.csv"
)

// RequiredFiles は推論に必要な4つの成果物
var RequiredFiles = append([]string{ModelFile}, codec.Files...)

// ArtifactFiles は学習が書き出す全ファイル（4成果物 + 評価レポート）
var ArtifactFiles = append(append([]string{}, RequiredFiles...), ReportFile)

// Bundle は model.gob に保存される内容
type Bundle struct {
	Model     model.Regressor
	ModelName string
	RunID     string
	TrainedAt time.Time
	Columns   []string
	TestR2    float64
	PriceMin  float64
	PriceMax  float64
	MeanPrice float64
}

// NewBundle は学習結果から保存用のバンドルを作る
func NewBundle(res *Result) Bundle {
	return Bundle{
		Model:     res.Model,
		ModelName: res.ModelName,
		RunID:     res.RunID,
		TrainedAt: res.TrainedAt,
		Columns:   res.Codec.Columns(),
		TestR2:    res.BestEvaluation().TestR2,
		PriceMin:  res.PriceMin,
		PriceMax:  res.PriceMax,
		MeanPrice: res.MeanPrice,
	}
}

// LoadBundle は model.gob を読み込む
func LoadBundle(path string) (Bundle, error) {
	var b Bundle
	if err := model.LoadModel(&b, path); err != nil {
		return Bundle{}, err
	}
	if b.Model == nil || !b.Model.IsFitted() {
		return Bundle{}, errors.NewInvalidDataErrorf("LoadBundle", "%s does not contain a fitted model", path)
	}
	return b, nil
}

// Persist は成果物を dir に書き出す
//
// 全ファイルをまず同じ親ディレクトリ内のステージングディレクトリに書き、
// すべて成功してから dir に移動する。途中で失敗した場合は既存の成果物に手を付けない。
func Persist(dir string, res *Result) (err error) {
	if res == nil || res.Model == nil || res.Codec == nil {
		return errors.NewValueError("pipeline.Persist", "incomplete training result")
	}
	logger := log.GetLoggerWithName("pipeline").With(log.RunIDKey, res.RunID, log.PathKey, dir)

	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", parent)
	}
	staging, err := os.MkdirTemp(parent, ".housing-staging-*")
	if err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(staging)

	if err := writeArtifacts(staging, res); err != nil {
		logger.Error("Persist failed, no artifacts written", err, log.OperationKey, log.OperationPersist)
		return err
	}
	if err := install(staging, dir); err != nil {
		logger.Error("Persist failed, previous artifacts kept", err, log.OperationKey, log.OperationPersist)
		return err
	}

	logger.Info("Artifacts written",
		log.OperationKey, log.OperationPersist,
		log.ModelNameKey, res.ModelName,
		"files", ArtifactFiles,
	)
	return nil
}

func writeArtifacts(dir string, res *Result) error {
	if err := os.Chmod(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to chmod staging directory")
	}
	if err := model.SaveModel(NewBundle(res), filepath.Join(dir, ModelFile)); err != nil {
		return err
	}
	if err := res.Codec.Save(dir); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, ReportFile))
	if err != nil {
		return errors.Wrap(err, "failed to create report")
	}
	if err := WriteReport(f, res.Evaluations); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to close report")
}

// install moves the staged files into dir. A missing dir is replaced by the
// staging directory in one rename; otherwise existing artifacts are moved aside
// first and restored if any rename fails.
func install(staging, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return errors.Wrapf(os.Rename(staging, dir), "failed to install %s", dir)
	}

	backup, err := os.MkdirTemp(filepath.Dir(dir), ".housing-backup-*")
	if err != nil {
		return errors.Wrap(err, "failed to create backup directory")
	}
	defer os.RemoveAll(backup)

	var moved, installed []string
	rollback := func() {
		for _, f := range installed {
			_ = os.Remove(filepath.Join(dir, f))
		}
		for _, f := range moved {
			_ = os.Rename(filepath.Join(backup, f), filepath.Join(dir, f))
		}
	}

	for _, f := range ArtifactFiles {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			continue
		}
		if err := os.Rename(filepath.Join(dir, f), filepath.Join(backup, f)); err != nil {
			rollback()
			return errors.Wrapf(err, "failed to move aside %s", f)
		}
		moved = append(moved, f)
	}
	for _, f := range ArtifactFiles {
		if err := os.Rename(filepath.Join(staging, f), filepath.Join(dir, f)); err != nil {
			rollback()
			return errors.Wrapf(err, "failed to install %s", f)
		}
		installed = append(installed, f)
	}
	return nil
}
