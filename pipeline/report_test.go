package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	evals := []Evaluation{
		{Name: LinearRegressionName, TrainRMSE: 1.5, TestRMSE: 2.25, TrainR2: 0.7, TestR2: 0.65, TrainMAE: 1, TestMAE: 1.125},
		{Name: RandomForestName, TrainRMSE: 0.5, TestRMSE: 2, TrainR2: 0.95, TestR2: 0.6, TrainMAE: 0.25, TestMAE: 1.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, evals))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Model,Train_RMSE,Test_RMSE,Train_R2,Test_R2,Train_MAE,Test_MAE", lines[0])
	assert.Equal(t, "Linear Regression,1.5,2.25,0.7,0.65,1,1.125", lines[1])

	got, err := ReadReport(&buf)
	require.NoError(t, err)
	assert.Equal(t, evals, got)
}

func TestReadReport_Invalid(t *testing.T) {
	_, err := ReadReport(strings.NewReader("Model,RMSE\nx,1\n"))
	assert.Error(t, err)
	_, err = ReadReport(strings.NewReader(strings.Join(ReportHeader, ",") + "\nx,1,2,3,4,5,abc\n"))
	assert.Error(t, err)
}
