package api_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbachurski/taucheck/api"
	"github.com/jbachurski/taucheck/internal"
)

func sampleReport() *internal.Report {
	t1 := &internal.TestCase{Base: "t1"}
	t2 := &internal.TestCase{Base: "t2"}
	r := &internal.Report{
		Verdicts: []internal.Verdict{
			{Case: t1, Kind: internal.KindOK, Duration: 120 * time.Millisecond},
			{Case: t2, Kind: internal.KindWrongAnswer, Detail: "token 0: expected \"1\", got \"2\"", Duration: 80 * time.Millisecond},
		},
	}
	r.Finalize(250 * time.Millisecond)
	return r
}

func TestFinishCaseWireShape(t *testing.T) {
	msg := api.NewFinishCase("run-123", api.CaseResult{
		Name:       "t7",
		Verdict:    "TLE",
		Detail:     "killed after 2s",
		WallMillis: 2000,
	})

	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "run-123", got["run_uuid"])
	assert.Equal(t, "case_finish", got["msg_type"])

	result, ok := got["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "t7", result["name"])
	assert.Equal(t, "TLE", result["verdict"])
	assert.Equal(t, float64(2000), result["wall_ms"])
}

func TestMapReport(t *testing.T) {
	report := api.MapReport(sampleReport())

	assert.Equal(t, 1, report.Correct)
	assert.Equal(t, 2, report.Total)
	assert.False(t, report.AllOK)
	assert.Equal(t, int64(250), report.WallMillis)
	assert.Equal(t, map[string]int{"OK": 1, "WA": 1}, report.Counts)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "t1", report.Results[0].Name)
	assert.Equal(t, "OK", report.Results[0].Verdict)
	assert.Equal(t, int64(120), report.Results[0].WallMillis)
	assert.Equal(t, "WA", report.Results[1].Verdict)
	assert.Contains(t, report.Results[1].Detail, "token 0")
}

func TestMapVerdictTrimsLongDetails(t *testing.T) {
	long := strings.Repeat("x", 500) + "\n" + strings.Repeat("line\n", 100)
	v := internal.Verdict{
		Case:   &internal.TestCase{Base: "big"},
		Kind:   internal.KindWrongAnswer,
		Detail: long,
	}

	result := api.MapVerdict(v)
	lines := strings.Split(result.Detail, "\n")
	assert.LessOrEqual(t, len(lines), api.MaxDetailHeight+1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), api.MaxDetailWidth+len("[...]"))
	}
	assert.Contains(t, result.Detail, "[...]")
}

func TestEmptyDetailOmitted(t *testing.T) {
	b, err := json.Marshal(api.CaseResult{Name: "t1", Verdict: "OK"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "detail")
}
