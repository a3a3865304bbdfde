package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/internal/cache"
	"github.com/fairlens/fairlens/pkg/config"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	cfg := config.DefaultConfig()
	store, err := cache.New(config.CacheConfig{Enabled: true, Dir: t.TempDir(), TTL: 1})
	require.NoError(t, err)
	return New(cfg, store)
}

func process(t *testing.T, d *Dispatcher, request string) Response {
	t.Helper()
	return d.Process(context.Background(), []byte(request))
}

func resultMap(t *testing.T, resp Response) map[string]any {
	t.Helper()
	require.Empty(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestProcessEvaluateBias(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"command":"evaluate_bias","content":"She is a nurse and he is a doctor.","protected_attribute":"gender"}`)
	result := resultMap(t, resp)
	assert.Equal(t, "gender", result["attribute"])
	assert.NotEmpty(t, result["metrics"])
}

func TestProcessEvaluateBiasMultiAttribute(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"command":"evaluate_bias","content":"plain text","protected_attributes":["gender","race"]}`)
	result := resultMap(t, resp)
	assert.Equal(t, "PASS", result["status"])

	reports, ok := result["reports"].([]any)
	require.True(t, ok)
	assert.Len(t, reports, 2)
}

func TestProcessCompareCodeBias(t *testing.T) {
	d := testDispatcher(t)

	req := map[string]any{
		"command":    "compare_code_bias",
		"code_a":     "def f(x):\n    if x:\n        return 1\n    return 0\n",
		"code_b":     "def f(x):\n    return 0\n",
		"persona_a":  "female developer",
		"persona_b":  "male developer",
		"language_a": "python",
		"language_b": "python",
	}
	line, err := json.Marshal(req)
	require.NoError(t, err)

	result := resultMap(t, d.Process(context.Background(), line))
	assert.Contains(t, []any{"PASS", "FAIL"}, result["status"])
	assert.NotNil(t, result["complexity"])
	assert.NotNil(t, result["divergence"])
}

func TestProcessScanTerminology(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"command":"scan_terminology","content":"push to the blacklist branch"}`)
	result := resultMap(t, resp)
	assert.Equal(t, "FAIL", result["status"])
	assert.EqualValues(t, 1, result["true_positives"])
}

func TestProcessUnknownCommand(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"command":"defragment_bias"}`)
	assert.Equal(t, "Unknown command: defragment_bias", resp.Error)
	assert.Nil(t, resp.Result)
}

func TestProcessMissingCommand(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"content":"hello"}`)
	assert.Contains(t, resp.Error, "missing command")
}

func TestProcessInvalidFrame(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"command": unterminated`)
	assert.NotEmpty(t, resp.Error)
	assert.Nil(t, resp.Result)
}

func TestProcessValidationErrors(t *testing.T) {
	d := testDispatcher(t)

	tests := []struct {
		name    string
		request string
	}{
		{"bias missing attribute", `{"command":"evaluate_bias","content":"text"}`},
		{"counterfactual missing group", `{"command":"generate_counterfactuals","content":"text"}`},
		{"repo missing path", `{"command":"analyze_repository_bias","protected_attributes":["gender"]}`},
		{"suite length mismatch", `{"command":"evaluate_prompt_suite","prompts":["a"],"model_outputs":[],"protected_attributes":["gender"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := process(t, d, tt.request)
			assert.NotEmpty(t, resp.Error)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestProcessMemoization(t *testing.T) {
	d := testDispatcher(t)
	line := `{"command":"scan_terminology","content":"dummy value"}`

	first := process(t, d, line)
	require.Empty(t, first.Error)

	second := process(t, d, line)
	require.Empty(t, second.Error)

	// The memoized response replays the stored encoding.
	raw, ok := second.Result.(json.RawMessage)
	require.True(t, ok)

	firstData, err := json.Marshal(first.Result)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstData), string(raw))
}

func TestProcessEvaluateModelOutputs(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"command":"evaluate_model_outputs","outputs":["clean text","more clean text"],"protected_attributes":["gender"]}`)
	result := resultMap(t, resp)
	assert.Equal(t, "PASS", result["status"])
	assert.EqualValues(t, 2, result["outputs"])
}

func TestProcessGenerateCounterfactuals(t *testing.T) {
	d := testDispatcher(t)

	resp := process(t, d, `{"command":"generate_counterfactuals","content":"The nurse checked in.","sensitive_group":"gender"}`)
	result := resultMap(t, resp)

	variants, ok := result["counterfactuals"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, variants)
}

func TestRunLoop(t *testing.T) {
	d := testDispatcher(t)

	input := strings.Join([]string{
		`{"command":"scan_terminology","content":"clean line"}`,
		``,
		`not json at all {{{`,
		`{"command":"evaluate_bias","content":"hello","protected_attribute":"gender"}`,
	}, "\n")

	var out bytes.Buffer
	err := d.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	scanner := bufio.NewScanner(&out)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	// Blank line skipped: three responses for four input lines.
	require.Len(t, lines, 3)

	for _, line := range lines {
		var resp map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &resp), "each response line is JSON")
	}

	var errResp Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &errResp))
	assert.NotEmpty(t, errResp.Error)
}
