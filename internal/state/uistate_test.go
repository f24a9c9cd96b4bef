package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "loading", PhaseLoading.String())
	assert.Equal(t, "success", PhaseSuccess.String())
	assert.Equal(t, "error", PhaseError.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestUiStateConstructors(t *testing.T) {
	idle := Idle[string]()
	assert.Equal(t, PhaseIdle, idle.Phase)

	loading := Loading[string]()
	assert.Equal(t, PhaseLoading, loading.Phase)

	success := Success("done")
	assert.Equal(t, PhaseSuccess, success.Phase)
	assert.Equal(t, "done", success.Value)
	assert.Empty(t, success.Message)

	fail := Fail[string]("boom")
	assert.Equal(t, PhaseError, fail.Phase)
	assert.Equal(t, "boom", fail.Message)
}

func TestUiStateJSON(t *testing.T) {
	raw, err := json.Marshal(Success(3))
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"success","value":3}`, string(raw))

	raw, err = json.Marshal(Fail[int]("nope"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"error","message":"nope"}`, string(raw))
}
