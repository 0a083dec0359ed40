package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_SuccessHasNullError(t *testing.T) {
	res := domain.OK(7, map[string]any{"sketch_index": 0})

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, float64(7), doc["id"])
	assert.Equal(t, true, doc["success"])
	assert.NotNil(t, doc["result"])
	assert.Nil(t, doc["error"], "success results must serialize error as null")
}

func TestResult_FailureHasNullResult(t *testing.T) {
	res := domain.Fail(10, "unknown action: frobnicate")

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, false, doc["success"])
	assert.Nil(t, doc["result"], "failure results must serialize result as null")
	assert.Equal(t, "unknown action: frobnicate", doc["error"])
	assert.Equal(t, "unknown action: frobnicate", res.ErrorMessage())
}

func TestCommand_Valid(t *testing.T) {
	assert.True(t, (&domain.Command{ID: 1, Action: "ping"}).Valid())
	assert.False(t, (&domain.Command{ID: 0, Action: "ping"}).Valid())
	assert.False(t, (&domain.Command{ID: -3, Action: "ping"}).Valid())
	assert.False(t, (&domain.Command{ID: 5}).Valid())

	var nilCmd *domain.Command
	assert.False(t, nilCmd.Valid())
}
