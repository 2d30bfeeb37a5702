// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package distance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleJSONKeepsZeroAverage(t *testing.T) {
	zero := 0.0
	data, err := json.Marshal(Sample{Index: 0, Raw: "00", Numeric: true, Average: &zero})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":0,"raw":"00","value":0,"numeric":true,"average":0}`, string(data))

	var back Sample
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, back.HasAverage())
	assert.Equal(t, 0.0, *back.Average)
}

func TestSampleJSONRawHasNoAverage(t *testing.T) {
	data, err := json.Marshal(Sample{Index: 1, Raw: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":1,"raw":"abc","value":0,"numeric":false}`, string(data))

	var back Sample
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.HasAverage())
}
