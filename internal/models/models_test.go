package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPMResponsesScan(t *testing.T) {
	var r SPMResponses
	require.NoError(t, r.Scan([]byte(`{"vis1":3,"soc1":1}`)))
	assert.Equal(t, SPMResponses{"vis1": 3, "soc1": 1}, r)

	require.NoError(t, r.Scan(nil))
	assert.Equal(t, SPMResponses{}, r)

	assert.Error(t, r.Scan(42))
	assert.Error(t, r.Scan(`{"vis1":"often"}`))
}

func TestSPMResponsesValue(t *testing.T) {
	v, err := SPMResponses(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	v, err = SPMResponses{"vis1": 4}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"vis1":4}`, string(v.([]byte)))
}

func TestObservationResponsesScan(t *testing.T) {
	var r ObservationResponses
	require.NoError(t, r.Scan(`{"prewrite-1":"Yes"}`))
	assert.Equal(t, ObservationResponses{"prewrite-1": "Yes"}, r)
}

func TestClientFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Client{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", Client{FirstName: "Ada"}.FullName())
}

func TestNormalisePage(t *testing.T) {
	p, s := NormalisePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, 20, s)
	_, s = NormalisePage(3, 500)
	assert.Equal(t, 100, s)
}
