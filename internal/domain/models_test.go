package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaleUpdateRequestDecoding(t *testing.T) {
	var req SaleUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"id":1,"name":"Kopi","price":500}]}`), &req))
	require.Equal(t, []CartLine{{ID: 1, Name: "Kopi", Price: 500}}, req.Items)

	require.NoError(t, json.Unmarshal([]byte(`{"items":[]}`), &req))
	require.NotNil(t, req.Items)
	require.Empty(t, req.Items)

	for _, body := range []string{`{}`, `{"items":null}`, `{"items":"nope"}`, `{"items":[{"id":"one"}]}`, `{"items":[{"id":1,"qty":2}]}`} {
		req = SaleUpdateRequest{Items: []CartLine{{ID: 9}}}
		require.NoErrorf(t, json.Unmarshal([]byte(body), &req), body)
		require.Nilf(t, req.Items, body)
	}

	require.Error(t, json.Unmarshal([]byte(`{"items":[],"extra":true}`), &req))
}
