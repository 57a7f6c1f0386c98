package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    addItemRequest
		wantErr bool
	}{
		{name: "valid", body: `{"productId":"p1","quantity":2}`, want: addItemRequest{ProductID: "p1", Quantity: 2}},
		{name: "empty body", body: ``},
		{name: "trailing whitespace", body: "{\"productId\":\"p1\"}\n", want: addItemRequest{ProductID: "p1"}},
		{name: "unknown field", body: `{"productId":"p1","qty":2}`, wantErr: true},
		{name: "trailing object", body: `{"productId":"p1"}{"productId":"p2"}`, wantErr: true},
		{name: "trailing garbage", body: `{"productId":"p1"} x`, wantErr: true},
		{name: "malformed", body: `{"productId":`, wantErr: true},
		{name: "wrong type", body: `{"quantity":"2"}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/cart/items", strings.NewReader(tc.body))
			var got addItemRequest
			err := decodeJSON(r, &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
