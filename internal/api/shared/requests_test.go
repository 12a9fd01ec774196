package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRequest struct {
	Name  string `json:"name"  validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

type selfValidatingRequest struct {
	OK bool
}

func (r selfValidatingRequest) Validate() error {
	if !r.OK {
		return errors.New("not ok")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid_body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(
			http.MethodPost, "/", bytes.NewBufferString(`{"name":"steps","count":3}`),
		)
		var decoded taggedRequest
		require.NoError(t, DecodeJSON(req, &decoded))
		assert.Equal(t, "steps", decoded.Name)
		assert.Equal(t, 3, decoded.Count)
	})

	t.Run("malformed_body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":`))
		var decoded taggedRequest
		assert.Error(t, DecodeJSON(req, &decoded))
	})
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	t.Run("tag_validation_passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateRequest(taggedRequest{Name: "steps"}))
	})

	t.Run("tag_validation_fails", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, ValidateRequest(taggedRequest{Count: -1}))
	})

	t.Run("custom_validate_method_preferred", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, ValidateRequest(selfValidatingRequest{OK: true}))
		assert.Error(t, ValidateRequest(selfValidatingRequest{OK: false}))
	})
}
