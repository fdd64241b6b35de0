package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("roadmap", "42"), http.StatusNotFound},
		{"invalid input", NewInvalidInput("week_number must be >= 1", nil), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("bad token", nil), http.StatusUnauthorized},
		{"generation unavailable", NewGenerationUnavailable("upstream down", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"malformed generation", NewMalformedGeneration("no json", nil), http.StatusBadGateway},
		{"wrapped not found", fmt.Errorf("get roadmap failed: %w", NewNotFound("roadmap", "1")), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrapsToBase(t *testing.T) {
	err := NewGenerationUnavailable("quota exhausted", errors.New("429"))
	assert.True(t, errors.Is(err, ErrGenerationUnavailable))
	assert.False(t, errors.Is(err, ErrMalformedGeneration))
	assert.Contains(t, err.Error(), "quota exhausted")
	assert.Contains(t, err.Error(), "429")
}
