package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		status   int
		database string
	}{
		{name: "healthy", status: http.StatusOK, database: "ok"},
		{name: "database down", pingErr: errors.New("connection refused"), status: http.StatusServiceUnavailable, database: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewSystemHandler(fakePinger{err: tt.pingErr}, "1.2.3").Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			got := decodeData[HealthResponse](t, w)
			assert.Equal(t, tt.database, got.Database)
			assert.Equal(t, "1.2.3", got.Version)
			if tt.pingErr != nil {
				assert.False(t, resp.Success)
				assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
			} else {
				assert.True(t, resp.Success)
			}
		})
	}
}
