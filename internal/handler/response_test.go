package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazo1994/Creatory/internal/domain"
)

func errorStatus(t *testing.T, err error) (int, DetailResponse) {
	t.Helper()
	h := server.Default(server.WithHostPorts("127.0.0.1:0"))
	h.GET("/err", func(ctx context.Context, c *app.RequestContext) {
		ErrorResponse(c, err)
	})

	resp := ut.PerformRequest(h.Engine, http.MethodGet, "/err", nil).Result()
	var body DetailResponse
	require.NoError(t, sonic.Unmarshal(resp.Body(), &body))
	return resp.StatusCode(), body
}

func TestErrorResponseStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", domain.NewMissingError("Thread not found"), http.StatusNotFound, "Thread not found"},
		{"conflict", domain.NewConflictError("Email already registered"), http.StatusConflict, "Email already registered"},
		{"already exists", domain.NewAlreadyExistsError("workspace", "studio"), http.StatusConflict, "workspace 'studio' already exists"},
		{"invalid input", domain.NewInvalidInputError("Circuit breaker triggered"), http.StatusBadRequest, "Circuit breaker triggered"},
		{"unauthenticated", domain.NewUnauthorizedError("Invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{"forbidden", domain.NewForbiddenError("Insufficient role"), http.StatusForbidden, "Insufficient role"},
		{"wrapped", fmt.Errorf("chat: %w", domain.NewMissingError("Run not found")), http.StatusNotFound, "Run not found"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorStatus(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.detail, body.Detail)
		})
	}
}

func TestErrorResponseValidationList(t *testing.T) {
	verr := &domain.ValidationError{}
	verr.Add("Field required", "body", "email")
	verr.Add("String should have at least 8 characters", "body", "password")

	status, body := errorStatus(t, verr)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	items, ok := body.Detail.([]interface{})
	require.True(t, ok, "detail should be a list, got %T", body.Detail)
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"body", "email"}, first["loc"])
	assert.Equal(t, "Field required", first["msg"])
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query  string
		page   domain.Page
		hasErr bool
	}{
		{"", domain.Page{}, false},
		{"?offset=5&limit=10", domain.Page{Offset: 5, Limit: 10}, false},
		{"?limit=abc", domain.Page{}, true},
		{"?offset=-1", domain.Page{}, true},
		{"?limit=0", domain.Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var (
				got domain.Page
				err error
			)
			h := server.Default(server.WithHostPorts("127.0.0.1:0"))
			h.GET("/list", func(ctx context.Context, c *app.RequestContext) {
				got, err = pageParams(c)
			})
			ut.PerformRequest(h.Engine, http.MethodGet, "/list"+tt.query, nil)

			if tt.hasErr {
				assert.Error(t, err)
				assert.True(t, domain.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, got)
		})
	}
}
