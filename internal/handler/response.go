package handler

import (
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/chazo1994/Creatory/internal/domain"
)

// DetailResponse is the error body: detail is a message or a list of field problems
type DetailResponse struct {
	Detail any `json:"detail"`
}

// FieldDetail is one rejected request field
type FieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// OKResponse returns 200 with data as the body
func OKResponse(c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusOK, data)
}

// CreatedResponse returns 201 with data as the body
func CreatedResponse(c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusCreated, data)
}

// AbortWithDetail writes {"detail": message} and stops the handler chain
func AbortWithDetail(c *app.RequestContext, status int, message string) {
	c.AbortWithStatusJSON(status, DetailResponse{Detail: message})
}

// ErrorResponse returns an error response based on error type
func ErrorResponse(c *app.RequestContext, err error) {
	// getuser友好of错误消息（不暴露内部细节）
	getUserMessage := func(err error) string {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return domainErr.UserMessage()
		}
		return "an error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		details := make([]FieldDetail, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			details = append(details, FieldDetail{Loc: f.Loc, Msg: f.Msg, Type: "value_error"})
		}
		c.AbortWithStatusJSON(consts.StatusUnprocessableEntity, DetailResponse{Detail: details})
	case domain.IsNotFound(err):
		AbortWithDetail(c, consts.StatusNotFound, getUserMessage(err))
	case domain.IsAlreadyExists(err), domain.IsConflict(err):
		AbortWithDetail(c, consts.StatusConflict, getUserMessage(err))
	case domain.IsInvalidInput(err):
		AbortWithDetail(c, consts.StatusBadRequest, getUserMessage(err))
	case domain.IsUnauthenticated(err):
		AbortWithDetail(c, consts.StatusUnauthorized, getUserMessage(err))
	case domain.IsForbidden(err):
		AbortWithDetail(c, consts.StatusForbidden, getUserMessage(err))
	default:
		// Internal error：不暴露任何细节
		AbortWithDetail(c, consts.StatusInternalServerError, "Internal Server Error")
	}
}

// bindBody decodes the JSON body into req; a malformed body is a 422
func bindBody(c *app.RequestContext, req interface{}) error {
	if len(c.Request.Body()) == 0 {
		verr := &domain.ValidationError{}
		verr.Add("Field required", "body")
		return verr
	}
	if err := c.BindJSON(req); err != nil {
		verr := &domain.ValidationError{}
		verr.Add("JSON decode error", "body")
		return verr
	}
	return nil
}

// pageParams reads the offset and limit query parameters
func pageParams(c *app.RequestContext) (domain.Page, error) {
	var page domain.Page
	verr := &domain.ValidationError{}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			verr.Add("Input should be a non-negative integer", "query", "offset")
		}
		page.Offset = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add("Input should be a positive integer", "query", "limit")
		}
		page.Limit = n
	}
	return page, verr.OrNil()
}

// userID returns the authenticated user set by the auth middleware
func userID(c *app.RequestContext) string {
	return c.GetString(identityKey)
}
