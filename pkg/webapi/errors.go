package webapi

import (
	"errors"
	"net/http"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/clog"
	"github.com/arsipku/arsipd/pkg/pemindahan"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error  string                        `json:"error"`
	Fields []*pemindahan.ValidationError `json:"fields,omitempty"`
}

// WaitingResponse is returned with 202 while the approvers have not both
// approved.
type WaitingResponse struct {
	Waiting  bool                          `json:"waiting"`
	Message  string                        `json:"message"`
	Pending  []arsipmodel.ApprovalSlotName `json:"pending,omitempty"`
	Rejected []arsipmodel.ApprovalSlotName `json:"rejected,omitempty"`
	Approval arsipmodel.ProcessApproval    `json:"approval_status"`
}

// respondError writes the response for an error returned by the transfer
// workflow. echo.HTTPErrors are passed back to echo unchanged.
func respondError(c echo.Context, err error) error {
	var (
		httpErr      *echo.HTTPError
		fieldErrs    validator.ValidationErrors
		blocked      *pemindahan.ApprovalBlockedError
		notSupported = errors.Is(err, pemindahan.ErrWrongStep) || errors.Is(err, pemindahan.ErrProcessCompleted)
	)

	switch {
	case errors.As(err, &httpErr):
		return err

	case errors.As(err, &fieldErrs):
		resp := ErrorResponse{Error: "invalid request"}
		for _, fe := range fieldErrs {
			resp.Fields = append(resp.Fields, &pemindahan.ValidationError{Field: fe.Field(), Message: fe.Tag()})
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)

	case pemindahan.IsValidation(err):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Fields: pemindahan.ValidationErrors(err),
		})

	case errors.As(err, &blocked):
		return c.JSON(http.StatusAccepted, WaitingResponse{
			Waiting:  true,
			Message:  blocked.Error(),
			Pending:  blocked.Pending(),
			Rejected: blocked.Rejected(),
			Approval: blocked.Approval,
		})

	case pemindahan.IsConcurrency(err), notSupported:
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case pemindahan.IsExecution(err):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})

	case errors.Is(err, pemindahan.ErrNotOwner):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})

	case stor.IsRecordNotFound(err):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})

	default:
		clog.Global().Errorf("%s %s: %s", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
