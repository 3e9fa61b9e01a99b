package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/Kate44725/computing-management/pkg/errors"
	"github.com/Kate44725/computing-management/pkg/response"
)

// 业务错误码
const (
	codeValidation          = 20001
	codeNotFound            = 20002
	codeConflict            = 20003
	codeInsufficientBalance = 20004
	codeForbidden           = 20005
)

// handleDomainError 按错误分类映射 HTTP 状态码
// details 携带业务层的具体原因
func handleDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrValidation):
		response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, pkgerrors.ErrValidation.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.ErrorWithDetails(c, http.StatusNotFound, codeNotFound, pkgerrors.ErrNotFound.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrConflict):
		response.ErrorWithDetails(c, http.StatusConflict, codeConflict, pkgerrors.ErrConflict.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrInsufficientBalance):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, codeInsufficientBalance, pkgerrors.ErrInsufficientBalance.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrForbidden):
		response.ErrorWithDetails(c, http.StatusForbidden, codeForbidden, pkgerrors.ErrForbidden.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrPrecondition):
		response.Unauthorized(c, 10002, "未认证")
	default:
		response.InternalError(c)
	}
}
