package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AbortWithError records err on the context for the access log and replies
// with detail only. err is never written to the client.
func AbortWithError(ctx *gin.Context, status int, detail string, err error) {
	ctx.Abort()
	if err != nil {
		_ = ctx.Error(err)
	}
	ctx.PureJSON(status, ErrorResponse{Detail: detail})
}

// AbortWithValidationError replies 422 with the per-field violations
func AbortWithValidationError(ctx *gin.Context, err *ValidationError) {
	ctx.Abort()
	_ = ctx.Error(err).SetType(gin.ErrorTypeBind)
	ctx.PureJSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Errors})
}
