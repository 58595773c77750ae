package contact

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfxtab/gfxtab-api/internal/server/contact"
	"github.com/gfxtab/gfxtab-api/internal/server/handlers/api"
)

type Dispatcher interface {
	Send(ctx context.Context, sub *contact.Submission) error
}

type ContactHandler struct {
	dispatcher Dispatcher
}

func New(dispatcher Dispatcher) *ContactHandler {
	return &ContactHandler{dispatcher: dispatcher}
}

func (h *ContactHandler) Submit(ctx *gin.Context) {
	var req ContactRequest
	if verr := api.BindJSON(ctx, &req); verr != nil {
		api.AbortWithValidationError(ctx, verr)
		return
	}

	sub := &contact.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	// the dispatcher already logged the provider error
	if err := h.dispatcher.Send(ctx.Request.Context(), sub); err != nil {
		api.AbortWithError(ctx, http.StatusInternalServerError, detailSendFailure, err)
		return
	}

	ctx.PureJSON(http.StatusOK, ContactResponse{
		Status:  statusSuccess,
		Message: messageSent,
	})
}
