package status

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfxtab/gfxtab-api/internal/server/handlers/api"
	"github.com/gfxtab/gfxtab-api/internal/server/status"
)

type StatusService interface {
	Create(ctx context.Context, clientName string) (*status.StatusCheck, error)
	ListRecent(ctx context.Context, limit int) ([]*status.StatusCheck, error)
}

type StatusHandler struct {
	svc StatusService
}

func New(svc StatusService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

func (h *StatusHandler) Create(ctx *gin.Context) {
	var req StatusCheckCreateRequest
	if verr := api.BindJSON(ctx, &req); verr != nil {
		api.AbortWithValidationError(ctx, verr)
		return
	}

	sc, err := h.svc.Create(ctx.Request.Context(), req.ClientName)
	if err != nil {
		api.AbortWithError(ctx, http.StatusInternalServerError, api.DetailInternalError, fmt.Errorf("failed to create status check: %w", err))
		return
	}

	ctx.PureJSON(http.StatusOK, sc)
}

func (h *StatusHandler) List(ctx *gin.Context) {
	checks, err := h.svc.ListRecent(ctx.Request.Context(), status.DefaultListLimit)
	if err != nil {
		api.AbortWithError(ctx, http.StatusInternalServerError, api.DetailInternalError, fmt.Errorf("failed to list status checks: %w", err))
		return
	}

	ctx.PureJSON(http.StatusOK, checks)
}
