// Package entrydelivery manages delivery layer of ledger entries.
package entrydelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/go-petr/campus-wallet/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by entry delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package entrydelivery
type Service interface {
	ListByOrder(ctx context.Context, orderID string) ([]domain.Entry, error)
	SetStatus(ctx context.Context, actorID, entryID string, status domain.EntryStatus) (domain.Entry, error)
}

// Handler facilitates entry delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns entry handler.
func NewHandler(es Service) Handler {
	return Handler{service: es}
}

type listData struct {
	Entries []domain.Entry `json:"entries"`
}

type data struct {
	Entry domain.Entry `json:"entry"`
}

func (h *Handler) fail(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEntryNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInvalidStateTransition):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrUnauthorizedActor):
		gctx.JSON(http.StatusForbidden, web.Error(err))
	default:
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type listRequest struct {
	OrderID string `form:"order_id" binding:"required"`
}

// ListByOrder handles http request to list the entries linked to an order.
//
// Staff and admins see every leg, everyone else only the legs on their own account.
func (h *Handler) ListByOrder(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	entries, err := h.service.ListByOrder(ctx, req.OrderID)
	if err != nil {
		h.fail(gctx, err)
		return
	}

	switch domain.Role(payload.Role) {
	case domain.RoleAdmin, domain.RoleStaff:
	default:
		own := entries[:0:0]
		for _, e := range entries {
			if e.AccountID == payload.AccountID {
				own = append(own, e)
			}
		}
		entries = own
	}

	gctx.JSON(http.StatusOK, web.Data(listData{entries}))
}

type entryURI struct {
	ID string `uri:"id" binding:"required"`
}

func (h *Handler) setStatus(gctx *gin.Context, status domain.EntryStatus) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri entryURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	e, err := h.service.SetStatus(ctx, payload.AccountID, uri.ID, status)
	if err != nil {
		h.fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{e}))
}

// Complete handles http request of staff to mark a pending entry completed.
func (h *Handler) Complete(gctx *gin.Context) {
	h.setStatus(gctx, domain.EntryCompleted)
}

// Cancel handles http request of staff to mark a pending entry cancelled.
func (h *Handler) Cancel(gctx *gin.Context) {
	h.setStatus(gctx, domain.EntryCancelled)
}
