// Package pindelivery manages delivery layer of PINs and PIN resets.
package pindelivery

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

// Service provides service layer interface needed by pin delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package pindelivery
type Service interface {
	SetPin(ctx context.Context, accountID, pin string) error
	RequestReset(ctx context.Context, accountID string, role domain.Role) (domain.ResetRequest, error)
	ApproveReset(ctx context.Context, approverID, requestID string) (domain.ResetRequest, error)
}

// Handler facilitates pin delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns pin handler.
func NewHandler(ps Service) Handler {
	return Handler{service: ps}
}

type data struct {
	ResetRequest domain.ResetRequest `json:"reset_request"`
}

func (h *Handler) fail(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPinFormat):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrDuplicatePendingRequest):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrRequestNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrUnauthorizedActor):
		gctx.JSON(http.StatusForbidden, web.Error(err))
	default:
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type setPinRequest struct {
	Pin string `json:"pin" binding:"required,len=4,numeric"`
}

// SetPin handles http request to set the PIN of the requesting account.
func (h *Handler) SetPin(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req setPinRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	if err := h.service.SetPin(ctx, payload.AccountID, req.Pin); err != nil {
		h.fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(gin.H{"account_id": payload.AccountID}))
}

// RequestReset handles http request of a locked-out owner to clear their PIN.
func (h *Handler) RequestReset(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.Payload(gctx)

	r, err := h.service.RequestReset(ctx, payload.AccountID, domain.Role(payload.Role))
	if err != nil {
		h.fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Data(data{r}))
}

type approveRequest struct {
	ID string `uri:"id" binding:"required"`
}

// ApproveReset handles http request of staff to approve a PIN reset.
func (h *Handler) ApproveReset(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req approveRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	r, err := h.service.ApproveReset(ctx, payload.AccountID, req.ID)
	if err != nil {
		h.fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{r}))
}
