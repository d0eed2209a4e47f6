// Package transferdelivery manages delivery layer of transfers, top-ups and withdrawals.
package transferdelivery

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

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
	TopUp(ctx context.Context, accountID string, amount int64, method string) (domain.TransferResult, error)
	Withdraw(ctx context.Context, accountID string, amount int64, method string) (domain.TransferResult, error)
}

// PinVerifier checks the PIN of the paying account.
type PinVerifier interface {
	Verify(ctx context.Context, accountID, pin string) error
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
	pins    PinVerifier
}

// NewHandler returns transfer handler.
func NewHandler(ts Service, pv PinVerifier) Handler {
	return Handler{service: ts, pins: pv}
}

type data struct {
	Transfer domain.TransferResult `json:"transfer"`
}

// Fail writes the response for an error returned by a money movement.
func Fail(gctx *gin.Context, err error) {
	var status int

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidRecipient),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidEscrowKind):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPinNotSet),
		errors.Is(err, domain.ErrInvalidPin),
		errors.Is(err, domain.ErrUnauthorizedActor),
		errors.Is(err, domain.ErrSellerMismatch):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrDirectoryLookupFailed),
		errors.Is(err, domain.ErrReceiptNotFound),
		errors.Is(err, domain.ErrBuyerNotFound),
		errors.Is(err, domain.ErrNoRecipientConfigured):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrDuplicateOrder),
		errors.Is(err, domain.ErrAlreadyReleased),
		errors.Is(err, domain.ErrNotYetDelivered):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrPolicyViolation):
		status = http.StatusUnprocessableEntity
	default:
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(status, web.Error(err))
}

type transferRequest struct {
	ToAccountID string          `json:"to_account_id" binding:"required"`
	Amount      int64           `json:"amount" binding:"required,min=1"`
	Description string          `json:"description" binding:"max=140"`
	Category    domain.Category `json:"category" binding:"omitempty,eq=payment"`
	Pin         string          `json:"pin" binding:"required,len=4,numeric"`
}

// Transfer handles http request to pay another account.
//
// Peer transfers are always recorded as payments.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	if err := h.pins.Verify(ctx, payload.AccountID, req.Pin); err != nil {
		Fail(gctx, err)
		return
	}

	res, err := h.service.Transfer(ctx, domain.TransferParams{
		FromAccountID: payload.AccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      domain.CategoryPayment,
	})
	if err != nil {
		Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{res}))
}

type gatewayRequest struct {
	Amount int64  `json:"amount" binding:"required,min=1"`
	Method string `json:"method" binding:"required,method"`
	Pin    string `json:"pin" binding:"omitempty,len=4,numeric"`
}

// TopUp handles http request to fund the requesting account through a gateway method.
func (h *Handler) TopUp(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req gatewayRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	res, err := h.service.TopUp(ctx, payload.AccountID, req.Amount, req.Method)
	if err != nil {
		Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{res}))
}

// Withdraw handles http request to move funds out through a gateway method. A PIN is required.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req gatewayRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	if err := h.pins.Verify(ctx, payload.AccountID, req.Pin); err != nil {
		Fail(gctx, err)
		return
	}

	res, err := h.service.Withdraw(ctx, payload.AccountID, req.Amount, req.Method)
	if err != nil {
		Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{res}))
}
