// Package escrowdelivery manages delivery layer of escrow holds and order receipts.
package escrowdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/internal/transferdelivery"
	"github.com/go-petr/campus-wallet/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by escrow delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package escrowdelivery
type Service interface {
	Hold(ctx context.Context, arg domain.HoldParams) (domain.HoldResult, error)
	Get(ctx context.Context, receiptID string) (domain.Receipt, error)
	Advance(ctx context.Context, receiptID, actorID string, next domain.ReceiptStatus) (domain.Receipt, error)
	Release(ctx context.Context, receiptID, claimedSellerID string) (domain.ReleaseResult, error)
	Cancel(ctx context.Context, receiptID, actorID string) (domain.Receipt, error)
}

// PinVerifier checks the PIN of the paying account.
type PinVerifier interface {
	Verify(ctx context.Context, accountID, pin string) error
}

// Handler facilitates escrow delivery layer logic.
type Handler struct {
	service Service
	pins    PinVerifier
}

// NewHandler returns escrow handler.
func NewHandler(es Service, pv PinVerifier) Handler {
	return Handler{service: es, pins: pv}
}

type receiptData struct {
	Receipt domain.Receipt `json:"receipt"`
}

type holdRequest struct {
	SellerID  string            `json:"seller_id" binding:"required"`
	Amount    int64             `json:"amount" binding:"required,min=1"`
	OrderID   string            `json:"order_id" binding:"max=64"`
	Kind      domain.EscrowKind `json:"kind" binding:"omitempty,oneof=marketplace transfer"`
	LineItems []domain.LineItem `json:"line_items" binding:"dive"`
	Pin       string            `json:"pin" binding:"required,len=4,numeric"`
}

// Hold handles http request of a buyer to pay an order into escrow.
func (h *Handler) Hold(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req holdRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	if err := h.pins.Verify(ctx, payload.AccountID, req.Pin); err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	res, err := h.service.Hold(ctx, domain.HoldParams{
		BuyerID:   payload.AccountID,
		SellerID:  req.SellerID,
		Amount:    req.Amount,
		OrderID:   req.OrderID,
		Kind:      req.Kind,
		LineItems: req.LineItems,
	})
	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Data(res))
}

type receiptURI struct {
	ReceiptID string `uri:"receipt_id" binding:"required"`
}

type statusRequest struct {
	Status domain.ReceiptStatus `json:"status" binding:"required,receipt_status"`
}

// Advance handles http request of a seller to move the order forward.
func (h *Handler) Advance(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri receiptURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	var req statusRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	r, err := h.service.Advance(ctx, uri.ReceiptID, payload.AccountID, req.Status)
	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(receiptData{r}))
}

type releaseRequest struct {
	SellerCode string `json:"seller_code" binding:"required"`
	Pin        string `json:"pin" binding:"required,len=4,numeric"`
}

// Release handles http request of a buyer to confirm delivery and pay the seller.
//
// The seller code is what the buyer scanned or typed at handover.
func (h *Handler) Release(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri receiptURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	var req releaseRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	r, err := h.service.Get(ctx, uri.ReceiptID)
	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	if r.BuyerID != payload.AccountID {
		transferdelivery.Fail(gctx, domain.ErrUnauthorizedActor)
		return
	}

	if err := h.pins.Verify(ctx, payload.AccountID, req.Pin); err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	res, err := h.service.Release(ctx, uri.ReceiptID, req.SellerCode)
	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(res))
}

// Cancel handles http request of the buyer or the seller to call off an order.
func (h *Handler) Cancel(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri receiptURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	r, err := h.service.Cancel(ctx, uri.ReceiptID, payload.AccountID)
	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(receiptData{r}))
}
