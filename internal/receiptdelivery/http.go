// Package receiptdelivery manages delivery layer of receipts.
package receiptdelivery

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

// Service provides service layer interface needed by receipt delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package receiptdelivery
type Service interface {
	Get(ctx context.Context, id string) (domain.Receipt, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Receipt, error)
}

// Handler facilitates receipt delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns receipt handler.
func NewHandler(rs Service) Handler {
	return Handler{service: rs}
}

type listData struct {
	Receipts []domain.Receipt `json:"receipts"`
}

type data struct {
	Receipt domain.Receipt `json:"receipt"`
}

// List handles http request to list the receipts of the requesting account.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.Payload(gctx)

	receipts, err := h.service.ListByAccount(ctx, payload.AccountID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(listData{receipts}))
}

type getRequest struct {
	ID string `uri:"id" binding:"required"`
}

// visibleTo reports whether the account owns the receipt or takes part in its order.
func visibleTo(r domain.Receipt, accountID string) bool {
	return r.AccountID == accountID || r.BuyerID == accountID || r.SellerID == accountID
}

// Get handles http request to get a single receipt.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	r, err := h.service.Get(ctx, req.ID)
	if errors.Is(err, domain.ErrReceiptNotFound) || (err == nil && !visibleTo(r, payload.AccountID)) {
		gctx.JSON(http.StatusNotFound, web.Error(domain.ErrReceiptNotFound))
		return
	}

	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{r}))
}
