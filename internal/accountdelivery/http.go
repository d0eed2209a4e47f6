// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/go-petr/campus-wallet/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	GetOrCreate(ctx context.Context, id string) (domain.Account, error)
	Statement(ctx context.Context, id string) (domain.Statement, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

// Me handles http request to get the balance of the requesting account.
func (h *Handler) Me(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)
	payload := middleware.Payload(gctx)

	acc, err := h.service.GetOrCreate(ctx, payload.AccountID)
	if err != nil {
		l.Error().Err(err).Str("account_id", payload.AccountID).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{acc}))
}

// Statement handles http request to get the balance and history of the requesting account.
func (h *Handler) Statement(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)
	payload := middleware.Payload(gctx)

	st, err := h.service.Statement(ctx, payload.AccountID)
	if err != nil {
		l.Error().Err(err).Str("account_id", payload.AccountID).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Data(st))
}
