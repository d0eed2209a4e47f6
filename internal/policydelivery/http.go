// Package policydelivery manages delivery layer of spending policies.
package policydelivery

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

// Service provides service layer interface needed by policy delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package policydelivery
type Service interface {
	Get(ctx context.Context, accountID string) (domain.SpendingPolicy, error)
	Set(ctx context.Context, actorID string, p domain.SpendingPolicy) (domain.SpendingPolicy, error)
}

// Handler facilitates policy delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns policy handler.
func NewHandler(ps Service) Handler {
	return Handler{service: ps}
}

type data struct {
	Policy domain.SpendingPolicy `json:"policy"`
}

type uriRequest struct {
	AccountID string `uri:"account_id" binding:"required"`
}

// Get handles http request to read an account policy.
//
// The account owner, its guardian, staff and admins may read it.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	p, err := h.service.Get(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	switch {
	case payload.AccountID == p.AccountID, payload.AccountID == p.GuardianID:
	case payload.Role == string(domain.RoleAdmin), payload.Role == string(domain.RoleStaff):
	default:
		gctx.JSON(http.StatusForbidden, web.Error(domain.ErrUnauthorizedActor))
		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{p}))
}

type setRequest struct {
	DailyCap  int64    `json:"daily_cap" binding:"min=0"`
	WeeklyCap int64    `json:"weekly_cap" binding:"min=0"`
	Blocked   []string `json:"blocked"`
}

// Set handles http request of a guardian or admin to configure an account policy.
func (h *Handler) Set(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	var req setRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	p, err := h.service.Set(ctx, payload.AccountID, domain.SpendingPolicy{
		AccountID: uri.AccountID,
		Blocked:   req.Blocked,
		DailyCap:  req.DailyCap,
		WeeklyCap: req.WeeklyCap,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorizedActor):
			gctx.JSON(http.StatusForbidden, web.Error(err))
		case errors.Is(err, domain.ErrInvalidAmount):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		default:
			l.Error().Err(err).Send()
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusOK, web.Data(data{p}))
}
