// Package profiledelivery manages delivery layer of directory profiles.
package profiledelivery

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

// Service provides service layer interface needed by profile delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package profiledelivery
type Service interface {
	Register(ctx context.Context, actorID string, p domain.Identity) (domain.Identity, error)
}

// Handler facilitates profile delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns profile handler.
func NewHandler(ds Service) Handler {
	return Handler{service: ds}
}

type data struct {
	Profile domain.Identity `json:"profile"`
}

type registerRequest struct {
	ID   string      `json:"id" binding:"required,max=64"`
	Name string      `json:"name" binding:"required,max=128"`
	Role domain.Role `json:"role" binding:"required,role"`
}

// Register handles http request to add a profile to the directory.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req registerRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.ValidationError(err))

		return
	}

	payload := middleware.Payload(gctx)

	p, err := h.service.Register(ctx, payload.AccountID, domain.Identity{ID: req.ID, Name: req.Name, Role: req.Role})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidIdentity):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		case errors.Is(err, domain.ErrProfileAlreadyExists):
			gctx.JSON(http.StatusConflict, web.Error(err))
		case errors.Is(err, domain.ErrUnauthorizedActor):
			gctx.JSON(http.StatusForbidden, web.Error(err))
		default:
			l.Error().Err(err).Send()
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusCreated, web.Data(data{p}))
}
