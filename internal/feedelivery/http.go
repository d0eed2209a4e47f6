// Package feedelivery manages delivery layer of disbursements and fee payments.
package feedelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/internal/transferdelivery"
	"github.com/go-petr/campus-wallet/pkg/web"
	"github.com/rs/zerolog"
)

// StageTopUp tells the client to stage the fee and redirect the payer to a top-up.
const StageTopUp = "top_up"

// DisbursementService provides the bulk payment operation.
//
//go:generate mockgen -source http.go -destination http_mock.go -package feedelivery
type DisbursementService interface {
	Disburse(ctx context.Context, arg domain.DisburseParams) (domain.PostingResult, error)
}

// FeeService provides the fee payment operations.
type FeeService interface {
	PayAdmissionFee(ctx context.Context, arg domain.AdmissionFeeParams) (domain.PostingResult, error)
	PaySchoolFee(ctx context.Context, arg domain.SchoolFeeParams) (domain.TransferResult, error)
}

// PinVerifier checks the PIN of the paying account.
type PinVerifier interface {
	Verify(ctx context.Context, accountID, pin string) error
}

// Handler facilitates fee delivery layer logic.
type Handler struct {
	disbursements DisbursementService
	fees          FeeService
	pins          PinVerifier
}

// NewHandler returns fee handler.
func NewHandler(ds DisbursementService, fs FeeService, pv PinVerifier) Handler {
	return Handler{disbursements: ds, fees: fs, pins: pv}
}

type postingData struct {
	Posting domain.PostingResult `json:"posting"`
}

type transferData struct {
	Transfer domain.TransferResult `json:"transfer"`
}

type disburseRequest struct {
	RecipientIDs       []string        `json:"recipient_ids" binding:"required,min=1,dive,required"`
	AmountPerRecipient int64           `json:"amount_per_recipient" binding:"required,min=1"`
	Description        string          `json:"description" binding:"max=140"`
	Category           domain.Category `json:"category" binding:"omitempty,disbursement_category"`
	Pin                string          `json:"pin" binding:"required,len=4,numeric"`
}

// Disburse handles http request to pay the same amount to many recipients at once.
func (h *Handler) Disburse(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req disburseRequest
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

	res, err := h.disbursements.Disburse(ctx, domain.DisburseParams{
		PayerID:            payload.AccountID,
		RecipientIDs:       req.RecipientIDs,
		AmountPerRecipient: req.AmountPerRecipient,
		Description:        req.Description,
		Category:           req.Category,
	})
	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(postingData{res}))
}

type admissionFeeRequest struct {
	InstitutionID string `json:"institution_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,min=1"`
	Reference     string `json:"reference"`
	Pin           string `json:"pin" binding:"required,len=4,numeric"`
}

// PayAdmissionFee handles http request to pay an admission fee to an institution.
func (h *Handler) PayAdmissionFee(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req admissionFeeRequest
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

	res, err := h.fees.PayAdmissionFee(ctx, domain.AdmissionFeeParams{
		PayerID:       payload.AccountID,
		InstitutionID: req.InstitutionID,
		Amount:        req.Amount,
		Reference:     req.Reference,
	})
	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(postingData{res}))
}

type schoolFeeRequest struct {
	InstitutionID string `json:"institution_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,min=1"`
	Installment   string `json:"installment" binding:"required,max=64"`
	Pin           string `json:"pin" binding:"required,len=4,numeric"`
}

// PaySchoolFee handles http request to pay a school fee installment.
//
// A payer without enough funds gets 402 with the top-up stage instead of a plain failure.
func (h *Handler) PaySchoolFee(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req schoolFeeRequest
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

	res, err := h.fees.PaySchoolFee(ctx, domain.SchoolFeeParams{
		PayerID:       payload.AccountID,
		InstitutionID: req.InstitutionID,
		Amount:        req.Amount,
		Installment:   req.Installment,
	})
	if errors.Is(err, domain.ErrInsufficientFunds) {
		l.Info().Str("installment", req.Installment).Msg("school fee staged for top-up")
		gctx.JSON(http.StatusPaymentRequired, web.Response{
			Data:  gin.H{"stage": StageTopUp, "amount": req.Amount},
			Error: err.Error(),
		})

		return
	}

	if err != nil {
		transferdelivery.Fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(transferData{res}))
}
