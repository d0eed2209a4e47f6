package feedelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/pkg/randompkg"
	"github.com/go-petr/campus-wallet/pkg/tokenpkg"
	"github.com/go-petr/campus-wallet/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("disbursement_category", ValidDisbursementCategory)
	}

	os.Exit(m.Run())
}

type mocks struct {
	disbursements *MockDisbursementService
	fees          *MockFeeService
	pins          *MockPinVerifier
}

func TestHandlers(t *testing.T) {
	payerID := randompkg.AccountID("staff")
	schoolID := randompkg.AccountID("school")
	pin := randompkg.Pin()
	recipients := []string{randompkg.AccountID("stu"), randompkg.AccountID("stu")}

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	testCases := []struct {
		name           string
		path           string
		body           gin.H
		buildStubs     func(m mocks)
		wantStatusCode int
		wantError      string
		checkData      func(t *testing.T, data map[string]any)
	}{
		{
			name: "DisburseOK",
			path: "/disbursements",
			body: gin.H{"recipient_ids": recipients, "amount_per_recipient": 2000, "description": "allowance", "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Eq(payerID), gomock.Eq(pin)).Times(1).Return(nil)
				m.disbursements.EXPECT().Disburse(gomock.Any(), gomock.Eq(domain.DisburseParams{
					PayerID:            payerID,
					RecipientIDs:       recipients,
					AmountPerRecipient: 2000,
					Description:        "allowance",
				})).Times(1).Return(domain.PostingResult{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "DisburseBursary",
			path: "/disbursements",
			body: gin.H{"recipient_ids": recipients, "amount_per_recipient": 2000, "category": "bursary_credit", "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				m.disbursements.EXPECT().Disburse(gomock.Any(), gomock.Eq(domain.DisburseParams{
					PayerID:            payerID,
					RecipientIDs:       recipients,
					AmountPerRecipient: 2000,
					Category:           domain.CategoryBursaryCredit,
				})).Times(1).Return(domain.PostingResult{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "DisburseAsFeePayment",
			path: "/disbursements",
			body: gin.H{"recipient_ids": recipients, "amount_per_recipient": 2000, "category": "fee_payment", "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				m.disbursements.EXPECT().Disburse(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Category is not a disbursement category",
		},
		{
			name: "DisburseFromStudent",
			path: "/disbursements",
			body: gin.H{"recipient_ids": recipients, "amount_per_recipient": 2000, "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				m.disbursements.EXPECT().Disburse(gomock.Any(), gomock.Any()).Times(1).
					Return(domain.PostingResult{}, domain.ErrUnauthorizedActor)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrUnauthorizedActor.Error(),
		},
		{
			name: "DisburseNoRecipients",
			path: "/disbursements",
			body: gin.H{"recipient_ids": []string{}, "amount_per_recipient": 2000, "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				m.disbursements.EXPECT().Disburse(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "RecipientIDs must be at least 1",
		},
		{
			name: "DisburseInsufficientFunds",
			path: "/disbursements",
			body: gin.H{"recipient_ids": recipients, "amount_per_recipient": 2000, "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				m.disbursements.EXPECT().Disburse(gomock.Any(), gomock.Any()).Times(1).
					Return(domain.PostingResult{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name: "AdmissionFeeOK",
			path: "/admission-fees",
			body: gin.H{"institution_id": schoolID, "amount": 28000, "reference": "ADM-1", "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Eq(payerID), gomock.Eq(pin)).Times(1).Return(nil)
				m.fees.EXPECT().PayAdmissionFee(gomock.Any(), gomock.Eq(domain.AdmissionFeeParams{
					PayerID:       payerID,
					InstitutionID: schoolID,
					Amount:        28000,
					Reference:     "ADM-1",
				})).Times(1).Return(domain.PostingResult{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "AdmissionFeeWithoutInstitution",
			path: "/admission-fees",
			body: gin.H{"institution_id": schoolID, "amount": 28000, "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				m.fees.EXPECT().PayAdmissionFee(gomock.Any(), gomock.Any()).Times(1).
					Return(domain.PostingResult{}, domain.ErrNoRecipientConfigured)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrNoRecipientConfigured.Error(),
		},
		{
			name: "AdmissionFeeWrongPin",
			path: "/admission-fees",
			body: gin.H{"institution_id": schoolID, "amount": 28000, "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(domain.ErrInvalidPin)
				m.fees.EXPECT().PayAdmissionFee(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrInvalidPin.Error(),
		},
		{
			name: "SchoolFeeOK",
			path: "/school-fees",
			body: gin.H{"institution_id": schoolID, "amount": 50000, "installment": "2026-T1", "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				m.fees.EXPECT().PaySchoolFee(gomock.Any(), gomock.Eq(domain.SchoolFeeParams{
					PayerID:       payerID,
					InstitutionID: schoolID,
					Amount:        50000,
					Installment:   "2026-T1",
				})).Times(1).Return(domain.TransferResult{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "SchoolFeeStagedForTopUp",
			path: "/school-fees",
			body: gin.H{"institution_id": schoolID, "amount": 50000, "installment": "2026-T1", "pin": pin},
			buildStubs: func(m mocks) {
				m.pins.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				m.fees.EXPECT().PaySchoolFee(gomock.Any(), gomock.Any()).Times(1).
					Return(domain.TransferResult{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusPaymentRequired,
			wantError:      domain.ErrInsufficientFunds.Error(),
			checkData: func(t *testing.T, data map[string]any) {
				require.Equal(t, StageTopUp, data["stage"])
				require.EqualValues(t, 50000, data["amount"])
			},
		},
		{
			name: "SchoolFeeWithoutInstallment",
			path: "/school-fees",
			body: gin.H{"institution_id": schoolID, "amount": 50000, "pin": pin},
			buildStubs: func(m mocks) {
				m.fees.EXPECT().PaySchoolFee(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Installment field is required",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks{
				disbursements: NewMockDisbursementService(ctrl),
				fees:          NewMockFeeService(ctrl),
				pins:          NewMockPinVerifier(ctrl),
			}
			handler := NewHandler(m.disbursements, m.fees, m.pins)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.POST("/disbursements", handler.Disburse)
			server.POST("/admission-fees", handler.PayAdmissionFee)
			server.POST("/school-fees", handler.PaySchoolFee)

			tc.buildStubs(m)

			b, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, tc.path, bytes.NewReader(b))
			require.NoError(t, err)

			err = middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, payerID, "staff", time.Minute)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var res web.Response
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
			require.Equal(t, tc.wantError, res.Error)

			if tc.checkData != nil {
				data, ok := res.Data.(map[string]any)
				require.True(t, ok)
				tc.checkData(t, data)
			}
		})
	}
}
