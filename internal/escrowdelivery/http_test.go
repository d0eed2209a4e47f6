package escrowdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
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
		_ = v.RegisterValidation("receipt_status", ValidReceiptStatus)
	}

	os.Exit(m.Run())
}

func TestHandlers(t *testing.T) {
	buyerID := randompkg.AccountID("stu")
	sellerID := randompkg.AccountID("stu")
	receiptID := "3b1f5a8e-0c1d-4e7a-9f2b-6d5c4b3a2910"
	pin := randompkg.Pin()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	delivered := domain.Receipt{
		ID:       receiptID,
		OrderID:  "ORD-7",
		Kind:     domain.ReceiptOrder,
		Amount:   2500,
		Status:   domain.ReceiptDelivered,
		BuyerID:  buyerID,
		SellerID: sellerID,
	}
	completed := delivered
	completed.Status = domain.ReceiptCompleted

	items := []domain.LineItem{{Name: "Notebook", Quantity: 5, UnitPrice: 500}}

	testCases := []struct {
		name           string
		actorID        string
		path           string
		body           any
		buildStubs     func(s *MockService, pv *MockPinVerifier)
		wantStatusCode int
		wantError      string
	}{
		{
			name:    "HoldOK",
			actorID: buyerID,
			path:    "/escrows",
			body:    gin.H{"seller_id": sellerID, "amount": 2500, "order_id": "ORD-7", "line_items": items, "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				pv.EXPECT().Verify(gomock.Any(), gomock.Eq(buyerID), gomock.Eq(pin)).Times(1).Return(nil)
				s.EXPECT().Hold(gomock.Any(), gomock.Eq(domain.HoldParams{
					BuyerID:   buyerID,
					SellerID:  sellerID,
					Amount:    2500,
					OrderID:   "ORD-7",
					LineItems: items,
				})).Times(1).Return(domain.HoldResult{Receipt: delivered}, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:    "HoldUnknownKind",
			actorID: buyerID,
			path:    "/escrows",
			body:    gin.H{"seller_id": sellerID, "amount": 2500, "kind": "rental", "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				pv.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				s.EXPECT().Hold(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Kind is invalid",
		},
		{
			name:    "HoldLineItemsMismatch",
			actorID: buyerID,
			path:    "/escrows",
			body:    gin.H{"seller_id": sellerID, "amount": 3000, "line_items": items, "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				pv.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				s.EXPECT().Hold(gomock.Any(), gomock.Any()).Times(1).Return(domain.HoldResult{}, domain.ErrInvalidAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name:    "HoldDuplicateOrder",
			actorID: buyerID,
			path:    "/escrows",
			body:    gin.H{"seller_id": sellerID, "amount": 2500, "order_id": "ORD-7", "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				pv.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				s.EXPECT().Hold(gomock.Any(), gomock.Any()).Times(1).Return(domain.HoldResult{}, domain.ErrDuplicateOrder)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrDuplicateOrder.Error(),
		},
		{
			name:    "AdvanceOK",
			actorID: sellerID,
			path:    fmt.Sprintf("/escrows/%s/status", receiptID),
			body:    gin.H{"status": "Out for Delivery"},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Advance(gomock.Any(), gomock.Eq(receiptID), gomock.Eq(sellerID), gomock.Eq(domain.ReceiptOutForDelivery)).
					Times(1).
					Return(delivered, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:    "AdvanceUnknownStatus",
			actorID: sellerID,
			path:    fmt.Sprintf("/escrows/%s/status", receiptID),
			body:    gin.H{"status": "Shipped"},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Advance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Status is not a known receipt status",
		},
		{
			name:    "AdvanceByBuyer",
			actorID: buyerID,
			path:    fmt.Sprintf("/escrows/%s/status", receiptID),
			body:    gin.H{"status": "Delivered"},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Advance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Receipt{}, domain.ErrUnauthorizedActor)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrUnauthorizedActor.Error(),
		},
		{
			name:    "ReleaseOK",
			actorID: buyerID,
			path:    fmt.Sprintf("/escrows/%s/release", receiptID),
			body:    gin.H{"seller_code": "acct:" + sellerID, "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				gomock.InOrder(
					s.EXPECT().Get(gomock.Any(), gomock.Eq(receiptID)).Times(1).Return(delivered, nil),
					pv.EXPECT().Verify(gomock.Any(), gomock.Eq(buyerID), gomock.Eq(pin)).Times(1).Return(nil),
					s.EXPECT().Release(gomock.Any(), gomock.Eq(receiptID), gomock.Eq("acct:"+sellerID)).
						Times(1).
						Return(domain.ReleaseResult{Receipt: completed}, nil),
				)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:    "ReleaseBySeller",
			actorID: sellerID,
			path:    fmt.Sprintf("/escrows/%s/release", receiptID),
			body:    gin.H{"seller_code": sellerID, "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Get(gomock.Any(), gomock.Eq(receiptID)).Times(1).Return(delivered, nil)
				pv.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				s.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrUnauthorizedActor.Error(),
		},
		{
			name:    "ReleaseTwice",
			actorID: buyerID,
			path:    fmt.Sprintf("/escrows/%s/release", receiptID),
			body:    gin.H{"seller_code": sellerID, "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(completed, nil)
				pv.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				s.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.ReleaseResult{}, domain.ErrAlreadyReleased)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrAlreadyReleased.Error(),
		},
		{
			name:    "ReleaseSellerMismatch",
			actorID: buyerID,
			path:    fmt.Sprintf("/escrows/%s/release", receiptID),
			body:    gin.H{"seller_code": "stranger", "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Get(gomock.Any(), gomock.Any()).Times(1).Return(delivered, nil)
				pv.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil)
				s.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.ReleaseResult{}, domain.ErrSellerMismatch)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrSellerMismatch.Error(),
		},
		{
			name:    "ReleaseUnknownReceipt",
			actorID: buyerID,
			path:    "/escrows/missing/release",
			body:    gin.H{"seller_code": sellerID, "pin": pin},
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Get(gomock.Any(), gomock.Eq("missing")).Times(1).Return(domain.Receipt{}, domain.ErrReceiptNotFound)
				s.EXPECT().Release(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrReceiptNotFound.Error(),
		},
		{
			name:    "CancelOK",
			actorID: buyerID,
			path:    fmt.Sprintf("/escrows/%s/cancel", receiptID),
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Cancel(gomock.Any(), gomock.Eq(receiptID), gomock.Eq(buyerID)).Times(1).
					Return(domain.Receipt{ID: receiptID, Status: domain.ReceiptCancelled}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:    "CancelAfterDispatch",
			actorID: buyerID,
			path:    fmt.Sprintf("/escrows/%s/cancel", receiptID),
			buildStubs: func(s *MockService, pv *MockPinVerifier) {
				s.EXPECT().Cancel(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Receipt{}, domain.ErrInvalidStateTransition)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrInvalidStateTransition.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			pins := NewMockPinVerifier(ctrl)
			handler := NewHandler(service, pins)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.POST("/escrows", handler.Hold)
			server.POST("/escrows/:receipt_id/status", handler.Advance)
			server.POST("/escrows/:receipt_id/release", handler.Release)
			server.POST("/escrows/:receipt_id/cancel", handler.Cancel)

			tc.buildStubs(service, pins)

			var body []byte
			if tc.body != nil {
				b, err := json.Marshal(tc.body)
				require.NoError(t, err)
				body = b
			}

			req, err := http.NewRequest(http.MethodPost, tc.path, bytes.NewReader(body))
			require.NoError(t, err)

			err = middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, tc.actorID, "student", time.Minute)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var res web.Response
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
			require.Equal(t, tc.wantError, res.Error)
		})
	}
}
