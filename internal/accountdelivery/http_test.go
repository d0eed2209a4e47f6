package accountdelivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/pkg/errorspkg"
	"github.com/go-petr/campus-wallet/pkg/randompkg"
	"github.com/go-petr/campus-wallet/pkg/tokenpkg"
	"github.com/go-petr/campus-wallet/pkg/web"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestStatement(t *testing.T) {
	accountID := randompkg.AccountID("stu")
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	statement := domain.Statement{
		Account: domain.Account{ID: accountID, Balance: 700, CreatedAt: time.Now()},
		Entries: []domain.Entry{{
			ID:          "e1",
			AccountID:   accountID,
			Amount:      700,
			Category:    domain.CategoryTopUp,
			Description: "Top-up via card from Payment Gateway",
			Status:      domain.EntryCompleted,
			CreatedAt:   time.Now(),
		}},
	}

	testCases := []struct {
		name           string
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(s *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, accountID, "student", time.Minute)
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().Statement(gomock.Any(), gomock.Eq(accountID)).Times(1).Return(statement, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NoAuthorization",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().Statement(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name: "InternalServerError",
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, accountID, "student", time.Minute)
			},
			buildStubs: func(s *MockService) {
				s.EXPECT().Statement(gomock.Any(), gomock.Eq(accountID)).Times(1).Return(domain.Statement{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.GET("/accounts/me/statement", handler.Statement)

			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, "/accounts/me/statement", nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{Data: &domain.Statement{}}
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf("res.Error = %q, want %q", res.Error, tc.wantError)
				}

				return
			}

			got, ok := res.Data.(*domain.Statement)
			if !ok {
				t.Fatalf("res.Data = %v, failed type conversion", res.Data)
			}

			compareTime := cmpopts.EquateApproxTime(time.Second)
			if diff := cmp.Diff(statement, *got, compareTime); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMe(t *testing.T) {
	accountID := randompkg.AccountID("stu")

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker returned error: %v", err)
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().
		GetOrCreate(gomock.Any(), gomock.Eq(accountID)).
		Times(1).
		Return(domain.Account{ID: accountID, Balance: 42}, nil)

	handler := NewHandler(service)
	server := gin.New()
	server.Use(middleware.AuthMiddleware(tokenMaker))
	server.GET("/accounts/me", handler.Me)

	req, err := http.NewRequest(http.MethodGet, "/accounts/me", nil)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	if err := middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, accountID, "student", time.Minute); err != nil {
		t.Fatalf("middleware.AddAuthorization returned error: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Status code: got %v, want %v", recorder.Code, http.StatusOK)
	}

	res := web.Response{Data: &data{}}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	if got := res.Data.(*data).Account.Balance; got != 42 {
		t.Errorf("balance = %d, want 42", got)
	}
}
