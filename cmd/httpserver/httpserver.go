// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/campus-wallet/internal/accountdelivery"
	"github.com/go-petr/campus-wallet/internal/accountrepo"
	"github.com/go-petr/campus-wallet/internal/accountservice"
	"github.com/go-petr/campus-wallet/internal/auditrepo"
	"github.com/go-petr/campus-wallet/internal/auditservice"
	"github.com/go-petr/campus-wallet/internal/directoryservice"
	"github.com/go-petr/campus-wallet/internal/disbursementservice"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/entrydelivery"
	"github.com/go-petr/campus-wallet/internal/entryrepo"
	"github.com/go-petr/campus-wallet/internal/escrowdelivery"
	"github.com/go-petr/campus-wallet/internal/escrowservice"
	"github.com/go-petr/campus-wallet/internal/feedelivery"
	"github.com/go-petr/campus-wallet/internal/feeservice"
	"github.com/go-petr/campus-wallet/internal/ledgerrepo"
	"github.com/go-petr/campus-wallet/internal/ledgerservice"
	"github.com/go-petr/campus-wallet/internal/memstore"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/internal/pindelivery"
	"github.com/go-petr/campus-wallet/internal/pinresetrepo"
	"github.com/go-petr/campus-wallet/internal/pinservice"
	"github.com/go-petr/campus-wallet/internal/policydelivery"
	"github.com/go-petr/campus-wallet/internal/policyrepo"
	"github.com/go-petr/campus-wallet/internal/policyservice"
	"github.com/go-petr/campus-wallet/internal/profiledelivery"
	"github.com/go-petr/campus-wallet/internal/profilerepo"
	"github.com/go-petr/campus-wallet/internal/receiptdelivery"
	"github.com/go-petr/campus-wallet/internal/receiptrepo"
	"github.com/go-petr/campus-wallet/internal/receiptservice"
	"github.com/go-petr/campus-wallet/internal/transferdelivery"
	"github.com/go-petr/campus-wallet/internal/transferservice"
	"github.com/go-petr/campus-wallet/pkg/configpkg"
	"github.com/go-petr/campus-wallet/pkg/moneypkg"
	"github.com/go-petr/campus-wallet/pkg/tokenpkg"
	"github.com/go-petr/campus-wallet/pkg/web"
)

// Server holds the store, handlers router and configuration.
type Server struct {
	DB        *sql.DB // nil with the memory store
	Store     *memstore.Store
	Engine    *gin.Engine
	Config    configpkg.Config
	Directory *directoryservice.Service
	audit     *auditservice.Service
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close flushes pending audit records.
func (s *Server) Close() {
	s.audit.Close()
}

type accountRepo interface {
	accountservice.Repo
	pinservice.AccountRepo
}

type entryRepo interface {
	accountservice.EntryRepo
	ledgerservice.Repo
}

type backend struct {
	ledger   transferservice.Ledger
	accounts accountRepo
	entries  entryRepo
	resets   pinservice.ResetRepo
	policies policyservice.Repo
	profiles directoryservice.Repo
	receipts receiptservice.Repo
	audit    auditservice.Repo
}

func memoryBackend(store *memstore.Store) backend {
	return backend{
		ledger:   store,
		accounts: store,
		entries:  store,
		resets:   store,
		policies: store,
		profiles: store,
		receipts: store,
		audit:    store,
	}
}

func postgresBackend(db *sql.DB) backend {
	return backend{
		ledger:   ledgerrepo.NewRepoPGS(db),
		accounts: accountrepo.NewRepoPGS(db),
		entries:  entryrepo.NewRepoPGS(db),
		resets:   pinresetrepo.NewRepoPGS(db),
		policies: policyrepo.NewRepoPGS(db),
		profiles: profilerepo.NewRepoPGS(db),
		receipts: receiptrepo.NewRepoPGS(db),
		audit:    auditrepo.NewRepoPGS(db),
	}
}

// RegisterValidators adds the custom binding tags used by the request types.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	validators := map[string]validator.Func{
		"disbursement_category": feedelivery.ValidDisbursementCategory,
		"method":                transferdelivery.ValidMethod,
		"receipt_status":        escrowdelivery.ValidReceiptStatus,
		"role":                  profiledelivery.ValidRole,
	}

	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("cannot register %s validator: %w", tag, err)
		}
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
//
// conn is only used when the config selects the postgres store.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	var (
		b     backend
		store *memstore.Store
	)

	switch config.StoreDriver {
	case configpkg.StoreMemory:
		store = memstore.New()
		b = memoryBackend(store)
		conn = nil
	case configpkg.StorePostgres:
		if conn == nil {
			return nil, errors.New("postgres store needs a database connection")
		}
		b = postgresBackend(conn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", config.StoreDriver)
	}

	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	platformPercent, err := moneypkg.ParsePercent(config.PlatformFeePercent)
	if err != nil {
		return nil, fmt.Errorf("cannot parse platform fee percent: %w", err)
	}

	auditService := auditservice.New(b.audit, config.AuditBufferSize, logger)
	directoryService := directoryservice.New(b.profiles, config.ReservedAccounts())
	accountService := accountservice.New(b.accounts, b.entries)
	ledgerService := ledgerservice.New(b.entries, directoryService, auditService)
	receiptService := receiptservice.New(b.receipts)
	pinService := pinservice.New(b.accounts, b.resets, directoryService, auditService)
	policyService := policyservice.New(b.policies, directoryService, auditService)
	transferService := transferservice.New(
		b.ledger, directoryService, policyService, receiptService, auditService, config.GatewayAccount)
	escrowService := escrowservice.New(transferService, receiptService, ledgerService, directoryService, auditService,
		map[domain.EscrowKind]string{
			domain.EscrowMarketplace: config.MarketplaceEscrowAccount,
			domain.EscrowTransfer:    config.TransferEscrowAccount,
		})
	disbursementService := disbursementservice.New(transferService, directoryService, auditService)
	feeService := feeservice.New(transferService, directoryService, auditService, feeservice.Split{
		ServiceFee:      config.AdmissionServiceFee,
		PlatformAccount: config.PlatformFeeAccount,
		AgentAccount:    config.AgentFeeAccount,
		PlatformPercent: platformPercent,
	})

	ctx := logger.WithContext(context.Background())
	for id := range config.ReservedAccounts() {
		if _, err := accountService.EnsureReserved(ctx, id, id == config.GatewayAccount); err != nil {
			auditService.Close()
			return nil, fmt.Errorf("cannot bootstrap reserved account %s: %w", id, err)
		}
	}

	accountHandler := accountdelivery.NewHandler(accountService)
	pinHandler := pindelivery.NewHandler(pinService)
	policyHandler := policydelivery.NewHandler(policyService)
	transferHandler := transferdelivery.NewHandler(transferService, pinService)
	feeHandler := feedelivery.NewHandler(disbursementService, feeService, pinService)
	escrowHandler := escrowdelivery.NewHandler(escrowService, pinService)
	receiptHandler := receiptdelivery.NewHandler(receiptService)
	entryHandler := entrydelivery.NewHandler(ledgerService)
	profileHandler := profiledelivery.NewHandler(directoryService)

	if err := RegisterValidators(); err != nil {
		auditService.Close()
		return nil, err
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.GET("/healthz", healthz(conn, config.StoreDriver))

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/accounts/me", accountHandler.Me)
	authRoutes.GET("/accounts/me/statement", accountHandler.Statement)

	authRoutes.PUT("/accounts/me/pin", pinHandler.SetPin)
	authRoutes.POST("/pin-resets", pinHandler.RequestReset)
	authRoutes.POST("/pin-resets/:id/approve", pinHandler.ApproveReset)

	authRoutes.GET("/policies/:account_id", policyHandler.Get)
	authRoutes.PUT("/policies/:account_id", policyHandler.Set)

	authRoutes.POST("/transfers", transferHandler.Transfer)
	authRoutes.POST("/topups", transferHandler.TopUp)
	authRoutes.POST("/withdrawals", transferHandler.Withdraw)

	authRoutes.POST("/disbursements", feeHandler.Disburse)
	authRoutes.POST("/admission-fees", feeHandler.PayAdmissionFee)
	authRoutes.POST("/school-fees", feeHandler.PaySchoolFee)

	authRoutes.POST("/escrows", escrowHandler.Hold)
	authRoutes.POST("/escrows/:receipt_id/status", escrowHandler.Advance)
	authRoutes.POST("/escrows/:receipt_id/release", escrowHandler.Release)
	authRoutes.POST("/escrows/:receipt_id/cancel", escrowHandler.Cancel)

	authRoutes.GET("/receipts", receiptHandler.List)
	authRoutes.GET("/receipts/:id", receiptHandler.Get)

	authRoutes.GET("/entries", entryHandler.ListByOrder)
	authRoutes.POST("/entries/:id/complete", entryHandler.Complete)
	authRoutes.POST("/entries/:id/cancel", entryHandler.Cancel)

	authRoutes.POST("/profiles", profileHandler.Register)

	server := &Server{
		DB:        conn,
		Store:     store,
		Engine:    engine,
		Config:    config,
		Directory: directoryService,
		audit:     auditService,
	}

	return server, nil
}

func healthz(db *sql.DB, driver string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if db != nil {
			if err := db.PingContext(gctx.Request.Context()); err != nil {
				zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Msg("database unreachable")
				gctx.JSON(http.StatusServiceUnavailable, web.Error(err))

				return
			}
		}

		gctx.JSON(http.StatusOK, web.Data(gin.H{"status": "ok", "store": driver}))
	}
}
