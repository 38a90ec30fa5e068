package router

import (
	"time"

	"retailpos/internal/config"
	"retailpos/internal/handler"
	"retailpos/internal/middleware"
	"retailpos/internal/repository"
	"retailpos/internal/service"
	"retailpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	kitRepo := repository.NewKitRepository(db)
	promoRepo := repository.NewPromotionRepository(db)
	shiftRepo := repository.NewShiftRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	saleSvc := service.NewSaleService(saleRepo, productRepo, customerRepo, kitRepo,
		promoRepo, voucherRepo, shiftRepo, dispatcher, cfg.StoreID)
	returnSvc := service.NewReturnService(saleRepo, returnRepo, voucherRepo,
		productRepo, kitRepo, promoRepo, cfg.StoreID,
		time.Duration(cfg.CancellationWindowMinutes)*time.Minute)
	shiftSvc := service.NewShiftService(shiftRepo, customerRepo, cfg.StoreID, decimal.NewFromFloat(cfg.MaxCashLimit))

	// ── Handlers ─────────────────────────────────────────────────────────────
	salesH := handler.NewSalesHandler(saleSvc)
	returnsH := handler.NewReturnsHandler(returnSvc)
	shiftsH := handler.NewShiftsHandler(shiftSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(middleware.RoleCashier, middleware.RoleSupervisor, middleware.RoleAdmin)
	elevated := middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/sales", anyRole, salesH.CommitSale)
		v1.GET("/sales", anyRole, salesH.ListSales)
		v1.GET("/sales/:id", anyRole, salesH.GetSale)
		v1.GET("/sales/:id/returns", anyRole, returnsH.GetSaleReturns)

		// Returns move money back out of the drawer — supervisor and up
		v1.POST("/returns", elevated, returnsH.ProcessReturn)

		shifts := v1.Group("/shifts")
		{
			shifts.POST("", anyRole, shiftsH.OpenShift)
			shifts.GET("/active", anyRole, shiftsH.ActiveShift)
			shifts.POST("/:id/close", anyRole, shiftsH.CloseShift)
			shifts.POST("/:id/movements", anyRole, shiftsH.RegisterMovement)
			shifts.POST("/debt-payments", anyRole, shiftsH.RegisterDebtPayment)
			shifts.GET("/:id/totals", elevated, shiftsH.ShiftTotals)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
