package router

import (
	"github.com/gin-gonic/gin"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/config"
	"github.com/psim/backend/internal/infrastructure/logger"
	"github.com/psim/backend/internal/interfaces/http/handler"
	"github.com/psim/backend/internal/interfaces/http/middleware"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups every handler the API mounts
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Stock    *handler.StockHandler
	HQ       *handler.VoucherHandler
	District *handler.VoucherHandler
	Loans    *handler.LoanHandler
	Health   *handler.HealthHandler
}

// Options configures the middleware chain
type Options struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	// Meter records HTTP server metrics; nil turns them off
	Meter  metric.Meter
	Logger *zap.Logger
	// RateLimiter is nil when rate limiting is disabled
	RateLimiter       *limiter.Limiter
	Idempotency       shared.IdempotencyStore
	IdempotencyConfig shared.IdempotencyConfig
}

// NewEngine builds the gin engine with the middleware chain, the probes and
// every /api/v1 route.
func NewEngine(h Handlers, opts Options) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	httpMetrics, err := middleware.HTTPMetrics(opts.Meter)
	if err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		httpMetrics,
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(opts.HTTP),
	)
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}
	engine.Use(
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
		middleware.Identity(),
		middleware.TraceAttributes(),
		middleware.Idempotency(opts.Idempotency, opts.IdempotencyConfig),
	)

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
		engine.GET("/ready", h.Health.Ready)
	}

	NewRouter(engine).Register(APIGroups(h)...).Setup()
	return engine, nil
}

// APIGroups returns the route groups mounted under /api/v1
func APIGroups(h Handlers) []RouteRegistrar {
	var groups []RouteRegistrar
	if h.Catalog != nil {
		groups = append(groups, catalogRoutes(h.Catalog))
	}
	if h.Stock != nil {
		groups = append(groups, stockRoutes(h.Stock), movementRoutes(h.Stock))
	}
	if h.HQ != nil {
		groups = append(groups, voucherRoutes("hq", "/hq", h.HQ))
	}
	if h.District != nil {
		groups = append(groups, voucherRoutes("district", "/district", h.District))
	}
	if h.Loans != nil {
		groups = append(groups, loanRoutes(h.Loans))
	}
	return groups
}

func catalogRoutes(h *handler.CatalogHandler) *DomainGroup {
	g := NewDomainGroup("catalog", "/catalog")
	g.Group("ledgers", "/ledgers").
		POST("", h.CreateLedger).
		GET("", h.ListLedgers).
		GET("/:id", h.GetLedger).
		GET("/:id/next-item-code", h.NextItemCode)
	g.Group("items", "/items").
		POST("", h.CreateItem).
		GET("", h.ListItems).
		GET("/:id", h.GetItem).
		PUT("/:id", h.UpdateItem)
	g.Group("districts", "/districts").
		POST("", h.CreateDistrict).
		GET("", h.ListDistricts).
		GET("/:id", h.GetDistrict)
	g.Group("metrics", "/metrics").
		POST("", h.CreateMetric).
		GET("", h.ListMetrics)
	g.Group("staff", "/staff").
		POST("", h.RegisterStaff).
		GET("", h.ListStaff).
		GET("/:gno", h.GetStaff)
	return g
}

func stockRoutes(h *handler.StockHandler) *DomainGroup {
	g := NewDomainGroup("stock", "/stock")
	g.Group("hq", "/hq").
		POST("", h.AddHQStock).
		GET("", h.ListHQStock).
		GET("/low", h.LowHQStock).
		GET("/valuation", h.HQValuation).
		GET("/:item_id", h.GetHQStock).
		PUT("/:item_id/threshold", h.SetHQThreshold)
	g.Group("districts", "/districts").
		POST("", h.AddDistrictStock).
		GET("/low", h.LowDistrictStock).
		GET("/:district_id", h.ListDistrictStock).
		GET("/:district_id/items/:item_id", h.GetDistrictStock)
	return g
}

func movementRoutes(h *handler.StockHandler) *DomainGroup {
	return NewDomainGroup("movements", "/items").
		GET("/:item_id/movements", h.ItemMovements)
}

func voucherRoutes(name, prefix string, h *handler.VoucherHandler) *DomainGroup {
	g := NewDomainGroup(name, prefix)
	g.Group("issuances", "/issuances").
		POST("", h.CreateIssuance).
		GET("", h.ListIssuances).
		GET("/:id", h.GetIssuance).
		GET("/:id/outstanding", h.Outstanding)
	g.Group("returns", "/returns").
		POST("", h.CreateReturn).
		GET("", h.ListReturns).
		GET("/:id", h.GetReturn)
	return g
}

func loanRoutes(h *handler.LoanHandler) *DomainGroup {
	return NewDomainGroup("loans", "/loans").
		POST("", h.LoanOut).
		GET("", h.ListLoans).
		GET("/overdue", h.ListOverdue).
		GET("/:id", h.GetLoan).
		POST("/:id/return", h.ReturnLoan)
}
