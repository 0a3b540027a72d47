package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/homeshopping/homeshopping-backend/api/controllers"
	"github.com/homeshopping/homeshopping-backend/api/middleware"
	"github.com/homeshopping/homeshopping-backend/internal/auth"
	"github.com/homeshopping/homeshopping-backend/internal/basket"
	"github.com/homeshopping/homeshopping-backend/internal/checkout"
	"github.com/homeshopping/homeshopping-backend/internal/orders"
	product "github.com/homeshopping/homeshopping-backend/internal/products"
	"github.com/homeshopping/homeshopping-backend/internal/users"
	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
	"github.com/homeshopping/homeshopping-backend/pkg/metrics"
	pkgredis "github.com/homeshopping/homeshopping-backend/pkg/redis"
)

// Deps is everything the router wires into handlers. Idempotency and
// RateLimiter may be nil, which disables those middlewares.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Readiness   map[string]controllers.Pinger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Idempotency pkgredis.IdempotencyStore
	RateLimiter middleware.WindowLimiter

	Resolver middleware.BasketResolver
	Baskets  basket.Service
	Checkout checkout.Service
	Products product.Service
	Orders   orders.Service
	Auth     auth.Service
	Users    users.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Readiness))
	})
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Registry))
	}

	idempotent := middleware.Idempotency(d.Idempotency, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(idempotent).Post("/register", controllers.AuthRegister(d.Auth, logg))
			r.With(middleware.RateLimitByIP("login", cfg.AuthRateLimit.LoginIPLimit, cfg.AuthRateLimit.LoginWindow, d.RateLimiter, logg)).
				Post("/login", controllers.AuthLogin(d.Auth, logg))
		})
		r.With(middleware.RequireAuth(logg)).Get("/users/me", controllers.Me(d.Users, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(d.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(d.Products, logg))
			r.Get("/{productID}/stock-records", controllers.ListStockRecords(d.Products, logg))
			r.Get("/{productID}/stock-records/{stockRecordID}", controllers.GetStockRecord(d.Products, logg))
		})
		r.Get("/categories", controllers.ListCategories(d.Products, logg))
		r.Get("/categories/{categoryID}", controllers.GetCategory(d.Products, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Post("/products", controllers.AdminCreateProduct(d.Products, logg))
			r.Patch("/products/{productID}", controllers.AdminUpdateProduct(d.Products, logg))
			r.Post("/categories", controllers.AdminCreateCategory(d.Products, logg))
			r.Get("/product-classes", controllers.AdminListProductClasses(d.Products, logg))
			r.Post("/product-classes", controllers.AdminCreateProductClass(d.Products, logg))
			r.Post("/product-classes/{classID}/attributes", controllers.AdminCreateAttribute(d.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))
			r.Get("/", controllers.ListOrders(d.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(d.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.BasketIdentity(d.Resolver, cfg.Basket, logg))

			r.Get("/basket", controllers.CurrentBasket(d.Baskets, logg))
			r.Post("/basket/add-product", controllers.AddProductToBasket(d.Baskets, logg))
			r.Get("/baskets", controllers.ListBaskets(d.Baskets, logg))
			r.Route("/baskets/{basketID}", func(r chi.Router) {
				r.Get("/", controllers.GetBasket(d.Baskets, logg))
				r.Get("/lines", controllers.GetBasketLines(d.Baskets, logg))
				r.Get("/lines/{lineID}", controllers.GetBasketLine(d.Baskets, logg))
				r.Patch("/lines/{lineID}", controllers.UpdateBasketLine(d.Baskets, logg))
				r.Delete("/lines/{lineID}", controllers.DeleteBasketLine(d.Baskets, logg))
			})
			r.With(idempotent).Post("/checkout", controllers.Checkout(d.Checkout, logg))
		})
	})

	return r
}
