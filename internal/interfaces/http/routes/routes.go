// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/cart"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/checkout"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/order"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/payment"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/user"
	redisdb "github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/interfaces/http/handlers"
	"github.com/lucascapelli/O-Especialista.Carros/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// Dependencies are the shared clients every route group is built from
type Dependencies struct {
	Config   *config.Config
	Redis    *redisdb.Client
	Platform *platform.Client
	Logger   *logrus.Logger
}

// services are built once and shared by the route groups
type services struct {
	cart     *cart.Service
	payment  *payment.Service
	checkout *checkout.Service
	order    *order.Service
	users    *user.AdminService
}

func newServices(deps Dependencies) *services {
	cartService := cart.NewService(deps.Platform, cart.NewStore(deps.Redis, deps.Config), deps.Config, deps.Logger)
	paymentService := payment.NewService(deps.Platform, payment.NewStore(deps.Redis, deps.Config), deps.Config, deps.Logger)

	return &services{
		cart:    cartService,
		payment: paymentService,
		checkout: checkout.NewService(
			deps.Platform,
			cartService,
			paymentService,
			checkout.NewStore(deps.Redis, deps.Config),
			deps.Config,
			deps.Logger,
		),
		order: order.NewService(deps.Platform, deps.Logger),
		users: user.NewAdminService(deps.Platform, deps.Logger),
	}
}

// setupCartRoutes sets up cart and shipping routes
func setupCartRoutes(rg *gin.RouterGroup, svc *services, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(svc.cart, deps.Config, deps.Logger)

	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("/mount", cartHandler.Mount)
		cartGroup.DELETE("/mount", cartHandler.Unmount)
		cartGroup.POST("/items", cartHandler.AddItem)
		cartGroup.POST("/items/:id/quantity", cartHandler.ChangeQuantity)
		cartGroup.POST("/items/:id/remove", cartHandler.RemoveItem)
		cartGroup.POST("/shipping", cartHandler.EstimateShipping)
		cartGroup.DELETE("/shipping", cartHandler.ClearShipping)
	}
}

// setupCheckoutRoutes sets up checkout and payment dialog routes
func setupCheckoutRoutes(rg *gin.RouterGroup, svc *services, deps Dependencies) {
	checkoutHandler := handlers.NewCheckoutHandler(svc.checkout, deps.Config, deps.Logger)
	paymentHandler := handlers.NewPaymentHandler(svc.payment, deps.Config, deps.Logger)

	rg.POST("/checkout", checkoutHandler.Initiate)

	payments := rg.Group("/payments")
	{
		payments.POST("/:transaction_id/copy", paymentHandler.CopyCode)
		payments.POST("/:transaction_id/approve", paymentHandler.Approve)
		payments.DELETE("/:transaction_id", paymentHandler.Close)
	}
}

// setupOrderRoutes sets up public order routes
func setupOrderRoutes(rg *gin.RouterGroup, svc *services, deps Dependencies) {
	orderHandler := handlers.NewOrderHandler(svc.order, deps.Config)

	orders := rg.Group("/orders")
	{
		orders.GET("/statuses", orderHandler.GetStatuses)
	}
}

// setupAdminRoutes sets up admin routes
func setupAdminRoutes(rg *gin.RouterGroup, svc *services, deps Dependencies) {
	orderHandler := handlers.NewOrderHandler(svc.order, deps.Config)
	userAdminHandler := handlers.NewUserAdminHandler(svc.users, deps.Config)

	admin := rg.Group("/admin")
	admin.Use(middleware.AdminMiddleware(deps.Config, deps.Platform, deps.Logger))
	{
		admin.GET("/orders/:id", orderHandler.GetOrder)
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

		admin.DELETE("/users/:id", userAdminHandler.DeleteUser)
		admin.POST("/users/:id/toggle-status", userAdminHandler.ToggleUserStatus)
	}
}

// SetupRoutes sets up all gateway routes
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	svc := newServices(deps)

	rg.Use(middleware.SessionMiddleware(deps.Config, deps.Logger))

	setupCartRoutes(rg, svc, deps)
	setupCheckoutRoutes(rg, svc, deps)
	setupOrderRoutes(rg, svc, deps)
	setupAdminRoutes(rg, svc, deps)
}
