package httpserver

import (
	"context"
	"errors"
	"log"

	"craftmarket/internal/domain"
	"craftmarket/internal/service/auth"
	cartsvc "craftmarket/internal/service/cart"
	categorysvc "craftmarket/internal/service/category"
	ordersvc "craftmarket/internal/service/order"
	productsvc "craftmarket/internal/service/product"
	"craftmarket/internal/service/upload"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthService is the surface the HTTP layer needs from the auth service.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*domain.User, auth.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyAccess(token string) (domain.UserRef, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	AccessTTLSeconds() int
	RefreshTTLSeconds() int
}

type CartService interface {
	Get(ctx context.Context, ident domain.Identity) (*domain.Cart, error)
	Add(ctx context.Context, ident domain.Identity, in cartsvc.AddInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, ident domain.Identity, key domain.VariantKey, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, ident domain.Identity, key domain.VariantKey) (*domain.Cart, error)
	Clear(ctx context.Context, ident domain.Identity) error
	Merge(ctx context.Context, userID, guestID string) (*domain.Cart, error)
}

type OrderService interface {
	Place(ctx context.Context, ident domain.Identity, in ordersvc.PlaceInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByContact(ctx context.Context, email, phone string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
}

type ProductService interface {
	List(ctx context.Context, categoryID string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Propose(ctx context.Context, proposerID string, in productsvc.CreateInput) (*domain.Product, error)
	Review(ctx context.Context, reviewerID, productID, status string, priceCents *int64) (*domain.Product, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

type CategoryService interface {
	Create(ctx context.Context, name, description string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	Update(ctx context.Context, id string, in categorysvc.UpdateInput) (*domain.Category, error)
	SoftDelete(ctx context.Context, id string) (*domain.Category, error)
	HardDelete(ctx context.Context, id string) error
}

// UserStore is the admin-facing slice of the user repository.
type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type PaymentStore interface {
	Create(ctx context.Context, p domain.Payment) (*domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Auth       AuthService
	Carts      CartService
	Orders     OrderService
	Products   ProductService
	Categories CategoryService
	Users      UserStore
	Payments   PaymentStore
	Uploads    upload.Sink
	MediaDir   string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.Auth == nil || deps.Carts == nil || deps.Orders == nil || deps.Products == nil || deps.Categories == nil {
		return nil, errors.New("missing dependencies")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.MediaDir != "" {
		router.Static("/media", deps.MediaDir)
	}

	soft := identify(deps.Auth, opts)
	hard := requireAuth(deps.Auth, opts)
	admin := requireAdmin()

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", registerHandler(logger, deps, opts))
	authGroup.POST("/login", loginHandler(logger, deps, opts))
	authGroup.POST("/refresh", refreshHandler(deps, opts))
	authGroup.POST("/logout", logoutHandler(deps, opts))

	users := api.Group("/users", hard)
	users.GET("/profile", profileHandler(deps))
	users.GET("/clients", admin, listUsersHandler(deps))
	users.PUT("/:id", admin, updateUserStatusHandler(deps))
	users.DELETE("/:id", admin, deleteUserHandler(deps))

	products := api.Group("/products")
	products.GET("", listProductsHandler(deps))
	products.GET("/search", searchHandler(deps))
	products.GET("/:id", getProductHandler(deps))
	products.POST("", hard, admin, createProductHandler(deps))
	products.PUT("/:id", hard, admin, updateProductHandler(deps))
	products.DELETE("/:id", hard, admin, deleteProductHandler(deps))
	products.POST("/propose", hard, proposeProductHandler(deps))
	products.PUT("/:id/review", hard, admin, reviewProductHandler(deps))

	api.GET("/search", searchHandler(deps))

	cart := api.Group("/cart", soft)
	cart.GET("", getCartHandler(logger, deps))
	cart.POST("", addToCartHandler(logger, deps))
	cart.PUT("", updateCartLineHandler(deps))
	cart.DELETE("", removeFromCartHandler(deps))
	cart.DELETE("/clear", clearCartHandler(deps))

	orders := api.Group("/orders")
	orders.POST("", soft, createOrderHandler(deps))
	orders.GET("", hard, admin, listOrdersHandler(deps))
	orders.GET("/contact", hard, admin, ordersByContactHandler(deps))
	orders.GET("/buyer", hard, buyerOrdersHandler(deps))
	orders.GET("/:orderId", hard, getOrderHandler(deps))
	orders.PUT("/:orderId/status", hard, admin, updateOrderStatusHandler(deps))
	orders.DELETE("/:orderId/cancel", hard, admin, cancelOrderHandler(deps))

	categories := api.Group("/categories")
	categories.GET("", listCategoriesHandler(deps, false))
	categories.GET("/active", listCategoriesHandler(deps, true))
	categories.POST("", hard, admin, createCategoryHandler(deps))
	categories.PUT("/:categoryId", hard, admin, updateCategoryHandler(deps))
	categories.DELETE("/:categoryId", hard, admin, softDeleteCategoryHandler(deps))
	categories.DELETE("/:categoryId/permanent", hard, admin, hardDeleteCategoryHandler(deps))

	payments := api.Group("/payments", hard, admin)
	payments.GET("", listPaymentsHandler(deps))
	payments.POST("", createPaymentHandler(deps))

	api.POST("/upload", hard, uploadHandler(deps))

	return router, nil
}
