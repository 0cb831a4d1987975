package httpserver

import (
	"context"
	"errors"
	"io"
	"slices"
	"time"

	"dutyfree/internal/domain"
	"dutyfree/internal/events"
	"dutyfree/internal/logging"
	cartsvc "dutyfree/internal/service/cart"
	"dutyfree/internal/service/collection"
	contentsvc "dutyfree/internal/service/content"
	ordersvc "dutyfree/internal/service/order"
	productsvc "dutyfree/internal/service/product"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Snapshot(ctx context.Context, id string) (domain.ProductSnapshot, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.CollectionEntry, error)
	DutyFree(ctx context.Context) ([]domain.CollectionEntry, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, productID, imageURL string, primary bool) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, imageID string) error
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Resolve(ctx context.Context, slug string) (domain.Category, error)
}

type cartService interface {
	For(id domain.Identity, guestID string) cartsvc.Store
}

type cartEvents interface {
	Subscribe(owner string) (<-chan events.CartChanged, func())
}

type orderService interface {
	Place(ctx context.Context, id domain.Identity, guestID string, in ordersvc.CheckoutInput) (*domain.Order, error)
	Track(ctx context.Context, orderID, email string) (*domain.Order, error)
	ListMine(ctx context.Context, id domain.Identity) ([]domain.Order, error)
	Cancel(ctx context.Context, id domain.Identity, orderID string) (*domain.Order, error)
	AdminList(ctx context.Context, status string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	UpdateTotal(ctx context.Context, orderID, raw string) (decimal.Decimal, error)
}

// CollectionEditor edits one ordered CMS collection.
type CollectionEditor interface {
	List(ctx context.Context, group string) ([]domain.OrderableItem, error)
	Move(ctx context.Context, itemID string, dir collection.Direction, group string) ([]domain.OrderableItem, error)
	ToggleActive(ctx context.Context, itemID string, current bool) error
	Add(ctx context.Context, in collection.AddInput) (*domain.OrderableItem, error)
	Remove(ctx context.Context, itemID string) error
	Active(ctx context.Context) ([]domain.OrderableItem, error)
}

type wishlistService interface {
	List(ctx context.Context, id domain.Identity) ([]domain.WishlistItem, error)
	Add(ctx context.Context, id domain.Identity, productID string) error
	Remove(ctx context.Context, id domain.Identity, productID string) error
}

type contentService interface {
	List(ctx context.Context) ([]domain.WebsiteContent, error)
	Save(ctx context.Context, section string, c domain.WebsiteContent) (*domain.WebsiteContent, error)
	Delete(ctx context.Context, id string) error
	CreateHeroSection(ctx context.Context, key string) (*domain.WebsiteContent, error)
	Hero(ctx context.Context) (contentsvc.HeroImages, error)
}

type fileService interface {
	List(ctx context.Context) ([]domain.StoredFile, error)
	Upload(ctx context.Context, original, contentType string, body io.Reader, size int64) (*domain.StoredFile, error)
	Delete(ctx context.Context, name string) error
}

type roleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

type tokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

type guestIDs interface {
	Issue() string
	Resolve(raw string) (string, error)
}

// Collection names used in /api/cms/<name> routes.
const (
	CollectionFeatured   = "featured"
	CollectionDutyFree   = "duty-free"
	CollectionBrandLogos = "brand-logos"
	CollectionCatalog    = "products"
)

// Deps groups the services the router dispatches to. FileSvc may be nil
// when no object store is configured.
type Deps struct {
	ProductSvc  productService
	CategorySvc categoryService
	CartSvc     cartService
	CartEvents  cartEvents
	OrderSvc    orderService
	WishlistSvc wishlistService
	ContentSvc  contentService
	FileSvc     fileService
	Roles       roleChecker
	Tokens      tokenVerifier
	Guests      guestIDs
	Collections map[string]CollectionEditor
	CORSOrigins []string
}

func (d Deps) validate() error {
	switch {
	case d.ProductSvc == nil:
		return errors.New("product service required")
	case d.CategorySvc == nil:
		return errors.New("category service required")
	case d.CartSvc == nil:
		return errors.New("cart service required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	case d.WishlistSvc == nil:
		return errors.New("wishlist service required")
	case d.ContentSvc == nil:
		return errors.New("content service required")
	case d.Roles == nil:
		return errors.New("role checker required")
	case d.Tokens == nil:
		return errors.New("token verifier required")
	case d.Guests == nil:
		return errors.New("guest id issuer required")
	}
	for _, name := range []string{CollectionFeatured, CollectionDutyFree, CollectionBrandLogos, CollectionCatalog} {
		if d.Collections[name] == nil {
			return errors.New("collection editor required: " + name)
		}
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)

	router := gin.New()
	router.Use(logging.RequestID(), logging.GinMiddleware(logger), logging.Recovery(logger))
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.Use(identityMiddleware(deps.Tokens), guestMiddleware(deps.Guests))

	h := &handlers{deps: deps, upgrader: newUpgrader()}

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/search", h.search)
	api.GET("/categories", h.listCategories)
	api.GET("/categories/:slug", h.getCategory)
	api.GET("/featured", h.featured)
	api.GET("/duty-free", h.dutyFree)
	api.GET("/brand-logos", h.brandLogos)
	api.GET("/content", h.listContent)
	api.GET("/content/hero", h.hero)

	cart := api.Group("/cart")
	cart.GET("", h.getCart)
	cart.GET("/count", h.cartCount)
	cart.POST("/items", h.addCartItem)
	cart.PATCH("/items/:id", h.updateCartItem)
	cart.DELETE("/items/:id", h.removeCartItem)
	cart.DELETE("", h.clearCart)
	cart.GET("/events", h.cartEvents)

	api.POST("/checkout", h.checkout)
	api.GET("/orders/:id/track", h.trackOrder)

	authed := api.Group("", requireAuth())
	authed.GET("/orders", h.myOrders)
	authed.POST("/orders/:id/cancel", h.cancelOrder)
	authed.GET("/wishlist", h.listWishlist)
	authed.POST("/wishlist", h.addWishlist)
	authed.DELETE("/wishlist/:productId", h.removeWishlist)

	cms := api.Group("/cms", requireAuth(), requireAdmin(deps.Roles))
	for _, name := range []string{CollectionFeatured, CollectionDutyFree, CollectionBrandLogos} {
		registerCollection(cms.Group("/"+name), deps.Collections[name], name == CollectionBrandLogos)
	}

	products := cms.Group("/products")
	products.GET("", h.cmsListProducts)
	products.GET("/export", h.exportProducts)
	products.POST("", h.createProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)
	products.POST("/:id/move", moveItem(deps.Collections[CollectionCatalog]))
	products.POST("/:id/toggle", toggleItem(deps.Collections[CollectionCatalog]))
	products.POST("/:id/images", h.addProductImage)
	products.DELETE("/images/:imageId", h.deleteProductImage)

	orders := cms.Group("/orders")
	orders.GET("", h.cmsListOrders)
	orders.GET("/export", h.exportOrders)
	orders.PATCH("/:id/status", h.updateOrderStatus)
	orders.PATCH("/:id/total", h.updateOrderTotal)

	content := cms.Group("/content")
	content.GET("", h.listContent)
	content.PUT("/:section", h.saveContent)
	content.DELETE("/:id", h.deleteContent)
	content.POST("/hero/:section", h.createHeroSection)

	files := cms.Group("/files")
	files.GET("", h.listFiles)
	files.POST("", h.uploadFile)
	files.DELETE("/:name", h.deleteFile)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", guestHeader, "X-Request-ID"},
		ExposeHeaders:    []string{guestHeader, "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps     Deps
	upgrader websocket.Upgrader
}
