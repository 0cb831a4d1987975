package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dutyfree/internal/auth"
	"dutyfree/internal/config"
	"dutyfree/internal/db"
	"dutyfree/internal/events"
	"dutyfree/internal/httpserver"
	"dutyfree/internal/logging"
	"dutyfree/internal/mail"
	cartrepo "dutyfree/internal/repository/cart"
	categoryrepo "dutyfree/internal/repository/category"
	contentrepo "dutyfree/internal/repository/content"
	orderrepo "dutyfree/internal/repository/order"
	"dutyfree/internal/repository/ordered"
	productrepo "dutyfree/internal/repository/product"
	rolerepo "dutyfree/internal/repository/role"
	wishlistrepo "dutyfree/internal/repository/wishlist"
	anonymoussvc "dutyfree/internal/service/anonymous"
	cartsvc "dutyfree/internal/service/cart"
	categorysvc "dutyfree/internal/service/category"
	"dutyfree/internal/service/collection"
	contentsvc "dutyfree/internal/service/content"
	filessvc "dutyfree/internal/service/files"
	ordersvc "dutyfree/internal/service/order"
	productsvc "dutyfree/internal/service/product"
	wishlistsvc "dutyfree/internal/service/wishlist"
	"dutyfree/internal/storage/blob"
	"dutyfree/internal/storage/objects"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format).Named("api")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	blobs, err := guestCartStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init guest cart store", zap.Error(err))
	}

	notifier := events.NewNotifier()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool), blobs, notifier, logger)

	var sender mail.Sender = mail.Nop{Logger: logger}
	if cfg.Mail.SendGridKey != "" {
		sender = mail.NewSendGrid(cfg.Mail.SendGridKey, cfg.Mail.FromAddress, cfg.Mail.FromName, logger)
	}
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), cartService, sender, logger)

	deps := httpserver.Deps{
		ProductSvc:  productService,
		CategorySvc: categoryService,
		CartSvc:     cartService,
		CartEvents:  notifier,
		OrderSvc:    orderService,
		WishlistSvc: wishlistsvc.New(wishlistrepo.NewPostgres(dbpool)),
		ContentSvc:  contentsvc.New(contentrepo.NewPostgres(dbpool)),
		Roles:       rolerepo.NewPostgres(dbpool),
		Tokens:      auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		Guests:      anonymoussvc.New(),
		Collections: collections(dbpool, cfg, logger),
		CORSOrigins: cfg.CORSOrigins,
	}
	files, err := fileManager(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init file storage", zap.Error(err))
	}
	if files != nil {
		deps.FileSvc = files
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func guestCartStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (blob.Store, error) {
	if cfg.GuestCartBackend == "memory" {
		logger.Info("guest carts kept in memory", zap.Int("quota_bytes", cfg.GuestCartQuota))
		return blob.NewMemory(cfg.GuestCartQuota), nil
	}
	client, err := blob.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	return blob.NewRedis(client, ""), nil
}

// fileManager returns nil when no storage endpoint is configured; the CMS
// file routes then answer 503.
func fileManager(ctx context.Context, cfg config.Config, logger *zap.Logger) (*filessvc.Service, error) {
	if cfg.Storage.Endpoint == "" && cfg.Storage.AccessKey == "" {
		logger.Warn("file storage not configured")
		return nil, nil
	}
	bucket, err := objects.NewS3(ctx, objects.S3Config{
		Endpoint:   cfg.Storage.Endpoint,
		Region:     cfg.Storage.Region,
		Bucket:     cfg.Storage.Bucket,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		PublicBase: cfg.Storage.PublicBase,
		PathStyle:  cfg.Storage.PathStyle,
	}, objects.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := bucket.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return filessvc.New(bucket, logger), nil
}

func collections(pool *pgxpool.Pool, cfg config.Config, logger *zap.Logger) map[string]httpserver.CollectionEditor {
	editor := func(t ordered.Table) httpserver.CollectionEditor {
		return collection.New(
			ordered.NewPostgres(pool, t, logger),
			t,
			collection.WithAtomicSwap(cfg.AtomicSwap),
			collection.WithLogger(logger),
		)
	}
	return map[string]httpserver.CollectionEditor{
		httpserver.CollectionFeatured:   editor(ordered.Featured),
		httpserver.CollectionDutyFree:   editor(ordered.DutyFree),
		httpserver.CollectionBrandLogos: editor(ordered.BrandLogos),
		httpserver.CollectionCatalog:    editor(ordered.Catalog),
	}
}
