package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"craftmarket/internal/config"
	"craftmarket/internal/db"
	"craftmarket/internal/httpserver"
	cartrepo "craftmarket/internal/repository/cart"
	categoryrepo "craftmarket/internal/repository/category"
	orderrepo "craftmarket/internal/repository/order"
	paymentrepo "craftmarket/internal/repository/payment"
	productrepo "craftmarket/internal/repository/product"
	userrepo "craftmarket/internal/repository/user"
	authsvc "craftmarket/internal/service/auth"
	cartsvc "craftmarket/internal/service/cart"
	categorysvc "craftmarket/internal/service/category"
	ordersvc "craftmarket/internal/service/order"
	productsvc "craftmarket/internal/service/product"
	"craftmarket/internal/service/upload"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	userRepo := userrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	paymentRepo := paymentrepo.NewPostgres(dbpool)

	authService := authsvc.New(userRepo, authsvc.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	productService := productsvc.New(productRepo, categoryRepo)
	categoryService := categorysvc.New(categoryRepo, productRepo)
	cartService := cartsvc.New(cartRepo, productRepo)
	orderService := ordersvc.New(orderRepo)

	sink, err := upload.NewDiskSink(cfg.MediaDir, cfg.FileURLHost)
	if err != nil {
		logger.Fatalf("init media dir: %v", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Auth:       authService,
		Carts:      cartService,
		Orders:     orderService,
		Products:   productService,
		Categories: categoryService,
		Users:      userRepo,
		Payments:   paymentRepo,
		Uploads:    sink,
		MediaDir:   cfg.MediaDir,
	}, httpserver.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		CrossSiteCookies: cfg.CrossSiteCookies,
		GuestTTL:         cfg.GuestTTL,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
