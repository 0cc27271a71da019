package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/beautyshop/backend/internal/config"
	"github.com/beautyshop/backend/internal/es"
	"github.com/beautyshop/backend/internal/handlers"
	"github.com/beautyshop/backend/internal/handlers/cart"
	"github.com/beautyshop/backend/internal/handlers/order"
	"github.com/beautyshop/backend/internal/httpserver"
	"github.com/beautyshop/backend/internal/logging"
	"github.com/beautyshop/backend/internal/mail"
	authmw "github.com/beautyshop/backend/internal/middleware/auth"
	loggingmw "github.com/beautyshop/backend/internal/middleware/logging"
	"github.com/beautyshop/backend/internal/mykafka"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Info("kafka brokers not configured, domain events disabled")
	}

	var sender mail.Sender
	if cfg.SMTPHost != "" {
		smtpSender, err := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		if err != nil {
			log.Fatal(err)
		}
		sender = smtpSender
	} else {
		logger.Info("smtp not configured, outbound mail disabled")
	}
	mailer := mail.NewMailer(sender, logger)

	productHandler := handlers.ProductHandler{DB: db, Producer: prod, Index: "products"}
	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg)
		if err != nil {
			log.Fatal(err)
		}
		productHandler.ES = client
	} else {
		logger.Info("elasticsearch not configured, product search disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	mw := &authmw.Middleware{DB: db, JWTSecret: cfg.JWTSecret}
	deps := httpserver.Deps{
		Auth:            mw,
		AuthHandler:     &handlers.AuthHandler{DB: db, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL, Producer: prod, Mailer: mailer},
		UserHandler:     &handlers.UserHandler{DB: db, Producer: prod, Mailer: mailer},
		ProductHandler:  &productHandler,
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		CartHandler:     &cart.CartHandler{DB: db, Producer: prod},
		OrderHandler:    &order.OrderHandler{DB: db, Producer: prod, Mailer: mailer},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	mailer.Close()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
