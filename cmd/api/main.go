package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-campus-grub.git/internal/config"
	"github.com/ariefcatur/go-campus-grub.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-campus-grub.git/internal/kafka"
	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/ariefcatur/go-campus-grub.git/internal/postgres"
	"github.com/ariefcatur/go-campus-grub.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: placed & picked_up
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, ledger.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pPicked := kafkax.NewProducer(cfg.KafkaBrokers, ledger.TopicOrderPickedUp, 1024)
	pPicked.Start(ctx)

	// Repos & handlers
	offerings := &ledger.OfferingRepo{DB: db}
	users := &ledger.UserRepo{DB: db}
	orders := &ledger.OrderRepo{DB: db}
	purchase := &ledger.PurchaseRepo{DB: db}

	router := httpx.NewRouter()
	sf := &httpx.StorefrontHandler{
		Offerings: offerings,
		Users:     users,
		Orders:    orders,
		Purchaser: purchase,
		Producer:  pPlaced,
		Redis:     rdb,
		Service:   cfg.ServiceName,
	}
	sf.Register(router)
	ch := &httpx.CatererHandler{
		Offerings: offerings,
		Orders:    orders,
		Producer:  pPicked,
		Redis:     rdb,
		Service:   cfg.ServiceName,
	}
	ch.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close() // close inbox -> flush & close writer
	pPicked.Close()
	pPlaced.WaitClosed()
	pPicked.WaitClosed()
}
