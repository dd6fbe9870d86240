package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-campus-grub.git/internal/config"
	"github.com/ariefcatur/go-campus-grub.git/internal/fulfillment"
	kafkax "github.com/ariefcatur/go-campus-grub.git/internal/kafka"
	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/ariefcatur/go-campus-grub.git/internal/redisx"
	"github.com/joho/godotenv"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer: staged confirmations
	pStaged := kafkax.NewProducer(cfg.KafkaBrokers, ledger.TopicOrderStaged, 1024)
	pStaged.Start(ctx)

	// Service
	svc := &fulfillment.Service{
		Redis:          rdb,
		ProducerStaged: pStaged,
		ServiceName:    cfg.ServiceName + "-fulfillment",
	}

	// Consumers: placed & picked_up
	group := getenv("FULFILLMENT_GROUP", "fulfillment-svc")
	workers := mustAtoi(os.Getenv("FULFILLMENT_WORKERS"), "8")
	cPlaced := kafkax.NewConsumer(cfg.KafkaBrokers, group, ledger.TopicOrderPlaced, workers)
	cPicked := kafkax.NewConsumer(cfg.KafkaBrokers, group, ledger.TopicOrderPickedUp, workers)

	go func() {
		log.Printf("fulfillment consumer started: group=%s topic=%s workers=%d", group, ledger.TopicOrderPlaced, workers)
		if err := cPlaced.Start(ctx, svc.HandleOrderPlaced); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()
	go func() {
		log.Printf("fulfillment consumer started: group=%s topic=%s workers=%d", group, ledger.TopicOrderPickedUp, workers)
		if err := cPicked.Start(ctx, svc.HandleOrderPickedUp); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	pStaged.Close()
	pStaged.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
