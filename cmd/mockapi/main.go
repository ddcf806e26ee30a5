package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"project-browser/internal/apitest"
	"project-browser/internal/config"
	"project-browser/internal/infra/logx"
)

func main() {
	addr := flag.String("addr", ":4000", "listen address")
	user := flag.String("seed-user", "", "user id to seed sample projects for (default PB_USER_ID)")
	flag.Parse()

	_ = godotenv.Load()
	logx.SetOutput(os.Stderr)
	logx.SetMinLevel(logx.LevelInfo)

	token := os.Getenv(config.KeyToken)
	seedUser := *user
	if seedUser == "" {
		seedUser = os.Getenv(config.KeyUserID)
	}

	store := apitest.NewStore()
	if seedUser != "" {
		store.Seed(seedUser)
		logx.With(logx.Fields{"user": seedUser}).Infof("seeded sample projects")
	}
	router := apitest.NewRouter(store, token)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down HTTP server: %v", err)
		}
	}()

	fmt.Printf("Mock project API on %s\n", *addr)
	if token == "" {
		fmt.Println("No PB_TOKEN set: requests are not authenticated")
	}
	fmt.Println("Press Ctrl+C to stop the server")

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
	fmt.Println("Server shutdown complete")
}
