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

	"github.com/oetzilabs/ciftlikpdf/internal/config"
	"github.com/oetzilabs/ciftlikpdf/internal/database"
	"github.com/oetzilabs/ciftlikpdf/internal/pdfconv"
	"github.com/oetzilabs/ciftlikpdf/internal/router"
	"github.com/oetzilabs/ciftlikpdf/internal/storage"
	"github.com/oetzilabs/ciftlikpdf/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	// load configuration
	cfg, err := config.Load(os.Getenv("CIF_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// object store and converter client
	ctx := context.Background()
	objects, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("init object store: %v", err)
	}
	converter := pdfconv.NewClient(cfg.PDF.ServiceURL,
		time.Duration(cfg.PDF.TimeoutSeconds)*time.Second)

	// request bodies must match their declared shape exactly
	gin.EnableJsonDecoderDisallowUnknownFields()

	r := router.Setup(cfg, db, objects, converter)

	// sweep expired and revoked sessions, at startup and then hourly
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go func() {
		sessions := store.NewSessionStore(db)
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			if n, err := sessions.DeleteExpired(); err != nil {
				log.Printf("session cleanup: %v", err)
			} else if n > 0 {
				log.Printf("session cleanup: removed %d stale sessions", n)
			}
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("server stopped")
}
