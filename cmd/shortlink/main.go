package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/mbocharov/go-shortlink/internal/app/server"
	"github.com/mbocharov/go-shortlink/internal/app/service"
	"github.com/mbocharov/go-shortlink/internal/config"
	"github.com/mbocharov/go-shortlink/internal/logger"
	"github.com/mbocharov/go-shortlink/internal/repository"
	"github.com/mbocharov/go-shortlink/internal/storage"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	log := logger.New()
	defer func() {
		_ = log.Log.Sync()
	}()

	if err := log.Init(options.LogLevel); err != nil {
		panic(err)
	}
	zapLogger := log.Log

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	var s service.Storage

	if options.DatabaseDSN != "" {
		zapLogger.Info("using postgres storage")
		db := repository.InitDB(options.DatabaseDSN, zapLogger)
		defer db.Close()
		s = repository.CreateLinkRepository(db, zapLogger)
		zapLogger.Info("Database connected and table ready.")
	} else {
		zapLogger.Info("using in memory storage")

		var err error
		s, err = storage.CreateMemoryStorage()
		if err != nil {
			panic(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	allocator := service.NewSlugAllocator(s, zapLogger)
	linkService := service.NewLink(ctx, s, allocator, zapLogger)
	summaryService := service.NewSummary(s, zapLogger)
	auth := service.NewAuth(options.JWTSecret)

	r := server.Init(zapLogger, linkService, summaryService, auth)

	if options.EnableHTTPS {
		manager := &autocert.Manager{
			Cache:      autocert.DirCache("cache-dir"),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(strings.Split(options.TLSHosts, ",")...),
		}
		srv := &http.Server{
			Addr:      ":443",
			Handler:   r,
			TLSConfig: manager.TLSConfig(),
		}
		zapLogger.Info("Server is running with TLS", zap.String("hostname", options.Port))
		if err := srv.ListenAndServeTLS("", ""); err != nil {
			panic(err)
		}
	} else {
		zapLogger.Info("Server is running", zap.String("hostname", options.Port))
		if err := http.ListenAndServe(options.Port, r); err != nil {
			panic(err)
		}
	}
}
