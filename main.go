package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-hub/infrastructure/blob"
	"agent-hub/infrastructure/cache"
	engineclient "agent-hub/infrastructure/clients/engine"
	storeapiclient "agent-hub/infrastructure/clients/storeapi"
	twilioclient "agent-hub/infrastructure/clients/twilio"
	unipileclient "agent-hub/infrastructure/clients/unipile"
	"agent-hub/infrastructure/configuration"
	"agent-hub/infrastructure/logger"
	"agent-hub/infrastructure/mailbox"
	"agent-hub/infrastructure/persistence"
	httpHandler "agent-hub/interfaces/http"
	"agent-hub/server"
	"agent-hub/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	app := configuration.C.App

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	if err := persistence.EnsureSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring database schema")
		os.Exit(1)
	}
	logger.GetLogger().WithField("PSQLDb", db.Ping()).Info("Database connected.")

	redisClient, err := cache.NewRedisClient()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to Redis")
		os.Exit(1)
	}
	logger.GetLogger().Info("Redis client initialized successfully.")

	cipher, err := persistence.NewCipher(configuration.C.Security.EncryptionKey)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Credential encryption disabled - ENCRYPTION_KEY missing or invalid")
	}

	blobStore, err := blob.NewFSStore(configuration.C.Storage.VideoDir)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot prepare video storage directory")
		os.Exit(1)
	}

	// Repositories
	whatsAppConfigRepository := persistence.NewWhatsAppConfigRepository(db, cipher)
	instagramConfigRepository := persistence.NewInstagramConfigRepository(db, cipher)
	emailConfigRepository := persistence.NewEmailConfigRepository(db, cipher)
	conversationRepository := persistence.NewConversationLogRepository(db)
	leadRepository := persistence.NewLeadRepository(db)
	leadConfigRepository := persistence.NewLeadConfigRepository(db)
	agentRepository := persistence.NewAgentRepository(db)
	videoJobRepository := persistence.NewVideoJobRepository(db)
	forwardQueueRepository := persistence.NewForwardQueueRepository(db)

	dedupCache := cache.NewDedupCache(redisClient)
	catalogCache := cache.NewCatalogCache(redisClient)

	// Outbound clients
	engineClient := engineclient.NewEngineClient()
	storeAPIClient := storeapiclient.NewStoreAPIClient(catalogCache)
	unipileClient := unipileclient.NewUnipileClient()
	twilioProvisioner := twilioclient.NewTwilioClient()
	imapMailbox := mailbox.NewIMAPMailbox()
	smtpSender := mailbox.NewSMTPSender()

	dispatch := configuration.C.Dispatch

	// Usecases
	whatsAppUsecase := usecase.NewWhatsAppUsecase(
		whatsAppConfigRepository,
		conversationRepository,
		engineClient,
		storeAPIClient,
		dedupCache,
		time.Duration(dispatch.DedupTTLSeconds)*time.Second,
	)
	instagramUsecase := usecase.NewInstagramUsecase(
		instagramConfigRepository,
		forwardQueueRepository,
		conversationRepository,
		dedupCache,
		engineClient,
		unipileClient,
		time.Duration(dispatch.DedupTTLSeconds)*time.Second,
		time.Duration(dispatch.StalenessSeconds)*time.Second,
		dispatch.ForwardBatchSize,
	)
	emailUsecase := usecase.NewEmailUsecase(emailConfigRepository, conversationRepository, imapMailbox, smtpSender, engineClient)
	agentUsecase := usecase.NewAgentUsecase(agentRepository, engineClient, configuration.C.App.PublicURL+"/api/leads/ingest")
	leadUsecase := usecase.NewLeadUsecase(leadRepository, leadConfigRepository, agentRepository)
	videoUsecase := usecase.NewVideoUsecase(videoJobRepository, engineClient, blobStore, configuration.C.Google.APIKey)
	provisioningUsecase := usecase.NewProvisioningUsecase(whatsAppConfigRepository, twilioProvisioner, configuration.C.App.Env)

	// Handlers
	whatsAppHandler := httpHandler.NewWhatsAppHandler(whatsAppUsecase)
	instagramHandler := httpHandler.NewInstagramHandler(instagramUsecase)
	emailHandler := httpHandler.NewEmailHandler(emailUsecase)
	agentHandler := httpHandler.NewAgentHandler(agentUsecase)
	leadHandler := httpHandler.NewLeadHandler(leadUsecase)
	videoHandler := httpHandler.NewVideoHandler(videoUsecase)
	provisioningHandler := httpHandler.NewProvisioningHandler(provisioningUsecase)

	router := server.InitiateRouter(whatsAppHandler, instagramHandler, emailHandler, agentHandler, leadHandler, videoHandler, provisioningHandler)

	// Background forward dispatcher (simple ticker loop)
	forwardInterval := time.Duration(dispatch.ForwardIntervalSecs) * time.Second
	g.Go(func() error {
		ticker := time.NewTicker(forwardInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				procCtx, cancelProc := context.WithTimeout(ctx, forwardInterval)
				claimed, err := instagramUsecase.ProcessForwardJobs(procCtx)
				cancelProc()
				if err != nil {
					logger.GetLogger().WithField("error", err).Error("Forward dispatch pass failed")
				} else if claimed > 0 {
					logger.GetLogger().WithField("claimed", claimed).Info("Forward dispatch pass completed")
				}
			}
		}
	})

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  0,
			WriteTimeout: 0,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
