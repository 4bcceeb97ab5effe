package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/a-manpathan/kata-frontend/config"
	"github.com/a-manpathan/kata-frontend/internal/controller"
	"github.com/a-manpathan/kata-frontend/internal/delivery"
	"github.com/a-manpathan/kata-frontend/internal/gateway"
	"github.com/a-manpathan/kata-frontend/internal/session"
	"github.com/a-manpathan/kata-frontend/internal/workflow"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	logger.Info("Starting SweetStock client...")
	logger.Infof("Inventory backend target: %s", cfg.APIBaseURL)

	var creds session.CredentialStore
	if cfg.SessionFile != "" {
		creds = session.NewFileCredentialStore(cfg.SessionFile)
	} else {
		logger.Warn("No session file configured; sessions will not survive a restart")
		creds = session.NewMemoryCredentialStore()
	}

	sess := session.NewStore(creds, logger)
	gw := gateway.NewHTTPClient(cfg.APIBaseURL, cfg.HTTPTimeout, sess.Token, logger)
	view := controller.NewController(gw, sess, logger)
	defer view.Close()
	flows := workflow.New(gw, view, sess, logger)

	// Initial mount: a restored session gets its first reload right away so
	// the page opens onto a populated view.
	if _, ok := sess.Current(); ok {
		view.Refresh(context.Background())
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(delivery.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := delivery.NewHandler(flows, view, sess, logger)
	handler.RegisterRoutes(router)

	logger.Infof("SweetStock client listening on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
