package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vibast-solutions/lib-go-subtrack/app/mockapi"
	"github.com/vibast-solutions/lib-go-subtrack/config"
)

var mockServerAddr string

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local fake of the subscription backend",
	Long:  "Serve a seeded in-memory backend with the production wire surface, for development and demos without the hosted API.",
	Run:   runMockServer,
}

func init() {
	rootCmd.AddCommand(mockServerCmd)
	mockServerCmd.Flags().StringVar(&mockServerAddr, "addr", "127.0.0.1:8600", "Listen address")
}

func runMockServer(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	e := mockapi.NewServer(mockapi.NewStore()).Echo()

	go func() {
		logrus.WithField("addr", mockServerAddr).Info("Starting mock API server")
		if err := e.Start(mockServerAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Mock API server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}
