package cmd

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/lib-go-subtrack/app/api"
	"github.com/vibast-solutions/lib-go-subtrack/app/cache"
	"github.com/vibast-solutions/lib-go-subtrack/app/identity"
	"github.com/vibast-solutions/lib-go-subtrack/app/service"
	"github.com/vibast-solutions/lib-go-subtrack/config"
)

// mustCreateSubscriptionService wires the full client stack for a CLI
// invocation. The bearer token and preferred currency come from the
// environment because the CLI has no session storage of its own.
func mustCreateSubscriptionService() (*config.Config, *service.SubscriptionService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	session := identity.NewMemoryStore(
		os.Getenv("SUBTRACK_API_TOKEN"),
		os.Getenv("SUBTRACK_CURRENCY"),
	)
	client := api.NewClient(cfg.API, session)
	store := cache.New(cfg.Cache)
	subscriptionService := service.NewSubscriptionService(client, store, session, cfg.Profile.DefaultCurrency)

	return cfg, subscriptionService, store.Close
}
