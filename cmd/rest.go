package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Nirvanjha2004/outreach-composer/config"
	"github.com/Nirvanjha2004/outreach-composer/infrastructure/gateway"
	infraSession "github.com/Nirvanjha2004/outreach-composer/infrastructure/session"
	"github.com/Nirvanjha2004/outreach-composer/ui/rest"
	"github.com/Nirvanjha2004/outreach-composer/usecase"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Start the composer REST server",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	client := gateway.NewClient(config.BackendBaseURL, config.BackendTimeout)
	lookup := gateway.NewLookup(client)
	accounts := gateway.NewDirectory(client)
	identity := gateway.NewIdentity(client)
	campaigns := gateway.NewCampaigns(client)

	store := infraSession.NewStore(config.SessionTTL, config.SessionSweepInterval)
	service := usecase.NewComposerService(store, lookup, campaigns, accounts, identity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.StartSessionJanitor(ctx)
	defer service.StopSessionJanitor()

	app := fiber.New(fiber.Config{
		AppName:   fmt.Sprintf("Outreach Composer %s", config.AppVersion),
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	rest.InitRestComposer(app, service)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": config.AppVersion})
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logrus.Infoln("Composer: Shutting down")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", config.AppHost, config.AppPort)
	if err := app.Listen(addr); err != nil {
		logrus.Fatalln("Failed to start server:", err)
	}
}
