package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/arrivalboard/pkg/api/routes"
)

func NewApp(board routes.BoardSource) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("version", routes.APIVersion)
	webApp.Get("health", routes.Health)
	webApp.Get("queues/stats", routes.QueueStats)

	routes.BoardRouter(webApp.Group("/board"), board)

	return webApp
}

// SetupServer serves the board on listen until ctx is cancelled.
func SetupServer(ctx context.Context, listen string, board routes.BoardSource) error {
	webApp := NewApp(board)

	go func() {
		<-ctx.Done()
		if err := webApp.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Failed to shut down web server")
		}
	}()

	log.Info().Str("listen", listen).Msg("Starting board web server")
	return webApp.Listen(listen)
}
