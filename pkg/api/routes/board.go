package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/arrivalboard/pkg/arrivals"
)

type BoardSource interface {
	Snapshot() arrivals.BoardSnapshot
}

func BoardRouter(router fiber.Router, board BoardSource) {
	router.Get("/", func(c *fiber.Ctx) error {
		return getBoard(c, board)
	})
	router.Get("/arrivals", func(c *fiber.Ctx) error {
		return getBoardArrivals(c, board)
	})
}

func reduceGroups(c *fiber.Ctx) []string {
	if c.QueryBool("detailed") {
		return []string{"detailed"}
	}
	return []string{"basic"}
}

func getBoard(c *fiber.Ctx, board BoardSource) error {
	snapshot := board.Snapshot()

	boardReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: reduceGroups(c),
	}, snapshot)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce board",
		})
	}

	return c.JSON(boardReduced)
}

func getBoardArrivals(c *fiber.Ctx, board BoardSource) error {
	snapshot := board.Snapshot()

	arrivalsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: reduceGroups(c),
	}, snapshot.Arrivals)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce arrivals",
		})
	}

	return c.JSON(arrivalsReduced)
}
