package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/arrivalboard/pkg/redis_client"
)

func QueueStats(c *fiber.Ctx) error {
	connection := redis_client.QueueConnection
	if connection == nil {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Queues are not enabled",
		})
	}

	queues, err := connection.GetOpenQueues()
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	stats, err := connection.CollectStats(queues)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Type("html")
	return c.SendString(stats.GetHtml(c.Query("layout"), c.Query("refresh")))
}
