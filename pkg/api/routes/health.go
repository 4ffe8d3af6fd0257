package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/arrivalboard/pkg/redis_client"
)

func Health(c *fiber.Ctx) error {
	if err := redis_client.Ping(c.Context()); err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.SendString(err.Error())
	}

	return c.SendString("OK")
}
