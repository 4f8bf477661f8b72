package handlers

import (
	"bytes"

	"game-hub/middleware"
	"game-hub/services"

	"github.com/gofiber/fiber/v2"
)

type StorageHandler struct {
	Games         *services.GameService
	MaxImageBytes int
}

func SetupStorageRoutes(api fiber.Router, h *StorageHandler, auth fiber.Handler) {
	api.Post("/storage/images", auth, h.UploadImage)
	api.Delete("/storage/images/:key", auth, h.DeleteImage)
}

// UploadImage stores a raw image body in the images bucket and returns its public URL.
func (h *StorageHandler) UploadImage(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "image body is empty")
	}
	if h.MaxImageBytes > 0 && len(body) > h.MaxImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "image is too large"})
	}

	key, url, err := h.Games.StoreImage(c.UserContext(), middleware.UserID(c), services.ImageFile{
		Filename:    fileName(c, "image"),
		ContentType: c.Get(fiber.HeaderContentType),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key, "url": url})
}

// DeleteImage removes one of the caller's uploaded images, e.g. after the
// listing that was meant to use it could not be created.
func (h *StorageHandler) DeleteImage(c *fiber.Ctx) error {
	if err := h.Games.RemoveImage(c.UserContext(), middleware.UserID(c), c.Params("key")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
