// handlers/game.go
package handlers

import (
	"strconv"
	"strings"

	"game-hub/middleware"
	"game-hub/models"
	"game-hub/services"

	"github.com/gofiber/fiber/v2"
)

type GameHandler struct {
	Games    *services.GameService
	Comments *services.CommentService
}

func SetupGameRoutes(api fiber.Router, h *GameHandler, auth fiber.Handler) {
	// Public catalog
	api.Get("/games", h.List)
	api.Get("/games/:id", h.Get)
	api.Get("/games/:id/comments", h.ListComments)
	api.Post("/games/:id/download", h.Download)

	secured := api.Group("/games", auth)
	secured.Post("/", h.Create)
	secured.Post("/upload", h.Upload)
	secured.Post("/:id/comments", h.CreateComment)
}

func (h *GameHandler) List(c *fiber.Ctx) error {
	games, err := h.Games.List(c.UserContext(), services.ListQuery{
		Category:  models.Category(strings.ToLower(c.Query("category"))),
		Sort:      models.ParseSort(c.Query("sort")),
		Term:      c.Query("q"),
		CreatedBy: c.Query("created_by"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(games)
}

func (h *GameHandler) Get(c *fiber.Ctx) error {
	game, err := h.Games.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) Download(c *fiber.Ctx) error {
	res, err := h.Games.RecordDownload(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func (h *GameHandler) Create(c *fiber.Ctx) error {
	var in services.CreateGameInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	game, err := h.Games.Create(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

// Upload handles the multipart form variant: fields plus an optional "image" file.
func (h *GameHandler) Upload(c *fiber.Ctx) error {
	in := services.CreateGameInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		About:       c.FormValue("about"),
		Category:    models.Category(strings.ToLower(c.FormValue("category"))),
		FileURL:     c.FormValue("file_url"),
		ImageURL:    c.FormValue("image_url"),
		Requirements: models.Requirements{
			Minimum:     c.FormValue("requirements_minimum"),
			Recommended: c.FormValue("requirements_recommended"),
		},
	}
	if raw := c.FormValue("steam_appid"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "steam_appid must be a number")
		}
		in.SteamAppID = &id
	}
	if form, err := c.MultipartForm(); err == nil {
		in.Screenshots = form.Value["screenshots"]
	}

	var img *services.ImageFile
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "failed to read image")
		}
		defer f.Close()
		img = &services.ImageFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		}
	}

	game, err := h.Games.Publish(c.UserContext(), middleware.UserID(c), in, img)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

func (h *GameHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.Comments.ListByGame(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(comments)
}

func (h *GameHandler) CreateComment(c *fiber.Ctx) error {
	var in services.CommentInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := h.Comments.Create(c.UserContext(), c.Params("id"), middleware.UserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
