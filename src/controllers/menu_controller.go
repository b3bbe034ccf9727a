package controllers

import (
	"go-restaurant-pos/src/services/menu"

	"github.com/gofiber/fiber/v2"
)

type MenuController struct {
	catalog menu.Catalog
}

func NewMenuController(catalog menu.Catalog) *MenuController {
	return &MenuController{catalog: catalog}
}

func (c *MenuController) Route(app *fiber.App) {
	app.Get("/api/v1/menu", c.GetMenu)
}

// GetMenu godoc
// @Summary      List the menu
// @Description  Every menu item sorted by category and name, including unavailable ones
// @Tags         menu
// @Produce      json
// @Success      200  {array}   menu.MenuItem
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/menu [get]
func (c *MenuController) GetMenu(ctx *fiber.Ctx) error {
	items, err := c.catalog.GetAll(ctx.UserContext())
	if err != nil {
		return err
	}
	if items == nil {
		items = []menu.MenuItem{}
	}
	return ctx.Status(fiber.StatusOK).JSON(items)
}
