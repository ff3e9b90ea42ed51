package controller

import (
	"site-audit-be/internal/dto"
	"site-audit-be/internal/pkg/serverutils"
	"site-audit-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISubmissionController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type submissionController struct {
	service service.ISubmissionService
	auth    fiber.Handler
}

func NewSubmissionController(service service.ISubmissionService, auth fiber.Handler) ISubmissionController {
	return &submissionController{service: service, auth: auth}
}

func (c *submissionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/audit/v1/submissions")
	h.Use(c.auth)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
}

func (c *submissionController) GetAll(ctx *fiber.Ctx) error {
	req := dto.ListSubmissionsRequest{Limit: 50}
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.List(ctx.Context(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get submissions", res))
}

func (c *submissionController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show submission", res))
}
