package controller

import (
	"fmt"
	"strconv"

	"site-audit-be/internal/dto"
	"site-audit-be/internal/pkg/serverutils"
	"site-audit-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuditController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	RetrySchema(ctx *fiber.Ctx) error
	Projects(ctx *fiber.Ctx) error
	SelectProject(ctx *fiber.Ctx) error
	SaveAnswers(ctx *fiber.Ctx) error
	UploadPhotos(ctx *fiber.Ctx) error
	RemovePhoto(ctx *fiber.Ctx) error
	ValidateIdentification(ctx *fiber.Ctx) error
	AddPhase(ctx *fiber.Ctx) error
	Back(ctx *fiber.Ctx) error
	ChoosePhase(ctx *fiber.Ctx) error
	ChangePhase(ctx *fiber.Ctx) error
	CancelPhase(ctx *fiber.Ctx) error
	ValidatePhase(ctx *fiber.Ctx) error
	Finish(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	ExportCSV(ctx *fiber.Ctx) error
	ExportZIP(ctx *fiber.Ctx) error
}

type auditController struct {
	service service.IAuditService
	auth    fiber.Handler
}

func NewAuditController(service service.IAuditService, auth fiber.Handler) IAuditController {
	return &auditController{service: service, auth: auth}
}

func (c *auditController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/audit/v1/sessions")
	h.Use(c.auth)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
	h.Post(":id/schema/retry", c.RetrySchema)
	h.Get(":id/projects", c.Projects)
	h.Post(":id/project", c.SelectProject)
	h.Put(":id/answers", c.SaveAnswers)
	h.Post(":id/photos/:questionId", c.UploadPhotos)
	h.Delete(":id/photos/:questionId/:file", c.RemovePhoto)
	h.Post(":id/identification/validate", c.ValidateIdentification)
	h.Post(":id/phases", c.AddPhase)
	h.Post(":id/phases/back", c.Back)
	h.Put(":id/phase", c.ChoosePhase)
	h.Post(":id/phase/change", c.ChangePhase)
	h.Post(":id/phase/cancel", c.CancelPhase)
	h.Post(":id/phase/validate", c.ValidatePhase)
	h.Post(":id/finish", c.Finish)
	h.Post(":id/submit", c.Submit)
	h.Post(":id/restart", c.Restart)
	h.Get(":id/export/csv", c.ExportCSV)
	h.Get(":id/export/zip", c.ExportZIP)
}

func (c *auditController) Create(ctx *fiber.Ctx) error {
	res, err := c.service.Create(ctx.Context(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create audit session", res))
}

func (c *auditController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show audit session", res))
}

func (c *auditController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete audit session", nil))
}

func (c *auditController) RetrySchema(ctx *fiber.Ctx) error {
	res, err := c.service.RetrySchema(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reload schema", res))
}

func (c *auditController) Projects(ctx *fiber.Ctx) error {
	res, err := c.service.Projects(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get projects", res))
}

func (c *auditController) SelectProject(ctx *fiber.Ctx) error {
	var req dto.SelectProjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SelectProject(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select project", res))
}

func (c *auditController) SaveAnswers(ctx *fiber.Ctx) error {
	var req dto.SaveAnswersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SaveAnswers(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save answers", res))
}

func (c *auditController) UploadPhotos(ctx *fiber.Ctx) error {
	questionID, err := questionParam(ctx)
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form expected")
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no file in field photos")
	}

	res, err := c.service.UploadPhotos(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"), questionID, files)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload photos", res))
}

func (c *auditController) RemovePhoto(ctx *fiber.Ctx) error {
	questionID, err := questionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.RemovePhoto(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"), questionID, ctx.Params("file"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success remove photo", res))
}

func (c *auditController) ValidateIdentification(ctx *fiber.Ctx) error {
	res, err := c.service.ValidateIdentification(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success validate identification", res))
}

func (c *auditController) AddPhase(ctx *fiber.Ctx) error {
	res, err := c.service.AddPhase(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add phase", res))
}

func (c *auditController) Back(ctx *fiber.Ctx) error {
	res, err := c.service.Back(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success back to loop", res))
}

func (c *auditController) ChoosePhase(ctx *fiber.Ctx) error {
	var req dto.ChoosePhaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ChoosePhase(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success choose phase", res))
}

func (c *auditController) ChangePhase(ctx *fiber.Ctx) error {
	res, err := c.service.ChangePhase(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success change phase", res))
}

func (c *auditController) CancelPhase(ctx *fiber.Ctx) error {
	res, err := c.service.CancelPhase(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success cancel phase", res))
}

func (c *auditController) ValidatePhase(ctx *fiber.Ctx) error {
	res, err := c.service.ValidatePhase(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success validate phase", res))
}

func (c *auditController) Finish(ctx *fiber.Ctx) error {
	res, err := c.service.Finish(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success finish audit", res))
}

func (c *auditController) Submit(ctx *fiber.Ctx) error {
	res, err := c.service.Submit(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit audit", res))
}

func (c *auditController) Restart(ctx *fiber.Ctx) error {
	res, err := c.service.Restart(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restart audit", res))
}

func (c *auditController) ExportCSV(ctx *fiber.Ctx) error {
	data, name, err := c.service.ExportCSV(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return sendAttachment(ctx, "text/csv; charset=utf-8", name, data)
}

func (c *auditController) ExportZIP(ctx *fiber.Ctx) error {
	data, name, err := c.service.ExportZIP(ctx.Context(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return sendAttachment(ctx, "application/zip", name, data)
}

func questionParam(ctx *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(ctx.Params("questionId"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "questionId must be an integer")
	}
	return id, nil
}

func sendAttachment(ctx *fiber.Ctx, contentType, name string, data []byte) error {
	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return ctx.Send(data)
}
