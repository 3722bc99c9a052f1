package controller

import (
	"empathiq-be/internal/dto"
	"empathiq-be/internal/pkg/serverutils"
	"empathiq-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.SendChat)
	h.Get("/history", c.GetHistory)
}

// SendChat starts or continues the user's current conversation.
func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return serverutils.NewServerError("Error processing message", err)
	}

	return ctx.JSON(res)
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
	}

	res, err := c.chatService.GetHistory(ctx.Context(), userId)
	if err != nil {
		return serverutils.NewServerError("Error fetching chat history", err)
	}

	return ctx.JSON(res)
}
