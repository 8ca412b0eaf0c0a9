package handlers

import (
	"strings"

	"flight-rag/internal/dto"
	"flight-rag/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Query godoc
// @Summary Ask the assistant a question
// @Description Retrieve relevant passages and answer within the given session
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Question with optional session id"
// @Success 200 {object} dto.QueryResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /query [post]
func (h *ChatHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question is required",
		})
	}

	resp, err := h.chatService.Answer(c.Context(), req.SessionID, req.Question)
	if err != nil {
		h.logger.Error("Failed to process query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(resp)
}
