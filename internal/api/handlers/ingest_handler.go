package handlers

import (
	"io"
	"mime/multipart"

	"flight-rag/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IngestHandler struct {
	ingestService *service.IngestService
	logger        *zap.Logger
}

func NewIngestHandler(ingestService *service.IngestService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// CreateEmbeddings godoc
// @Summary Build the vector index
// @Description Upload flight listings and visa rules, validate them and rebuild the vector index
// @Tags embeddings
// @Accept multipart/form-data
// @Produce json
// @Param flights_file formData file true "Flight listings (.json)"
// @Param visa_rules_file formData file true "Visa and ticket rules (.md)"
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /create-embeddings [post]
func (h *IngestHandler) CreateEmbeddings(c *fiber.Ctx) error {
	flightsFile, err := c.FormFile("flights_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "flights_file is required",
		})
	}
	visaFile, err := c.FormFile("visa_rules_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "visa_rules_file is required",
		})
	}

	flightsContent, err := readFormFile(flightsFile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read flights_file",
		})
	}
	visaContent, err := readFormFile(visaFile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read visa_rules_file",
		})
	}

	resp, err := h.ingestService.CreateEmbeddings(
		c.Context(),
		flightsFile.Filename, flightsContent,
		visaFile.Filename, visaContent,
	)
	if err != nil {
		if service.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("Failed to create embeddings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create embeddings: " + err.Error(),
		})
	}

	return c.JSON(resp)
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
