package controllers

import (
	"errors"

	"pathcrafter/config"
	"pathcrafter/mlclient"
	"pathcrafter/models"
	"pathcrafter/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MLController fronts the external generation service. Generation either
// fully succeeds and creates an active path, or nothing is persisted.
type MLController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Client *mlclient.Client
}

func NewMLController(db *gorm.DB, cfg *config.Config, client *mlclient.Client) *MLController {
	return &MLController{DB: db, Cfg: cfg, Client: client}
}

// GeneratePath godoc
// @Summary Generate a learning path
// @Description Forwards the plan parameters to the ML service and, on
// @Description success, creates the path in an active state with the
// @Description generated curriculum attached
// @Tags ml
// @Accept json
// @Produce json
// @Param request body PlanParamsInput true "Plan parameters"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Failure 504 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /ml/generate-path [post]
func (mc *MLController) GeneratePath(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input PlanParamsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if problems := utils.ValidateStruct(input); problems != nil {
		return utils.ValidationError(c, problems)
	}

	generated, err := mc.Client.GeneratePath(c.Context(), mlclient.GenerateRequest{
		Title:                input.Title,
		Description:          input.Description,
		Goals:                input.Goals,
		PreferredDifficulty:  input.PreferredDifficulty,
		AvailableTimePerWeek: input.AvailableTimePerWeek,
		DurationWeeks:        input.DurationWeeks,
		PreferredTopics:      input.PreferredTopics,
	})
	if err != nil {
		return mc.generationError(c, err)
	}

	path := models.LearningPath{
		Title:                input.Title,
		Description:          input.Description,
		Goals:                datatypes.NewJSONSlice(input.Goals),
		PreferredDifficulty:  input.PreferredDifficulty,
		AvailableTimePerWeek: input.AvailableTimePerWeek,
		DurationWeeks:        input.DurationWeeks,
		PreferredTopics:      datatypes.NewJSONSlice(input.PreferredTopics),
		CreatedBy:            userID,
		Status:               models.StatusActive,
		MLGenerated:          true,
		MLGeneratedContent:   datatypes.JSON(generated.LearningPath),
	}

	if err := mc.DB.Create(&path).Error; err != nil {
		return utils.InternalServerError(c, "Could not create learning path")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Learning path generated successfully",
		"pathId":  path.ID,
		"path": fiber.Map{
			"id":         path.ID,
			"title":      path.Title,
			"difficulty": path.PreferredDifficulty,
			"duration":   path.DurationWeeks,
			"status":     path.Status,
			"createdAt":  path.CreatedAt,
		},
		"resourceCount": generated.ResourceCount,
	})
}

// HealthCheck godoc
// @Summary ML service health probe
// @Tags ml
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /ml/health [get]
func (mc *MLController) HealthCheck(c *fiber.Ctx) error {
	health, err := mc.Client.HealthCheck(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(health)
}

// generationError maps each gateway failure mode to its own client-facing
// status.
func (mc *MLController) generationError(c *fiber.Ctx, err error) error {
	var genErr *mlclient.GenerationError

	switch {
	case errors.Is(err, mlclient.ErrServiceBusy):
		return utils.Error(c, fiber.StatusTooManyRequests, err)
	case errors.Is(err, mlclient.ErrServiceUnavailable):
		return utils.Error(c, fiber.StatusServiceUnavailable,
			errors.New("ML service is currently unavailable"))
	case errors.Is(err, mlclient.ErrTimeout):
		return utils.Error(c, fiber.StatusGatewayTimeout, err)
	case errors.As(err, &genErr):
		return utils.Error(c, fiber.StatusUnprocessableEntity, genErr)
	default:
		return utils.InternalServerError(c, "Internal server error while creating learning path")
	}
}
