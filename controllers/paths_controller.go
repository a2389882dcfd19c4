package controllers

import (
	"errors"
	"sort"
	"strconv"

	"pathcrafter/config"
	"pathcrafter/models"
	"pathcrafter/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PathsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewPathsController(db *gorm.DB, cfg *config.Config) *PathsController {
	return &PathsController{DB: db, Cfg: cfg}
}

// PlanParamsInput mirrors the plan parameters a user submits when creating a
// path by hand (without generation).
type PlanParamsInput struct {
	Title                string   `json:"title" validate:"required,min=3,max=100"`
	Description          string   `json:"description" validate:"max=500"`
	Goals                []string `json:"goals"`
	PreferredDifficulty  string   `json:"preferredDifficulty" validate:"required,oneof=beginner intermediate advanced"`
	AvailableTimePerWeek int      `json:"availableTimePerWeek" validate:"required,min=1,max=40"`
	DurationWeeks        int      `json:"durationWeeks" validate:"required,min=1,max=52"`
	PreferredTopics      []string `json:"preferredTopics"`
}

// CreateLearningPath godoc
// @Summary Create a learning path draft
// @Tags learning-paths
// @Accept json
// @Produce json
// @Param request body PlanParamsInput true "Plan parameters"
// @Success 201 {object} models.LearningPath
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths [post]
func (pc *PathsController) CreateLearningPath(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
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

	path := models.LearningPath{
		Title:                input.Title,
		Description:          input.Description,
		Goals:                datatypes.NewJSONSlice(input.Goals),
		PreferredDifficulty:  input.PreferredDifficulty,
		AvailableTimePerWeek: input.AvailableTimePerWeek,
		DurationWeeks:        input.DurationWeeks,
		PreferredTopics:      datatypes.NewJSONSlice(input.PreferredTopics),
		CreatedBy:            userID,
		Status:               models.StatusDraft,
	}

	if err := pc.DB.Create(&path).Error; err != nil {
		return utils.InternalServerError(c, "Could not create learning path")
	}

	return utils.Created(c, path)
}

// GetLearningPaths godoc
// @Summary List the caller's learning paths
// @Description Most recently updated first; ?status=active returns active
// @Description paths ordered by most recent progress activity
// @Tags learning-paths
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths [get]
func (pc *PathsController) GetLearningPaths(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	status := c.Query("status")
	if status != "" && !models.IsValidStatus(status) {
		return utils.BadRequest(c, "Invalid status filter")
	}

	query := pc.DB.Where("created_by = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var paths []models.LearningPath
	if err := query.Order("updated_at DESC").Find(&paths).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch learning paths")
	}

	// The progress sub-document lives in a JSON column, so the activity
	// ordering for status listings happens here rather than in SQL.
	if status != "" {
		sort.SliceStable(paths, func(i, j int) bool {
			return paths[i].Progress.LastActivity.After(paths[j].Progress.LastActivity)
		})
	}

	return utils.Success(c, fiber.StatusOK, paths, fiber.Map{"count": len(paths)})
}

// GetLearningPath godoc
// @Summary Get one learning path
// @Tags learning-paths
// @Produce json
// @Param id path int true "Path ID"
// @Success 200 {object} models.LearningPath
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id} [get]
func (pc *PathsController) GetLearningPath(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, path)
}

// UpdateLearningPathInput allows editing plan parameters and externally
// triggered status transitions (pause, resume, archive). Completion is owned
// by the progress engine and cannot be forced here.
type UpdateLearningPathInput struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	Goals                []string `json:"goals"`
	PreferredDifficulty  *string  `json:"preferredDifficulty"`
	AvailableTimePerWeek *int     `json:"availableTimePerWeek"`
	DurationWeeks        *int     `json:"durationWeeks"`
	PreferredTopics      []string `json:"preferredTopics"`
	Status               *string  `json:"status"`
}

// UpdateLearningPath godoc
// @Summary Update a learning path
// @Tags learning-paths
// @Accept json
// @Produce json
// @Param id path int true "Path ID"
// @Param request body UpdateLearningPathInput true "Fields to update"
// @Success 200 {object} models.LearningPath
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id} [put]
func (pc *PathsController) UpdateLearningPath(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	var input UpdateLearningPathInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		if len(*input.Title) < 3 || len(*input.Title) > 100 {
			return utils.BadRequest(c, "Title must be between 3 and 100 characters")
		}
		path.Title = *input.Title
	}
	if input.Description != nil {
		path.Description = *input.Description
	}
	if input.Goals != nil {
		path.Goals = datatypes.NewJSONSlice(input.Goals)
	}
	if input.PreferredDifficulty != nil {
		switch *input.PreferredDifficulty {
		case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
			path.PreferredDifficulty = *input.PreferredDifficulty
		default:
			return utils.BadRequest(c, "Invalid difficulty")
		}
	}
	if input.AvailableTimePerWeek != nil {
		if *input.AvailableTimePerWeek < 1 || *input.AvailableTimePerWeek > 40 {
			return utils.BadRequest(c, "Available time must be between 1 and 40 hours")
		}
		path.AvailableTimePerWeek = *input.AvailableTimePerWeek
	}
	if input.DurationWeeks != nil {
		if *input.DurationWeeks < 1 || *input.DurationWeeks > 52 {
			return utils.BadRequest(c, "Duration must be between 1 and 52 weeks")
		}
		path.DurationWeeks = *input.DurationWeeks
	}
	if input.PreferredTopics != nil {
		path.PreferredTopics = datatypes.NewJSONSlice(input.PreferredTopics)
	}
	if input.Status != nil {
		if !models.IsValidStatus(*input.Status) {
			return utils.BadRequest(c, "Invalid status")
		}
		if *input.Status == models.StatusCompleted && path.Status != models.StatusCompleted {
			return utils.BadRequest(c, "Completion is derived from progress and cannot be set directly")
		}
		path.Status = *input.Status
	}

	if err := pc.DB.Save(path).Error; err != nil {
		return utils.InternalServerError(c, "Could not update learning path")
	}

	return utils.Success(c, fiber.StatusOK, path)
}

// DeleteLearningPath godoc
// @Summary Delete a learning path
// @Description Immediate, unconditional hard delete
// @Tags learning-paths
// @Produce json
// @Param id path int true "Path ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id} [delete]
func (pc *PathsController) DeleteLearningPath(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	if err := pc.DB.Delete(&models.LearningPath{}, path.ID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete learning path")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Learning path deleted successfully", fiber.Map{
		"id": path.ID,
	})
}

// findOwnedPath resolves :id and loads the path scoped to the caller. A path
// owned by another user comes back as ErrPathNotFound.
func findOwnedPath(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) (*models.LearningPath, error) {
	userID, err := utils.ExtractUserIDFromToken(c, cfg)
	if err != nil {
		return nil, errUnauthorized
	}

	pathID, err := strconv.Atoi(c.Params("id"))
	if err != nil || pathID < 1 {
		return nil, errBadPathID
	}

	return models.FindPathForUser(db, uint(pathID), userID)
}

var (
	errUnauthorized = errors.New("unauthorized")
	errBadPathID    = errors.New("invalid path id")
)

func pathError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errUnauthorized):
		return utils.Unauthorized(c, "Unauthorized")
	case errors.Is(err, errBadPathID):
		return utils.BadRequest(c, "Invalid path ID")
	case errors.Is(err, models.ErrPathNotFound):
		return utils.NotFound(c, "Learning path not found")
	default:
		return utils.InternalServerError(c, "Could not query database")
	}
}
