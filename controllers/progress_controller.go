package controllers

import (
	"errors"
	"strconv"
	"time"

	"pathcrafter/config"
	"pathcrafter/models"
	"pathcrafter/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProgressController exposes the progress-tracking sub-resources of a
// learning path. Handlers load the owner-scoped path, apply one engine
// operation in memory, and persist the whole document.
type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// TrackActivity godoc
// @Summary Record a resource interaction
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Path ID"
// @Param request body map[string]interface{} true "resourceId, interactionType, optional duration"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id}/track-activity [post]
func (pc *ProgressController) TrackActivity(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	type ActivityInput struct {
		ResourceID      string   `json:"resourceId"`
		InteractionType string   `json:"interactionType"`
		Duration        *float64 `json:"duration"`
	}

	var input ActivityInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.ResourceID == "" {
		return utils.BadRequest(c, "resourceId is required")
	}
	if !models.IsValidInteractionType(input.InteractionType) {
		return utils.BadRequest(c, "interactionType must be viewed, completed or bookmarked")
	}

	path.TrackResourceInteraction(input.ResourceID, input.InteractionType, input.Duration)

	if err := pc.DB.Save(path).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Activity tracked successfully", fiber.Map{
		"resourceId":      input.ResourceID,
		"interactionType": input.InteractionType,
	})
}

// UpdateWeekProgress godoc
// @Summary Merge partial progress into a week record
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Path ID"
// @Param weekNumber path int true "Week number"
// @Param request body models.WeekProgressUpdate true "Partial week record"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id}/weeks/{weekNumber}/progress [put]
func (pc *ProgressController) UpdateWeekProgress(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	weekNumber, err := parseWeekNumber(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid week number")
	}

	var input models.WeekProgressUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	path.UpdateWeekProgress(weekNumber, input)

	if err := pc.DB.Save(path).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Week progress updated successfully", fiber.Map{
		"weekNumber": weekNumber,
		"progress":   path.Progress.WeekProgress[strconv.Itoa(weekNumber)],
	})
}

// CompleteWeek godoc
// @Summary Mark a week as completed
// @Description Records the self-assessment, adds the submitted hours to the
// @Description running total, advances the current week and recomputes the
// @Description overall completion percentage
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Path ID"
// @Param weekNumber path int true "Week number"
// @Param request body models.CompleteWeekInput true "Completion data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id}/weeks/{weekNumber}/complete [put]
func (pc *ProgressController) CompleteWeek(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	weekNumber, err := parseWeekNumber(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid week number")
	}

	var input models.CompleteWeekInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Confidence != 0 && (input.Confidence < 1 || input.Confidence > 5) {
		return utils.BadRequest(c, "Confidence must be between 1 and 5")
	}

	path.CompleteWeek(weekNumber, input)

	if err := pc.DB.Save(path).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Week completed successfully", fiber.Map{
		"weekNumber":  weekNumber,
		"completed":   true,
		"newProgress": path.Progress,
		"status":      path.Status,
	})
}

// LogSession godoc
// @Summary Log a learning session
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Path ID"
// @Param request body map[string]interface{} true "sessionStart, sessionEnd, duration, interactions"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id}/log-session [post]
func (pc *ProgressController) LogSession(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	type SessionInput struct {
		SessionStart time.Time     `json:"sessionStart"`
		SessionEnd   time.Time     `json:"sessionEnd"`
		Duration     float64       `json:"duration"` // minutes
		Interactions []interface{} `json:"interactions"`
	}

	var input SessionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	path.LogSession(input.SessionStart, input.SessionEnd, input.Duration, len(input.Interactions))

	if err := pc.DB.Save(path).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Session logged successfully", fiber.Map{
		"duration":   input.Duration,
		"sessionEnd": input.SessionEnd,
	})
}

// GetAnalytics godoc
// @Summary Get activity analytics for a learning path
// @Tags progress
// @Produce json
// @Param id path int true "Path ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /learning-paths/{id}/analytics [get]
func (pc *ProgressController) GetAnalytics(c *fiber.Ctx) error {
	path, err := findOwnedPath(c, pc.DB, pc.Cfg)
	if err != nil {
		return pathError(c, err)
	}

	weekProgress := make(map[string]int, len(path.Progress.WeekProgress))
	for weekNum, progress := range path.Progress.WeekProgress {
		weekProgress[weekNum] = progress.ProgressPercentage
	}

	var avgSessionTime float64
	if n := len(path.Progress.Sessions); n > 0 {
		var total float64
		for _, session := range path.Progress.Sessions {
			total += session.Duration
		}
		avgSessionTime = total / float64(n)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lastActivity":       path.Progress.LastActivity,
		"weekProgress":       weekProgress,
		"totalSessions":      len(path.Progress.Sessions),
		"totalInteractions":  len(path.Progress.ResourceInteractions),
		"averageSessionTime": avgSessionTime,
		"completion":         path.Progress.CompletionPercentage,
		"totalHoursLogged":   path.Progress.TotalHoursLogged,
	})
}

var errBadWeekNumber = errors.New("invalid week number")

func parseWeekNumber(c *fiber.Ctx) (int, error) {
	weekNumber, err := strconv.Atoi(c.Params("weekNumber"))
	if err != nil || weekNumber < 1 {
		return 0, errBadWeekNumber
	}
	return weekNumber, nil
}
