package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Learning path statuses. Only the active -> completed transition is driven
// by the progress engine; all other transitions are explicit status writes.
const (
	StatusDraft      = "draft"
	StatusGenerating = "generating"
	StatusActive     = "active"
	StatusCompleted  = "completed"
	StatusPaused     = "paused"
	StatusArchived   = "archived"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusGenerating, StatusActive, StatusCompleted, StatusPaused, StatusArchived:
		return true
	}
	return false
}

// LearningPath is the central entity: user-supplied plan parameters, the
// opaque curriculum generated by the ML service, and an embedded progress
// sub-document. Rows are hard-deleted, so gorm.Model (soft delete) is not used.
type LearningPath struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index:idx_paths_owner_updated,priority:2" json:"updatedAt"`

	// Plan parameters
	Title                string                     `gorm:"not null" json:"title"`
	Description          string                     `json:"description"`
	Goals                datatypes.JSONSlice[string] `json:"goals"`
	PreferredDifficulty  string                     `gorm:"default:beginner" json:"preferredDifficulty"`
	AvailableTimePerWeek int                        `json:"availableTimePerWeek"`
	DurationWeeks        int                        `json:"durationWeeks"`
	PreferredTopics      datatypes.JSONSlice[string] `json:"preferredTopics"`

	// Ownership is the sole authorization rule: every read and write filters
	// on this column.
	CreatedBy uint   `gorm:"not null;index:idx_paths_owner_status,priority:1;index:idx_paths_owner_updated,priority:1" json:"createdBy"`
	Status    string `gorm:"default:draft;index:idx_paths_owner_status,priority:2" json:"status"`

	// Generated curriculum, treated as a black box apart from the resource
	// and objective identifiers the progress engine references.
	MLGenerated        bool           `gorm:"default:false" json:"mlGenerated"`
	MLGeneratedContent datatypes.JSON `json:"mlGeneratedContent,omitempty"`

	Progress Progress `json:"progress"`

	StartDate       *time.Time `json:"startDate,omitempty"`
	ExpectedEndDate *time.Time `json:"expectedEndDate,omitempty"`
	ActualEndDate   *time.Time `json:"actualEndDate,omitempty"`
}

// TotalLearningHours is the user-committed hour budget for the whole path.
func (lp *LearningPath) TotalLearningHours() int {
	return lp.AvailableTimePerWeek * lp.DurationWeeks
}

// IsOverdue reports whether the expected end date has passed without the
// path reaching completion.
func (lp *LearningPath) IsOverdue(now time.Time) bool {
	if lp.ExpectedEndDate == nil {
		return false
	}
	return now.After(*lp.ExpectedEndDate) && lp.Status != StatusCompleted
}

// BeforeSave deduplicates goals and topics, makes sure the progress
// sub-document is initialized, and stamps the schedule dates the first time
// the path becomes active.
func (lp *LearningPath) BeforeSave(tx *gorm.DB) error {
	lp.Goals = dedupeStrings(lp.Goals)
	lp.PreferredTopics = dedupeStrings(lp.PreferredTopics)
	lp.Progress.init()

	if lp.Status == StatusActive && lp.ExpectedEndDate == nil {
		start := time.Now()
		if lp.StartDate != nil {
			start = *lp.StartDate
		} else {
			lp.StartDate = &start
		}
		end := start.AddDate(0, 0, lp.DurationWeeks*7)
		lp.ExpectedEndDate = &end
	}
	return nil
}

func dedupeStrings(in []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Progress is the embedded progress sub-document, persisted as a single JSON
// column. Field names match the wire format consumed by the client.
type Progress struct {
	CompletionPercentage int                     `json:"completion_percentage"`
	CurrentWeek          int                     `json:"current_week"`
	CompletedWeeks       []int                   `json:"completed_weeks"`
	TotalHoursLogged     float64                 `json:"total_hours_logged"`
	LastActivity         time.Time               `json:"last_activity"`
	WeekProgress         map[string]WeekProgress `json:"week_progress"`
	ResourceInteractions []ResourceInteraction   `json:"resource_interactions"`
	Sessions             []LearningSession       `json:"sessions"`
}

type WeekProgress struct {
	ResourcesCompleted  []string        `json:"resources_completed"`
	ObjectivesCompleted []string        `json:"objectives_completed"`
	ProgressPercentage  int             `json:"progress_percentage"`
	HoursSpent          float64         `json:"hours_spent"`
	Completed           bool            `json:"completed"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	SelfAssessment      json.RawMessage `json:"self_assessment,omitempty"`
	ReflectionNotes     string          `json:"reflection_notes,omitempty"`
	Confidence          int             `json:"confidence,omitempty"` // 1-5
}

type ResourceInteraction struct {
	ResourceID      string    `json:"resource_id"`
	InteractionType string    `json:"interaction_type"` // viewed, completed, bookmarked
	Timestamp       time.Time `json:"timestamp"`
	Duration        *float64  `json:"duration,omitempty"` // seconds
}

func IsValidInteractionType(t string) bool {
	switch t {
	case "viewed", "completed", "bookmarked":
		return true
	}
	return false
}

type LearningSession struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Duration          float64   `json:"duration"` // minutes
	InteractionsCount int       `json:"interactions_count"`
}

func (p *Progress) init() {
	if p.CurrentWeek < 1 {
		p.CurrentWeek = 1
	}
	if p.CompletedWeeks == nil {
		p.CompletedWeeks = []int{}
	}
	if p.WeekProgress == nil {
		p.WeekProgress = map[string]WeekProgress{}
	}
	if p.ResourceInteractions == nil {
		p.ResourceInteractions = []ResourceInteraction{}
	}
	if p.Sessions == nil {
		p.Sessions = []LearningSession{}
	}
	if p.LastActivity.IsZero() {
		p.LastActivity = time.Now()
	}
}

func (p Progress) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Progress) Scan(value interface{}) error {
	if value == nil {
		*p = Progress{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported progress column type %T", value)
	}
	if len(data) == 0 {
		*p = Progress{}
		return nil
	}
	return json.Unmarshal(data, p)
}

func (Progress) GormDataType() string {
	return "json"
}

func (Progress) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "sqlite":
		return "JSON"
	case "mysql":
		return "JSON"
	}
	return ""
}

var ErrPathNotFound = errors.New("learning path not found")

// FindPathForUser loads a path owned by the given user. A path owned by
// someone else is indistinguishable from a missing one.
func FindPathForUser(db *gorm.DB, pathID, userID uint) (*LearningPath, error) {
	var path LearningPath
	err := db.Where("id = ? AND created_by = ?", pathID, userID).First(&path).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPathNotFound
		}
		return nil, err
	}
	return &path, nil
}
