package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Hours is an hour count that tolerates sloppy client input: it accepts a
// JSON number or a numeric string and parses anything else as zero.
type Hours float64

func (h *Hours) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*h = Hours(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*h = Hours(n)
			return nil
		}
	}
	*h = 0
	return nil
}

// WeekProgressUpdate is a partial week record. Nil fields are left untouched
// by the merge; slices replace the stored value when present.
type WeekProgressUpdate struct {
	ResourcesCompleted  []string        `json:"resourcesCompleted"`
	ObjectivesCompleted []string        `json:"objectivesCompleted"`
	ProgressPercentage  *int            `json:"progressPercentage"`
	HoursSpent          *float64        `json:"hoursSpent"`
	Completed           *bool           `json:"completed"`
	CompletedAt         *time.Time      `json:"completedAt"`
	SelfAssessment      json.RawMessage `json:"selfAssessment"`
	ReflectionNotes     *string         `json:"reflectionNotes"`
	Confidence          *int            `json:"confidence"`
}

// CompleteWeekInput carries the self-assessment payload submitted when a
// user closes out a week.
type CompleteWeekInput struct {
	HoursSpent      Hours           `json:"hoursSpent"`
	SelfAssessment  json.RawMessage `json:"selfAssessment,omitempty"`
	ReflectionNotes string          `json:"reflectionNotes,omitempty"`
	Confidence      int             `json:"confidence,omitempty"`
}

// TrackResourceInteraction appends one entry to the interaction log. The
// resource id is accepted as-is; it is not checked against the generated
// curriculum.
func (lp *LearningPath) TrackResourceInteraction(resourceID, interactionType string, duration *float64) {
	lp.Progress.init()
	lp.Progress.ResourceInteractions = append(lp.Progress.ResourceInteractions, ResourceInteraction{
		ResourceID:      resourceID,
		InteractionType: interactionType,
		Timestamp:       time.Now(),
		Duration:        duration,
	})
	lp.Progress.LastActivity = time.Now()
}

// UpdateWeekProgress merges a partial record into week_progress[weekNumber],
// materializing a default record for a previously untouched week, then
// recomputes the overall completion percentage. It never adds to
// completed_weeks; only CompleteWeek does that.
func (lp *LearningPath) UpdateWeekProgress(weekNumber int, upd WeekProgressUpdate) {
	lp.Progress.init()

	key := strconv.Itoa(weekNumber)
	week, ok := lp.Progress.WeekProgress[key]
	if !ok {
		week = WeekProgress{
			ResourcesCompleted:  []string{},
			ObjectivesCompleted: []string{},
		}
	}

	if upd.ResourcesCompleted != nil {
		week.ResourcesCompleted = upd.ResourcesCompleted
	}
	if upd.ObjectivesCompleted != nil {
		week.ObjectivesCompleted = upd.ObjectivesCompleted
	}
	if upd.ProgressPercentage != nil {
		week.ProgressPercentage = *upd.ProgressPercentage
	}
	if upd.HoursSpent != nil {
		week.HoursSpent = *upd.HoursSpent
	}
	if upd.Completed != nil {
		week.Completed = *upd.Completed
	}
	if upd.CompletedAt != nil {
		week.CompletedAt = upd.CompletedAt
	}
	if upd.SelfAssessment != nil {
		week.SelfAssessment = upd.SelfAssessment
	}
	if upd.ReflectionNotes != nil {
		week.ReflectionNotes = *upd.ReflectionNotes
	}
	if upd.Confidence != nil {
		week.Confidence = *upd.Confidence
	}

	lp.Progress.WeekProgress[key] = week
	lp.recomputeCompletion()
	lp.Progress.LastActivity = time.Now()
}

// CompleteWeek marks a week done: it writes the week record, inserts the
// week into completed_weeks (idempotent), adds the submitted hours to the
// running total, and advances current_week. Hours are added unconditionally,
// so re-completing a week contributes its hours again; the week itself is
// never double-counted.
func (lp *LearningPath) CompleteWeek(weekNumber int, data CompleteWeekInput) {
	now := time.Now()
	hours := float64(data.HoursSpent)
	completed := true
	pct := 100

	upd := WeekProgressUpdate{
		Completed:          &completed,
		CompletedAt:        &now,
		HoursSpent:         &hours,
		SelfAssessment:     data.SelfAssessment,
		ProgressPercentage: &pct,
	}
	if data.ReflectionNotes != "" {
		upd.ReflectionNotes = &data.ReflectionNotes
	}
	if data.Confidence != 0 {
		upd.Confidence = &data.Confidence
	}
	lp.UpdateWeekProgress(weekNumber, upd)

	if !containsInt(lp.Progress.CompletedWeeks, weekNumber) {
		lp.Progress.CompletedWeeks = append(lp.Progress.CompletedWeeks, weekNumber)
	}

	lp.Progress.TotalHoursLogged += hours
	if next := weekNumber + 1; next > lp.Progress.CurrentWeek {
		lp.Progress.CurrentWeek = next
	}

	lp.recomputeCompletion()
}

// LogSession appends one learning session. No derived fields change.
func (lp *LearningPath) LogSession(start, end time.Time, durationMinutes float64, interactions int) {
	lp.Progress.init()
	lp.Progress.Sessions = append(lp.Progress.Sessions, LearningSession{
		StartTime:         start,
		EndTime:           end,
		Duration:          durationMinutes,
		InteractionsCount: interactions,
	})
	lp.Progress.LastActivity = time.Now()
}

// recomputeCompletion derives completion_percentage from completed_weeks and
// flips the path to completed the first time it reaches 100%.
func (lp *LearningPath) recomputeCompletion() {
	if lp.DurationWeeks <= 0 {
		return
	}

	pct := int(math.Round(float64(len(lp.Progress.CompletedWeeks)) / float64(lp.DurationWeeks) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	lp.Progress.CompletionPercentage = pct

	if pct >= 100 && lp.Status != StatusCompleted {
		lp.Status = StatusCompleted
		now := time.Now()
		lp.ActualEndDate = &now
	}
}

func containsInt(nums []int, n int) bool {
	for _, v := range nums {
		if v == n {
			return true
		}
	}
	return false
}
