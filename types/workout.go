package types

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/validator"
)

type WorkoutProgram struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userID"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	DaysPerWeek int       `db:"days_per_week" json:"daysPerWeek"`
	FocusArea   *string   `db:"focus_area" json:"focusArea"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type WorkoutHistory struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userID"`
	ProgramID   *string   `db:"program_id" json:"programID"`
	Title       string    `db:"title" json:"title"`
	DurationMin int       `db:"duration_min" json:"durationMin"`
	Notes       *string   `db:"notes" json:"notes"`
	PerformedAt time.Time `db:"performed_at" json:"performedAt"`
}

type CreateWorkoutProgram struct {
	Name        string
	Description *string
	DaysPerWeek int
	FocusArea   *string

	loggedInUserID string
}

func (in *CreateWorkoutProgram) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in CreateWorkoutProgram) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *CreateWorkoutProgram) Validate() error {
	v := validator.New()

	in.Name = strings.TrimSpace(in.Name)

	if in.Name == "" {
		v.AddError("Name", "Name is required")
	}
	if utf8.RuneCountInString(in.Name) > 100 {
		v.AddError("Name", "Name must be at most 100 characters")
	}
	if in.DaysPerWeek < 1 || in.DaysPerWeek > 7 {
		v.AddError("DaysPerWeek", "Days per week must be between 1 and 7")
	}

	return v.AsError()
}

type DeleteWorkoutProgram struct {
	ProgramID string

	loggedInUserID string
}

func (in *DeleteWorkoutProgram) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in DeleteWorkoutProgram) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *DeleteWorkoutProgram) Validate() error {
	v := validator.New()

	if in.ProgramID == "" {
		v.AddError("ProgramID", "Program ID is required")
	}
	if !id.Valid(in.ProgramID) {
		v.AddError("ProgramID", "Program ID is invalid")
	}

	return v.AsError()
}

type LogWorkout struct {
	ProgramID   *string
	Title       string
	DurationMin int
	Notes       *string
	PerformedAt time.Time

	loggedInUserID string
}

func (in *LogWorkout) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in LogWorkout) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *LogWorkout) Validate() error {
	v := validator.New()

	in.Title = strings.TrimSpace(in.Title)

	if in.Title == "" {
		v.AddError("Title", "Title is required")
	}
	if utf8.RuneCountInString(in.Title) > 100 {
		v.AddError("Title", "Title must be at most 100 characters")
	}
	if in.DurationMin < 0 {
		v.AddError("DurationMin", "Duration cannot be negative")
	}
	if in.ProgramID != nil && !id.Valid(*in.ProgramID) {
		v.AddError("ProgramID", "Program ID is invalid")
	}

	return v.AsError()
}

type ListWorkoutHistory struct {
	PageArgs PageArgs

	loggedInUserID string
}

func (in *ListWorkoutHistory) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ListWorkoutHistory) LoggedInUserID() string {
	return in.loggedInUserID
}
