package cockroach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/id"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/jackc/pgx/v5"
	"github.com/nicolasparada/go-errs"
)

var workoutProgramColumns = [...]string{
	"workout_programs.id",
	"workout_programs.user_id",
	"workout_programs.name",
	"workout_programs.description",
	"workout_programs.days_per_week",
	"workout_programs.focus_area",
	"workout_programs.created_at",
	"workout_programs.updated_at",
}

var workoutProgramColumnsStr = strings.Join(workoutProgramColumns[:], ", ")

func (c *Cockroach) CreateWorkoutProgram(ctx context.Context, in types.CreateWorkoutProgram) (types.WorkoutProgram, error) {
	var out types.WorkoutProgram

	query := `
		INSERT INTO workout_programs (id, user_id, name, description, days_per_week, focus_area)
		VALUES (@program_id, @user_id, @name, @description, @days_per_week, @focus_area)
		RETURNING ` + workoutProgramColumnsStr + `
	`

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"program_id":    id.Generate(),
		"user_id":       in.LoggedInUserID(),
		"name":          in.Name,
		"description":   in.Description,
		"days_per_week": in.DaysPerWeek,
		"focus_area":    in.FocusArea,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert workout program: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.WorkoutProgram])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted workout program: %w", err)
	}

	return out, nil
}

func (c *Cockroach) WorkoutPrograms(ctx context.Context, userID string) ([]types.WorkoutProgram, error) {
	query := `
		SELECT ` + workoutProgramColumnsStr + `
		FROM workout_programs
		WHERE workout_programs.user_id = $1
		ORDER BY workout_programs.created_at DESC, workout_programs.id DESC
	`

	rows, err := c.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sql select workout programs: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.WorkoutProgram])
	if err != nil {
		return nil, fmt.Errorf("sql collect workout programs: %w", err)
	}

	return out, nil
}

func (c *Cockroach) WorkoutProgram(ctx context.Context, programID string) (types.WorkoutProgram, error) {
	var out types.WorkoutProgram

	query := `
		SELECT ` + workoutProgramColumnsStr + `
		FROM workout_programs
		WHERE workout_programs.id = $1
	`

	rows, err := c.db.Query(ctx, query, programID)
	if err != nil {
		return out, fmt.Errorf("sql select workout program: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.WorkoutProgram])
	if errors.Is(err, pgx.ErrNoRows) {
		return out, errs.NotFoundError("workout program not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect workout program: %w", err)
	}

	return out, nil
}

func (c *Cockroach) DeleteWorkoutProgram(ctx context.Context, in types.DeleteWorkoutProgram) error {
	// History rows keep a nullable reference so past logs survive
	// program deletion.
	return c.db.RunTx(ctx, func(ctx context.Context) error {
		_, err := c.db.Exec(ctx, `
			UPDATE workout_history SET program_id = NULL
			WHERE program_id = @program_id AND user_id = @user_id
		`, pgx.StrictNamedArgs{
			"program_id": in.ProgramID,
			"user_id":    in.LoggedInUserID(),
		})
		if err != nil {
			return fmt.Errorf("sql detach workout history: %w", err)
		}

		result, err := c.db.Exec(ctx, `
			DELETE FROM workout_programs
			WHERE id = @program_id AND user_id = @user_id
		`, pgx.StrictNamedArgs{
			"program_id": in.ProgramID,
			"user_id":    in.LoggedInUserID(),
		})
		if err != nil {
			return fmt.Errorf("sql delete workout program: %w", err)
		}

		if result.RowsAffected() == 0 {
			return errs.NotFoundError("workout program not found")
		}

		return nil
	})
}

var workoutHistoryColumns = [...]string{
	"workout_history.id",
	"workout_history.user_id",
	"workout_history.program_id",
	"workout_history.title",
	"workout_history.duration_min",
	"workout_history.notes",
	"workout_history.performed_at",
}

var workoutHistoryColumnsStr = strings.Join(workoutHistoryColumns[:], ", ")

func (c *Cockroach) CreateWorkoutHistory(ctx context.Context, in types.LogWorkout) (types.WorkoutHistory, error) {
	var out types.WorkoutHistory

	query := `
		INSERT INTO workout_history (id, user_id, program_id, title, duration_min, notes, performed_at)
		VALUES (@history_id, @user_id, @program_id, @title, @duration_min, @notes, @performed_at)
		RETURNING ` + workoutHistoryColumnsStr + `
	`

	performedAt := in.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now()
	}

	rows, err := c.db.Query(ctx, query, pgx.StrictNamedArgs{
		"history_id":   id.Generate(),
		"user_id":      in.LoggedInUserID(),
		"program_id":   in.ProgramID,
		"title":        in.Title,
		"duration_min": in.DurationMin,
		"notes":        in.Notes,
		"performed_at": performedAt,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert workout history: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.WorkoutHistory])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted workout history: %w", err)
	}

	return out, nil
}

func (c *Cockroach) WorkoutHistory(ctx context.Context, in types.ListWorkoutHistory) (types.Page[types.WorkoutHistory], error) {
	var out types.Page[types.WorkoutHistory]

	query := `
		SELECT ` + workoutHistoryColumnsStr + `
		FROM workout_history
		WHERE workout_history.user_id = @user_id
	`
	args := pgx.NamedArgs{
		"user_id": in.LoggedInUserID(),
	}

	pageArgs, err := ParsePageArgs(in.PageArgs)
	if err != nil {
		return out, err
	}

	query = addPageFilter(query, "workout_history", "performed_at", args, pageArgs)
	query = addPageOrder(query, "workout_history", "performed_at", pageArgs)
	query = addPageLimit(query, args, pageArgs)

	rows, err := c.db.Query(ctx, query, args)
	if err != nil {
		return out, fmt.Errorf("sql select workout history: %w", err)
	}

	out.Items, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.WorkoutHistory])
	if err != nil {
		return out, fmt.Errorf("sql collect workout history: %w", err)
	}

	if err := applyPageInfo(&out, pageArgs, func(h types.WorkoutHistory) Cursor {
		return Cursor{ID: h.ID, CreatedAt: h.PerformedAt}
	}); err != nil {
		return out, err
	}

	return out, nil
}
