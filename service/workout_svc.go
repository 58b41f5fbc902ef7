package service

import (
	"context"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/nicolasparada/go-errs"
)

var ErrNotProgramOwner = errs.PermissionDeniedError("not the program owner")

func (svc *Service) CreateWorkoutProgram(ctx context.Context, in types.CreateWorkoutProgram) (types.WorkoutProgram, error) {
	var out types.WorkoutProgram

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.CreateWorkoutProgram(ctx, in)
}

// WorkoutPrograms lists the logged-in user's own programs.
func (svc *Service) WorkoutPrograms(ctx context.Context) ([]types.WorkoutProgram, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	return svc.Cockroach.WorkoutPrograms(ctx, user.ID)
}

func (svc *Service) DeleteWorkoutProgram(ctx context.Context, in types.DeleteWorkoutProgram) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.DeleteWorkoutProgram(ctx, in)
}

// LogWorkout records a completed session. A referenced program must
// belong to the logger.
func (svc *Service) LogWorkout(ctx context.Context, in types.LogWorkout) (types.WorkoutHistory, error) {
	var out types.WorkoutHistory

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	if in.ProgramID != nil {
		program, err := svc.Cockroach.WorkoutProgram(ctx, *in.ProgramID)
		if err != nil {
			return out, err
		}

		if program.UserID != user.ID {
			return out, ErrNotProgramOwner
		}
	}

	return svc.Cockroach.CreateWorkoutHistory(ctx, in)
}

func (svc *Service) WorkoutHistory(ctx context.Context, in types.ListWorkoutHistory) (types.Page[types.WorkoutHistory], error) {
	var out types.Page[types.WorkoutHistory]

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	return svc.Cockroach.WorkoutHistory(ctx, in)
}
