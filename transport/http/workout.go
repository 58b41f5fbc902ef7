package http

import (
	"encoding/json"
	"net/http"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) createWorkoutProgram(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.CreateWorkoutProgram
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	out, err := h.svc.CreateWorkoutProgram(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) workoutPrograms(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.WorkoutPrograms(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if out == nil {
		out = []types.WorkoutProgram{} // non null array
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) deleteWorkoutProgram(w http.ResponseWriter, r *http.Request) {
	in := types.DeleteWorkoutProgram{
		ProgramID: r.PathValue("program_id"),
	}

	if err := h.svc.DeleteWorkoutProgram(r.Context(), in); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logWorkout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.LogWorkout
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	out, err := h.svc.LogWorkout(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) workoutHistory(w http.ResponseWriter, r *http.Request) {
	pageArgs, err := parsePageArgs(r.URL.Query())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	in := types.ListWorkoutHistory{
		PageArgs: pageArgs,
	}

	page, err := h.svc.WorkoutHistory(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if page.Items == nil {
		page.Items = []types.WorkoutHistory{} // non null array
	}

	h.respond(w, page, http.StatusOK)
}
