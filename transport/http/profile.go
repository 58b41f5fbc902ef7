package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Roberadesissai/workout-tracker-sub000/service"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.CreateProfile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	out, err := h.svc.CreateProfile(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	in := types.RetrieveProfileFromUsername{
		Username: r.PathValue("username"),
	}

	out, err := h.svc.ProfileFromUsername(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.UpdateProfile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	out, err := h.svc.UpdateProfile(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	b, err := io.ReadAll(io.LimitReader(r.Body, service.MaxMediaBytes+1))
	if err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	avatarURL, err := h.svc.UpdateAvatar(r.Context(), bytes.NewReader(b))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, avatarURL, http.StatusOK)
}
