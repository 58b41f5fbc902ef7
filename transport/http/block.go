package http

import (
	"net/http"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) block(w http.ResponseWriter, r *http.Request) {
	in := types.BlockUser{
		TargetID: r.PathValue("profile_id"),
	}

	out, err := h.svc.Block(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) unblock(w http.ResponseWriter, r *http.Request) {
	in := types.UnblockUser{
		TargetID: r.PathValue("profile_id"),
	}

	if err := h.svc.Unblock(r.Context(), in); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) blockedUsers(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.BlockedUsers(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if out == nil {
		out = []types.Block{} // non null array
	}

	h.respond(w, out, http.StatusOK)
}
