package http

import (
	"net/http"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	in := types.FollowUser{
		TargetID: r.PathValue("profile_id"),
	}

	out, err := h.svc.Follow(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	in := types.UnfollowUser{
		TargetID: r.PathValue("profile_id"),
	}

	if err := h.svc.Unfollow(r.Context(), in); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) followRequests(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.FollowRequests(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if out == nil {
		out = []types.Follow{} // non null array
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) acceptFollowRequest(w http.ResponseWriter, r *http.Request) {
	in := types.AcceptFollowRequest{
		FollowerID: r.PathValue("follower_id"),
	}

	if err := h.svc.AcceptFollowRequest(r.Context(), in); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rejectFollowRequest(w http.ResponseWriter, r *http.Request) {
	in := types.RejectFollowRequest{
		FollowerID: r.PathValue("follower_id"),
	}

	if err := h.svc.RejectFollowRequest(r.Context(), in); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
