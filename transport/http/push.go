package http

import (
	"encoding/json"
	"net/http"

	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) registerPushSubscription(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.RegisterPushSubscription
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	out, err := h.svc.RegisterPushSubscription(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) vapidPublicKey(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.VAPIDPublicKey(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}
