package http

import (
	"net/http"
)

func (h *Handler) heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Heartbeat(r.Context()); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) offline(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Offline(r.Context()); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) presenceStream(w http.ResponseWriter, r *http.Request) {
	f, ok := w.(http.Flusher)
	if !ok {
		h.respondErr(w, errStreamingUnsupported)
		return
	}

	ctx := r.Context()
	pp, err := h.svc.PresenceStream(ctx, r.PathValue("profile_id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	sseHeaders(w)

	for {
		select {
		case p := <-pp:
			h.writeSSE(w, p)
			f.Flush()
		case <-ctx.Done():
			return
		}
	}
}
