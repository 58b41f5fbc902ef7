package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/Roberadesissai/workout-tracker-sub000/service"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) conversations(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Conversations(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if out == nil {
		out = []types.Conversation{} // non null array
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) thread(w http.ResponseWriter, r *http.Request) {
	in := types.RetrieveThread{
		CounterpartID: r.PathValue("counterpart_id"),
	}

	out, err := h.svc.Thread(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if out == nil {
		out = []types.Message{} // non null array
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) markThreadRead(w http.ResponseWriter, r *http.Request) {
	in := types.MarkThreadRead{
		CounterpartID: r.PathValue("counterpart_id"),
	}

	if err := h.svc.MarkThreadRead(r.Context(), in); err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) canMessage(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.CanMessage(r.Context(), r.PathValue("counterpart_id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.SendMessage

	var closeFuncs []func() error

	defer func() {
		for _, f := range closeFuncs {
			_ = f()
		}
	}()

	mediatype, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.Contains(strings.ToLower(mediatype), "multipart/form-data") {
		if err := r.ParseMultipartForm(service.MaxMediaBytes); err != nil {
			h.respondErr(w, errBadRequest)
			return
		}

		defer r.MultipartForm.RemoveAll()

		in.RecipientID = r.FormValue("recipient_id")
		in.Content = r.FormValue("content")
		in.WorkoutID = emptyStrPtr(strings.TrimSpace(r.FormValue("workout_id")))
		in.AchievementID = emptyStrPtr(strings.TrimSpace(r.FormValue("achievement_id")))

		if files, ok := r.MultipartForm.File["media"]; ok && len(files) != 0 {
			header := files[0]
			if header.Size > service.MaxMediaBytes {
				h.respondErr(w, service.ErrUnsupportedMediaType)
				return
			}

			f, err := header.Open()
			if err != nil {
				h.respondErr(w, errBadRequest)
				return
			}

			closeFuncs = append(closeFuncs, f.Close)

			in.Media = f
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			h.respondErr(w, errBadRequest)
			return
		}
	}

	out, err := h.svc.SendMessage(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) messageStream(w http.ResponseWriter, r *http.Request) {
	f, ok := w.(http.Flusher)
	if !ok {
		h.respondErr(w, errStreamingUnsupported)
		return
	}

	ctx := r.Context()
	ee, err := h.svc.MessageStream(ctx)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	sseHeaders(w)

	for {
		select {
		case ev := <-ee:
			h.writeSSE(w, ev)
			f.Flush()
		case <-ctx.Done():
			return
		}
	}
}
