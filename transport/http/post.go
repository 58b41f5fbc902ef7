package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/Roberadesissai/workout-tracker-sub000/service"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.CreatePost

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

		in.Content = r.FormValue("content")
		in.WorkoutID = emptyStrPtr(strings.TrimSpace(r.FormValue("workout_id")))

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

	out, err := h.svc.CreatePost(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) posts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageArgs, err := parsePageArgs(q)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	in := types.ListPosts{
		PageArgs: pageArgs,
	}

	if q.Has("user_id") {
		in.UserID = emptyStrPtr(q.Get("user_id"))
	}

	page, err := h.svc.Posts(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if page.Items == nil {
		page.Items = []types.Post{} // non null array
	}

	h.respond(w, page, http.StatusOK)
}

func (h *Handler) toggleReaction(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.ToggleReaction
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	in.PostID = r.PathValue("post_id")
	out, err := h.svc.ToggleReaction(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.CreateComment
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	in.PostID = r.PathValue("post_id")
	out, err := h.svc.CreateComment(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) comments(w http.ResponseWriter, r *http.Request) {
	pageArgs, err := parsePageArgs(r.URL.Query())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	in := types.ListComments{
		PostID:   r.PathValue("post_id"),
		PageArgs: pageArgs,
	}

	page, err := h.svc.Comments(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if page.Items == nil {
		page.Items = []types.Comment{} // non null array
	}

	h.respond(w, page, http.StatusOK)
}
