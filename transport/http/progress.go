package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Roberadesissai/workout-tracker-sub000/service"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
)

func (h *Handler) createProgressPost(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.CreateProgressPost

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
		if v, err := strconv.ParseBool(r.FormValue("premium_only")); err == nil {
			in.PremiumOnly = v
		}

		if files, ok := r.MultipartForm.File["photo"]; ok && len(files) != 0 {
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

			in.Photo = f
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			h.respondErr(w, errBadRequest)
			return
		}
	}

	out, err := h.svc.CreateProgressPost(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) progressPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageArgs, err := parsePageArgs(q)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	in := types.ListProgressPosts{
		PageArgs: pageArgs,
	}

	if q.Has("creator_id") {
		in.CreatorID = emptyStrPtr(q.Get("creator_id"))
	}

	page, err := h.svc.ProgressPosts(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if page.Items == nil {
		page.Items = []types.ProgressPost{} // non null array
	}

	h.respond(w, page, http.StatusOK)
}

func (h *Handler) toggleProgressReaction(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.ToggleProgressReaction
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	in.ProgressPostID = r.PathValue("post_id")
	out, err := h.svc.ToggleProgressReaction(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) createProgressComment(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var in types.CreateProgressComment
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, errBadRequest)
		return
	}

	in.ProgressPostID = r.PathValue("post_id")
	out, err := h.svc.CreateProgressComment(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) subscribeToCreator(w http.ResponseWriter, r *http.Request) {
	in := types.SubscribeToCreator{
		CreatorID: r.PathValue("creator_id"),
	}

	out, err := h.svc.SubscribeToCreator(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}
