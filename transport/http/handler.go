package http

import (
	"net/http"
	"strings"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/service"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	svc    *service.Service
	logger log.Logger
}

func New(svc *service.Service, logger log.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("POST /api/profiles", h.createProfile)
	mux.HandleFunc("GET /api/token", h.withAuth(h.token))

	mux.HandleFunc("GET /api/profiles/{username}", h.withAuth(h.profile))
	mux.HandleFunc("PATCH /api/profile", h.withAuth(h.updateProfile))
	mux.HandleFunc("PUT /api/profile/avatar", h.withAuth(h.updateAvatar))

	mux.HandleFunc("POST /api/profiles/{profile_id}/follow", h.withAuth(h.follow))
	mux.HandleFunc("DELETE /api/profiles/{profile_id}/follow", h.withAuth(h.unfollow))
	mux.HandleFunc("GET /api/follow-requests", h.withAuth(h.followRequests))
	mux.HandleFunc("POST /api/follow-requests/{follower_id}/accept", h.withAuth(h.acceptFollowRequest))
	mux.HandleFunc("DELETE /api/follow-requests/{follower_id}", h.withAuth(h.rejectFollowRequest))

	mux.HandleFunc("POST /api/profiles/{profile_id}/block", h.withAuth(h.block))
	mux.HandleFunc("DELETE /api/profiles/{profile_id}/block", h.withAuth(h.unblock))
	mux.HandleFunc("GET /api/blocked-users", h.withAuth(h.blockedUsers))

	mux.HandleFunc("GET /api/conversations", h.withAuth(h.conversations))
	mux.HandleFunc("GET /api/conversations/{counterpart_id}/messages", h.withAuth(h.thread))
	mux.HandleFunc("POST /api/conversations/{counterpart_id}/read", h.withAuth(h.markThreadRead))
	mux.HandleFunc("GET /api/conversations/{counterpart_id}/can-message", h.withAuth(h.canMessage))
	mux.HandleFunc("POST /api/messages", h.withAuth(h.sendMessage))
	mux.HandleFunc("GET /api/messages", h.withAuth(h.messageStream))

	mux.HandleFunc("POST /api/heartbeat", h.withAuth(h.heartbeat))
	mux.HandleFunc("POST /api/offline", h.withAuth(h.offline))
	mux.HandleFunc("GET /api/profiles/{profile_id}/presence", h.withAuth(h.presenceStream))

	mux.HandleFunc("POST /api/posts", h.withAuth(h.createPost))
	mux.HandleFunc("GET /api/posts", h.withAuth(h.posts))
	mux.HandleFunc("POST /api/posts/{post_id}/toggle-reaction", h.withAuth(h.toggleReaction))
	mux.HandleFunc("POST /api/posts/{post_id}/comments", h.withAuth(h.createComment))
	mux.HandleFunc("GET /api/posts/{post_id}/comments", h.withAuth(h.comments))

	mux.HandleFunc("POST /api/progress", h.withAuth(h.createProgressPost))
	mux.HandleFunc("GET /api/progress", h.withAuth(h.progressPosts))
	mux.HandleFunc("POST /api/progress/{post_id}/toggle-reaction", h.withAuth(h.toggleProgressReaction))
	mux.HandleFunc("POST /api/progress/{post_id}/comments", h.withAuth(h.createProgressComment))
	mux.HandleFunc("POST /api/creators/{creator_id}/subscribe", h.withAuth(h.subscribeToCreator))

	mux.HandleFunc("POST /api/workout-programs", h.withAuth(h.createWorkoutProgram))
	mux.HandleFunc("GET /api/workout-programs", h.withAuth(h.workoutPrograms))
	mux.HandleFunc("DELETE /api/workout-programs/{program_id}", h.withAuth(h.deleteWorkoutProgram))
	mux.HandleFunc("POST /api/workouts", h.withAuth(h.logWorkout))
	mux.HandleFunc("GET /api/workouts", h.withAuth(h.workoutHistory))

	mux.HandleFunc("POST /api/push-subscriptions", h.withAuth(h.registerPushSubscription))
	mux.HandleFunc("GET /api/vapid-public-key", h.withAuth(h.vapidPublicKey))

	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// withAuth resolves the bearer token into the logged-in profile and
// stores it in the request context.
func (h *Handler) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			// SSE clients cannot set headers, so the token may ride
			// in the query string.
			token = r.URL.Query().Get("auth_token")
		}

		if token == "" {
			next(w, r)
			return
		}

		uid, err := h.svc.AuthUserIDFromToken(token)
		if err != nil {
			h.respondErr(w, err)
			return
		}

		ctx := r.Context()
		profile, err := h.svc.Profile(ctx, types.RetrieveProfile{ProfileID: uid})
		if err != nil {
			h.respondErr(w, err)
			return
		}

		ctx = auth.ContextWithUser(ctx, profile)
		next(w, r.WithContext(ctx))
	}
}
