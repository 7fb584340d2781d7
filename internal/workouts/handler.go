package workouts

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymtimers/internal/middleware"
	"github.com/2beens/gymtimers/internal/querycache"
	"github.com/2beens/gymtimers/internal/telemetry/metrics"
	"github.com/2beens/gymtimers/internal/telemetry/tracing"
	"github.com/2beens/gymtimers/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	presenceWindow   = 2 * time.Hour
)

type workoutsRepo interface {
	ListExercises(ctx context.Context) ([]Exercise, error)
	AddWorkout(ctx context.Context, workout NewWorkout) (int, error)
	ListWorkouts(ctx context.Context, limit int, withExercises bool) ([]Workout, error)
	Stats(ctx context.Context, from time.Time) (Stats, error)
	UpsertPresence(ctx context.Context, presence Presence) error
	ListPresence(ctx context.Context, since time.Time) ([]Presence, error)
}

type queryCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

type Handler struct {
	repo  workoutsRepo
	cache queryCache
	now   func() time.Time
}

func NewHandler(repo workoutsRepo, cache queryCache) *Handler {
	return &Handler{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// SetupRoutes registers the workouts API. Writes are rate limited per client IP.
func (h *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	workoutsRouter := mainRouter.NewRoute().Subrouter()
	workoutsRouter.HandleFunc("/exercises-list", h.HandleListExercises).Methods("GET", "OPTIONS").Name("exercises-list")
	workoutsRouter.HandleFunc("/workouts", h.HandleAdd).Methods("POST", "OPTIONS").Name("add-workout")
	workoutsRouter.HandleFunc("/workouts", h.HandleList).Methods("GET").Name("list-workouts")
	workoutsRouter.HandleFunc("/workouts/stats", h.HandleStats).Methods("GET", "OPTIONS").Name("workout-stats")
	workoutsRouter.HandleFunc("/community-presence", h.HandleUpdatePresence).Methods("POST", "OPTIONS").Name("update-presence")
	workoutsRouter.HandleFunc("/community-presence", h.HandleListPresence).Methods("GET").Name("list-presence")

	if rateLimiter != nil {
		workoutsRouter.Use(middleware.RateLimit(rateLimiter, metricsManager, "workouts", allowedPerMin))
	}
}

func (h *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list_exercises")
	defer span.End()

	exercises, err := h.repo.ListExercises(ctx)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, exercises, http.StatusOK)
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var workout NewWorkout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Errorf("add workout, unmarshal json params: %s", err)
		http.Error(w, "invalid workout", http.StatusBadRequest)
		return
	}

	if err := workout.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.repo.AddWorkout(ctx, workout)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) || errors.Is(err, ErrInvalidWorkout) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("add workout [%s]: %s", workout.Name, err)
		http.Error(w, "failed to add workout", http.StatusInternalServerError)
		return
	}

	if err := h.cache.Invalidate(ctx, querycache.WorkoutKeys...); err != nil {
		log.Warnf("add workout [%d], invalidate cache: %s", id, err)
	}

	log.Debugf("new workout added: [%s] %d", workout.Name, id)
	pkg.WriteJSON(w, AddWorkoutResponse{ID: id}, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(l, maxListLimit)
	}
	withExercises := r.URL.Query().Get("withExercises") == "true"

	// only the default page is cached
	cacheKey := ""
	if limit == defaultListLimit {
		cacheKey = querycache.KeyWorkouts
		if withExercises {
			cacheKey = querycache.KeyWorkoutsWithExercises
		}
	}

	var workouts []Workout
	if cacheKey != "" && h.cachedGet(ctx, cacheKey, &workouts) {
		pkg.WriteJSON(w, workouts, http.StatusOK)
		return
	}

	workouts, err := h.repo.ListWorkouts(ctx, limit, withExercises)
	if err != nil {
		log.Errorf("list workouts: %s", err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}

	if cacheKey != "" {
		h.cachedSet(ctx, cacheKey, workouts)
	}
	pkg.WriteJSON(w, workouts, http.StatusOK)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.stats")
	defer span.End()

	fromStr := r.URL.Query().Get("from")
	if fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		stats, err := h.repo.Stats(ctx, from)
		if err != nil {
			log.Errorf("workout stats from %s: %s", fromStr, err)
			http.Error(w, "failed to get stats", http.StatusInternalServerError)
			return
		}
		pkg.WriteJSON(w, stats, http.StatusOK)
		return
	}

	var stats Stats
	if h.cachedGet(ctx, querycache.KeyWorkoutStats, &stats) {
		pkg.WriteJSON(w, stats, http.StatusOK)
		return
	}

	now := h.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	stats, err := h.repo.Stats(ctx, monthStart)
	if err != nil {
		log.Errorf("workout stats: %s", err)
		http.Error(w, "failed to get stats", http.StatusInternalServerError)
		return
	}

	h.cachedSet(ctx, querycache.KeyWorkoutStats, stats)
	pkg.WriteJSON(w, stats, http.StatusOK)
}

func (h *Handler) HandleUpdatePresence(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update_presence")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var presence Presence
	if err := json.NewDecoder(r.Body).Decode(&presence); err != nil {
		log.Errorf("update presence, unmarshal json params: %s", err)
		http.Error(w, "invalid presence", http.StatusBadRequest)
		return
	}
	if presence.WorkoutName == "" {
		http.Error(w, "workout name empty", http.StatusBadRequest)
		return
	}
	presence.UpdatedAt = h.now()

	if err := h.repo.UpsertPresence(ctx, presence); err != nil {
		log.Errorf("update presence [%s]: %s", presence.WorkoutName, err)
		http.Error(w, "failed to update presence", http.StatusInternalServerError)
		return
	}

	if err := h.cache.Invalidate(ctx, querycache.KeyCommunityPresence); err != nil {
		log.Warnf("update presence, invalidate cache: %s", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListPresence(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list_presence")
	defer span.End()

	var presence []Presence
	if h.cachedGet(ctx, querycache.KeyCommunityPresence, &presence) {
		pkg.WriteJSON(w, presence, http.StatusOK)
		return
	}

	presence, err := h.repo.ListPresence(ctx, h.now().Add(-presenceWindow))
	if err != nil {
		log.Errorf("list presence: %s", err)
		http.Error(w, "failed to list presence", http.StatusInternalServerError)
		return
	}

	h.cachedSet(ctx, querycache.KeyCommunityPresence, presence)
	pkg.WriteJSON(w, presence, http.StatusOK)
}

// cachedGet treats a cache failure as a miss.
func (h *Handler) cachedGet(ctx context.Context, key string, dst any) bool {
	hit, err := h.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warnf("query cache get [%s]: %s", key, err)
		return false
	}
	return hit
}

func (h *Handler) cachedSet(ctx context.Context, key string, v any) {
	if err := h.cache.Set(ctx, key, v); err != nil {
		log.Warnf("query cache set [%s]: %s", key, err)
	}
}
