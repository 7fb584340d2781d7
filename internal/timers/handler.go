package timers

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=timers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/gymtimers/internal/telemetry/tracing"
	"github.com/2beens/gymtimers/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	defaultKeepAlive = 15 * time.Second
	eventsBufferSize = 64
	sourceDashboard  = "dashboard"
)

type timerRegistry interface {
	Snapshot() Snapshot
	AddActiveTimer(ctx context.Context, nt NewActiveTimer) string
	UpdateActiveTimer(ctx context.Context, id string, patch ActiveTimerPatch) bool
	PauseActiveTimer(ctx context.Context, id string) bool
	ResumeActiveTimer(ctx context.Context, id string) bool
	RemoveActiveTimer(ctx context.Context, id string, fromDashboard bool) bool
	AddRestTimer(ctx context.Context, nt NewRestTimer) string
	UpdateRestTimer(ctx context.Context, id string, patch RestTimerPatch) bool
	RemoveRestTimer(ctx context.Context, id string) bool
	ResetDailyTotal(ctx context.Context)
	ClearAllTimers(ctx context.Context)
	Subscribe(callback func(Event)) (unsubscribe func())
	Publish(e Event)
	SetTimerStoppedObserver(observer TimerStoppedObserver)
}

type Handler struct {
	registry  timerRegistry
	keepAlive time.Duration
}

func NewHandler(registry timerRegistry) *Handler {
	return &Handler{
		registry:  registry,
		keepAlive: defaultKeepAlive,
	}
}

// WithKeepAlive sets how often an idle event stream gets a comment line.
func (h *Handler) WithKeepAlive(d time.Duration) *Handler {
	h.keepAlive = d
	return h
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/timers", h.HandleGet).Methods("GET")
	r.HandleFunc("/timers", h.HandleClearAll).Methods("DELETE")
	r.HandleFunc("/timers/events", h.HandleEvents).Methods("GET")
	r.HandleFunc("/timers/total/reset", h.HandleResetTotal).Methods("POST")

	r.HandleFunc("/timers/active", h.HandleAddActive).Methods("POST")
	r.HandleFunc("/timers/active/{id}", h.HandleUpdateActive).Methods("PUT")
	r.HandleFunc("/timers/active/{id}", h.HandleRemoveActive).Methods("DELETE")
	r.HandleFunc("/timers/active/{id}/pause", h.HandlePauseActive).Methods("POST")
	r.HandleFunc("/timers/active/{id}/resume", h.HandleResumeActive).Methods("POST")

	r.HandleFunc("/timers/rest", h.HandleAddRest).Methods("POST")
	r.HandleFunc("/timers/rest/{id}", h.HandleUpdateRest).Methods("PUT")
	r.HandleFunc("/timers/rest/{id}", h.HandleRemoveRest).Methods("DELETE")
}

// ObserveDashboardStops takes the registry's timer-stopped slot and turns each
// dashboard stop into a timer_stopped event for the remote subscribers.
func (h *Handler) ObserveDashboardStops() {
	h.registry.SetTimerStoppedObserver(TimerStoppedFunc(func(timer ActiveTimer) {
		log.Debugf("timers: [%s] %s / %s stopped from the dashboard", timer.ID, timer.WorkoutName, timer.ExerciseName)
		h.registry.Publish(Event{Type: EventTimerStopped, StoppedTimer: &timer})
	}))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, h.registry.Snapshot(), http.StatusOK)
}

func (h *Handler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.clear")
	defer span.End()

	h.registry.ClearAllTimers(ctx)
	pkg.WriteJSON(w, h.registry.Snapshot(), http.StatusOK)
}

func (h *Handler) HandleResetTotal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.reset_total")
	defer span.End()

	h.registry.ResetDailyTotal(ctx)
	pkg.WriteJSON(w, h.registry.Snapshot(), http.StatusOK)
}

func (h *Handler) HandleAddActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.add_active")
	defer span.End()

	var nt NewActiveTimer
	if err := json.NewDecoder(r.Body).Decode(&nt); err != nil {
		log.Errorf("add active timer, unmarshal json params: %s", err)
		http.Error(w, "invalid active timer", http.StatusBadRequest)
		return
	}
	if nt.ExerciseName == "" {
		http.Error(w, "exercise name missing", http.StatusBadRequest)
		return
	}

	id := h.registry.AddActiveTimer(ctx, nt)
	pkg.WriteJSON(w, map[string]string{"id": id}, http.StatusCreated)
}

func (h *Handler) HandleUpdateActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.update_active")
	defer span.End()

	var patch ActiveTimerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Errorf("update active timer, unmarshal json params: %s", err)
		http.Error(w, "invalid active timer patch", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	h.respond(w, id, h.registry.UpdateActiveTimer(ctx, id, patch))
}

func (h *Handler) HandlePauseActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.pause_active")
	defer span.End()

	id := mux.Vars(r)["id"]
	h.respond(w, id, h.registry.PauseActiveTimer(ctx, id))
}

func (h *Handler) HandleResumeActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.resume_active")
	defer span.End()

	id := mux.Vars(r)["id"]
	h.respond(w, id, h.registry.ResumeActiveTimer(ctx, id))
}

// HandleRemoveActive stops a timer. ?source=dashboard marks a stop that did not
// come from the timer's own workout form, which triggers the auto-save.
func (h *Handler) HandleRemoveActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.remove_active")
	defer span.End()

	id := mux.Vars(r)["id"]
	fromDashboard := r.URL.Query().Get("source") == sourceDashboard
	h.respond(w, id, h.registry.RemoveActiveTimer(ctx, id, fromDashboard))
}

func (h *Handler) HandleAddRest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.add_rest")
	defer span.End()

	var nt NewRestTimer
	if err := json.NewDecoder(r.Body).Decode(&nt); err != nil {
		log.Errorf("add rest timer, unmarshal json params: %s", err)
		http.Error(w, "invalid rest timer", http.StatusBadRequest)
		return
	}

	id := h.registry.AddRestTimer(ctx, nt)
	pkg.WriteJSON(w, map[string]string{"id": id}, http.StatusCreated)
}

func (h *Handler) HandleUpdateRest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.update_rest")
	defer span.End()

	var patch RestTimerPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Errorf("update rest timer, unmarshal json params: %s", err)
		http.Error(w, "invalid rest timer patch", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	h.respond(w, id, h.registry.UpdateRestTimer(ctx, id, patch))
}

func (h *Handler) HandleRemoveRest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.remove_rest")
	defer span.End()

	id := mux.Vars(r)["id"]
	h.respond(w, id, h.registry.RemoveRestTimer(ctx, id))
}

func (h *Handler) respond(w http.ResponseWriter, id string, found bool) {
	if !found {
		http.Error(w, fmt.Sprintf("timer %s not found", id), http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, h.registry.Snapshot(), http.StatusOK)
}

type streamEvent struct {
	Event
	Snapshot Snapshot `json:"snapshot"`
}

// HandleEvents streams registry events as Server-Sent Events. Each event
// carries the snapshot current at send time. The stream starts with one
// timers_changed event so a new client renders right away.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	events := make(chan Event, eventsBufferSize)
	unsubscribe := h.registry.Subscribe(func(e Event) {
		select {
		case events <- e:
		default:
			log.Warnf("timers: event stream too slow, [%s] event dropped", e.Type)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", pkg.ContentType.EventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := h.writeEvent(w, Event{Type: EventTimersChanged}); err != nil {
		log.Debugf("timers: event stream closed: %s", err)
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			if err := h.writeEvent(w, e); err != nil {
				log.Debugf("timers: event stream closed: %s", err)
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) writeEvent(w http.ResponseWriter, e Event) error {
	data, err := json.Marshal(streamEvent{Event: e, Snapshot: h.registry.Snapshot()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
	return err
}
