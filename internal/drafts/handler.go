package drafts

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=drafts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymtimers/internal/telemetry/tracing"
	"github.com/2beens/gymtimers/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type draftStore interface {
	Get(ctx context.Context) (*Draft, error)
	Save(ctx context.Context, draft Draft) (*Draft, error)
	Clear(ctx context.Context) error
}

type Handler struct {
	store draftStore
}

func NewHandler(store draftStore) *Handler {
	return &Handler{
		store: store,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workout/draft", h.HandleGet).Methods("GET")
	r.HandleFunc("/workout/draft", h.HandleSave).Methods("PUT")
	r.HandleFunc("/workout/draft", h.HandleClear).Methods("DELETE")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.drafts.get")
	defer span.End()

	draft, err := h.store.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNoDraft) {
			http.Error(w, "no draft", http.StatusNotFound)
			return
		}
		log.Errorf("get workout draft: %s", err)
		http.Error(w, "failed to get draft", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, draft, http.StatusOK)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.drafts.save")
	defer span.End()

	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		log.Errorf("save workout draft, unmarshal json params: %s", err)
		http.Error(w, "invalid draft", http.StatusBadRequest)
		return
	}

	saved, err := h.store.Save(ctx, draft)
	if err != nil {
		log.Errorf("save workout draft: %s", err)
		http.Error(w, "failed to save draft", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, saved, http.StatusOK)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.drafts.clear")
	defer span.End()

	if err := h.store.Clear(ctx); err != nil {
		log.Errorf("clear workout draft: %s", err)
		http.Error(w, "failed to clear draft", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
