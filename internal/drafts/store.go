package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/gymtimers/internal/kvstore"
	"github.com/2beens/gymtimers/internal/telemetry/tracing"

	"github.com/google/uuid"
)

const KeyWorkoutDraft = "workout-draft"

var ErrNoDraft = errors.New("no workout draft")

type Store struct {
	kv kvstore.Store
}

func NewStore(kv kvstore.Store) *Store {
	return &Store{
		kv: kv,
	}
}

// Get returns ErrNoDraft when nothing is stored.
func (s *Store) Get(ctx context.Context) (_ *Draft, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "drafts.store.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	raw, err := s.kv.Get(ctx, KeyWorkoutDraft)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrNoDraft
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	if draft.Exercises == nil {
		draft.Exercises = []DraftExercise{}
	}
	return &draft, nil
}

// Save stores the draft, giving every exercise without a correlation id a new one.
func (s *Store) Save(ctx context.Context, draft Draft) (_ *Draft, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "drafts.store.save")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	exercises := make([]DraftExercise, 0, len(draft.Exercises))
	for _, e := range draft.Exercises {
		if e.CorrelationID == "" {
			e.CorrelationID = uuid.NewString()
		}
		exercises = append(exercises, e)
	}
	draft.Exercises = exercises

	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.kv.Set(ctx, KeyWorkoutDraft, raw); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return &draft, nil
}

func (s *Store) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "drafts.store.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := s.kv.Del(ctx, KeyWorkoutDraft); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
