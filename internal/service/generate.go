package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"

	"qompath/internal/codec"
	"qompath/internal/domain"
	"qompath/internal/llm"
	"qompath/internal/repository"
	"qompath/internal/store"
)

var (
	// ErrEmptyPrompt is returned before any request when the prompt is blank
	ErrEmptyPrompt = errors.New("user prompt is required")
	// ErrDraftNotFound is returned for unknown draft IDs
	ErrDraftNotFound = errors.New("draft not found")
	// ErrDraftNotApplicable is returned when applying a draft that holds no valid document
	ErrDraftNotApplicable = errors.New("draft does not hold a valid document")
)

// InvalidDocumentError reports generated text that does not parse as a
// document. Raw is the cleaned text so the user can fix it by hand.
type InvalidDocumentError struct {
	Raw     string
	DraftID string
	Err     error
}

func (e *InvalidDocumentError) Error() string {
	return "generated content is not a valid document: " + e.Err.Error()
}

func (e *InvalidDocumentError) Unwrap() error {
	return e.Err
}

// GenerationOption configures a GenerationService
type GenerationOption func(*GenerationService)

// WithTimeout bounds each completion request
func WithTimeout(d time.Duration) GenerationOption {
	return func(s *GenerationService) {
		s.timeout = d
	}
}

// WithClock sets the time source used to stamp drafts
func WithClock(now func() time.Time) GenerationOption {
	return func(s *GenerationService) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *golog.Logger) GenerationOption {
	return func(s *GenerationService) {
		s.log = l
	}
}

// GenerationService turns a free-text prompt into a scene document. Results
// land in the draft buffer; the live graph only changes through ApplyDraft.
type GenerationService struct {
	completer llm.Completer
	prompt    *llm.SystemPrompt
	drafts    repository.DraftRepository
	scene     *SceneService
	eventBus  *EventBus

	timeout time.Duration
	now     func() time.Time
	log     *golog.Logger
}

// NewGenerationService creates a generation service. A nil completer means
// no credential is configured; every request then fails with
// llm.ErrMissingCredential without touching the network.
func NewGenerationService(completer llm.Completer, prompt *llm.SystemPrompt, drafts repository.DraftRepository,
	scene *SceneService, eventBus *EventBus, opts ...GenerationOption) *GenerationService {
	s := &GenerationService{
		completer: completer,
		prompt:    prompt,
		drafts:    drafts,
		scene:     scene,
		eventBus:  eventBus,
		now:       time.Now,
		log:       golog.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.prompt == nil {
		s.prompt = llm.NewSystemPrompt("")
	}
	return s
}

// Generate asks the completer for a document. On success the returned draft
// is ready and its Text is the cleaned, parseable document. Generated text
// that does not parse yields *InvalidDocumentError with the raw text; the
// draft is recorded either way.
func (s *GenerationService) Generate(ctx context.Context, userPrompt string) (*domain.Draft, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if s.completer == nil {
		return nil, llm.ErrMissingCredential
	}

	draft := &domain.Draft{
		ID:        uuid.NewString(),
		Prompt:    userPrompt,
		CreatedAt: s.now(),
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.completer.Complete(ctx, s.prompt.Text(), userPrompt)
	if err != nil {
		s.log.Warnf("generation: request %s failed: %v", draft.ID, err)
		draft.Status = domain.DraftFailed
		draft.Error = err.Error()
		s.settle(ctx, draft)
		return nil, err
	}

	cleaned := llm.StripFences(out)
	draft.Text = cleaned

	if _, err := codec.Unmarshal([]byte(cleaned)); err != nil {
		s.log.Warnf("generation: request %s returned an invalid document: %v", draft.ID, err)
		draft.Status = domain.DraftInvalid
		draft.Error = err.Error()
		s.settle(ctx, draft)
		return draft, &InvalidDocumentError{Raw: cleaned, DraftID: draft.ID, Err: err}
	}

	draft.Status = domain.DraftReady
	s.settle(ctx, draft)
	s.log.Infof("generation: request %s produced a %d byte document", draft.ID, len(cleaned))
	return draft, nil
}

// settle stamps and records a finished draft. The most recently settled
// draft wins, regardless of issue order.
func (s *GenerationService) settle(ctx context.Context, draft *domain.Draft) {
	draft.SettledAt = s.now()

	// The request context may already be done; recording must not depend on it
	saveCtx := context.WithoutCancel(ctx)
	if err := s.drafts.SaveDraft(saveCtx, draft); err != nil {
		s.log.Errorf("generation: failed to record draft %s: %v", draft.ID, err)
		return
	}

	if s.eventBus != nil {
		s.eventBus.Publish(Event{
			Type:    EventDraftSettled,
			Payload: map[string]string{"draft_id": draft.ID, "status": string(draft.Status)},
		})
	}
}

// GetDraft returns a recorded draft
func (s *GenerationService) GetDraft(ctx context.Context, id string) (*domain.Draft, error) {
	draft, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return draft, nil
}

// LatestDraft returns the most recently settled draft
func (s *GenerationService) LatestDraft(ctx context.Context) (*domain.Draft, error) {
	draft, err := s.drafts.LatestDraft(ctx)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// ListDrafts returns recorded drafts, newest first
func (s *GenerationService) ListDrafts(ctx context.Context, limit int) ([]*domain.Draft, error) {
	return s.drafts.ListDrafts(ctx, limit)
}

// ApplyDraft replaces the live graph with a ready draft's document
func (s *GenerationService) ApplyDraft(ctx context.Context, id string) (store.Change, error) {
	draft, err := s.GetDraft(ctx, id)
	if err != nil {
		return store.Change{}, err
	}
	if !draft.Applicable() {
		return store.Change{}, ErrDraftNotApplicable
	}

	g, err := codec.Unmarshal([]byte(draft.Text))
	if err != nil {
		return store.Change{}, fmt.Errorf("failed to parse draft %s: %w", id, err)
	}

	s.log.Infof("generation: applying draft %s", id)
	return s.scene.ReplaceGraph(g), nil
}
