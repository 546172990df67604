package session

import (
	"context"
	"sync"

	"cardadvisor/app/client/advisor"
	"cardadvisor/app/service/conversation"
	"cardadvisor/app/service/viewsync"

	"github.com/google/uuid"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Service hands out one engine per browsing session. Engines live in memory
// only; losing the process loses the conversations.
type Service struct {
	asker     conversation.Asker
	suggester conversation.Suggester

	mu      sync.RWMutex
	engines map[uuid.UUID]*Engine
}

func New(di *do.Injector) (*Service, error) {
	client := do.MustInvoke[*advisor.Client](di)

	return newService(client, client), nil
}

func newService(asker conversation.Asker, suggester conversation.Suggester) *Service {
	return &Service{
		asker:     asker,
		suggester: suggester,
		engines:   make(map[uuid.UUID]*Engine),
	}
}

func (s *Service) Create() *Engine {
	engine := &Engine{
		ID:           uuid.New(),
		processor:    conversation.NewService(s.asker, s.suggester),
		synchronizer: viewsync.NewSynchronizer(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engines[engine.ID] = engine

	return engine
}

func (s *Service) Get(id uuid.UUID) (*Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	engine, ok := s.engines[id]

	return engine, ok
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engines = make(map[uuid.UUID]*Engine)

	return nil
}

// Engine binds one conversation processor to its view synchronizer.
type Engine struct {
	ID uuid.UUID

	processor    *conversation.Service
	synchronizer *viewsync.Synchronizer
}

// Result carries the visual intents produced by one accepted submission.
type Result struct {
	Intents []viewsync.Intent
}

// Submit runs one turn, feeding each state transition through the
// synchronizer as it happens: the question transition is observed before
// the answer is fetched, so a scroll reported mid-answer suppresses the
// auto-scroll for that turn. A nil result means the input was blank and
// was ignored.
func (e *Engine) Submit(ctx context.Context, text string) (*Result, error) {
	turn, err := e.processor.Begin(text)
	if err != nil || turn == nil {
		return nil, err
	}

	intents := e.synchronizer.Observe(turn.Before, turn.Asked)

	after := e.processor.Complete(ctx, turn)
	intents = append(intents, e.synchronizer.Observe(turn.Asked, after)...)

	return &Result{Intents: intents}, nil
}

func (e *Engine) Snapshot() conversation.Snapshot {
	return e.processor.Snapshot()
}

func (e *Engine) ObserveScroll(pane viewsync.Pane, offset float64) {
	e.synchronizer.ObserveScroll(pane, offset)
}
