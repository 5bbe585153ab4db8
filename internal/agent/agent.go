// Package agent implements the ordering dialogue: conversation tracking,
// payment-confirmation detection, and the two-round-trip extraction
// protocol that turns a free-form conversation into a persisted order.
//
// Each utterance is processed to completion before the next is accepted.
// A non-confirming utterance costs one model round-trip; a confirming one
// costs exactly three (reply, arrival time, field extraction). When
// extraction fails the turn degrades to a normal reply and the customer can
// simply confirm again; everything appended stays in the history.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mokabrew/baristad/internal/conversation"
	"github.com/mokabrew/baristad/internal/llm"
	"github.com/mokabrew/baristad/internal/order"
	"github.com/mokabrew/baristad/internal/profile"
	"github.com/mokabrew/baristad/internal/store"
)

const (
	etaQuestion = "How many minutes until your order arrives?"

	extractInstruction = "From our conversation, extract only the final order details " +
		"and return a raw JSON object with keys: menu, temp, size, extra, price. No explanation."
)

// Result is the outcome of handling one utterance. Done is true iff the
// utterance led to a successfully persisted order; Order is set only then.
type Result struct {
	Reply string
	Done  bool
	Order *order.FinalOrder
}

// Agent drives one customer's ordering conversation.
type Agent struct {
	mu        sync.Mutex
	session   *conversation.Session
	client    llm.Client
	profile   *profile.Profile
	finalizer *order.Finalizer
	store     store.Store
	snapshot  store.Snapshotter
	detector  Detector
	extractor Extractor
}

// Option customizes agent construction.
type Option func(*Agent)

// WithDetector swaps the confirmation-detection strategy.
func WithDetector(d Detector) Option {
	return func(a *Agent) { a.detector = d }
}

// WithExtractor swaps the reply-parsing strategy.
func WithExtractor(e Extractor) Option {
	return func(a *Agent) { a.extractor = e }
}

// New creates an agent for one conversation session.
func New(session *conversation.Session, client llm.Client, prof *profile.Profile,
	finalizer *order.Finalizer, st store.Store, snap store.Snapshotter, opts ...Option) *Agent {

	a := &Agent{
		session:   session,
		client:    client,
		profile:   prof,
		finalizer: finalizer,
		store:     st,
		snapshot:  snap,
		detector:  NewRegexDetector(),
		extractor: NewRegexExtractor(10),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleUtterance appends the utterance, obtains the model's reply, and,
// when the utterance confirms payment, runs the extraction protocol and
// persists the resulting order.
//
// Appends are never rolled back: on any failure the history retains
// everything appended so far, including failed extraction attempts.
func (a *Agent) HandleUtterance(ctx context.Context, text string) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()

	a.session.Append(conversation.RoleUser, text)

	reply, err := a.client.Complete(ctx, a.session.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("completing reply: %w", err)
	}
	a.session.Append(conversation.RoleAssistant, reply)

	if !a.detector.IsConfirmation(text) {
		slog.Debug("utterance handled", "confirmed", false, "duration", time.Since(start))
		return &Result{Reply: reply}, nil
	}

	slog.Info("payment confirmation detected, finalizing order")

	finalOrder, err := a.finalize(ctx)
	if err != nil {
		if errors.Is(err, ErrParse) {
			// Finalization aborts but the turn still succeeds: the
			// customer sees the normal reply and can confirm again.
			slog.Warn("order extraction failed, awaiting re-confirmation", "error", err)
			return &Result{Reply: reply}, nil
		}
		return nil, err
	}

	slog.Info("order finalized",
		"id", finalOrder.ID,
		"menu", finalOrder.Menu,
		"eta", finalOrder.ETA,
		"duration", time.Since(start))

	return &Result{Reply: reply, Done: true, Order: finalOrder}, nil
}

// finalize runs the two follow-up round-trips and persists the order:
// arrival-time question first, then field extraction, so the extraction
// prompt's context includes the arrival-time exchange. The durable
// upsert strictly precedes the local snapshot write.
func (a *Agent) finalize(ctx context.Context) (*order.FinalOrder, error) {
	a.session.Append(conversation.RoleUser, etaQuestion)
	etaReply, err := a.client.Complete(ctx, a.session.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("completing arrival time: %w", err)
	}
	a.session.Append(conversation.RoleAssistant, etaReply)

	minutes := a.extractor.Minutes(etaReply)

	a.session.Append(conversation.RoleSystem, extractInstruction)
	extractReply, err := a.client.Complete(ctx, a.session.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("completing extraction: %w", err)
	}
	a.session.Append(conversation.RoleAssistant, extractReply)

	fields, err := a.extractor.Fields(extractReply)
	if err != nil {
		return nil, err
	}

	finalOrder := a.finalizer.Finalize(fields, minutes, a.profile)

	if err := a.store.Upsert(ctx, finalOrder); err != nil {
		return nil, fmt.Errorf("persisting order: %w", err)
	}
	if err := a.snapshot.Write(finalOrder); err != nil {
		return nil, fmt.Errorf("writing order snapshot: %w", err)
	}

	return finalOrder, nil
}
