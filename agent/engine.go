package agent

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/google/uuid"
	"github.com/tbxark/depositagent/command"
	"github.com/tbxark/depositagent/dialogue"
	"github.com/tbxark/depositagent/extract"
	"github.com/tbxark/depositagent/metrics"
	"github.com/tbxark/depositagent/patch"
	"github.com/tbxark/depositagent/slots"
	"github.com/tbxark/depositagent/types"
)

const (
	DefaultExtractionTimeout = 30 * time.Second
	DefaultHistoryWindow     = 10
)

var referencePrefixes = map[types.Variant]string{
	types.VariantFDRegular:  "FDR",
	types.VariantFDTaxSaver: "FDT",
	types.VariantRD:         "RD",
}

// Engine runs the dialogue state machine. It holds no per-session state; every
// turn loads the session, works on a copy and saves it once at the end.
type Engine struct {
	store          SessionStore
	extractor      extract.Extractor
	parser         command.Parser
	generator      dialogue.Generator
	manager        AccountManager
	trimmer        Trimmer
	metrics        *metrics.Recorder
	extractTimeout time.Duration
	now            func() time.Time
	newReference   func(types.Variant) string
}

type Option func(*Engine)

func WithCommandParser(p command.Parser) Option {
	return func(e *Engine) { e.parser = p }
}

func WithDialogueGenerator(g dialogue.Generator) Option {
	return func(e *Engine) { e.generator = g }
}

func WithAccountManager(m AccountManager) Option {
	return func(e *Engine) { e.manager = m }
}

func WithTrimmer(t Trimmer) Option {
	return func(e *Engine) { e.trimmer = t }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

func WithExtractionTimeout(d time.Duration) Option {
	return func(e *Engine) { e.extractTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the engine. A nil extractor disables extraction, so free-form
// turns only re-prompt.
func NewEngine(store SessionStore, extractor extract.Extractor, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		extractor:      extractor,
		parser:         command.NewLocalCommandParser(),
		generator:      dialogue.NewLocalDialogueGenerator(),
		manager:        LogAccountManager{},
		trimmer:        KeepSystemLastNTrimmer{N: DefaultHistoryWindow},
		extractTimeout: DefaultExtractionTimeout,
		now:            time.Now,
		newReference:   newReference,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newReference(variant types.Variant) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referencePrefixes[variant] + "-" + strings.ToUpper(id[:8])
}

func (e *Engine) Start(ctx context.Context, req *StartRequest) (*StartResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: start request is required", ErrInvalidInput)
	}
	variant, err := types.ParseVariant(string(req.Variant))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	session, err := e.store.Create(ctx, variant)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	prompt := dialogue.Welcome(variant)
	if len(req.Prefill) > 0 {
		spec := slots.For(variant)
		merged, err := patch.Merge(spec, session.Slots, req.Prefill)
		if err != nil {
			_ = e.store.Delete(ctx, session.ID)
			return nil, err
		}
		session.Slots = merged
		dreq := &dialogue.Request{Variant: variant, Slots: merged}
		session.Phase, dreq.ValidationErrors, dreq.MissingFields = settle(spec, merged)
		dreq.Phase = session.Phase
		followUp, err := e.generator.GenerateDialogue(ctx, dreq)
		if err != nil {
			_ = e.store.Delete(ctx, session.ID)
			return nil, fmt.Errorf("failed to generate dialogue: %w", err)
		}
		prompt += "\n\n" + followUp
	}

	now := e.now()
	session.History = append(session.History, Turn{Speaker: SpeakerAssistant, Text: prompt, At: now})
	session.LastUpdated = now
	if err := e.store.Save(ctx, session); err != nil {
		return nil, err
	}

	e.metrics.SessionStarted(string(variant))
	slog.Info("Started deposit session", "session_id", session.ID, "variant", variant)
	return &StartResponse{
		SessionID:     session.ID,
		WelcomePrompt: prompt,
		Phase:         session.Phase,
		Slots:         session.Slots.Values(),
	}, nil
}

func (e *Engine) Turn(ctx context.Context, req *TurnRequest) (resp *TurnResponse, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, "DepositEngine", "Agent")
	ctx = callbacks.OnStart(ctx, map[string]any{"request": req})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
			return
		}
		callbacks.OnEnd(ctx, map[string]any{"phase": string(resp.Phase), "response": resp})
	}()
	return e.turn(ctx, req)
}

func (e *Engine) load(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	session, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Phase.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

func (e *Engine) turn(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: turn request is required", ErrInvalidInput)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	current, err := e.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	spec := slots.For(current.Variant)

	cmd, err := e.parser.ParseCommand(ctx, message)
	if err != nil {
		slog.Warn("Command parsing failed, treating input as free-form", "session_id", current.ID, "error", err)
		cmd = command.Command{Kind: command.FreeForm}
	}
	if cmd.Kind == command.Change {
		cmd.Fields = slices.DeleteFunc(cmd.Fields, func(f string) bool { return !spec.Has(f) })
		if len(cmd.Fields) == 0 {
			cmd = command.Command{Kind: command.FreeForm}
		}
	}
	slog.Debug("Parsed command", "session_id", current.ID, "command", cmd)
	e.metrics.Turn(string(current.Variant), string(cmd.Kind))

	next := current.clone()
	next.History = append(next.History, Turn{Speaker: SpeakerUser, Text: message, At: e.now()})
	dreq := &dialogue.Request{Variant: next.Variant}

	switch cmd.Kind {
	case command.Cancel:
		return e.cancel(ctx, next, dreq)
	case command.Confirm:
		dreq.ValidationErrors = spec.Validate(next.Slots)
		dreq.MissingFields = spec.Missing(next.Slots)
		if len(dreq.ValidationErrors) == 0 && len(dreq.MissingFields) == 0 {
			return e.complete(ctx, next)
		}
		next.Phase = types.PhaseCollecting
	case command.Change:
		cleared, err := patch.Clear(spec, next.Slots, cmd.Fields)
		if err != nil {
			return nil, err
		}
		next.Slots = cleared
		next.Phase = types.PhaseCollecting
		dreq.ChangedFields = cmd.Fields
		dreq.ValidationErrors = spec.Validate(next.Slots)
		dreq.MissingFields = spec.Missing(next.Slots)
	default:
		extracted := e.extractFields(ctx, current, spec, message)
		merged, err := patch.Merge(spec, next.Slots, extracted)
		if err != nil {
			return nil, err
		}
		next.Slots = merged
		next.Phase, dreq.ValidationErrors, dreq.MissingFields = settle(spec, merged)
	}
	if next.Phase != current.Phase {
		slog.Debug("Phase transition", "session_id", next.ID, "from", current.Phase, "to", next.Phase)
	}
	return e.reply(ctx, next, dreq)
}

// Complete finalises a session explicitly. With missing or invalid details the
// session is aborted instead and the gaps are reported.
func (e *Engine) Complete(ctx context.Context, req *CompleteRequest) (*TurnResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: complete request is required", ErrInvalidInput)
	}
	current, err := e.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	spec := slots.For(current.Variant)
	next := current.clone()
	dreq := &dialogue.Request{
		Variant:          next.Variant,
		ValidationErrors: spec.Validate(next.Slots),
		MissingFields:    spec.Missing(next.Slots),
	}
	if len(dreq.ValidationErrors) == 0 && len(dreq.MissingFields) == 0 {
		return e.complete(ctx, next)
	}
	slog.Info("Aborting incomplete deposit session", "session_id", next.ID, "missing", len(dreq.MissingFields), "violations", len(dreq.ValidationErrors))
	return e.cancel(ctx, next, dreq)
}

// settle picks the phase after a merge: confirming once nothing is missing or invalid.
func settle(spec *slots.Schema, current types.SlotSet) (types.Phase, []types.ValidationError, []types.FieldInfo) {
	violations := spec.Validate(current)
	missing := spec.Missing(current)
	if len(violations) == 0 && len(missing) == 0 {
		return types.PhaseConfirming, nil, nil
	}
	return types.PhaseCollecting, violations, missing
}

func (e *Engine) extractFields(ctx context.Context, session *Session, spec *slots.Schema, message string) types.Extraction {
	if e.extractor == nil {
		return nil
	}
	schemaPrompt, err := extract.SchemaPrompt(session.Variant)
	if err != nil {
		slog.Warn("Failed to build schema prompt", "variant", session.Variant, "error", err)
	}
	req := &extract.Request{
		Variant:      session.Variant,
		SchemaPrompt: schemaPrompt,
		History:      e.trimmer.Trim(toMessages(session.History)),
		Message:      message,
		Slots:        session.Slots,
		Missing:      spec.Missing(session.Slots),
	}
	if e.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.extractTimeout)
		defer cancel()
	}
	started := time.Now()
	out, err := e.extractor.Extract(ctx, req)
	e.metrics.Extraction(string(session.Variant), time.Since(started), err)
	if err != nil {
		slog.Warn("Extraction failed, continuing without new information", "session_id", session.ID, "error", err)
		return nil
	}
	slog.Debug("Extracted fields", "session_id", session.ID, "fields", out)
	return out
}

func (e *Engine) cancel(ctx context.Context, next *Session, dreq *dialogue.Request) (*TurnResponse, error) {
	next.Phase = types.PhaseCancelled
	if err := e.manager.Cancel(ctx, next); err != nil {
		slog.Warn("Account manager failed on cancel", "session_id", next.ID, "error", err)
	}
	resp, err := e.reply(ctx, next, dreq)
	if err != nil {
		return nil, err
	}
	e.metrics.SessionFinished(string(next.Variant), string(next.Phase))
	slog.Info("Cancelled deposit session", "session_id", next.ID)
	return resp, nil
}

func (e *Engine) complete(ctx context.Context, next *Session) (*TurnResponse, error) {
	completion := &Completion{
		Reference:   e.newReference(next.Variant),
		Variant:     next.Variant,
		Slots:       next.Slots.Values(),
		CompletedAt: e.now(),
	}
	if err := e.manager.Submit(ctx, completion); err != nil {
		return nil, fmt.Errorf("submit account details: %w", err)
	}
	next.Phase = types.PhaseCompleted
	resp, err := e.reply(ctx, next, &dialogue.Request{Variant: next.Variant, Reference: completion.Reference})
	if err != nil {
		return nil, err
	}
	resp.Completion = completion
	e.metrics.SessionFinished(string(next.Variant), string(next.Phase))
	slog.Info("Completed deposit session", "session_id", next.ID, "reference", completion.Reference)
	return resp, nil
}

// reply renders the prompt and persists next: saved while live, deleted once terminal.
func (e *Engine) reply(ctx context.Context, next *Session, dreq *dialogue.Request) (*TurnResponse, error) {
	dreq.Phase = next.Phase
	dreq.Slots = next.Slots
	prompt, err := e.generator.GenerateDialogue(ctx, dreq)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dialogue: %w", err)
	}

	now := e.now()
	next.History = append(next.History, Turn{Speaker: SpeakerAssistant, Text: prompt, At: now})
	next.LastUpdated = now
	if next.Phase.Terminal() {
		err = e.store.Delete(ctx, next.ID)
	} else {
		err = e.store.Save(ctx, next)
	}
	if err != nil {
		return nil, err
	}

	return &TurnResponse{
		SessionID:  next.ID,
		Slots:      next.Slots.Values(),
		NextPrompt: prompt,
		Phase:      next.Phase,
		Missing:    dreq.MissingFields,
		Violations: dreq.ValidationErrors,
	}, nil
}
