// Package dialog implements the per-turn state machine that reconstructs
// conversational continuity across stateless requests. A call is only ever
// in one of two states: COLLECTING (slots missing) or COMPLETE.
package dialog

import (
	"context"
	"errors"
	"strings"

	"github.com/voicedesk/server/internal/agent/classify"
	"github.com/voicedesk/server/internal/agent/extract"
	"github.com/voicedesk/server/internal/agent/model"
	errx "github.com/voicedesk/server/internal/core/error"
	logx "github.com/voicedesk/server/pkg/logger"
)

// Manager orchestrates one turn: load session, classify, extract, gate on
// the checklist, finalize on completion, persist. It is the only writer of
// sessions.
type Manager struct {
	sessions   model.SessionRepository
	classifier classify.Classifier
	extractor  extract.Extractor
	finalizer  *Finalizer
	content    model.ContentProvider
}

func NewManager(
	sessions model.SessionRepository,
	classifier classify.Classifier,
	extractor extract.Extractor,
	finalizer *Finalizer,
	content model.ContentProvider,
) *Manager {
	return &Manager{
		sessions:   sessions,
		classifier: classifier,
		extractor:  extractor,
		finalizer:  finalizer,
		content:    content,
	}
}

// Turn handles a single utterance. It never returns an error: any failure
// inside the turn is converted into a terminal, domain-specific apology, and
// the session is left at its last successfully persisted state. The caller
// retries by speaking again.
func (m *Manager) Turn(ctx context.Context, req model.TurnRequest) (resp model.TurnResponse) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("call_id", req.CallID).Msgf("turn panic recovered: %v", r)
			resp = apologyReply(req.Domain)
		}
	}()

	if req.CallID == "" || strings.TrimSpace(req.Utterance) == "" {
		// no speech detected: re-prompt without touching the session
		return repromptReply()
	}

	sess, err := m.sessions.Get(ctx, req.CallID)
	if err != nil {
		logx.Error().Err(err).Str("call_id", req.CallID).Msg("failed to load session")
		return apologyReply(req.Domain)
	}
	if sess == nil {
		sess = model.NewSession(req.CallID, req.Domain)
	}

	resp, err = m.handleTurn(ctx, sess, req.Utterance)
	if err != nil {
		logx.Error().Err(err).Str("call_id", sess.CallID).Msg("turn failed")
		return apologyReply(sess.Domain)
	}
	return resp
}

func (m *Manager) handleTurn(ctx context.Context, sess *model.Session, utterance string) (model.TurnResponse, error) {
	cls := m.classifier.Classify(ctx, utterance, sess.Domain)
	logx.Info().
		Str("call_id", sess.CallID).
		Str("domain", string(sess.Domain)).
		Str("intent", cls.Intent).
		Float64("confidence", cls.Confidence).
		Msg("utterance classified")

	// after hours there is no non-collection path for the financial line
	if sess.Domain == model.DomainFinancial {
		return m.collect(ctx, sess, utterance, cls)
	}

	// a started reservation keeps collecting: follow-up answers rarely carry
	// intent keywords of their own
	if cls.Intent == model.IntentReservation || sess.Task == model.IntentReservation {
		sess.Task = model.IntentReservation
		return m.collect(ctx, sess, utterance, cls)
	}

	switch cls.Intent {
	case model.IntentMenuInquiry:
		answer, err := m.content.Lookup(ctx, model.TopicMenu, utterance)
		if err != nil {
			return model.TurnResponse{}, err
		}
		if err := m.persist(ctx, sess); err != nil {
			return model.TurnResponse{}, err
		}
		return continueWith(answer + " Is there anything else I can help you with today?"), nil

	case model.IntentHoursLocation:
		answer, err := m.content.Lookup(ctx, model.TopicHours, utterance)
		if err != nil {
			return model.TurnResponse{}, err
		}
		if err := m.persist(ctx, sess); err != nil {
			return model.TurnResponse{}, err
		}
		return continueWith(answer), nil

	default:
		if err := m.persist(ctx, sess); err != nil {
			return model.TurnResponse{}, err
		}
		return continueWith(otherReply()), nil
	}
}

// collect runs the slot-filling sub-flow: merge newly recognized fields,
// persist, then either ask for the earliest missing checklist field or
// finalize the call.
func (m *Manager) collect(ctx context.Context, sess *model.Session, utterance string, cls model.Classification) (model.TurnResponse, error) {
	sess.Fields = m.extractor.Extract(ctx, utterance, sess.Fields, sess.Domain)
	if sess.Domain == model.DomainFinancial && cls.Priority != "" {
		sess.Fields = model.MergeFields(sess.Fields, map[string]string{
			model.FieldPriority: string(cls.Priority),
		})
	}

	if err := m.persist(ctx, sess); err != nil {
		return model.TurnResponse{}, err
	}

	missing := sess.Missing(model.Checklist(sess.Domain))
	if len(missing) > 0 {
		return continueWith(questionFor(sess.Domain, missing[0])), nil
	}
	return m.complete(ctx, sess)
}

// complete finalizes at most once per call id; replayed terminal turns get
// the same confirmation without a second record.
func (m *Manager) complete(ctx context.Context, sess *model.Session) (model.TurnResponse, error) {
	switch sess.Domain {
	case model.DomainRestaurant:
		rec, err := m.finalizer.FinalizeReservation(ctx, sess)
		if err != nil {
			return model.TurnResponse{}, err
		}
		return model.TurnResponse{ReplyText: reservationConfirmation(rec)}, nil

	case model.DomainFinancial:
		inq, err := m.finalizer.FinalizeInquiry(ctx, sess)
		if err != nil {
			return model.TurnResponse{}, err
		}
		return model.TurnResponse{ReplyText: inquiryConfirmation(inq)}, nil
	}
	return model.TurnResponse{}, errors.New("unknown session domain")
}

// persist writes the session optimistically. On a lost race it reloads,
// re-merges under first-value-wins, and retries once; a second conflict is
// treated as an internal error.
func (m *Manager) persist(ctx context.Context, sess *model.Session) error {
	err := m.sessions.Put(ctx, sess, sess.Version)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errx.ErrVersionConflict) {
		return err
	}

	logx.Warn().Str("call_id", sess.CallID).Msg("session write conflict, retrying merge once")
	current, gerr := m.sessions.Get(ctx, sess.CallID)
	if gerr != nil {
		return gerr
	}
	if current != nil {
		sess.Fields = model.MergeFields(current.Fields, sess.Fields)
		sess.Version = current.Version
	}
	return m.sessions.Put(ctx, sess, sess.Version)
}

func continueWith(reply string) model.TurnResponse {
	return model.TurnResponse{ReplyText: reply, ContinueListening: true}
}
