package interview

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/preplab/preptalk/internal/code"
	"github.com/preplab/preptalk/internal/evaluate"
	"github.com/preplab/preptalk/internal/observability"
	"github.com/preplab/preptalk/internal/question"
	"github.com/preplab/preptalk/internal/report"
	"github.com/preplab/preptalk/internal/speech"
	"github.com/preplab/preptalk/internal/vision"
)

// Options tunes the state machine. Defaults match the product behavior: the
// coding gate after 3 asked questions, termination at 8.
type Options struct {
	MaxQuestions       int
	GateAfterQuestions int
	SpeechTimeout      time.Duration
	VisionTimeout      time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaxQuestions <= 0 {
		o.MaxQuestions = 8
	}
	if o.GateAfterQuestions <= 0 {
		o.GateAfterQuestions = 3
	}
	if o.SpeechTimeout <= 0 {
		o.SpeechTimeout = 15 * time.Second
	}
	if o.VisionTimeout <= 0 {
		o.VisionTimeout = 10 * time.Second
	}
}

// Engine drives the interview state machine. It is the only mutator of the
// session store; per-session serialization is the store's contract.
type Engine struct {
	store     Store
	questions *question.Provider
	evaluator *evaluate.Evaluator
	bank      *code.Bank
	assessor  *code.Assessor
	speech    speech.Synthesizer // nil means no audio
	vision    vision.Analyzer    // nil means no frame analysis
	metrics   *observability.Metrics
	opts      Options
}

func NewEngine(
	store Store,
	questions *question.Provider,
	evaluator *evaluate.Evaluator,
	bank *code.Bank,
	assessor *code.Assessor,
	synth speech.Synthesizer,
	analyzer vision.Analyzer,
	metrics *observability.Metrics,
	opts Options,
) *Engine {
	opts.applyDefaults()
	return &Engine{
		store:     store,
		questions: questions,
		evaluator: evaluator,
		bank:      bank,
		assessor:  assessor,
		speech:    synth,
		vision:    analyzer,
		metrics:   metrics,
		opts:      opts,
	}
}

// StartRequest opens a new interview session.
type StartRequest struct {
	Role              string `json:"role"`
	Seniority         string `json:"seniority"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

// StartResult carries the new session id and its opening question.
type StartResult struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	AudioData string `json:"audio_data,omitempty"`
}

// SubmitRequest is one answer submission for the pending question.
type SubmitRequest struct {
	SessionID    string `json:"session_id"`
	Answer       string `json:"answer"`
	VideoFrame   string `json:"video_frame,omitempty"`
	CodeSolution string `json:"code_solution,omitempty"`
}

// TurnResult is the assembled response for one turn. Exactly one of
// NextQuestion, CodingQuestion or Finished describes how the session
// proceeds.
type TurnResult struct {
	Feedback       string           `json:"feedback"`
	Score          float64          `json:"score"`
	NextQuestion   string           `json:"next_question,omitempty"`
	Finished       bool             `json:"finished"`
	Summary        *report.Summary  `json:"summary,omitempty"`
	VideoAnalysis  *vision.Analysis `json:"video_analysis,omitempty"`
	AudioData      string           `json:"audio_data,omitempty"`
	CodingQuestion *code.Question   `json:"coding_question,omitempty"`
	CodingResponse *code.Response   `json:"coding_response,omitempty"`
}

// Start creates a session, assigns a coding question when the role is
// technical and a preferred language was given, and returns the first
// question with optional audio.
func (e *Engine) Start(ctx context.Context, req StartRequest) (StartResult, error) {
	first := e.questions.First(ctx, req.Role, req.Seniority)

	var coding *code.Question
	if req.PreferredLanguage != "" {
		coding = e.bank.QuestionFor(req.Role, req.Seniority)
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:                uuid.NewString(),
		Role:              req.Role,
		Seniority:         req.Seniority,
		PreferredLanguage: req.PreferredLanguage,
		Questions:         []string{first},
		Answers:           []string{},
		Feedback:          []string{},
		Scores:            []float64{},
		CodingQuestion:    coding,
		StartedAt:         now,
		LastActivityAt:    now,
	}
	if err := e.store.Create(ctx, sess); err != nil {
		return StartResult{}, err
	}

	if e.metrics != nil {
		e.metrics.SessionEvents.WithLabelValues("created").Inc()
		if n, err := e.store.ActiveCount(ctx); err == nil {
			e.metrics.ActiveSessions.Set(float64(n))
		}
	}

	return StartResult{
		SessionID: sess.ID,
		Question:  first,
		AudioData: e.synthesize(ctx, first),
	}, nil
}

// SubmitAnswer processes one answer for the pending question and advances the
// state machine. Collaborator failures never fail the turn; only an unknown
// session id or a finished session is a hard error.
func (e *Engine) SubmitAnswer(ctx context.Context, req SubmitRequest) (TurnResult, error) {
	var result TurnResult

	_, err := e.store.Update(ctx, req.SessionID, func(s *Session) error {
		if s.Finished {
			return ErrSessionFinished
		}

		pending := s.Questions[s.CurrentIndex]
		eval := e.evaluator.Evaluate(ctx, pending, req.Answer)
		result.Feedback = eval.Feedback
		result.Score = eval.Score

		if req.VideoFrame != "" && e.vision != nil {
			frameCtx, cancel := context.WithTimeout(ctx, e.opts.VisionTimeout)
			analysis := e.vision.AnalyzeFrame(frameCtx, req.VideoFrame)
			cancel()
			result.VideoAnalysis = &analysis
		}

		s.Answers = append(s.Answers, req.Answer)
		s.Feedback = append(s.Feedback, eval.Feedback)
		s.Scores = append(s.Scores, eval.Score)

		if req.CodeSolution != "" && s.CodingQuestion != nil && !s.CodingCompleted {
			language := s.PreferredLanguage
			if language == "" {
				language = "python"
			}
			resp := e.assessor.Assess(req.CodeSolution, s.CodingQuestion.Category, language)
			result.CodingResponse = &resp
			s.CodingCompleted = true
			if e.metrics != nil {
				e.metrics.CodeAssessments.Inc()
			}
		}

		next, more := e.questions.Next(ctx, s.Role, s.Seniority, pending, req.Answer, eval.Feedback, s.Questions)

		// Coding gate: divert to the coding challenge once enough behavioral
		// questions have been asked. The challenge becomes the pending
		// question so the parallel-array invariants keep holding.
		if s.CodingQuestion != nil && !s.CodingCompleted && !s.CodingPresented &&
			len(s.Questions) >= e.opts.GateAfterQuestions {
			s.CodingPresented = true
			s.Questions = append(s.Questions, s.CodingQuestion.ProblemStatement)
			s.CurrentIndex++
			result.CodingQuestion = s.CodingQuestion
			return nil
		}

		if !more || len(s.Questions) >= e.opts.MaxQuestions {
			s.Finished = true
			summary := report.Aggregate(s.Questions, s.Answers, s.Scores, s.Feedback)
			result.Finished = true
			result.Summary = &summary
			return nil
		}

		s.Questions = append(s.Questions, next)
		s.CurrentIndex++
		result.NextQuestion = next
		result.AudioData = e.synthesize(ctx, next)
		return nil
	})
	if err != nil {
		return TurnResult{}, err
	}

	if e.metrics != nil {
		e.metrics.TurnsEvaluated.Inc()
		e.metrics.AnswerScores.Observe(result.Score)
		if result.Finished {
			e.metrics.SessionEvents.WithLabelValues("finished").Inc()
			if n, err := e.store.ActiveCount(ctx); err == nil {
				e.metrics.ActiveSessions.Set(float64(n))
			}
		}
		if result.CodingQuestion != nil {
			e.metrics.SessionEvents.WithLabelValues("coding_gate").Inc()
		}
	}

	return result, nil
}

// Summary recomputes the session report on demand.
func (e *Engine) Summary(ctx context.Context, sessionID string) (report.Summary, error) {
	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Aggregate(s.Questions, s.Answers, s.Scores, s.Feedback), nil
}

// Session exposes a read-only copy, used by the websocket handler.
func (e *Engine) Session(ctx context.Context, sessionID string) (*Session, error) {
	return e.store.Get(ctx, sessionID)
}

// Delete evicts a session from the store.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	if err := e.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.SessionEvents.WithLabelValues("deleted").Inc()
	}
	return nil
}

// synthesize returns audio for a question, or nothing: speech failures are
// absorbed by contract.
func (e *Engine) synthesize(ctx context.Context, text string) string {
	if e.speech == nil {
		return ""
	}
	speechCtx, cancel := context.WithTimeout(ctx, e.opts.SpeechTimeout)
	defer cancel()
	clip, err := e.speech.Synthesize(speechCtx, text)
	if err != nil {
		if e.metrics != nil {
			e.metrics.CollaboratorFallbacks.WithLabelValues("speech").Inc()
		}
		return ""
	}
	return clip.DataURI
}
