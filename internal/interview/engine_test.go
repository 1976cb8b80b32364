package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/preplab/preptalk/internal/brain"
	"github.com/preplab/preptalk/internal/code"
	"github.com/preplab/preptalk/internal/evaluate"
	"github.com/preplab/preptalk/internal/question"
	"github.com/preplab/preptalk/internal/speech"
	"github.com/preplab/preptalk/internal/vision"
)

func newTestEngine(t *testing.T, client brain.Client, opts Options) *Engine {
	t.Helper()
	bank, err := code.NewBank()
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	return NewEngine(
		NewMemoryStore(),
		question.NewProvider(client),
		evaluate.New(client),
		bank,
		code.NewAssessor(bank),
		nil,
		nil,
		nil,
		opts,
	)
}

func mustStart(t *testing.T, e *Engine, req StartRequest) StartResult {
	t.Helper()
	res, err := e.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.SessionID == "" || res.Question == "" {
		t.Fatalf("Start returned incomplete result: %+v", res)
	}
	return res
}

func checkParallelArrays(t *testing.T, s *Session) {
	t.Helper()
	if len(s.Answers) != len(s.Feedback) || len(s.Answers) != len(s.Scores) {
		t.Fatalf("answers/feedback/scores diverged: %d/%d/%d",
			len(s.Answers), len(s.Feedback), len(s.Scores))
	}
	if len(s.Answers) != s.CurrentIndex {
		t.Fatalf("current index %d does not match %d answers", s.CurrentIndex, len(s.Answers))
	}
	if !s.Finished && len(s.Questions) != s.CurrentIndex+1 {
		t.Fatalf("open session has %d questions at index %d", len(s.Questions), s.CurrentIndex)
	}
}

func TestStartAssignsCodingQuestionForTechnicalRole(t *testing.T) {
	e := newTestEngine(t, nil, Options{})
	res := mustStart(t, e, StartRequest{
		Role: "backend engineer", Seniority: "senior", PreferredLanguage: "python",
	})

	s, err := e.Session(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if s.CodingQuestion == nil {
		t.Fatal("expected a coding question for a technical role")
	}
	if s.CodingPresented || s.CodingCompleted {
		t.Fatal("coding question must start unpresented and ungraded")
	}
}

func TestStartSkipsCodingQuestionWithoutLanguage(t *testing.T) {
	e := newTestEngine(t, nil, Options{})
	res := mustStart(t, e, StartRequest{Role: "backend engineer", Seniority: "senior"})

	s, err := e.Session(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if s.CodingQuestion != nil {
		t.Fatal("no preferred language means no coding question")
	}
}

func TestStartSkipsCodingQuestionForNonTechnicalRole(t *testing.T) {
	e := newTestEngine(t, nil, Options{})
	res := mustStart(t, e, StartRequest{
		Role: "pastry chef", Seniority: "senior", PreferredLanguage: "python",
	})

	s, err := e.Session(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if s.CodingQuestion != nil {
		t.Fatal("non-technical roles must not receive a coding question")
	}
}

func TestSubmitAnswerKeepsArraysAligned(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, Options{})
	res := mustStart(t, e, StartRequest{Role: "product manager", Seniority: "mid"})

	for i := 0; i < 4; i++ {
		turn, err := e.SubmitAnswer(ctx, SubmitRequest{
			SessionID: res.SessionID,
			Answer:    "I balance scope and deadlines because stakeholders need predictability.",
		})
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if turn.Feedback == "" {
			t.Fatalf("turn %d returned no feedback", i)
		}
		if turn.Score < 0 || turn.Score > 10 {
			t.Fatalf("turn %d score %v out of range", i, turn.Score)
		}

		s, err := e.Session(ctx, res.SessionID)
		if err != nil {
			t.Fatalf("Session: %v", err)
		}
		checkParallelArrays(t, s)
	}
}

func TestCodingGateFiresOnceAtThreshold(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, Options{GateAfterQuestions: 3})
	res := mustStart(t, e, StartRequest{
		Role: "backend engineer", Seniority: "junior", PreferredLanguage: "python",
	})

	// Two regular turns before the gate threshold.
	for i := 0; i < 2; i++ {
		turn, err := e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "A detailed answer because it matters."})
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if turn.CodingQuestion != nil {
			t.Fatalf("gate fired too early on turn %d", i)
		}
		if turn.NextQuestion == "" {
			t.Fatalf("turn %d expected a next question", i)
		}
	}

	// Third answer trips the gate.
	turn, err := e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "Another grounded answer because trade-offs."})
	if err != nil {
		t.Fatalf("gate turn: %v", err)
	}
	if turn.CodingQuestion == nil {
		t.Fatal("expected the coding gate to fire at the threshold")
	}
	if turn.NextQuestion != "" || turn.Finished {
		t.Fatalf("gate turn must divert, got next=%q finished=%v", turn.NextQuestion, turn.Finished)
	}

	s, err := e.Session(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	checkParallelArrays(t, s)
	if !s.CodingPresented {
		t.Fatal("gate must mark the coding question presented")
	}
	if got := s.Questions[s.CurrentIndex]; got != s.CodingQuestion.ProblemStatement {
		t.Fatalf("pending question %q is not the coding problem", got)
	}

	// Further turns never re-present the challenge.
	turn, err = e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "I would iterate once over the input."})
	if err != nil {
		t.Fatalf("post-gate turn: %v", err)
	}
	if turn.CodingQuestion != nil {
		t.Fatal("gate fired twice")
	}
}

func TestCodeSubmissionGradedAtMostOnce(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, Options{})
	res := mustStart(t, e, StartRequest{
		Role: "software developer", Seniority: "mid", PreferredLanguage: "python",
	})

	solution := "def solve(nums):\n    seen = {}\n    return seen\n"
	turn, err := e.SubmitAnswer(ctx, SubmitRequest{
		SessionID: res.SessionID, Answer: "Here is my solution.", CodeSolution: solution,
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if turn.CodingResponse == nil {
		t.Fatal("expected a code assessment on first submission")
	}
	if turn.CodingResponse.Score < 0 || turn.CodingResponse.Score > 10 {
		t.Fatalf("assessment score %v out of range", turn.CodingResponse.Score)
	}

	turn, err = e.SubmitAnswer(ctx, SubmitRequest{
		SessionID: res.SessionID, Answer: "Trying again.", CodeSolution: solution,
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if turn.CodingResponse != nil {
		t.Fatal("code must be graded at most once per session")
	}
}

func TestTerminationAtMaxQuestions(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, Options{MaxQuestions: 3})
	res := mustStart(t, e, StartRequest{Role: "product manager", Seniority: "mid"})

	var turn TurnResult
	var err error
	for i := 0; i < 3; i++ {
		turn, err = e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "An answer because reasons."})
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}
	if !turn.Finished {
		t.Fatal("session must finish at the question cap")
	}
	if turn.Summary == nil {
		t.Fatal("finishing turn must carry a summary")
	}
	if turn.Summary.TotalQuestions != 3 {
		t.Fatalf("summary counted %d questions, want 3", turn.Summary.TotalQuestions)
	}
	if turn.NextQuestion != "" {
		t.Fatalf("finished turn carries next question %q", turn.NextQuestion)
	}

	_, err = e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "one more"})
	if !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("post-termination submission: got %v, want ErrSessionFinished", err)
	}
}

func TestTerminationOnBankExhaustion(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, Options{MaxQuestions: 20})
	res := mustStart(t, e, StartRequest{Role: "product manager", Seniority: "mid"})

	// The rule-based bank holds five follow-ups; the sixth answer has nothing
	// left to ask.
	var turn TurnResult
	var err error
	for i := 0; i < 6; i++ {
		turn, err = e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "An answer because reasons."})
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if i < 5 && turn.Finished {
			t.Fatalf("finished early on turn %d", i)
		}
	}
	if !turn.Finished {
		t.Fatal("session must finish when the question source is exhausted")
	}
	if turn.Summary == nil || turn.Summary.TotalQuestions != 6 {
		t.Fatalf("unexpected summary: %+v", turn.Summary)
	}
}

func TestTerminationOnEndToken(t *testing.T) {
	ctx := context.Background()
	client := brain.NewMockClient(
		"FEEDBACK: Solid answer.\nSCORE: 7.5",
		"END",
	)
	bank, err := code.NewBank()
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	e := NewEngine(
		NewMemoryStore(),
		question.NewProvider(brain.NewMockClient("What drew you to distributed systems?", "END")),
		evaluate.New(client),
		bank,
		code.NewAssessor(bank),
		nil, nil, nil,
		Options{},
	)

	res := mustStart(t, e, StartRequest{Role: "backend engineer", Seniority: "senior"})
	if !strings.Contains(res.Question, "distributed systems") {
		t.Fatalf("first question not taken from generation: %q", res.Question)
	}

	turn, err := e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "Scale and failure modes."})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !turn.Finished {
		t.Fatal("end token must terminate the session")
	}
	if turn.Score != 7.5 {
		t.Fatalf("score %v, want 7.5 from the labeled completion", turn.Score)
	}
}

func TestVideoFrameAnalysisAttached(t *testing.T) {
	ctx := context.Background()
	bank, err := code.NewBank()
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	e := NewEngine(
		NewMemoryStore(),
		question.NewProvider(nil),
		evaluate.New(nil),
		bank,
		code.NewAssessor(bank),
		nil,
		vision.NewHeuristicAnalyzer(),
		nil,
		Options{},
	)
	res := mustStart(t, e, StartRequest{Role: "product manager", Seniority: "mid"})

	turn, err := e.SubmitAnswer(ctx, SubmitRequest{
		SessionID:  res.SessionID,
		Answer:     "An answer because reasons.",
		VideoFrame: "not-a-real-frame",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if turn.VideoAnalysis == nil {
		t.Fatal("expected video analysis when a frame is supplied")
	}
	if turn.VideoAnalysis.ConfidenceScore != 5.0 {
		t.Fatalf("undecodable frame should score neutrally, got %v", turn.VideoAnalysis.ConfidenceScore)
	}
}

func TestVideoFrameIgnoredWithoutAnalyzer(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, Options{})
	res := mustStart(t, e, StartRequest{Role: "product manager", Seniority: "mid"})

	turn, err := e.SubmitAnswer(ctx, SubmitRequest{
		SessionID:  res.SessionID,
		Answer:     "An answer because reasons.",
		VideoFrame: "anything",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if turn.VideoAnalysis != nil {
		t.Fatal("no analyzer configured, analysis must be absent")
	}
}

func TestStartAttachesAudioFromSynthesizer(t *testing.T) {
	bank, err := code.NewBank()
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	e := NewEngine(
		NewMemoryStore(),
		question.NewProvider(nil),
		evaluate.New(nil),
		bank,
		code.NewAssessor(bank),
		speech.NewMockSynthesizer(),
		nil, nil,
		Options{},
	)
	res := mustStart(t, e, StartRequest{Role: "product manager", Seniority: "mid"})
	if !strings.HasPrefix(res.AudioData, "data:audio/") {
		t.Fatalf("expected an audio data URI, got %q", res.AudioData)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	e := newTestEngine(t, nil, Options{})
	_, err := e.SubmitAnswer(context.Background(), SubmitRequest{SessionID: "missing", Answer: "hi"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSummaryAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, Options{})
	res := mustStart(t, e, StartRequest{Role: "product manager", Seniority: "mid"})

	if _, err := e.SubmitAnswer(ctx, SubmitRequest{SessionID: res.SessionID, Answer: "An answer because reasons."}); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	summary, err := e.Summary(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	// One answered plus one pending question.
	if summary.TotalQuestions != 2 {
		t.Fatalf("summary counted %d questions, want 2", summary.TotalQuestions)
	}

	if err := e.Delete(ctx, res.SessionID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := e.Summary(ctx, res.SessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("summary after delete: got %v, want ErrNotFound", err)
	}
}
