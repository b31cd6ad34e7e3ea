package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/interview"
	"github.com/stretchr/testify/assert"
)

func TestInterviewer(t *testing.T) {
	p := Interviewer(InterviewerConfig{
		JobRole:           "Backend Engineer",
		CandidateLevel:    "senior",
		JobDescription:    "Build Go services.",
		ResumeText:        "Ten years of distributed systems.",
		TimeLimit:         15 * time.Minute,
		TimeUpInstruction: "SYSTEM: Time is up",
	})

	assert.Contains(t, p, "senior interview for a Backend Engineer role")
	assert.Contains(t, p, "Build Go services.")
	assert.Contains(t, p, "Ten years of distributed systems.")
	assert.Contains(t, p, "about 15 minutes")
	assert.Contains(t, p, interview.EndToken)
	assert.Contains(t, p, `"SYSTEM: Time is up"`)
	assert.Contains(t, p, "I don't think we can continue productively.")
}

func TestInterviewerDefaults(t *testing.T) {
	p := Interviewer(InterviewerConfig{JobRole: "QA Analyst"})
	assert.Contains(t, p, "experienced interview for a QA Analyst role")
	assert.Contains(t, p, "about 20 minutes")
	assert.NotContains(t, p, "Candidate resume:")
	assert.NotContains(t, p, "Job description:")
	assert.NotContains(t, p, "## Your style")
}

func TestInterviewerPersona(t *testing.T) {
	p := Interviewer(InterviewerConfig{
		JobRole: "SRE",
		Persona: domain.Interviewer{
			ID:             "marcus",
			Name:           "Marcus",
			BehaviorPrompt: "Push on trade-offs.",
			FocusAreas:     "Reliability, incident response",
		},
	})
	assert.Contains(t, p, "You are Marcus, an experienced interviewer running")
	assert.Contains(t, p, "## Your style\nPush on trade-offs.")
	assert.Contains(t, p, "Lean your questions toward: Reliability, incident response.")
}

func TestReport(t *testing.T) {
	p := Report(ReportConfig{
		JobRole:        "Data Engineer",
		CandidateLevel: "junior",
		Transcript:     "INTERVIEWER: Hi\n\nCANDIDATE: Hello",
	})
	assert.Contains(t, p, "junior Data Engineer role")
	assert.Contains(t, p, "CANDIDATE: Hello")
	assert.Contains(t, p, `"report_markdown"`)
	assert.Contains(t, p, `"score"`)
	assert.NotContains(t, p, "## Evaluation focus")
}

func TestReportEvaluationFocus(t *testing.T) {
	p := Report(ReportConfig{
		JobRole:          "SRE",
		CandidateLevel:   "senior",
		Transcript:       "CANDIDATE: I rotate on-call weekly.",
		EvaluationPrompt: "Weigh ownership most.",
	})
	assert.Contains(t, p, "## Evaluation focus\nWeigh ownership most.")
	assert.Less(t, strings.Index(p, "## Evaluation focus"), strings.Index(p, "Return ONLY a JSON object"))
}
