// Package prompt builds the interviewer system prompt and the report prompt.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/interview"
)

// InterviewerConfig describes the position being interviewed for.
type InterviewerConfig struct {
	JobRole        string
	CandidateLevel string
	JobDescription string
	ResumeText     string

	// Persona is the chosen interviewer. The zero value means a neutral one.
	Persona domain.Interviewer

	TimeLimit         time.Duration
	TimeUpInstruction string
	StrikeClosing     string
}

// Interviewer builds the system prompt that drives the live interviewer.
func Interviewer(cfg InterviewerConfig) string {
	var b strings.Builder

	level := cfg.CandidateLevel
	if level == "" {
		level = "experienced"
	}
	minutes := int(cfg.TimeLimit.Minutes())
	if minutes <= 0 {
		minutes = 20
	}
	timeUp := cfg.TimeUpInstruction
	if timeUp == "" {
		timeUp = "SYSTEM: Time is up"
	}
	closing := cfg.StrikeClosing
	if closing == "" {
		closing = "I don't think we can continue productively. Thank you for your time."
	}

	who := "an experienced interviewer"
	if name := cfg.Persona.Name; name != "" {
		who = name + ", " + who
	}
	fmt.Fprintf(&b, "You are %s running a live, spoken %s interview for a %s role.\n", who, level, cfg.JobRole)
	b.WriteString("You are evaluating the candidate for hiring. You are not a tutor and not a chatbot.\n\n")

	b.WriteString("## Position\n")
	fmt.Fprintf(&b, "Role: %s\nLevel: %s\n", cfg.JobRole, level)
	if cfg.JobDescription != "" {
		fmt.Fprintf(&b, "Job description:\n%s\n", strings.TrimSpace(cfg.JobDescription))
	}
	if cfg.ResumeText != "" {
		fmt.Fprintf(&b, "\nCandidate resume:\n%s\n", strings.TrimSpace(cfg.ResumeText))
	}
	b.WriteString("\n")

	if behavior := strings.TrimSpace(cfg.Persona.BehaviorPrompt); behavior != "" {
		b.WriteString("## Your style\n")
		b.WriteString(behavior)
		b.WriteString("\n")
		if cfg.Persona.FocusAreas != "" {
			fmt.Fprintf(&b, "Lean your questions toward: %s.\n", strings.TrimSpace(cfg.Persona.FocusAreas))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Speaking\n")
	b.WriteString("- Everything you write is read aloud. Say only what a human interviewer would say.\n")
	b.WriteString("- One question at a time, at most two or three short sentences.\n")
	b.WriteString("- No stage directions, asides, markup, lists or text in brackets.\n")
	b.WriteString("- Do not teach, correct or explain concepts.\n")
	b.WriteString("- If an answer is unclear, ask the candidate to walk you through it.\n\n")

	fmt.Fprintf(&b, "## Flow (about %d minutes)\n", minutes)
	fmt.Fprintf(&b, "1. Ask about their most relevant experience for the %s role.\n", cfg.JobRole)
	b.WriteString("2. Test the core fundamentals of the role without announcing the topics.\n")
	b.WriteString("3. Ask two or three questions that check claims from their experience.\n")
	b.WriteString("4. Ask one or two situational questions about ownership and decisions.\n")
	b.WriteString("5. Ask whether they have questions about the role, answer briefly, then close.\n\n")

	b.WriteString("## Ending\n")
	fmt.Fprintf(&b, "- When the interview is over, finish your last sentence with %s and say nothing after it.\n", interview.EndToken)
	fmt.Fprintf(&b, "- If you receive the message %q, reply only: \"We're out of time. Thank you for speaking with me today. %s\"\n", timeUp, interview.EndToken)
	b.WriteString("- If the candidate stays off topic or refuses to engage, first ask them to focus on the question, then ask for a clearer answer.\n")
	fmt.Fprintf(&b, "- On the third time, say: \"%s %s\"\n", closing, interview.EndToken)

	return b.String()
}

// ReportConfig carries the inputs for report generation.
type ReportConfig struct {
	JobRole        string
	CandidateLevel string
	Transcript     string

	// EvaluationPrompt is the chosen interviewer's evaluation focus.
	EvaluationPrompt string
}

// Report builds the prompt asking the model for a scored evaluation as JSON.
func Report(cfg ReportConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluate the following interview transcript for a %s %s role.\n\n", cfg.CandidateLevel, cfg.JobRole)
	b.WriteString("TRANSCRIPT:\n")
	b.WriteString(cfg.Transcript)
	b.WriteString("\n\n")

	b.WriteString("Write a Markdown report with these sections:\n")
	b.WriteString("1. Overall Score: a score out of 10 for knowledge, communication and fit.\n")
	b.WriteString("2. Strengths: three concrete strengths, quoting the candidate's answers.\n")
	b.WriteString("3. Weaknesses: three specific areas to improve.\n")
	b.WriteString("4. Technical Assessment: accuracy, depth and problem solving.\n")
	b.WriteString("5. Communication: clarity and structure of answers.\n")
	b.WriteString("6. Job Fit: how the experience matches the role.\n")
	b.WriteString("7. Recommendation: one of Strong Hire, Hire, Maybe, No Hire.\n\n")
	b.WriteString("Reference actual answers. Avoid generic feedback.\n\n")

	if focus := strings.TrimSpace(cfg.EvaluationPrompt); focus != "" {
		b.WriteString("## Evaluation focus\n")
		b.WriteString(focus)
		b.WriteString("\n\n")
	}

	b.WriteString("Return ONLY a JSON object, with no text before or after it and no code fences:\n")
	b.WriteString(`{"score": <integer 1-10>, "report_markdown": "<the full Markdown report>"}`)
	b.WriteString("\n")

	return b.String()
}
