package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownInterviewer = errors.New("unknown interviewer")

// Interviewer is a persona a candidate can pick. It chooses the synthesis
// voice, shapes how the live interviewer behaves and what the report weighs.
type Interviewer struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description,omitempty"`
	VoiceModel       string `yaml:"voiceModel,omitempty"`
	BehaviorPrompt   string `yaml:"behaviorPrompt,omitempty"`
	EvaluationPrompt string `yaml:"evaluationPrompt,omitempty"`
	FocusAreas       string `yaml:"focusAreas,omitempty"`
}

// Roster is the ordered interviewer catalog. The first entry is the default.
// A nil Roster is empty.
type Roster struct {
	list  []Interviewer
	index map[string]int
}

// NewRoster checks that every interviewer has a unique, non-empty ID.
func NewRoster(list []Interviewer) (*Roster, error) {
	r := &Roster{index: make(map[string]int, len(list))}
	for i, iv := range list {
		iv.ID = strings.TrimSpace(iv.ID)
		if iv.ID == "" {
			return nil, fmt.Errorf("interviewer %d: id is required", i)
		}
		if _, dup := r.index[iv.ID]; dup {
			return nil, fmt.Errorf("interviewer %q: duplicate id", iv.ID)
		}
		if iv.Name == "" {
			iv.Name = iv.ID
		}
		r.index[iv.ID] = len(r.list)
		r.list = append(r.list, iv)
	}
	return r, nil
}

// Lookup returns the interviewer with the given ID. An empty ID selects the
// default; with an empty roster that is the zero Interviewer.
func (r *Roster) Lookup(id string) (Interviewer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		if r == nil || len(r.list) == 0 {
			return Interviewer{}, nil
		}
		return r.list[0], nil
	}
	if r != nil {
		if i, ok := r.index[id]; ok {
			return r.list[i], nil
		}
	}
	return Interviewer{}, fmt.Errorf("%w: %s", ErrUnknownInterviewer, id)
}

// List returns the interviewers in catalog order.
func (r *Roster) List() []Interviewer {
	if r == nil {
		return nil
	}
	return slices.Clone(r.list)
}

// Len is the number of interviewers.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.list)
}
