package intents

import (
	"fmt"
	"strings"
	"sync"

	"podpress/internal/studio"
)

// Answer is the user-or-detector verdict for one feature category.
type Answer string

const (
	// AnswerUnset means the category is still open: ask the user.
	AnswerUnset   Answer = ""
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

// ParseAnswer converts a wire value into an Answer.
func ParseAnswer(value string) Answer {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes":
		return AnswerYes
	case "no":
		return AnswerNo
	case "unknown":
		return AnswerUnknown
	default:
		return AnswerUnset
	}
}

// Category names one AI feature pipeline.
type Category string

const (
	CategoryRetake      Category = "retake"
	CategoryCommand     Category = "command"
	CategorySoundEffect Category = "sound_effect"
)

// ParseCategory converts a wire value into a Category.
func ParseCategory(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "retake":
		return CategoryRetake, nil
	case "command":
		return CategoryCommand, nil
	case "sound_effect", "soundeffect":
		return CategorySoundEffect, nil
	default:
		return "", fmt.Errorf("unknown intent category %q", value)
	}
}

// Classification is the per-category state: the current answer plus the
// occurrence count reported by detection.
type Classification struct {
	Answer Answer
	Count  int
}

// View is a read-only projection of the intent set.
type View struct {
	Filename         string
	Ready            bool
	Retake           Classification
	Command          Classification
	SoundEffect      Classification
	CommandOverrides []studio.ExecutionResult
}

// Set holds the intent classification for the current episode draft. Updates
// carry the generation observed when the triggering fetch began, so a slow
// response for a previous source can never overwrite newer state.
type Set struct {
	mu         sync.Mutex
	filename   string
	generation uint64
	ready      bool

	retake      Classification
	command     Classification
	soundEffect Classification
	overrides   []studio.ExecutionResult
}

// NewSet returns an empty intent set.
func NewSet() *Set {
	return &Set{}
}

// ResetForSource clears all state for a new source file and returns the new
// generation token.
func (s *Set) ResetForSource(filename string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = strings.TrimSpace(filename)
	s.generation++
	s.ready = false
	s.retake = Classification{}
	s.command = Classification{}
	s.soundEffect = Classification{}
	s.overrides = nil
	return s.generation
}

// Generation returns the current generation token.
func (s *Set) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// ApplyHints installs detection results. The call is ignored when the
// generation token is stale. A category defaults to "no" only once its count
// is confirmedly zero; positive counts leave the answer unset so the user is
// asked.
func (s *Set) ApplyHints(generation uint64, hints *studio.IntentHints) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || hints == nil {
		return false
	}
	s.retake = classify(hints.RetakeCount)
	s.command = classify(hints.CommandCount)
	s.soundEffect = classify(hints.SoundEffectCount)
	s.ready = true
	return true
}

// MarkReadyDegraded marks detection finished without classifications, so the
// pipeline falls back to asking the user instead of blocking.
func (s *Set) MarkReadyDegraded(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.ready = true
	return true
}

// Confirm records the user's final answer for a category.
func (s *Set) Confirm(category Category, answer Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch category {
	case CategoryRetake:
		s.retake.Answer = answer
	case CategoryCommand:
		s.command.Answer = answer
	case CategorySoundEffect:
		s.soundEffect.Answer = answer
	}
}

// AddCommandOverride folds an executed command result into the set.
func (s *Set) AddCommandOverride(result studio.ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = append(s.overrides, result)
}

// Snapshot returns a copy of the current state.
func (s *Set) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	overrides := make([]studio.ExecutionResult, len(s.overrides))
	copy(overrides, s.overrides)
	return View{
		Filename:         s.filename,
		Ready:            s.ready,
		Retake:           s.retake,
		Command:          s.command,
		SoundEffect:      s.soundEffect,
		CommandOverrides: overrides,
	}
}

// SubmitIntents renders the confirmed answers for the assembly payload.
func (v View) SubmitIntents() studio.SubmitIntents {
	return studio.SubmitIntents{
		Retake:      string(v.Retake.Answer),
		Command:     string(v.Command.Answer),
		SoundEffect: string(v.SoundEffect.Answer),
	}
}

func classify(count int) Classification {
	if count == 0 {
		return Classification{Answer: AnswerNo, Count: 0}
	}
	return Classification{Answer: AnswerUnset, Count: count}
}
