package api_test

import (
	"testing"

	"podpress/internal/api"
	"podpress/internal/assembly"
	"podpress/internal/intents"
	"podpress/internal/producer"
	"podpress/internal/publish"
	"podpress/internal/studio"
)

func TestIntentViewFrom(t *testing.T) {
	view := api.IntentViewFrom(intents.View{
		Filename: "ep1.mp3",
		Ready:    true,
		Retake:   intents.Classification{Answer: intents.AnswerYes, Count: 2},
		Command:  intents.Classification{Answer: intents.AnswerNo},
	})
	if !view.Ready || view.Filename != "ep1.mp3" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Retake.Answer != "yes" || view.Retake.Count != 2 {
		t.Fatalf("unexpected retake: %+v", view.Retake)
	}
	if view.Command.Answer != "no" || view.SoundEffect.Answer != "" {
		t.Fatalf("unexpected answers: %+v", view)
	}
}

func TestCommandViewsFrom(t *testing.T) {
	views := api.CommandViewsFrom([]studio.CommandContext{
		{CommandID: "c1", StartS: 1.5, EndS: 4, ResponseText: "coming up next", AudioURL: "tts/c1.mp3"},
	})
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].CommandID != "c1" || views[0].AudioURL != "tts/c1.mp3" {
		t.Fatalf("unexpected view: %+v", views[0])
	}
	if api.CommandViewsFrom(nil) != nil {
		t.Fatal("empty input must convert to nil")
	}
}

func TestSessionViewFrom(t *testing.T) {
	view := api.SessionViewFrom(producer.Snapshot{
		RequestID: "r1",
		Filename:  "ep1.mp3",
		Title:     "Episode One",
		State:     assembly.StatePolling,
		Note:      "connection hiccup, retrying",
		JobID:     "j1",
	})
	if view.State != "polling" || view.JobID != "j1" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestPublishViewFrom(t *testing.T) {
	view := api.PublishViewFrom(publish.Result{Performed: true, Warning: "feed host rejected the item"})
	if !view.Performed || view.Warning == "" {
		t.Fatalf("unexpected view: %+v", view)
	}
}
