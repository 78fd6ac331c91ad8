package api

import (
	"podpress/internal/intents"
	"podpress/internal/producer"
	"podpress/internal/publish"
	"podpress/internal/studio"
)

// IntentViewFrom converts the intent set projection to its transport form.
func IntentViewFrom(view intents.View) IntentView {
	return IntentView{
		Filename:    view.Filename,
		Ready:       view.Ready,
		Retake:      intentAnswerFrom(view.Retake),
		Command:     intentAnswerFrom(view.Command),
		SoundEffect: intentAnswerFrom(view.SoundEffect),
	}
}

func intentAnswerFrom(c intents.Classification) IntentAnswer {
	return IntentAnswer{Answer: string(c.Answer), Count: c.Count}
}

// RetakeCandidatesFrom converts scanned retake markers to their transport form.
func RetakeCandidatesFrom(candidates []studio.RetakeCandidate) []RetakeCandidate {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]RetakeCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, RetakeCandidate{
			ID:           c.ID,
			ContextAudio: c.ContextAudio,
			TimestampMS:  c.TimestampMS,
		})
	}
	return out
}

// CommandViewsFrom converts prepared command contexts to their transport form.
func CommandViewsFrom(contexts []studio.CommandContext) []CommandView {
	if len(contexts) == 0 {
		return nil
	}
	out := make([]CommandView, 0, len(contexts))
	for _, c := range contexts {
		out = append(out, CommandView{
			CommandID:    c.CommandID,
			StartS:       c.StartS,
			EndS:         c.EndS,
			ResponseText: c.ResponseText,
			AudioURL:     c.AudioURL,
			VoiceID:      c.VoiceID,
		})
	}
	return out
}

// SessionViewFrom converts a producer snapshot to its transport form.
func SessionViewFrom(snapshot producer.Snapshot) SessionView {
	return SessionView{
		RequestID:   snapshot.RequestID,
		Filename:    snapshot.Filename,
		Title:       snapshot.Title,
		State:       string(snapshot.State),
		Note:        snapshot.Note,
		JobID:       snapshot.JobID,
		EpisodeID:   snapshot.EpisodeID,
		Completed:   snapshot.Completed,
		LastError:   snapshot.LastError,
		LastWarning: snapshot.LastWarning,
	}
}

// UsageViewFrom converts a usage snapshot to its transport form.
func UsageViewFrom(usage studio.UsageSnapshot) UsageView {
	return UsageView{
		EpisodesRemaining: usage.EpisodesRemaining,
		MaxEpisodes:       usage.MaxEpisodes,
		MinutesRemaining:  usage.MinutesRemaining,
		CreditsBalance:    usage.CreditsBalance,
	}
}

// PublishViewFrom converts a publish result to its transport form.
func PublishViewFrom(result publish.Result) PublishView {
	return PublishView{
		Performed: result.Performed,
		Message:   result.Message,
		Warning:   result.Warning,
	}
}
