// Package speech turns question text into an audio payload for the client.
package speech

import "context"

// Clip is one synthesized utterance, delivered as a base64 data URI so the
// browser can play it directly.
type Clip struct {
	DataURI string
	Format  string
}

// Synthesizer converts text to speech. Implementations may return an error;
// callers treat any failure as absence of audio, never as a turn failure.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Clip, error)
}
