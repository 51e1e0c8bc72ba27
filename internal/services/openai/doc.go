// Package openai wraps the two OpenAI endpoints lqcli needs: Whisper audio
// transcription and chat completions for transcript post-processing.
//
// Requests are issued once. Failures wrap services.ErrTranscription so the
// sync loop can report them against the item being handed off.
package openai
