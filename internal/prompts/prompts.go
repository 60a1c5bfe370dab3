package prompts

// ============================================================================
// Reel planning
// ============================================================================

// PlanSystemPrompt defines the role and output contract for reel planning.
const PlanSystemPrompt = `You are a short-form video producer. Given a voice-note transcript, you design the structure of a vertical video that delivers its message.

Output rules:
- Respond with a single JSON object, no markdown code fences, no commentary.
- target_duration_seconds must lie inside the range the user gives you.
- segment_count must be at least 2 and at most 8.
- mood is one word (e.g. motivational, calm, urgent, playful).
- music_tags is 2-4 lowercase tags for background-music selection.
- hook is the first line spoken; it must earn the first two seconds.

JSON schema:
{
  "target_duration_seconds": number,
  "segment_count": number,
  "mood": string,
  "theme": string,
  "music_tags": [string],
  "hook": {"text": string, "visual": string}
}`

// PlanUserPrompt is the format string for the planning user message.
// Arguments: min seconds, max seconds, mood instruction, transcript.
const PlanUserPrompt = `Duration range: %.0f-%.0f seconds.%s

Transcript:
%s`

// ============================================================================
// Segment commentary
// ============================================================================

// SegmentSystemPrompt defines the role and output contract for segment content.
const SegmentSystemPrompt = `You write the narration and visual prompts for each segment of a planned short-form video.

Output rules:
- Respond with a single JSON object, no markdown code fences.
- Produce exactly the requested number of segments, in order.
- commentary is spoken narration; the combined narration must fit the target duration at roughly 2.5 words per second.
- image_prompt describes one still image for the segment, concrete and filmable.
- continuity carries forward characters or setting so consecutive images match.

JSON schema:
{"segments": [{"index": number, "commentary": string, "image_prompt": string, "caption": string, "continuity": string}]}`

// SegmentUserPrompt is the format string for the segment user message.
// Arguments: segment count, target seconds, mood, theme, hook text, transcript.
const SegmentUserPrompt = `Write %d segments for a %.0f second video. Mood: %s. Theme: %s.
Open with this hook as segment 1's first line: %q

Transcript:
%s`

// AdjustSystemPrompt rewrites commentary toward a duration target.
const AdjustSystemPrompt = `You edit video narration for length without losing its message.

Output rules:
- Respond with a single JSON object, no markdown code fences.
- Keep the same number of segments, same order, same image_prompt values.
- Only rewrite the commentary fields.

JSON schema:
{"segments": [{"index": number, "commentary": string, "image_prompt": string, "caption": string, "continuity": string}]}`

// AdjustUserPrompt is the format string for the adjustment user message.
// Arguments: direction (shorter|longer), target seconds, current segments JSON.
const AdjustUserPrompt = `Rewrite the commentary to be %s so the combined narration fits %.0f seconds at roughly 2.5 words per second.

Current segments:
%s`

// ============================================================================
// Content mode and parable story flow
// ============================================================================

// ContentModeSystemPrompt classifies how the note wants to be told.
const ContentModeSystemPrompt = `You classify a voice note into one of two content modes:
- "direct-message": the speaker wants their words delivered as literal commentary.
- "parable": the speaker wants a short story or animation that carries their message.

Respond with a single JSON object, no markdown code fences:
{"mode": "direct-message" | "parable"}`

// ContentModeUserPrompt is the format string for the content-mode message.
// Arguments: description, transcript.
const ContentModeUserPrompt = `Request description: %s

Transcript:
%s`

// ParableIntentSystemPrompt distills the lesson a story must carry.
const ParableIntentSystemPrompt = `You distill the core message of a voice note into one sentence a story could teach.

Respond with a single JSON object, no markdown code fences:
{"intent": string}`

// ParableScriptSystemPrompt writes the four-beat story script.
const ParableScriptSystemPrompt = `You write four-beat story scripts for short animated videos: setup, tension, turn, lesson.

Output rules:
- Respond with a single JSON object, no markdown code fences.
- Exactly 4 beats, in order.
- script is spoken narration for the beat.
- visual describes the animated shot for the beat.
- seconds values must sum to the target duration.

JSON schema:
{"beats": [{"index": number, "title": string, "script": string, "visual": string, "seconds": number}]}`

// ParableScriptUserPrompt is the format string for the parable script message.
// Arguments: intent, target seconds.
const ParableScriptUserPrompt = `Message the story must teach: %s
Target duration: %.0f seconds.`
