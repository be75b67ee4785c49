// Package editplan turns free-text edit instructions into a validated list of
// media operations.
//
// A Translator asks the configured language model for strict JSON, decodes it
// defensively (code fences stripped, malformed entries dropped), and then
// normalizes every operation against the clip: trim windows are clamped into
// the clip and must leave playable material, speed factors must sit in (0, 8],
// and fade durations are clamped to what remains. An empty or undecodable
// model reply surfaces as a translation-unparseable failure rather than a
// silent no-op.
package editplan
