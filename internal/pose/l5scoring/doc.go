// Package l5scoring aggregates a finalized kick instance into composite
// form, power, balance and overall scores on a 0-100 scale, plus the
// derived coaching outputs (letter grade, textual recommendations).
// Every intermediate ratio is clamped to [0,1] before scaling, so
// malformed inputs cannot push a score out of range.
package l5scoring
