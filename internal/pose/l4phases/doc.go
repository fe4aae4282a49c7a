// Package l4phases segments the kinematic feature stream into kick
// lifecycle phases with an explicit state machine:
//
//	Idle → Chamber → Extension → Retraction → Complete → Idle
//
// On Complete, the frames since chamber onset are packaged as a
// KickInstance with aggregated statistics, ready for scoring and
// classification. Each transition is an isolated predicate so it can be
// unit tested on synthetic feature events.
package l4phases
