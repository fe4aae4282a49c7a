// Package l2smooth suppresses per-frame landmark jitter with an adaptive
// exponential moving average. The effective window shortens when a
// landmark moves fast, so kick onset and peak are not blunted by lag.
// Unreliable landmarks are excluded from the average; their last good
// position is held rather than extrapolated.
package l2smooth
