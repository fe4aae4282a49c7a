// Package l6classify matches a kick's aggregated feature vector against
// an immutable library of archetype signatures and returns ranked
// confidences. The library is loaded once at startup and shared
// read-only across concurrently analysed streams.
package l6classify
