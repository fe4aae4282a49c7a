// Package l1norm re-expresses raw provider landmarks in a canonical
// body-relative frame: positions are recentred on the hip midpoint and
// scaled by torso length, making downstream metrics invariant to camera
// distance and framing. Landmarks below the visibility threshold are
// marked unreliable rather than dropped.
package l1norm
