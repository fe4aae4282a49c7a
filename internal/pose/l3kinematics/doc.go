// Package l3kinematics turns smoothed landmark frames into per-frame
// kinematic features: joint angles at knee and hip, kick-height ratio,
// hip rotation, and finite-difference velocities of the feet. Degenerate
// geometry yields marked-invalid values, never NaN; invalid values are
// excluded from aggregates downstream but do not halt the pipeline.
package l3kinematics
