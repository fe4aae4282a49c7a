// Package pose holds the core vocabulary shared by all analysis layers:
// the landmark identifier set, per-frame landmark data, kick phase and
// result status types, and the shared logging streams.
//
// Layer packages (l1norm, l2smooth, l3kinematics, l4phases, l5scoring,
// l6classify) import pose; pose imports none of them. The pipeline
// package is the composition root that wires the layers together.
package pose
