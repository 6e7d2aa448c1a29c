// Package splat provides a pure-Go post-processing and serialization pipeline for 3D Gaussian splats
// predicted from a single photograph.
//
// It converts raw model outputs from normalized device coordinates into metric camera space, keeping
// means and covariances consistent under affine maps, and writes scenes to the binary PLY layout used by
// Gaussian splatting viewers. Model inference itself is an external collaborator behind the Predictor
// interface.
package splat
