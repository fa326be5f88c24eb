// Package workspace loads the workspace model: the root manifest, the member
// packages in stable declaration order, and the dependency relation between
// them.
//
// The model is immutable for the duration of one invocation. Task sections
// (`generate` and `verify` blocks) are carried as raw, undecoded HCL bodies;
// interpreting them is the task resolver's job.
package workspace
