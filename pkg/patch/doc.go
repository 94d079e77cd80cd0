// Package patch parses and applies the "*** Begin Patch" edit format emitted by
// coding assistants.
//
// A patch is a list of Add, Delete and Update directives. Update directives
// carry one or more @@-delimited hunks whose context lines are located in the
// target file with increasingly lenient matching; the amount of leniency is
// reported as a fuzz score. Parsing produces a Patch, which is turned into a
// Commit (per-path old/new content) and finally written through a FileSystem.
//
// The engine is synchronous and keeps no shared state between calls. Callers
// that edit the same tree concurrently must serialize their calls.
package patch
