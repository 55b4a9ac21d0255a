// Package rangedl implements a multi-session HTTP range-download engine:
// a single Engine concurrently downloads several remote resources, each
// identified by a small numeric SessionID, streaming each as a sequence
// of fixed-size byte ranges and writing them to local files through a
// bounded write queue and a single background writer loop.
package rangedl
