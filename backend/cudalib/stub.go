//go:build !(cgo && cuda)

package cudalib

// Available reports whether the native backend was compiled in. It requires cgo and the "cuda" build tag.
const Available = false
