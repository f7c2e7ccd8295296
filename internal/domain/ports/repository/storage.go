package repository

// StorageArea manages per-job working directories. Allocation failures are
// fatal for the operation that needed them; removal is always best-effort
// and never blocks a response path.
type StorageArea interface {
	// Allocate creates an isolated directory for the id and returns the
	// audio and result file paths inside it. Paths are unique per id.
	Allocate(id string) (audioPath, resultPath string, err error)
	// Write persists data at a previously allocated path.
	Write(path string, data []byte) error
	// Read returns the contents of a previously written artifact.
	Read(path string) ([]byte, error)
	// Remove deletes the given files, swallowing individual failures.
	Remove(paths ...string)
	// RemoveDir deletes the id's directory. Ignored when non-empty or gone.
	RemoveDir(id string)
}
