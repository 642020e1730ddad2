package registry

import "errors"

// Sentinel errors returned by registry operations. Callers classify
// failures with errors.Is; wrapped messages carry the detail.
var (
	// ErrNoFaceDetected means the extractor located no face in the image.
	ErrNoFaceDetected = errors.New("no face detected in image")

	// ErrEncodingFailed means faces were located but no embedding was produced.
	ErrEncodingFailed = errors.New("failed to encode face")

	// ErrNotFound means the user id is not present in the record store.
	ErrNotFound = errors.New("user not found")

	// ErrAssetMissing means a referenced image file is absent on disk.
	ErrAssetMissing = errors.New("asset file missing")

	// ErrStorageCorruption means the durable metadata exists but cannot be
	// parsed. This is fatal at load time: silently resetting to an empty
	// store would discard every enrollment.
	ErrStorageCorruption = errors.New("metadata storage corrupted")

	// ErrStorageIO means a write or delete against durable state failed.
	ErrStorageIO = errors.New("storage i/o failure")
)
