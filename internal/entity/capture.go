package entity

// Credentials identify one portal account. They are supplied once per run
// and never persisted by the pipeline.
type Credentials struct {
	Username string
	Password string
}

// Overlay describes what gets stamped onto the captured schedule.
type Overlay struct {
	// Message is the attestation text placed near the bottom-left corner.
	// It must be non-empty.
	Message string
	// SignaturePath points to an optional signature image. An empty or
	// missing path skips the signature without failing the overlay.
	SignaturePath string
}

// CaptureResult describes where the artifact ended up.
type CaptureResult struct {
	// Path is the final location of the PDF on disk. It may be the
	// temporary path when both rename attempts failed.
	Path string
	// Degraded is set when the artifact was delivered without the overlay
	// because post-processing could only fall back to a byte copy.
	Degraded bool
}
