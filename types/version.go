package types

// Version is the canonical project version.
// The CLI and the completion event payload share this version.
const Version = "0.3.0"
