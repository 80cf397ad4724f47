package types

// Version is the canonical project version, shared by the CLI and the
// fetch transport frames.
const Version = "0.3.0"
