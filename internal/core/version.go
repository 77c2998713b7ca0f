package core

// Version is the build version, overridden at release time via
// -ldflags "-X github.com/azura-ai/azura/internal/core.Version=...".
var Version = "dev"
