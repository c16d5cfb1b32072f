package version

// Version is overridden at build time with -ldflags "-X recipe-chat/internal/version.Version=...".
var Version = "dev"
