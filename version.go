package raclients

// Version is the library version, overridden at release time via
// -ldflags "-X github.com/magenta-aps/raclients.Version=...".
var Version = "dev"
