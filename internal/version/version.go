package version

// Version is the semantic version of the solidwrap CLI. Overridden at build
// time via -ldflags.
var Version = "0.4.0"
