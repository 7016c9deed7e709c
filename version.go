package dfa

// Version is the release of the dfa module, reported by the CLI and the servers.
const Version = "0.3.0"
