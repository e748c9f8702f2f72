package ir

// ToolVersion is the toolkit version reported by the CLI.
const ToolVersion = "0.1.0"
