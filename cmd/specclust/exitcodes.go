package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, missing input, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, invalid parameters)
	ExitDataError   = 3 // Data error (malformed MGF, invalid spectrum)
)
