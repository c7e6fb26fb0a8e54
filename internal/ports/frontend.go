package ports

// Frontend is a long-running entry point that accepts submissions
type Frontend interface {
	// Start starts serving in the background
	Start() error

	// Stop stops accepting work and waits for in-flight requests
	Stop() error
}
