package ui

// Sink receives transfer lifecycle and progress events. The dashboard and
// the plain text logger both implement it; everything else in the program
// depends only on this interface.
type Sink interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	// AddEntry registers a progress entry under key.
	AddEntry(key string)
	// RemoveEntry drops the progress entry for key, if any.
	RemoveEntry(key string)
	// UpdateEntry sets percent and status for key. An empty displayName
	// keeps the current one.
	UpdateEntry(key string, percent int, status, displayName string)
}
