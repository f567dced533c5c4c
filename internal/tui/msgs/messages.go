// Package msgs defines shared message types for TUI view transitions.
package msgs

// View transition messages

// GoToFeatureListMsg signals transition to the feature list view.
type GoToFeatureListMsg struct{}

// OpenFeatureMsg signals that the user picked a feature to work on.
type OpenFeatureMsg struct {
	Feature string
}

// Watcher messages

// DocumentSavedMsg is sent when a feature's tasks document changed on disk.
type DocumentSavedMsg struct {
	Feature string
}

// WatchErrorMsg carries a file watcher failure.
type WatchErrorMsg struct {
	Err error
}
