package quiz

// stateSavedMsg is sent when a state save has completed.
type stateSavedMsg struct {
	Err error
}
