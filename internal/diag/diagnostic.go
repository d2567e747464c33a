package diag

// Note is a secondary location attached to a Diagnostic for extra
// context, e.g. pointing at the chunk a truncated record belongs to.
type Note struct {
	Where Location
	Msg   string
}

// Diagnostic is a single finding produced while reading or writing a
// recording.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}
