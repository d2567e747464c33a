package diag

// New builds a Diagnostic directly, without a Reporter.
func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// NewError is a shortcut for New(SevError, ...).
func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy of d with an additional note appended.
func (d Diagnostic) WithNote(where Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Where: where, Msg: msg})
	return d
}
