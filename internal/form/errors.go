package form

// Errors maps a field name to a user-facing validation message.
type Errors map[string]string

// Clear removes the message for field, if any.
func (e Errors) Clear(field string) {
	delete(e, field)
}

// Has reports whether field has a message.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}
