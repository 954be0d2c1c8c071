package core

// Logger logs messages and reports errors to an external tracker.
// args may hold errors, extra fields (map[string]interface{}) or a Person.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the authenticated caller attached to error reports.
type Person struct {
	ID       string
	Username string
	Email    string
}
