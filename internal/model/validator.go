package model

// ValidationErrors maps a field name to a human-readable violation message.
type ValidationErrors map[string]string

// Checker accumulates field violations. Only the first message recorded for
// a field is kept.
type Checker struct {
	errors ValidationErrors
}

// NewChecker creates an empty Checker.
func NewChecker() *Checker {
	return &Checker{errors: make(ValidationErrors)}
}

// Check records message for field when ok is false and returns ok.
func (c *Checker) Check(ok bool, field, message string) bool {
	if !ok {
		c.Add(field, message)
	}
	return ok
}

// Add records message for field unless the field already has one.
func (c *Checker) Add(field, message string) {
	if _, exists := c.errors[field]; !exists {
		c.errors[field] = message
	}
}

// Errors returns the recorded violations.
func (c *Checker) Errors() ValidationErrors {
	return c.errors
}
