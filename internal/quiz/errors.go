package quiz

import "fmt"

// ValidationError reports missing or malformed caller input. Nothing is
// written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OwnershipError reports that the acting user does not own the resource.
type OwnershipError struct {
	Resource string
	ID       string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("not authorized to modify %s %s", e.Resource, e.ID)
}

// NotFoundError reports that a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}
