package dbal

import "fmt"

// ConnectionError indicates that a physical connection could not be
// established, or that a handle-constructed Connection was asked to
// serialize itself.
type ConnectionError struct {
	Name string
	DSN  string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dbal: connection %s: %s", e.Name, e.DSN)
	}

	return fmt.Sprintf("dbal: connection %s: %v", e.Name, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates a lookup of an unregistered connection name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dbal: no connection registered under name %q", e.Name)
}
