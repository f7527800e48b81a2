package cli

import "fmt"

// validationError is a client-side input rejection: it fires before any
// network call is made.
type validationError struct {
	field string
	msg   string
}

func (e validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.msg)
}

func errEmptyField(field string) error {
	return validationError{field: field, msg: "значение не может быть пустым"}
}

func errInvalidDate(field, value string) error {
	return validationError{field: field, msg: fmt.Sprintf("некорректная дата %q (ожидается ГГГГ-ММ-ДД)", value)}
}
