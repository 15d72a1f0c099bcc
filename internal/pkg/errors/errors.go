package errors

import (
	"errors"
)

// Kind - машинно-читаемый код класса ошибки. Исторически клиенты подбирали
// реакцию по подстрокам текста ("has already begun", "not an active session",
// "answers are not available yet"); код передается рядом с текстом, чтобы
// новые клиенты переключались по нему, а старые продолжали работать.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindNotReady     Kind = "NOT_READY"
	KindInternal     Kind = "INTERNAL"
)

// Error - ошибка границы API с классом и человекочитаемым сообщением
type Error struct {
	Kind    Kind
	Message string
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	return e.Message
}

// New создает новую ошибку границы
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf возвращает класс ошибки; для неклассифицированных ошибок - KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	}
	return KindInternal
}

// Общие ошибки приложения (уровень хранилища и сервисов)
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда токен истек.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов состояния.
	ErrConflict = errors.New("resource state conflict")
)

// Ошибки границы API. Тексты зафиксированы: по их подстрокам ветвятся
// существующие клиенты.
var (
	ErrSessionNotFound     = New(KindNotFound, "Session not found")
	ErrSessionAlreadyBegun = New(KindConflict, "Session has already begun")
	ErrNotActiveSession    = New(KindConflict, "Session ID is not an active session")
	ErrSessionNotStarted   = New(KindConflict, "Session has not started yet")
	ErrSessionHasEnded     = New(KindConflict, "Session has ended")
	ErrAnswersNotReady     = New(KindNotReady, "Question answers are not available yet")
	ErrAnswerClosed        = New(KindConflict, "Can't answer question once answer is available")
	ErrPlayerNotFound      = New(KindNotFound, "Player ID does not refer to a valid player id")
	ErrEmailRegistered     = New(KindConflict, "Email address already registered")
	ErrInvalidCredentials  = New(KindUnauthorized, "Invalid email or password")
	ErrGameNotFound        = New(KindNotFound, "Game not found")
)
