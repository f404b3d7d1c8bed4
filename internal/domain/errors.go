package domain

import "errors"

var (
	// ErrRegistrationClosed is returned when registering outside the registration window.
	ErrRegistrationClosed = errors.New("registration closed")
	// ErrQuestionClosed is returned when answering outside an open quiz question.
	ErrQuestionClosed = errors.New("question not active")
	// ErrNameTaken is returned when the requested name is already registered.
	ErrNameTaken = errors.New("name already taken")
	// ErrRoomFull is returned when the room is at its user cap.
	ErrRoomFull = errors.New("room is full")
	// ErrAlreadyAnswered is returned on a second submission for the same question.
	ErrAlreadyAnswered = errors.New("already answered this question")
	// ErrInvalidName is returned when a name fails charset or emptiness validation.
	ErrInvalidName = errors.New("invalid name")
	// ErrUserNotFound is returned when acting on behalf of an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken is returned on a missing or unverifiable bearer token.
	ErrInvalidToken = errors.New("invalid token")
)
