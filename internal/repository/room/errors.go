package room

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrVideoNotFound = errors.New("video not found")
	ErrInvalidMove   = errors.New("invalid move")
)
