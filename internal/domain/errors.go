package domain

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrBanned          = errors.New("address is banned from this room")
	ErrNotHost         = errors.New("requester is not the host")
	ErrSelfTarget      = errors.New("cannot target yourself")
	ErrTargetNotFound  = errors.New("target user not found")
	ErrThrottled       = errors.New("too many events, slow down")
	ErrInvalidCapacity = errors.New("capacity out of range")
)

// ErrorCode maps a sentinel to its wire code. Unknown errors collapse
// to "internal" so internals never leak to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrBanned):
		return "banned"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrSelfTarget):
		return "self_target"
	case errors.Is(err, ErrTargetNotFound):
		return "target_not_found"
	case errors.Is(err, ErrThrottled):
		return "throttled"
	case errors.Is(err, ErrInvalidCapacity):
		return "invalid_capacity"
	default:
		return "internal"
	}
}
