package room

import "time"

type CreateRoomParams struct {
	RoomId       string
	Name         string
	HostId       string
	HostUsername string
	VideoURL     string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type UpdateRoomVideoParams struct {
	RoomId   string
	VideoURL string
}

type UpdateHostUsernameParams struct {
	RoomId   string
	Username string
}

type AddUserToListParams struct {
	RoomId   string
	UserId   string
	Username string
}

type MoveUserParams struct {
	RoomId string
	UserId string
}

type UserParams struct {
	RoomId string
	UserId string
}

type SetUsernameParams struct {
	RoomId   string
	UserId   string
	Username string
}

type QueueVideoParams struct {
	RoomId   string
	VideoURL string
}

type SwapQueueNeighborsParams struct {
	RoomId   string
	VideoURL string
	// Direction is -1 to move the video towards the head, 1 towards the tail.
	Direction int
}
