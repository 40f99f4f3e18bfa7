package room

// Room is the durable room record. Role lists, the banned set, queue and
// history live in their own keys and are accessed through targeted
// add/remove operations.
type Room struct {
	Name         string `redis:"name"`
	HostId       string `redis:"host_id"`
	HostUsername string `redis:"host_username"`
	VideoURL     string `redis:"video_url"`
	CreatedAt    int64  `redis:"created_at"`
	ExpiresAt    int64  `redis:"expires_at"`
	IsActive     bool   `redis:"is_active"`
}

// RoomUser is an element of the durable moderators/participants lists.
type RoomUser struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
}
