package room

import "github.com/watchroom/server/internal/repository/session"

// isAuthorized reports whether the user currently holds playback control.
// While the host is connected only the host is authorized. Without the host
// every connected moderator is.
func (s service) isAuthorized(roomId, userId string) bool {
	entries := s.sessionRepo.ListEntries(roomId)

	hostConnected := false
	for _, entry := range entries {
		if entry.Role != session.RoleHost {
			continue
		}
		hostConnected = true
		if entry.UserId == userId {
			return true
		}
	}
	if hostConnected {
		return false
	}

	for _, entry := range entries {
		if entry.UserId == userId && entry.Role == session.RoleModerator {
			return true
		}
	}

	return false
}

func (s service) checkAuthority(roomId, userId string) error {
	if !s.isAuthorized(roomId, userId) {
		return ErrPermissionDenied
	}

	return nil
}
