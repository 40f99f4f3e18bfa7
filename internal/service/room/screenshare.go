package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/session"
)

type StartScreenShareParams struct {
	RoomId string
	ConnId string
}

type StartScreenShareResponse struct {
	SharerConnId string
	Sharer       Member
	Conns        []*websocket.Conn
}

// StartScreenShare marks the connection as the room's single sharer and
// returns everyone else so they can be told to expect an offer.
func (s service) StartScreenShare(ctx context.Context, params *StartScreenShareParams) (StartScreenShareResponse, error) {
	entry, err := s.sessionRepo.FindEntryByConnId(params.RoomId, params.ConnId)
	if err != nil {
		return StartScreenShareResponse{}, ErrNotInRoom
	}

	if err := s.sessionRepo.SetSharer(params.RoomId, params.ConnId); err != nil {
		return StartScreenShareResponse{}, ErrRoomNotFound
	}

	conns := make([]*websocket.Conn, 0)
	for _, other := range s.sessionRepo.ListEntries(params.RoomId) {
		if other.ConnId == params.ConnId {
			continue
		}
		conn, err := s.connRepo.GetConn(other.ConnId)
		if err != nil {
			continue
		}
		conns = append(conns, conn)
	}

	return StartScreenShareResponse{
		SharerConnId: params.ConnId,
		Sharer:       toMember(entry),
		Conns:        conns,
	}, nil
}

type StopScreenShareParams struct {
	RoomId string
	ConnId string
}

type StopScreenShareResponse struct {
	Conns []*websocket.Conn
}

// StopScreenShare clears the sharer slot. Only the sharer themself may
// stop the share over the wire; internal cleanup bypasses this method and
// clears the slot directly.
func (s service) StopScreenShare(ctx context.Context, params *StopScreenShareParams) (StopScreenShareResponse, error) {
	sharerConnId, ok := s.sessionRepo.GetSharer(params.RoomId)
	if !ok || sharerConnId != params.ConnId {
		return StopScreenShareResponse{}, ErrPermissionDenied
	}

	s.sessionRepo.ClearSharer(params.RoomId)

	return StopScreenShareResponse{
		Conns: s.getConns(ctx, params.RoomId),
	}, nil
}

type RelaySignalParams struct {
	RoomId     string
	FromConnId string
	ToConnId   string
}

type RelaySignalResponse struct {
	TargetConn *websocket.Conn
}

// RelaySignal resolves the connection an offer, answer or ICE candidate is
// addressed to. A vanished target yields a nil connection and no error,
// stale candidates during teardown are dropped silently.
func (s service) RelaySignal(ctx context.Context, params *RelaySignalParams) (RelaySignalResponse, error) {
	if _, err := s.sessionRepo.FindEntryByConnId(params.RoomId, params.FromConnId); err != nil {
		return RelaySignalResponse{}, ErrNotInRoom
	}

	targetConn, err := s.connRepo.GetConn(params.ToConnId)
	if err != nil {
		s.logger.DebugContext(ctx, "dropping signal to unknown connection", "toConnId", params.ToConnId)
		return RelaySignalResponse{}, nil
	}

	return RelaySignalResponse{TargetConn: targetConn}, nil
}

type RequestScreenShareParams struct {
	RoomId     string
	FromConnId string
}

type RequestScreenShareResponse struct {
	HostConn  *websocket.Conn
	Requester Member
}

// RequestScreenShare routes a participant's wish to share at the connected
// host for approval.
func (s service) RequestScreenShare(ctx context.Context, params *RequestScreenShareParams) (RequestScreenShareResponse, error) {
	requester, err := s.sessionRepo.FindEntryByConnId(params.RoomId, params.FromConnId)
	if err != nil {
		return RequestScreenShareResponse{}, ErrNotInRoom
	}

	for _, entry := range s.sessionRepo.ListEntries(params.RoomId) {
		if entry.Role != session.RoleHost {
			continue
		}
		hostConn, err := s.connRepo.GetConn(entry.ConnId)
		if err != nil {
			break
		}
		return RequestScreenShareResponse{
			HostConn:  hostConn,
			Requester: toMember(requester),
		}, nil
	}

	return RequestScreenShareResponse{}, ErrHostNotConnected
}

type RespondScreenShareParams struct {
	RoomId      string
	SenderId    string
	RequesterId string
	Accepted    bool
}

type RespondScreenShareResponse struct {
	RequesterConn *websocket.Conn
	Accepted      bool
}

// RespondScreenShare delivers the host's verdict back to the requester.
func (s service) RespondScreenShare(ctx context.Context, params *RespondScreenShareParams) (RespondScreenShareResponse, error) {
	sender, err := s.getEntry(params.RoomId, params.SenderId)
	if err != nil {
		return RespondScreenShareResponse{}, err
	}
	if sender.Role != session.RoleHost {
		return RespondScreenShareResponse{}, ErrPermissionDenied
	}

	requester, err := s.sessionRepo.GetEntry(params.RoomId, params.RequesterId)
	if err != nil {
		return RespondScreenShareResponse{}, ErrUserNotFound
	}

	requesterConn, err := s.connRepo.GetConn(requester.ConnId)
	if err != nil {
		return RespondScreenShareResponse{}, ErrUserNotFound
	}

	return RespondScreenShareResponse{
		RequesterConn: requesterConn,
		Accepted:      params.Accepted,
	}, nil
}
