package controller

import (
	"github.com/watchroom/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw(), c.wsLoggingMw())
	mux.HandleError(c.handleWSError)

	// presence
	wsrouter.Handle(mux, "leave", c.handleLeave)
	wsrouter.Handle(mux, "updateUsername", c.handleUpdateUsername)

	// chat
	wsrouter.Handle(mux, "chatMessage", c.handleChatMessage)

	// player
	wsrouter.Handle(mux, "changeVideo", c.handleChangeVideo)
	wsrouter.Handle(mux, "playNext", c.handlePlayNext)
	wsrouter.Handle(mux, "playerStateChange", c.handlePlayerStateChange)
	wsrouter.Handle(mux, "requestInitialState", c.handleRequestInitialState)

	// playlist
	wsrouter.Handle(mux, "addToPlaylist", c.handleAddToPlaylist)
	wsrouter.Handle(mux, "removePlaylistItem", c.handleRemovePlaylistItem)
	wsrouter.Handle(mux, "movePlaylistItem", c.handleMovePlaylistItem)

	// moderation
	wsrouter.Handle(mux, "makeModerator", c.handleMakeModerator)
	wsrouter.Handle(mux, "removeModerator", c.handleRemoveModerator)
	wsrouter.Handle(mux, "kickUser", c.handleKickUser)
	wsrouter.Handle(mux, "banUser", c.handleBanUser)

	// screen share
	wsrouter.Handle(mux, "start-screen-share", c.handleStartScreenShare)
	wsrouter.Handle(mux, "stop-screen-share", c.handleStopScreenShare)
	wsrouter.Handle(mux, "webrtc-offer", c.handleWebRTCOffer)
	wsrouter.Handle(mux, "webrtc-answer", c.handleWebRTCAnswer)
	wsrouter.Handle(mux, "webrtc-ice-candidate", c.handleICECandidate)
	wsrouter.Handle(mux, "requestScreenShare", c.handleRequestScreenShare)
	wsrouter.Handle(mux, "respondScreenShare", c.handleRespondScreenShare)

	return mux
}
