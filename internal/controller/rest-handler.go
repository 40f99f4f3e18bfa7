package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/rest"
	"github.com/watchroom/server/pkg/videometa"
)

type createRoomRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=20,excludes= "`
	HostId          string `json:"hostId" validate:"required"`
	HostUsername    string `json:"hostUsername" validate:"required,min=2,max=20"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,gte=1"`
	VideoURL        string `json:"videoUrl"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.DebugContext(r.Context(), "failed to validate request", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	createRoomResp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Name:            req.Name,
		HostId:          req.HostId,
		HostUsername:    req.HostUsername,
		DurationMinutes: req.DurationMinutes,
		VideoURL:        req.VideoURL,
	})
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, errorStatus(err), rest.Envelope{"error": errorMessage(err)})
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomResp})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	roomView, err := c.roomService.GetRoomState(r.Context(), roomId)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to get room", "error", err)
		rest.WriteJSON(w, errorStatus(err), rest.Envelope{"error": errorMessage(err)})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": roomView})
}

func (c controller) deleteRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	requesterId := r.URL.Query().Get("user-id")
	if requesterId == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "user-id is required"})
		return
	}

	if err := c.roomService.DeleteRoom(r.Context(), &room.DeleteRoomParams{
		RoomId:      roomId,
		RequesterId: requesterId,
	}); err != nil {
		c.logger.DebugContext(r.Context(), "failed to delete room", "error", err)
		rest.WriteJSON(w, errorStatus(err), rest.Envelope{"error": errorMessage(err)})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c controller) getMessages(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	msgs, err := c.roomService.GetMessages(r.Context(), roomId)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to get messages", "error", err)
		rest.WriteJSON(w, errorStatus(err), rest.Envelope{"error": errorMessage(err)})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": msgs})
}

func (c controller) getVideoData(w http.ResponseWriter, r *http.Request) {
	videoId := chi.URLParam(r, "video-id")

	videoData, err := videometa.Get(videoId)
	if err != nil {
		if errors.Is(err, videometa.ErrVideoNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": err.Error()})
			return
		}
		c.logger.ErrorContext(r.Context(), "failed to get video data", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": videoData})
}
