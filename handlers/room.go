package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	roomRepo "meserte/database/repository/room"
	"meserte/models"
	"meserte/utils"
)

// RoomHandler exposes room management and the housekeeping hooks. Room CRUD
// belongs to staff management; it lives here only as the thin surface the
// booking core needs populated.
type RoomHandler struct {
	Repo roomRepo.RoomRepository
}

// NewRoomHandler creates a RoomHandler.
func NewRoomHandler(repo roomRepo.RoomRepository) *RoomHandler {
	return &RoomHandler{Repo: repo}
}

// ListRooms handles GET /api/rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.Repo.GetAll()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list rooms", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// CreateRoom handles POST /api/rooms.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Number      string   `json:"number" binding:"required"`
		Category    string   `json:"category" binding:"required"`
		NightlyRate float64  `json:"nightlyRate" binding:"required"`
		Amenities   []string `json:"amenities"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if req.NightlyRate <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "nightlyRate must be positive")
		return
	}

	room := &models.Room{
		ID:          uuid.New().String(),
		Number:      req.Number,
		Category:    req.Category,
		NightlyRate: req.NightlyRate,
		Amenities:   req.Amenities,
		Occupancy:   models.OccupancyVacant,
		Cleanliness: models.CleanlinessClean,
	}
	if err := h.Repo.Create(room); err != nil {
		utils.JSONError(c, http.StatusConflict, "failed to create room", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// UpdateCleanliness handles PATCH /api/rooms/:number/cleanliness, the
// housekeeping workflow's entry point.
func (h *RoomHandler) UpdateCleanliness(c *gin.Context) {
	var req struct {
		State string `json:"state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	room, err := h.Repo.GetByNumber(c.Param("number"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load room", err.Error())
		return
	}
	if room == nil {
		utils.JSONError(c, http.StatusNotFound, "room not found", c.Param("number"))
		return
	}

	switch req.State {
	case models.CleanlinessClean:
		err = h.Repo.MarkClean(room.ID)
	case models.CleanlinessDirty:
		err = h.Repo.MarkDirty(room.ID)
	case models.CleanlinessMaintenance:
		err = h.Repo.SetMaintenance(room.ID, true)
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid cleanliness state", req.State)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update room", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
