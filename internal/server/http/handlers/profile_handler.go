package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/server/http/dto"
)

// ProfileHandler serves the customer profile used for checkout prefill.
type ProfileHandler struct {
	facade ProfileFacade
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(facade ProfileFacade) *ProfileHandler {
	return &ProfileHandler{facade: facade}
}

// Get handles GET /api/user/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.facade.Profile(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(*profile))
}

// Update handles PUT /api/user/profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed profile")
		return
	}

	profile, err := h.facade.UpdateProfile(c.Request.Context(), model.CustomerProfile{
		UserID:     CurrentUserID(c),
		FullName:   req.FullName,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(*profile))
}
