// Settings and profile HTTP handlers.
//
//   - POST /users                    (register or rename the caller)
//   - PUT  /users/me/settings        (per-user notification toggle)
//   - GET  /settings/notifications   (global notification flag)
//   - PUT  /settings/notifications   (master only)
//   - GET  /settings/{key}           (generic setting read)
//   - PUT  /settings/{key}           (master only, upsert)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ghostgear-presence/internal/services"
)

// RegisterUserRequest creates or renames the caller's profile.
type RegisterUserRequest struct {
	DisplayName string `json:"display_name" binding:"required" example:"Ayse K."`
}

// UserSettingsRequest toggles the caller's push notifications.
type UserSettingsRequest struct {
	NotificationsEnabled *bool `json:"notifications_enabled" binding:"required" example:"false"`
}

// NotificationsResponse is the global notification flag.
type NotificationsResponse struct {
	Enabled bool `json:"enabled" example:"true"`
}

// NotificationsRequest sets the global notification flag.
type NotificationsRequest struct {
	Enabled *bool `json:"enabled" binding:"required" example:"true"`
}

// SettingResponse is one key/value setting.
type SettingResponse struct {
	Key   string `json:"key" example:"manual_online_count"`
	Value string `json:"value" example:"120"`
}

// SettingRequest is the body of a generic setting upsert.
type SettingRequest struct {
	Value *string `json:"value" binding:"required" example:"120"`
}

// RegisterUser godoc
// @ID          registerUser
// @Summary     Register the caller
// @Description Creates the caller's profile, or updates the display name when it exists.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RegisterUserRequest  true  "Profile"
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Anonymous caller"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /users [post]
func (h *Handlers) RegisterUser(c *gin.Context) {
	uid, authed := requireCaller(c)
	if !authed {
		return
	}
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "display_name required")
		return
	}
	u, err := h.users.Register(c.Request.Context(), uid, req.DisplayName)
	if err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateMySettings godoc
// @ID          updateMySettings
// @Summary     Update the caller's settings
// @Tags        Users
// @Accept      json
// @Param       body  body  handlers.UserSettingsRequest  true  "Settings"
// @Success     204  "Updated"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Anonymous caller"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown user"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /users/me/settings [put]
func (h *Handlers) UpdateMySettings(c *gin.Context) {
	uid, authed := requireCaller(c)
	if !authed {
		return
	}
	var req UserSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notifications_enabled required")
		return
	}
	if err := h.settings.SetUserNotifications(c.Request.Context(), uid, *req.NotificationsEnabled); err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	noContent(c)
}

// GetNotifications godoc
// @ID          getNotifications
// @Summary     Global notification flag
// @Description Defaults to enabled when never set.
// @Tags        Settings
// @Produce     json
// @Success     200  {object}  handlers.NotificationsResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /settings/notifications [get]
func (h *Handlers) GetNotifications(c *gin.Context) {
	on, err := h.settings.NotificationsEnabled(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	ok(c, http.StatusOK, NotificationsResponse{Enabled: on})
}

// PutNotifications godoc
// @ID          putNotifications
// @Summary     Set the global notification flag
// @Tags        Settings
// @Accept      json
// @Param       body  body  handlers.NotificationsRequest  true  "Flag"
// @Success     204  "Updated"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a master user"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /settings/notifications [put]
func (h *Handlers) PutNotifications(c *gin.Context) {
	var req NotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "enabled required")
		return
	}
	if err := h.settings.SetNotificationsEnabled(c.Request.Context(), *req.Enabled); err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	noContent(c)
}

// GetSetting godoc
// @ID          getSetting
// @Summary     Read a setting
// @Tags        Settings
// @Produce     json
// @Param       key  path  string  true  "Setting key"
// @Success     200  {object}  handlers.SettingResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid key"
// @Failure     404  {object}  handlers.ErrorResponse  "Not set"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /settings/{key} [get]
func (h *Handlers) GetSetting(c *gin.Context) {
	key := c.Param("key")
	v, found, err := h.settings.Get(c.Request.Context(), key)
	if err == nil && !found {
		err = services.ErrSettingNotFound
	}
	if err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	ok(c, http.StatusOK, SettingResponse{Key: key, Value: v})
}

// PutSetting godoc
// @ID          putSetting
// @Summary     Upsert a setting
// @Tags        Settings
// @Accept      json
// @Produce     json
// @Param       key   path  string                   true  "Setting key"
// @Param       body  body  handlers.SettingRequest  true  "Value"
// @Success     200  {object}  handlers.SettingResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid key or value"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a master user"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /settings/{key} [put]
func (h *Handlers) PutSetting(c *gin.Context) {
	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "value required")
		return
	}
	key := c.Param("key")
	if err := h.settings.Set(c.Request.Context(), key, *req.Value); err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	ok(c, http.StatusOK, SettingResponse{Key: key, Value: *req.Value})
}
