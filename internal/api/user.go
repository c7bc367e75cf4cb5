package api

import (
	"net/http"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/validator"
)

func (a *Api) getUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp, _ := mapToUserResp(user)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateUserSettingsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &struct {
		Timezone      string `json:"timezone"`
		Notifications *bool  `json:"notifications"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	timezone := user.Timezone
	if req.Timezone != "" {
		timezone = req.Timezone
	}
	notify := user.Notify
	if req.Notifications != nil {
		notify = *req.Notifications
	}

	v := validator.New()
	v.Check(validTimezone(timezone), "timezone", "unknown time zone")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	if err := a.users.UpdateUserSettings(r.Context(), a.db, user.ID, timezone, notify); err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	user.Timezone = timezone
	user.Notify = notify
	resp, _ := mapToUserResp(user)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updatePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &struct {
		Token string `json:"token"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.users.UpdateUserPushToken(r.Context(), a.db, user.ID, req.Token); err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
