package api

import (
	"errors"
	"net/http"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/validator"
)

const defaultTimezone = "UTC"

func (a *Api) signInGoogleHandler(w http.ResponseWriter, r *http.Request) {
	req := &struct {
		AuthCode string `json:"auth_code"`
		Timezone string `json:"timezone"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(req.AuthCode != "", "auth_code", "must be provided")
	v.Check(req.Timezone == "" || validTimezone(req.Timezone), "timezone", "unknown time zone")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	tokenInfo, err := a.tokenParser.GetInfoGoogle(r.Context(), req.AuthCode)
	if err != nil {
		a.unauthorizedResponse(w, r, errors.New("invalid auth code"))
		return
	}

	user, err := a.users.GetUserByEmail(r.Context(), a.db, tokenInfo.Email)
	if err != nil {
		if !errors.Is(err, model.ErrNoRecord) {
			a.serverErrorResponse(w, r, err)
			return
		}

		userCreate := &model.UserCreate{
			FullName: tokenInfo.Name,
			Email:    tokenInfo.Email,
			Timezone: req.Timezone,
		}
		if userCreate.Timezone == "" {
			userCreate.Timezone = defaultTimezone
		}

		id, err := a.users.CreateUser(r.Context(), a.db, userCreate)
		if err != nil {
			a.serverErrorResponse(w, r, err)
			return
		}

		user = &model.User{ID: id, UserCreate: *userCreate}
		a.logger.Infow("user registered", "user_id", id)
	}

	tokens, err := a.generateTokens(r.Context(), user.ID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, tokens, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	input := &struct {
		RefreshToken string `json:"refresh_token"`
	}{}

	if err := a.readJSON(w, r, input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	id, err := a.refreshTokens.Get(r.Context(), input.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.unauthorizedResponse(w, r, errors.New("no such session"))
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	accessToken, err := a.jwts.CreateToken(id)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	newRefreshToken := ""
	for {
		newRefreshToken, err = a.generateRandomString(a.settings.SessionTokenLength)
		if err != nil {
			a.serverErrorResponse(w, r, err)
			return
		}

		if err := a.refreshTokens.Refresh(r.Context(), input.RefreshToken, newRefreshToken); err != nil {
			switch {
			case errors.Is(err, model.ErrAlreadyExists):
				continue
			case errors.Is(err, model.ErrNoRecord):
				a.unauthorizedResponse(w, r, errors.New("no such session"))
			default:
				a.serverErrorResponse(w, r, err)
			}
			return
		}

		break
	}

	response := &tokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}

	if err := a.writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	input := &struct {
		RefreshToken string `json:"refresh_token"`
	}{}

	if err := a.readJSON(w, r, input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.refreshTokens.Delete(r.Context(), input.RefreshToken); err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.unauthorizedResponse(w, r, errors.New("no such session"))
		default:
			a.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) logoutAllHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.refreshTokens.DeleteByUserID(r.Context(), user.ID); err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
