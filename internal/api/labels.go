package api

import (
	"net/http"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/SergeyKozhin/calendar-sync-backend/internal/pkg/validator"
)

func (a *Api) getLabelsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	labels, err := a.labels.GetUserLabels(r.Context(), a.db, user.ID)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp, _ := mapSlice(labels, mapToLabelResp)

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) createLabelHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	req := &struct {
		Title string `json:"title"`
		Color string `json:"color"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(req.Title != "", "title", "must be provided")
	v.Check(validator.Matches(req.Color, validator.HexRX), "color", "must be a hex color")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	label := &model.Label{UserID: user.ID, Title: req.Title, Color: req.Color}
	label.ID, err = a.labels.CreateLabel(r.Context(), a.db, label)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	resp, _ := mapToLabelResp(label)

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
