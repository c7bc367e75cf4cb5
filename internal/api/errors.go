package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
)

func (a *Api) logError(r *http.Request, err error) {
	a.logger.Errorw("server error", "method", r.Method, "uri", r.URL.RequestURI(), "error", err)
}

func (a *Api) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	data := map[string]interface{}{"error": message}

	if err := a.writeJSON(w, status, data, nil); err != nil {
		a.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (a *Api) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	a.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (a *Api) clientErrorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	a.logger.Debugw("client error", "err", message)
	a.errorResponse(w, r, status, message)
}

func (a *Api) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	a.clientErrorResponse(w, r, http.StatusNotFound, message)
}

func (a *Api) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	a.clientErrorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (a *Api) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (a *Api) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	a.clientErrorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (a *Api) unauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusUnauthorized, err.Error())
}

func (a *Api) forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	a.clientErrorResponse(w, r, http.StatusForbidden, message)
}

// eventErrorResponse maps the event service errors to client errors. Anything
// else is a server error.
func (a *Api) eventErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var recErr *model.InvalidRecurrenceError
	var idErr *model.InvalidEventIDError
	var permErr *model.PermissionError
	var repoErr *model.EventRepoError

	switch {
	case errors.As(err, &recErr):
		a.failedValidationResponse(w, r, map[string]string{"recurrences": recErr.Reason})
	case errors.As(err, &idErr):
		a.clientErrorResponse(w, r, http.StatusNotFound, idErr.Error())
	case errors.Is(err, model.ErrEventNotFound):
		a.notFoundResponse(w, r)
	case errors.As(err, &permErr):
		a.forbiddenResponse(w, r, permErr.Error())
	case errors.As(err, &repoErr):
		a.badRequestResponse(w, r, repoErr)
	default:
		a.serverErrorResponse(w, r, err)
	}
}
