package api

import (
	"encoding/json"
	"net/http"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/identity"
)

func declareWindowHandler(store *availability.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requirePrincipal(w, r, identity.RoleDoctor)
		if !ok {
			return
		}

		var req WindowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		window, err := req.toWindow()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
			return
		}

		created, err := store.Declare(r.Context(), caller.ProfileID, window)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toWindowResponse(*created))
	}
}

func listOwnWindowsHandler(store *availability.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requirePrincipal(w, r, identity.RoleDoctor)
		if !ok {
			return
		}

		// Owners see their full history, expired windows included.
		windows, err := store.List(r.Context(), caller.ProfileID, true)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]WindowResponse, 0, len(windows))
		for _, win := range windows {
			resp = append(resp, toWindowResponse(win))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updateWindowHandler(store *availability.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requirePrincipal(w, r, identity.RoleDoctor)
		if !ok {
			return
		}
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		var req WindowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		window, err := req.toWindow()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
			return
		}

		updated, err := store.Update(r.Context(), caller.ProfileID, id, window)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toWindowResponse(*updated))
	}
}

func deleteWindowHandler(store *availability.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requirePrincipal(w, r, identity.RoleDoctor)
		if !ok {
			return
		}
		id, ok := parseIDParam(w, r, "id")
		if !ok {
			return
		}

		if err := store.Delete(r.Context(), caller.ProfileID, id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
