package handlers

import (
	"encoding/json"
	"net/http"
)

type loginReq struct {
	ProjectHash string `json:"project_hash"`
	Code        string `json:"code"`
}

// Login exchanges an employee code for the employee session record.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	emp, err := a.Directory.Login(r.Context(), body.ProjectHash, body.Code)
	if err != nil {
		a.fail(w, http.StatusUnauthorized, "login failed")
		return
	}
	a.json(w, http.StatusOK, emp)
}
