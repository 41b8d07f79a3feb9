package server

import (
	"errors"
	"net/http"

	"fincalc/internal/interest"
)

// calculateInterest answers the interest form. Validation failures are
// reported in the body with status 200 so the page can show them inline.
func (s *Server) calculateInterest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	res, err := interest.CalculateForm(r.PostForm)
	if err != nil {
		var userErr interest.Error
		if !errors.As(err, &userErr) {
			s.log.Error("calculate interest", "err", err)
		}
		writeJSON(w, http.StatusOK, InterestResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, InterestResponse{Result: res.HTML()})
}

type InterestResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
