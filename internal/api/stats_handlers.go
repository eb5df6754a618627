package api

import (
	"net/http"

	"github.com/vytor/neurobank/internal/models"
)

type recordRequest struct {
	Count *int `json:"count" validate:"omitempty,gte=0"`
}

func (req recordRequest) count() int {
	if req.Count == nil {
		return 1
	}
	return *req.Count
}

type verifyResponse struct {
	WasRepaired      bool                 `json:"was_repaired"`
	Discrepancies    []models.Discrepancy `json:"discrepancies"`
	DiscrepancyCount int                  `json:"discrepancy_count"`
	RepairableCount  int                  `json:"repairable_count"`
}

type verifiedMeta struct {
	WasRepaired   bool                 `json:"was_repaired"`
	Discrepancies []models.Discrepancy `json:"discrepancies"`
}

type calculatedMeta struct {
	Source string `json:"source"`
	Note   string `json:"note"`
}

func success(data any) envelope { return envelope{Success: true, Data: data} }

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	weekly, err := s.Stats.GetWeeklyStats(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, success(weekly))
}

func (s *Server) handleTotalStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.Stats.GetTotalStats(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, success(total))
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	streaks, err := s.Stats.CalculateStreaks(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, success(streaks))
}

func (s *Server) handleTodayStats(w http.ResponseWriter, r *http.Request) {
	today, err := s.Stats.GetTodayStats(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, success(today))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.Stats.GetDashboard(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, success(dash))
}

func (s *Server) handleVerifyStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.Stats.VerifyAndRepairStats(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	msg := "Statistics verified as correct"
	if result.WasRepaired {
		msg = "Statistics repaired"
	}
	discrepancies := result.Discrepancies
	if discrepancies == nil {
		discrepancies = []models.Discrepancy{}
	}
	writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: msg,
		Data: verifyResponse{
			WasRepaired:      result.WasRepaired,
			Discrepancies:    discrepancies,
			DiscrepancyCount: len(discrepancies),
			RepairableCount:  result.RepairableCount(),
		},
	})
}

func (s *Server) handleVerifiedStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.Stats.GetVerifiedStats(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	discrepancies := result.Discrepancies
	if discrepancies == nil {
		discrepancies = []models.Discrepancy{}
	}
	writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Data:    result.Stats,
		Meta:    verifiedMeta{WasRepaired: result.WasRepaired, Discrepancies: discrepancies},
	})
}

func (s *Server) handleCalculatedStats(w http.ResponseWriter, r *http.Request) {
	calc, err := s.Stats.GetCalculatedStats(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Data:    calc.DashboardStats,
		Meta:    calculatedMeta{Source: calc.Source, Note: calc.Note},
	})
}

func (s *Server) handleRecordNote(w http.ResponseWriter, r *http.Request) {
	day, err := s.Stats.RecordNoteCreated(r.Context(), urlParam(r, "userID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "Note creation recorded", Data: day})
}

func (s *Server) handleRecordStudy(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req, true); err != nil {
		handleError(w, r, err)
		return
	}
	day, err := s.Stats.RecordFlashcardStudied(r.Context(), urlParam(r, "userID"), req.count())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "Flashcard study recorded", Data: day})
}

func (s *Server) handleRecordCreation(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req, true); err != nil {
		handleError(w, r, err)
		return
	}
	day, err := s.Stats.RecordFlashcardsCreated(r.Context(), urlParam(r, "userID"), req.count())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "Flashcard creation recorded", Data: day})
}

func (s *Server) handleCleanupStats(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Stats.CleanOldStats(r.Context(), urlParam(r, "userID")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "Old statistics cleaned up"})
}
