package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss}
}

// GetStandings godoc
// @Summary Турнирная таблица
// @Tags standings
// @Description Таблица, отсортированная по очкам, разнице мячей, забитым голам и названию. Фильтр ?group_id= необязателен.
// @Produce json
// @Param group_id query int false "Group ID"
// @Success 200 {object} map[string]interface{} "Строки таблицы"
// @Failure 400 {object} map[string]string "Некорректный group_id"
// @Security BearerAuth
// @Router /standings [get]
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	groupID, err := optionalIntQuery(r, "group_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.standingsService.GetStandings(r.Context(), scopeFromRequest(r), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type recalculateRequest struct {
	TenantID *int `json:"tenant_id,omitempty"`
}

// Recalculate пересчитывает таблицу всех команд тенанта. Тело запроса
// необязательно; супер-админ указывает tenant_id.
func (h *StandingsHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var input recalculateRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	n, err := h.standingsService.RecalculateTenant(r.Context(), scopeFromRequest(r), input.TenantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"recalculated_teams": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Audit сверяет сохранённые агрегаты с пересчитанными. Расхождение отдаётся
// как 500 вместе с отчётом.
func (h *StandingsHandler) Audit(w http.ResponseWriter, r *http.Request) {
	report, err := h.standingsService.Audit(r.Context(), scopeFromRequest(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if !report.Consistent() {
		status = http.StatusInternalServerError
	}
	if err := writeJSON(w, status, jsonResponse{"audit": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
