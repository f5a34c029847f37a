package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
	eventService services.EventService
}

func NewMatchHandler(ms services.MatchService, es services.EventService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
		eventService: es,
	}
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), scopeFromRequest(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchByID(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatchByID(r.Context(), scopeFromRequest(r), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	var filter services.MatchListFilter
	var err error
	if filter.GroupID, err = optionalIntQuery(r, "group_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.TeamID, err = optionalIntQuery(r, "team_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Round, err = optionalIntQuery(r, "round"); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), scopeFromRequest(r), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RescheduleMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RescheduleMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Round == nil && input.ScheduledAt == nil {
		badRequestResponse(w, r, errors.New("no fields provided for update"))
		return
	}

	match, err := h.matchService.RescheduleMatch(r.Context(), scopeFromRequest(r), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetScore godoc
// @Summary Установить или сбросить счёт матча
// @Tags matches
// @Description Записывает оба счёта (или сбрасывает оба через null) и пересчитывает таблицу обеих команд в той же транзакции.
// @Description Если у матча есть голы, счёт задаётся только событиями.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.ScoreInput true "Счёт хозяев и гостей"
// @Success 200 {object} map[string]interface{} "Матч обновлён"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Счёт определяется голами"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /matches/{matchID}/score [put]
func (h *MatchHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SetScore(r.Context(), scopeFromRequest(r), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteMatch godoc
// @Summary Удалить матч
// @Tags matches
// @Description Удаляет матч и его события; таблица обеих команд пересчитывается так, будто матча не было.
// @Param matchID path int true "Match ID"
// @Success 204 "Матч удалён"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Security BearerAuth
// @Router /matches/{matchID} [delete]
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), scopeFromRequest(r), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateFixtures godoc
// @Summary Сгенерировать календарь группы
// @Tags matches
// @Description Создаёт круговой турнир (один или два круга) для всех команд группы.
// @Accept json
// @Produce json
// @Param groupID path int true "Group ID"
// @Param body body services.GenerateFixturesInput true "Параметры календаря"
// @Success 201 {object} map[string]interface{} "Матчи созданы"
// @Failure 409 {object} map[string]string "В группе уже есть матчи"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /groups/{groupID}/fixtures [post]
func (h *MatchHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateFixturesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.GenerateFixtures(r.Context(), scopeFromRequest(r), groupID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	events, err := h.eventService.ListEvents(r.Context(), scopeFromRequest(r), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddEvent godoc
// @Summary Добавить событие матча
// @Tags events
// @Description Гол пересчитывает счёт матча по событиям и таблицу обеих команд. Карточки на таблицу не влияют.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.AddEventInput true "Игрок, тип события и минута"
// @Success 201 {object} map[string]interface{} "Событие добавлено"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Повторная красная карточка"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /matches/{matchID}/events [post]
func (h *MatchHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AddEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.AddEvent(r.Context(), scopeFromRequest(r), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), scopeFromRequest(r), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
