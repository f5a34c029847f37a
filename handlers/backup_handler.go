package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type BackupHandler struct {
	backupService services.BackupService
}

func NewBackupHandler(bs services.BackupService) *BackupHandler {
	return &BackupHandler{backupService: bs}
}

// Export godoc
// @Summary Экспорт данных
// @Tags backup
// @Description Выгружает тенантов, группы, команды, игроков, матчи и события в JSON.
// @Produce json
// @Success 200 {object} models.Backup "Документ бэкапа"
// @Security BearerAuth
// @Router /backup [get]
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	backup, err := h.backupService.Export(r.Context(), scopeFromRequest(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "league-backup-"+backup.CreatedAt.Format("20060102T150405Z")+".json"))
	if err := writeJSON(w, http.StatusOK, backup, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Restore godoc
// @Summary Восстановление из бэкапа
// @Tags backup
// @Description Заменяет данные лиги тенанта содержимым документа в одной транзакции и пересчитывает таблицу.
// @Accept json
// @Produce json
// @Param body body services.RestoreInput true "Документ и целевой тенант"
// @Success 200 {object} services.RestoreResult "Количество восстановленных записей"
// @Failure 400 {object} map[string]string "Неподдерживаемый документ"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /restore [post]
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var input services.RestoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.backupService.Restore(r.Context(), scopeFromRequest(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"restored": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BackupHandler) RunScheduledBackup(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.backupService.RunScheduledBackup(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"uploads": uploads}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
