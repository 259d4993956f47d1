package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

// ExportHandler produces a full JSON dump of the family's data for backup.
// Parent only, enforced by routing. Notifications are deliberately excluded:
// they are transient and regenerated by the scheduler.
type ExportHandler struct {
	users    *store.UserStore
	events   *store.EventStore
	worship  *store.WorshipStore
	homework *store.HomeworkStore
	goals    *store.GoalStore
	profiles *store.ChildProfileStore
	settings *store.SettingStore
	logger   *slog.Logger
}

func NewExportHandler(
	users *store.UserStore,
	events *store.EventStore,
	worship *store.WorshipStore,
	homework *store.HomeworkStore,
	goals *store.GoalStore,
	profiles *store.ChildProfileStore,
	settings *store.SettingStore,
	logger *slog.Logger,
) *ExportHandler {
	return &ExportHandler{
		users:    users,
		events:   events,
		worship:  worship,
		homework: homework,
		goals:    goals,
		profiles: profiles,
		settings: settings,
		logger:   logger.With("component", "export"),
	}
}

type exportPayload struct {
	ExportedAt       time.Time               `json:"exported_at"`
	Users            []model.User            `json:"users"`
	ChildProfiles    []model.ChildProfile    `json:"child_profiles"`
	Events           []model.Event           `json:"events"`
	WorshipPlans     []model.WorshipPlan     `json:"worship_plans"`
	WorshipTemplates []model.WorshipTemplate `json:"worship_templates"`
	WorshipLogs      []model.WorshipLog      `json:"worship_logs"`
	Homework         []model.Homework        `json:"homework"`
	SpiritualGoals   []model.SpiritualGoal   `json:"spiritual_goals"`
	Settings         []model.Setting         `json:"settings"`
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	payload := exportPayload{ExportedAt: time.Now().UTC()}
	var err error

	if payload.Users, err = h.users.List(); err != nil {
		h.exportError(w, "list users", err)
		return
	}
	if payload.ChildProfiles, err = h.profiles.List(); err != nil {
		h.exportError(w, "list child profiles", err)
		return
	}
	if payload.Events, err = h.events.ListAll(); err != nil {
		h.exportError(w, "list events", err)
		return
	}
	if payload.WorshipPlans, err = h.worship.ListPlans(); err != nil {
		h.exportError(w, "list worship plans", err)
		return
	}
	if payload.WorshipTemplates, err = h.worship.ListTemplates(); err != nil {
		h.exportError(w, "list worship templates", err)
		return
	}
	if payload.WorshipLogs, err = h.worship.ListLogs(); err != nil {
		h.exportError(w, "list worship logs", err)
		return
	}
	if payload.Homework, err = h.homework.List(nil); err != nil {
		h.exportError(w, "list homework", err)
		return
	}
	if payload.SpiritualGoals, err = h.goals.ListAll(); err != nil {
		h.exportError(w, "list goals", err)
		return
	}
	if payload.Settings, err = h.settings.List(); err != nil {
		h.exportError(w, "list settings", err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=theotime-export.json")
	writeJSON(w, http.StatusOK, payload)
}

func (h *ExportHandler) exportError(w http.ResponseWriter, step string, err error) {
	h.logger.Error("export failed", "step", step, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to export data")
}
