package handler

import (
	"encoding/json"
	"net/http"

	"user-service/internal/domain"
	"user-service/internal/usecase"

	"go.uber.org/zap"
)

type UserHandler struct {
	uc     *usecase.UserUsecase
	logger *zap.Logger
}

func NewUserHandler(uc *usecase.UserUsecase, logger *zap.Logger) *UserHandler {
	return &UserHandler{uc: uc, logger: logger}
}

func (h *UserHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Register handles POST /api/v1/users/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-json")
		return
	}

	uid, err := h.uc.Register(r.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed",
			zap.String("username", req.Username),
			zap.Error(err))
		writeUserError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"uid": uid})
}
