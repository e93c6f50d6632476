package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fitcenter/internal/logger"
	"fitcenter/internal/models"
	"fitcenter/internal/services"
	"fitcenter/internal/utils"
	"fitcenter/internal/utils/helpers"

	"go.uber.org/zap"
)

type AdminHandler struct {
	authService *services.AuthService
}

func NewAdminHandler(authService *services.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// ListAccounts godoc
// @Summary Список аккаунтов
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param userType query string true "staff|member"
// @Param limit query int false "Лимит (по умолч. 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/admin/users [get]
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	ut, ok := models.ParseUserType(r.URL.Query().Get("userType"))
	if !ok {
		helpers.Fail(w, http.StatusBadRequest, "userType должен быть staff или member")
		return
	}

	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	accounts, total, err := h.authService.GetAccountsPaginated(r.Context(), ut, limit, offset)
	if err != nil {
		log.Error("Ошибка выборки аккаунтов", zap.Error(err))
		helpers.Fail(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	helpers.Success(w, http.StatusOK, map[string]any{
		"data":  accounts,
		"total": total,
	})
}

type createStaffRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin trainer reception"`
}

// CreateStaff godoc
// @Summary Создание аккаунта персонала
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body createStaffRequest true "Данные сотрудника"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/admin/staff [post]
func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Обязательные поля: email, fullName, password, role (admin|trainer|reception)")
		return
	}

	acc := &models.Account{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if err := h.authService.CreateStaff(r.Context(), acc, req.Password, req.Role); err != nil {
		log.Warn("Ошибка создания сотрудника", zap.Error(err))
		helpers.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	helpers.Success(w, http.StatusCreated, map[string]any{"id": acc.ID})
}
