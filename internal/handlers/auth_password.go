package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fitcenter/internal/logger"
	"fitcenter/internal/models"
	"fitcenter/internal/services"
	"fitcenter/internal/utils"
	"fitcenter/internal/utils/helpers"

	"go.uber.org/zap"
)

type PasswordHandler struct {
	svc         *services.PasswordService
	frontendURL string
}

func NewPasswordHandler(svc *services.PasswordService, frontendURL string) *PasswordHandler {
	return &PasswordHandler{svc: svc, frontendURL: frontendURL}
}

type forgotReq struct {
	Email    string `json:"email" validate:"required,email"`
	UserType string `json:"userType" validate:"required,oneof=staff member"`
}

// Forgot godoc
// @Summary Запрос восстановления пароля
// @Description Отправляет письмо со ссылкой для сброса пароля. Ответ всегда одинаковый, даже если e-mail не найден.
// @Tags password
// @Accept json
// @Produce json
// @Param input body forgotReq true "Email и тип аккаунта"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/auth/forgot-password [post]
func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req forgotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный payload в Forgot")
		helpers.Fail(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		log.Warn("Не пройдена валидация в Forgot", zap.Error(err))
		helpers.Fail(w, http.StatusBadRequest, "Обязательные поля: email, userType (staff|member)")
		return
	}
	ut, _ := models.ParseUserType(req.UserType)

	// Не раскрываем, существует ли email — при "не найдено" тоже 200
	if err := h.svc.RequestReset(r.Context(), req.Email, ut); err != nil {
		log.Error("Сбой при запросе восстановления пароля",
			zap.String("email_masked", utils.MaskEmail(req.Email)), zap.Error(err))
		helpers.Fail(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	log.Info("Запрошено восстановление пароля", zap.String("email_masked", utils.MaskEmail(req.Email)))
	helpers.Success(w, http.StatusOK, map[string]any{
		"message": "Если такой e-mail зарегистрирован, мы отправили на него ссылку для сброса пароля.",
	})
}

type verifyTokenReq struct {
	Token    string `json:"token" validate:"required"`
	UserType string `json:"userType" validate:"required,oneof=staff member"`
}

// VerifyToken godoc
// @Summary Проверка токена сброса
// @Description Чистое чтение: токен не потребляется. Невалидный токен — это success:false в теле, а не HTTP-ошибка.
// @Tags password
// @Accept json
// @Produce json
// @Param input body verifyTokenReq true "Токен и тип аккаунта"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/auth/verify-reset-token [post]
func (h *PasswordHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req verifyTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Обязательные поля: token, userType (staff|member)")
		return
	}
	ut, _ := models.ParseUserType(req.UserType)

	t, err := h.svc.Verify(r.Context(), req.Token, ut)
	if err != nil {
		// Инлайновая ошибка для формы, не транспортная
		helpers.Fail(w, http.StatusOK, "Недействительный или просроченный токен")
		return
	}

	log.Info("Токен сброса подтверждён", zap.Int("user_id", t.UserID), zap.String("user_type", string(ut)))
	helpers.Success(w, http.StatusOK, map[string]any{
		"email": utils.MaskEmail(t.Email),
		"name":  t.FullName,
	})
}

type resetPasswordReq struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"userType" validate:"required,oneof=staff member"`
}

// Reset godoc
// @Summary Сброс пароля по токену
// @Description Проверка токена, смена пароля и гашение токена выполняются одной транзакцией.
// @Tags password
// @Accept json
// @Produce json
// @Param input body resetPasswordReq true "Токен, новый пароль и тип аккаунта"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/auth/reset-password [post]
func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req resetPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Обязательные поля: token, password, userType (staff|member)")
		return
	}
	ut, _ := models.ParseUserType(req.UserType)

	// Слабый пароль отсекается до любого похода в хранилище
	if len(req.Password) < services.MinPasswordLen(ut) {
		helpers.Fail(w, http.StatusBadRequest,
			"Пароль должен быть не короче "+strconv.Itoa(services.MinPasswordLen(ut))+" символов")
		return
	}

	t, err := h.svc.ResetPassword(r.Context(), req.Token, req.Password, ut)
	if err != nil {
		if errors.Is(err, services.ErrPasswordTooShort) {
			helpers.Fail(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Warn("Не удалось сбросить пароль по токену", zap.Error(err))
		helpers.Fail(w, http.StatusOK, "Недействительный или просроченный токен")
		return
	}

	log.Info("Пароль успешно сброшен", zap.Int("user_id", t.UserID), zap.String("user_type", string(ut)))
	helpers.Success(w, http.StatusOK, map[string]any{
		"redirectUrl": h.frontendURL + "/login?type=" + string(ut),
	})
}

// Logs godoc
// @Summary Журнал сброса паролей
// @Tags password
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Лимит (по умолч. 50, макс. 500)"
// @Param userType query string false "staff|member"
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/auth/password-reset-logs [get]
func (h *PasswordHandler) Logs(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	limit := int64(50)
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}
	if limit > 500 {
		limit = 500
	}

	var ut models.UserType
	if s := r.URL.Query().Get("userType"); s != "" {
		parsed, ok := models.ParseUserType(s)
		if !ok {
			helpers.Fail(w, http.StatusBadRequest, "userType должен быть staff или member")
			return
		}
		ut = parsed
	}

	events, err := h.svc.LatestEvents(r.Context(), ut, limit)
	if err != nil {
		log.Error("Ошибка чтения журнала сброса", zap.Error(err))
		helpers.Fail(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	helpers.Success(w, http.StatusOK, map[string]any{"data": events})
}

// Cleanup godoc
// @Summary Очистка истёкших токенов сброса
// @Description Удаляет все токены с истёкшим сроком независимо от использования. Идемпотентна.
// @Tags password
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/auth/cleanup-tokens [post]
func (h *PasswordHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	n, err := h.svc.CleanupExpired(r.Context())
	if err != nil {
		log.Error("Ошибка очистки токенов", zap.Error(err))
		helpers.Fail(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	helpers.Success(w, http.StatusOK, map[string]any{"cleanedCount": n})
}
