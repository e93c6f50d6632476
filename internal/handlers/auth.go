package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"fitcenter/internal/logger"
	"fitcenter/internal/models"
	"fitcenter/internal/services"
	"fitcenter/internal/sessions"
	"fitcenter/internal/utils"
	"fitcenter/internal/utils/helpers"

	"go.uber.org/zap"
)

// Cookie сессии. Debug-кука читается только вне prod.
// auth_token — наследие старого фронта, на логауте чистим и её.
const (
	SessionCookie      = "session_id"
	SessionCookieDebug = "session_id_debug"
	LegacyAuthCookie   = "auth_token"
)

type AuthHandler struct {
	authService  *services.AuthService
	sessionStore *sessions.Store
	jwtSecret    string
	accessTTL    time.Duration
	sessionTTL   time.Duration
	env          string
}

func NewAuthHandler(authService *services.AuthService, sessionStore *sessions.Store, jwtSecret string, accessTTL, sessionTTL time.Duration, env string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessionStore: sessionStore,
		jwtSecret:    jwtSecret,
		accessTTL:    accessTTL,
		sessionTTL:   sessionTTL,
		env:          env,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"userType" validate:"required,oneof=staff member"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

// Login godoc
// @Summary Вход в выбранном пространстве аккаунтов
// @Description Успешный вход создаёт cookie-сессию и возвращает access-токен для админского API.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 429 {object} map[string]any
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Обязательные поля: email, password, userType (staff|member)")
		return
	}
	ut, _ := models.ParseUserType(req.UserType)

	acc, retryAfter, err := h.authService.Login(r.Context(), req.Email, req.Password, ut, clientIP(r))
	if err != nil {
		if errors.Is(err, services.ErrTooManyAttempts) {
			w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
			helpers.Fail(w, http.StatusTooManyRequests, "Слишком много попыток входа, попробуйте позже")
			return
		}
		helpers.Fail(w, http.StatusUnauthorized, "Неверный e-mail или пароль")
		return
	}

	session := h.sessionStore.Create(models.SessionUser{
		ID:       acc.ID,
		UserType: acc.UserType,
		Email:    acc.Email,
		FullName: acc.FullName,
		Role:     acc.Role,
	})
	h.setSessionCookie(w, session.ID)

	accessToken, err := utils.GenerateToken(h.jwtSecret, acc.ID, string(acc.UserType), acc.Role, h.accessTTL)
	if err != nil {
		log.Error("Ошибка генерации access-токена", zap.Error(err))
		helpers.Fail(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	log.Info("Вход выполнен", zap.Int("user_id", acc.ID), zap.String("user_type", string(acc.UserType)))
	helpers.Success(w, http.StatusOK, map[string]any{
		"user":        session.User,
		"accessToken": accessToken,
	})
}

// Register godoc
// @Summary Регистрация члена клуба
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerRequest true "Данные регистрации"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := utils.Validate.Struct(req); err != nil {
		helpers.Fail(w, http.StatusBadRequest, "Обязательные поля: email, fullName, password")
		return
	}

	acc := &models.Account{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if err := h.authService.RegisterMember(r.Context(), acc, req.Password); err != nil {
		log.Warn("Ошибка регистрации", zap.Error(err))
		helpers.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	helpers.Success(w, http.StatusCreated, map[string]any{
		"message": "Аккаунт создан. Теперь вы можете войти.",
	})
}

// Session godoc
// @Summary Текущая сессия
// @Description Сессия резолвится по cookie. Отсутствие сессии — success:false в теле, не HTTP-ошибка.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/session [get]
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionIDFromRequest(r)
	if sessionID == "" {
		helpers.Fail(w, http.StatusOK, "Нет сессии")
		return
	}

	session, ok := h.sessionStore.Get(sessionID)
	if !ok {
		helpers.Fail(w, http.StatusOK, "Нет сессии")
		return
	}

	helpers.Success(w, http.StatusOK, map[string]any{"user": session.User})
}

// Logout godoc
// @Summary Выход
// @Description Удаляет сессию и всегда чистит cookie session_id, session_id_debug и auth_token — даже если сессии не было.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	if sessionID := h.sessionIDFromRequest(r); sessionID != "" {
		h.sessionStore.Delete(sessionID)
		log.Info("Пользователь вышел")
	}

	// Куки чистим всегда, независимо от того, была ли сессия
	clearCookie(w, SessionCookie)
	clearCookie(w, SessionCookieDebug)
	clearCookie(w, LegacyAuthCookie)

	helpers.Success(w, http.StatusOK, nil)
}

func (h *AuthHandler) sessionIDFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	// Debug-кука — только вне prod
	if h.env != "prod" {
		if c, err := r.Cookie(SessionCookieDebug); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
