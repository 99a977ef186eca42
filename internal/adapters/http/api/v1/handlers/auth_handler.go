package handlers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"

	authmw "github.com/jobin-logidots/auth-service/internal/adapters/http/middleware"
	"github.com/jobin-logidots/auth-service/internal/usecase"
	res "github.com/jobin-logidots/auth-service/pkg/http"
)

type AuthHandler struct {
	service usecase.Service
}

func NewAuthHandler(s usecase.Service) *AuthHandler { return &AuthHandler{service: s} }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
	)
}

type updateRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	OldPassword *string `json:"oldPassword"`
}

func (r updateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(6, 100)),
	)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r forgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type resetPasswordRequest struct {
	Hash     string `json:"hash"`
	Password string `json:"password"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Hash, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := bind(c, req); err != nil {
		return writeError(c, err)
	}
	result, err := h.service.ValidateLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, result)
}

func (h *AuthHandler) Register(c echo.Context) error {
	req := new(registerRequest)
	if err := bind(c, req); err != nil {
		return writeError(c, err)
	}
	input := usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.service.Register(c.Request().Context(), input); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh expects the refresh token as a bearer credential.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, ok := authmw.BearerToken(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing refresh token", authmw.RequestID(c), nil)
	}
	pair, err := h.service.Refresh(c.Request().Context(), token)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, pair)
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.service.Me(c.Request().Context(), authmw.Claims(c))
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, user)
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	req := new(updateRequest)
	if err := bind(c, req); err != nil {
		return writeError(c, err)
	}
	input := usecase.UpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	}
	user, err := h.service.Update(c.Request().Context(), authmw.Claims(c), input)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, user)
}

func (h *AuthHandler) DeleteMe(c echo.Context) error {
	if err := h.service.SoftDelete(c.Request().Context(), authmw.Claims(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.service.Logout(c.Request().Context(), authmw.Claims(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	req := new(forgotPasswordRequest)
	if err := bind(c, req); err != nil {
		return writeError(c, err)
	}
	if err := h.service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	req := new(resetPasswordRequest)
	if err := bind(c, req); err != nil {
		return writeError(c, err)
	}
	if err := h.service.ResetPassword(c.Request().Context(), req.Hash, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type validatable interface {
	Validate() error
}

var errBadPayload = errors.New("invalid payload")

func bind(c echo.Context, req validatable) error {
	if err := c.Bind(req); err != nil {
		return errBadPayload
	}
	if err := req.Validate(); err != nil {
		fields := validation.Errors{}
		if errors.As(err, &fields) {
			vErr := &usecase.ValidationError{Fields: map[string]string{}}
			for field, fieldErr := range fields {
				vErr.Fields[field] = fieldErr.Error()
			}
			return vErr
		}
		return usecase.NewValidationError("payload", err.Error())
	}
	return nil
}

// writeError maps core failures onto transport statuses and stable codes.
func writeError(c echo.Context, err error) error {
	var vErr *usecase.ValidationError
	if errors.As(err, &vErr) {
		return res.ErrorJSON(c, http.StatusUnprocessableEntity, "validation_failed", "invalid payload", authmw.RequestID(c), vErr.Fields)
	}
	switch {
	case errors.Is(err, errBadPayload):
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", err.Error(), authmw.RequestID(c), nil)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return res.ErrorJSON(c, http.StatusUnprocessableEntity, "invalid_credentials", err.Error(), authmw.RequestID(c), nil)
	case errors.Is(err, usecase.ErrAccountNotActive):
		return res.ErrorJSON(c, http.StatusUnprocessableEntity, "account_not_active", err.Error(), authmw.RequestID(c), nil)
	case errors.Is(err, usecase.ErrIncorrectOldPassword):
		return res.ErrorJSON(c, http.StatusUnprocessableEntity, "incorrect_old_password", err.Error(), authmw.RequestID(c), nil)
	case errors.Is(err, usecase.ErrEmailAlreadyUsed):
		return res.ErrorJSON(c, http.StatusConflict, "email_exists", err.Error(), authmw.RequestID(c), nil)
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrHashMismatch),
		errors.Is(err, usecase.ErrTokenExpired),
		errors.Is(err, usecase.ErrInvalidToken):
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", err.Error(), authmw.RequestID(c), nil)
	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrResetNotFound):
		return res.ErrorJSON(c, http.StatusNotFound, "not_found", err.Error(), authmw.RequestID(c), nil)
	case errors.Is(err, usecase.ErrResetExpired):
		return res.ErrorJSON(c, http.StatusUnprocessableEntity, "reset_expired", err.Error(), authmw.RequestID(c), nil)
	default:
		return res.ErrorJSON(c, http.StatusInternalServerError, "internal_error", "internal error", authmw.RequestID(c), nil)
	}
}
