package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/mailstock/modules/core/services"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/configuration"
	"github.com/iota-uz/mailstock/pkg/constants"
	"github.com/iota-uz/mailstock/pkg/httpapi"
)

type AuthController struct {
	app   application.Application
	auth  *services.AuthService
	users *services.UsersService
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		app:   app,
		auth:  app.Service(services.AuthService{}).(*services.AuthService),
		users: app.Service(services.UsersService{}).(*services.UsersService),
	}
}

func (c *AuthController) Key() string {
	return "/auth"
}

func (c *AuthController) Register(r *mux.Router) {
	router := r.PathPrefix("/auth").Subrouter()
	router.HandleFunc("/login", c.Login).Methods(http.MethodPost)
	router.HandleFunc("/register", c.RegisterUser).Methods(http.MethodPost)
	router.HandleFunc("/logout", c.Logout).Methods(http.MethodPost)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "CORE_INVALID", "invalid request body", nil)
		return
	}
	if err := constants.Validate.Struct(req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "CORE_INVALID", "username and password are required", nil)
		return
	}

	u, sess, err := c.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, c.auth.Cookie(sess))
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "login successful",
		Role:    string(u.Role),
		IsAdmin: u.IsAdmin,
	})
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Team     string `json:"team"`
}

func (c *AuthController) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "CORE_INVALID", "invalid request body", nil)
		return
	}
	if err := constants.Validate.Struct(req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "CORE_INVALID", "username and a password of at least 6 characters are required", nil)
		return
	}

	if _, err := c.users.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		TeamName: req.Team,
	}); err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteMessage(w, http.StatusCreated, "registration successful, awaiting role assignment")
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := composables.UseSession(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
		return
	}
	if err := c.auth.Logout(r.Context(), sess.Token); err != nil {
		writeServiceError(w, err)
		return
	}

	conf := configuration.Use()
	http.SetCookie(w, &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Path:     "/",
	})
	_ = httpapi.WriteMessage(w, http.StatusOK, "logged out")
}
