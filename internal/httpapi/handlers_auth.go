package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/auth"
)

// handleRegister accepts a multipart form: name, email, password, role, bio,
// optional location fields and an optional "image" file.
func (a *API) handleRegister(c *gin.Context) {
	req := auth.RegisterRequest{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Role:     c.PostForm("role"),
		Bio:      c.PostForm("bio"),
		Location: formLocation(c),
	}

	if fh, err := c.FormFile("image"); err == nil {
		name, ct, data, err := readUpload(fh)
		if err != nil {
			respondErr(c, err)
			return
		}
		req.Image = &auth.Image{Name: name, ContentType: ct, Data: data}
	}

	if err := a.Auth.Register(c.Request.Context(), req); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Usuario registrado correctamente.", nil)
}

func (a *API) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido.", nil)
		return
	}

	res, err := a.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Inicio de sesión exitoso.", res)
}

func (a *API) handleLoginGoogle(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		respond(c, http.StatusBadRequest, "Se requiere el token de Google.", nil)
		return
	}

	res, err := a.Auth.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Inicio de sesión exitoso.", res)
}

func (a *API) handleLogout(c *gin.Context) {
	if err := a.Auth.Logout(c.Request.Context(), claimsFrom(c)); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Sesión cerrada.", nil)
}

func (a *API) handleDeactivate(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// The body is optional; ignore bind errors.
	_ = c.ShouldBindJSON(&req)

	if err := a.Auth.Deactivate(c.Request.Context(), claimsFrom(c), req.Reason); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Cuenta desactivada.", nil)
}

func (a *API) handleOwnProfile(c *gin.Context) {
	p, err := a.Auth.GetProfile(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Perfil obtenido.", p)
}

func (a *API) handleProfileByID(c *gin.Context) {
	p, err := a.Auth.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Perfil obtenido.", p)
}

// handleUpdateProfile accepts a multipart form: name, bio, optional location
// fields and an optional "image" file.
func (a *API) handleUpdateProfile(c *gin.Context) {
	req := auth.UpdateProfileRequest{
		Name:     c.PostForm("name"),
		Bio:      c.PostForm("bio"),
		Location: formLocation(c),
	}

	if fh, err := c.FormFile("image"); err == nil {
		name, ct, data, err := readUpload(fh)
		if err != nil {
			respondErr(c, err)
			return
		}
		req.Image = &auth.Image{Name: name, ContentType: ct, Data: data}
	}

	if err := a.Auth.UpdateProfile(c.Request.Context(), claimsFrom(c).UserID, req); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Perfil actualizado.", nil)
}

func (a *API) handleChangePassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido.", nil)
		return
	}

	if err := a.Auth.ChangePassword(c.Request.Context(), claimsFrom(c).UserID, req.NewPassword); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Contraseña actualizada.", nil)
}
