package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/user"
)

func (a *API) handleAdminListUsers(c *gin.Context) {
	users, err := a.Users.All(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Usuarios obtenidos.", users)
}

func (a *API) handleAdminGetUser(c *gin.Context) {
	u, err := a.Users.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if u == nil {
		respond(c, http.StatusNotFound, "Usuario no encontrado.", nil)
		return
	}
	respond(c, http.StatusOK, "Usuario obtenido.", u)
}

// handleAdminUpdateUser changes a user's role and/or status.
func (a *API) handleAdminUpdateUser(c *gin.Context) {
	var req struct {
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido.", nil)
		return
	}

	u, err := a.Users.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if u == nil {
		respond(c, http.StatusNotFound, "Usuario no encontrado.", nil)
		return
	}

	if req.Role != "" {
		role := strings.ToUpper(req.Role)
		if !user.ValidRole(role) {
			respond(c, http.StatusBadRequest, "Rol no existente. Válidos: ADMIN, USER.", nil)
			return
		}
		u.Role = role
	}
	if req.Status != "" {
		if req.Status != user.StatusActive && req.Status != user.StatusDeactivated {
			respond(c, http.StatusBadRequest, "Estado inválido.", nil)
			return
		}
		u.Status = req.Status
	}

	if err := a.Users.Update(c.Request.Context(), u); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Usuario actualizado.", u)
}

// handleAdminListFlags returns the newest flagged-content records.
func (a *API) handleAdminListFlags(c *gin.Context) {
	if a.Flags == nil {
		respond(c, http.StatusServiceUnavailable, "La revisión de contenido no está disponible.", nil)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	flags, err := a.Flags.Recent(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Reportes obtenidos.", flags)
}
