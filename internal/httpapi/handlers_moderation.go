package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleModerateText runs the full analysis pipeline on arbitrary text.
// The verdict is returned with a 200 whether or not the text is safe; the
// caller inspects isSafe.
func (a *API) handleModerateText(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido.", nil)
		return
	}

	v := a.Mod.AnalyzeText(c.Request.Context(), req.Text)
	respond(c, http.StatusOK, v.Message, v)
}

// handleModerateImage runs the NSFW image model on an uploaded "image" file.
func (a *API) handleModerateImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		respond(c, http.StatusBadRequest, "Se requiere una imagen.", nil)
		return
	}
	_, ct, data, err := readUpload(fh)
	if err != nil {
		respondErr(c, err)
		return
	}

	v := a.Mod.AnalyzeImage(c.Request.Context(), data, ct)
	respond(c, http.StatusOK, v.Message, v)
}
