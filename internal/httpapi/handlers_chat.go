package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/notification"
)

// handleSendChatNotification pushes an FCM notification to the receiver's
// registered device. The message text passes the lexicon check before
// anything is sent.
func (a *API) handleSendChatNotification(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiverId"`
		ChatID     string `json:"chatId"`
		Message    string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ReceiverID == "" || req.Message == "" {
		respond(c, http.StatusBadRequest, "Se requieren el destinatario y el mensaje.", nil)
		return
	}
	if a.Notifier == nil {
		respond(c, http.StatusServiceUnavailable, "Las notificaciones no están disponibles.", nil)
		return
	}
	if !a.Check.TextSafe(req.Message) {
		respond(c, http.StatusBadRequest, "El mensaje contiene lenguaje inapropiado.", nil)
		return
	}

	ctx := c.Request.Context()
	claims := claimsFrom(c)

	receiver, err := a.Users.ByID(ctx, req.ReceiverID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if receiver == nil || receiver.FCMToken == "" {
		respond(c, http.StatusNotFound, "El destinatario no tiene un dispositivo registrado.", nil)
		return
	}

	senderName := claims.Email
	if sender, err := a.Users.ByID(ctx, claims.UserID); err == nil && sender != nil {
		senderName = sender.Name
	}

	err = a.Notifier.SendChatNotification(ctx, notification.ChatMessage{
		Token:      receiver.FCMToken,
		ChatID:     req.ChatID,
		SenderID:   claims.UserID,
		SenderName: senderName,
		Text:       req.Message,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Notificación enviada.", nil)
}

func (a *API) handleSetFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		respond(c, http.StatusBadRequest, "Se requiere el token FCM.", nil)
		return
	}

	if err := a.Users.SetFCMToken(c.Request.Context(), claimsFrom(c).UserID, req.Token); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Token FCM actualizado.", nil)
}

func (a *API) handleClearFCMToken(c *gin.Context) {
	if err := a.Users.ClearFCMToken(c.Request.Context(), claimsFrom(c).UserID); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Token FCM eliminado.", nil)
}
