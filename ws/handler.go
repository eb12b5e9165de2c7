package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/chmgroup/mediahub-backend/utils"
)

// Same origin policy as the HTTP CORS layer.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return utils.OriginAllowed(r.Header.Get("Origin"))
	},
}

func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		logrus.WithError(err).Error("ws marshal failed")
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		logrus.WithError(err).Debug("ws send failed")
	}
}

// HandleReportJobWebSocket streams progress for one report job. Browsers can't
// set headers on websocket requests, so the token rides in the query string.
func HandleReportJobWebSocket(c *gin.Context) {
	jobID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Missing token"})
		return
	}
	claims, err := utils.VerifyToken(token, utils.TokenTypeAccess)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	H.Register(jobID, conn)
	defer H.Unregister(jobID, conn)

	logrus.WithFields(logrus.Fields{"job_id": jobID, "user_id": claims.UserID}).
		Debug("report job WS connected")

	sendJSON(conn, gin.H{"type": "connected", "job_id": jobID})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
