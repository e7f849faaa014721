package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/models"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/services"
)

type NotificationController struct {
	notificationService services.NotificationService
}

func NewNotificationController(svc services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: svc}
}

// GetNotificationLogs handles GET /notifications.
func (nc *NotificationController) GetNotificationLogs(c *gin.Context) {
	p := pagination.Parse(c)
	filter := models.NotificationFilter{
		Status:    strings.ToLower(c.Query("status")),
		Channel:   strings.ToLower(c.Query("channel")),
		Recipient: strings.TrimSpace(c.Query("recipient")),
	}

	logs, total, svcErr := nc.notificationService.GetLogs(c.Request.Context(), filter, p)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	if logs == nil {
		logs = []models.NotificationLog{}
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "meta": pagination.NewMeta(p, total)})
}
