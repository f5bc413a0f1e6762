package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"lab-request-api/config"
	"lab-request-api/models"
)

// Lifecycle notifications: in-app rows for the affected users plus optional
// mail. Everything here is best-effort; a notification failure never fails
// the request mutation that triggered it.

// NotifyRequestCreated tells every active analyst that new work is waiting.
func NotifyRequestCreated(request *models.AnalysisRequest) {
	var analysts []models.User
	if err := config.DB.Where("role = ? AND is_active = ?", models.RoleAnalyst, true).Find(&analysts).Error; err != nil {
		log.Printf("Warning: failed to load analysts for notification: %v", err)
		return
	}

	title := fmt.Sprintf("New analysis request %s", request.RequestNumber)
	message := fmt.Sprintf("Request %s (%s, priority %s) is waiting to be claimed.",
		request.RequestNumber, request.CompoundName, request.Priority)

	recipients := make([]string, 0, len(analysts))
	for _, analyst := range analysts {
		createNotification(analyst.UserID, title, message, "info", request.RequestID)
		if analyst.Email != "" {
			recipients = append(recipients, analyst.Email)
		}
	}
	sendMailAsync(recipients, title, mailBody(request, title, message))
}

// NotifyRequestClaimed tells the creating chemist who picked the request up.
func NotifyRequestClaimed(request *models.AnalysisRequest, analyst *models.User) {
	title := fmt.Sprintf("Request %s in progress", request.RequestNumber)
	message := fmt.Sprintf("%s received the sample for %s and started analysis.",
		analyst.FullName, request.RequestNumber)

	createNotification(request.ChemistID, title, message, "info", request.RequestID)
	sendMailToUser(request.ChemistID, title, mailBody(request, title, message))
}

// NotifyRequestFinished tells the creating chemist about a terminal status.
func NotifyRequestFinished(request *models.AnalysisRequest, toStatus string) {
	notificationType := "success"
	verb := "completed"
	if toStatus == models.StatusCancelled {
		notificationType = "warning"
		verb = "cancelled"
	}

	title := fmt.Sprintf("Request %s %s", request.RequestNumber, verb)
	message := fmt.Sprintf("Analysis request %s (%s) was %s.", request.RequestNumber, request.CompoundName, verb)

	createNotification(request.ChemistID, title, message, notificationType, request.RequestID)
	sendMailToUser(request.ChemistID, title, mailBody(request, title, message))
}

func createNotification(userID int, title, message, notificationType string, requestID int) {
	row := models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		Type:             notificationType,
		RelatedRequestID: &requestID,
		CreateAt:         time.Now(),
	}
	if err := config.DB.Create(&row).Error; err != nil {
		log.Printf("Warning: failed to create notification for user %d: %v", userID, err)
	}
}

func sendMailToUser(userID int, subject, html string) {
	var user models.User
	if err := config.DB.Select("email").First(&user, "user_id = ?", userID).Error; err != nil {
		log.Printf("Warning: failed to load mail recipient %d: %v", userID, err)
		return
	}
	if user.Email == "" {
		return
	}
	sendMailAsync([]string{user.Email}, subject, html)
}

func sendMailAsync(to []string, subject, html string) {
	if len(to) == 0 || !config.MailConfigured() {
		return
	}
	go func() {
		if err := config.SendMail(to, subject, html); err != nil {
			log.Printf("Warning: failed to send notification mail %q: %v", subject, err)
		}
	}()
}

func mailBody(request *models.AnalysisRequest, subject, message string) string {
	meta := []mailMetaItem{
		{Label: "Request", Value: request.RequestNumber},
		{Label: "Compound", Value: request.CompoundName},
		{Label: "Priority", Value: request.Priority},
		{Label: "Due date", Value: request.DueDate.Format("2006-01-02")},
	}

	buttonText, buttonURL := "", ""
	if base := os.Getenv("APP_BASE_URL"); base != "" {
		buttonText = "Open request"
		buttonURL = fmt.Sprintf("%s/requests/%d", strings.TrimRight(base, "/"), request.RequestID)
	}

	return buildMailHTML(subject, []string{message}, meta, buttonText, buttonURL)
}
