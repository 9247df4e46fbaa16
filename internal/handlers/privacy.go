package handlers

import (
	"pooldesk/internal/middleware"
	"pooldesk/internal/models"

	"github.com/gin-gonic/gin"
)

// наблюдатели видят контакты клиента только в замаскированном виде
func maskContacts(c *gin.Context, customers []models.Customer) {
	if u, ok := middleware.CurrentUser(c); ok && u.Role != models.RoleViewer {
		return
	}
	for i := range customers {
		customers[i].Email = maskEmail(customers[i].Email)
		customers[i].Phone = maskPhone(customers[i].Phone)
	}
}

func maskEmail(email string) string {
	if email == "" {
		return ""
	}
	runes := []rune(email)
	atIdx := -1
	for i, r := range runes {
		if r == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return "***"
	}
	prefix := string(runes[:atIdx])
	domain := string(runes[atIdx:])
	if len(prefix) <= 2 {
		return prefix + "***" + domain
	}
	return string(runes[0:2]) + "***" + domain
}

func maskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	runes := []rune(phone)
	n := len(runes)
	if n <= 4 {
		return "***"
	}
	masked := make([]rune, n)
	for i := range runes {
		if i >= n-2 {
			masked[i] = runes[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}
