package models

import (
	"strings"
	"time"
)

type CustomerStatus string
type CustomerPriority string

const (
	CustomerNew       CustomerStatus = "new"
	CustomerContacted CustomerStatus = "contacted"
	CustomerQualified CustomerStatus = "qualified"
	CustomerBid       CustomerStatus = "bid"
	CustomerSold      CustomerStatus = "sold"
	CustomerLost      CustomerStatus = "lost"
	CustomerOnHold    CustomerStatus = "on_hold"

	PriorityLow    CustomerPriority = "low"
	PriorityMedium CustomerPriority = "medium"
	PriorityHigh   CustomerPriority = "high"
)

func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerNew, CustomerContacted, CustomerQualified, CustomerBid,
		CustomerSold, CustomerLost, CustomerOnHold:
		return true
	}
	return false
}

// IsSaleTransition: переход, который закрывает продажу.
// Срабатывает только на фронте: sold -> sold продажей не считается.
func IsSaleTransition(prev, next CustomerStatus) bool {
	return prev != CustomerSold && next == CustomerSold
}

func (p CustomerPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Customer: лид или клиент, статус которого двигает воронку продаж.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FirstName string `gorm:"size:100;not null" json:"firstName"`
	LastName  string `gorm:"size:100;not null" json:"lastName"`
	Email     string `gorm:"size:255;index" json:"email"`
	Phone     string `gorm:"size:50" json:"phone"`

	Address string `gorm:"size:255" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:50" json:"state"`
	ZipCode string `gorm:"size:20" json:"zipCode"`

	Status   CustomerStatus   `gorm:"type:varchar(20);not null;default:new;index" json:"status"`
	Priority CustomerPriority `gorm:"type:varchar(20);not null;default:medium" json:"priority"`
	Source   string           `gorm:"size:100" json:"source"` // рекомендация, сайт, выставка и т.п.
	Notes    string           `gorm:"type:text" json:"notes"`

	Projects []Project `json:"projects,omitempty"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerUpdate: частичное обновление, nil-поля не трогаем.
type CustomerUpdate struct {
	FirstName *string           `json:"firstName"`
	LastName  *string           `json:"lastName"`
	Email     *string           `json:"email"`
	Phone     *string           `json:"phone"`
	Address   *string           `json:"address"`
	City      *string           `json:"city"`
	State     *string           `json:"state"`
	ZipCode   *string           `json:"zipCode"`
	Status    *CustomerStatus   `json:"status"`
	Priority  *CustomerPriority `json:"priority"`
	Source    *string           `json:"source"`
	Notes     *string           `json:"notes"`
}

// Columns: карта колонка -> значение для gorm Updates.
func (u CustomerUpdate) Columns() map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = strings.TrimSpace(*v)
		}
	}
	set("first_name", u.FirstName)
	set("last_name", u.LastName)
	set("email", u.Email)
	set("phone", u.Phone)
	set("address", u.Address)
	set("city", u.City)
	set("state", u.State)
	set("zip_code", u.ZipCode)
	set("source", u.Source)
	set("notes", u.Notes)
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.Priority != nil {
		cols["priority"] = *u.Priority
	}
	return cols
}

// Apply: то же самое, что Columns, но для структуры в памяти.
func (u CustomerUpdate) Apply(c *Customer) {
	assign := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	assign(&c.FirstName, u.FirstName)
	assign(&c.LastName, u.LastName)
	assign(&c.Email, u.Email)
	assign(&c.Phone, u.Phone)
	assign(&c.Address, u.Address)
	assign(&c.City, u.City)
	assign(&c.State, u.State)
	assign(&c.ZipCode, u.ZipCode)
	assign(&c.Source, u.Source)
	assign(&c.Notes, u.Notes)
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Priority != nil {
		c.Priority = *u.Priority
	}
}
