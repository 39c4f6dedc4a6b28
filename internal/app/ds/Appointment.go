package ds

import (
	"strings"
	"time"
)

type AppointmentStatus string

const (
	// StatusPendingPayment marks a booking that has not been paid or confirmed yet.
	StatusPendingPayment AppointmentStatus = "PENDING_PAYMENT"
	// StatusPending is also the confirmed state: paid and waiting for the doctor.
	StatusPending    AppointmentStatus = "PENDING"
	StatusAccepted   AppointmentStatus = "ACCEPTED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
)

var statusLabels = map[AppointmentStatus]string{
	StatusPendingPayment: "Pending Payment",
	StatusPending:        "Pending",
	StatusAccepted:       "Accepted",
	StatusInProgress:     "In Progress",
	StatusCompleted:      "Completed",
	StatusCancelled:      "Cancelled",
}

// DoctorStatuses are the values a doctor may set. There is no transition graph:
// any of them can follow any other.
var DoctorStatuses = []AppointmentStatus{
	StatusPending,
	StatusAccepted,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// ParseDoctorStatus normalizes "in progress", "In Progress" and "IN_PROGRESS" alike and
// rejects anything outside DoctorStatuses.
func ParseDoctorStatus(s string) (AppointmentStatus, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	for _, st := range DoctorStatuses {
		if AppointmentStatus(v) == st {
			return st, true
		}
	}
	return "", false
}

func (s AppointmentStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentUPI        PaymentMethod = "UPI"
	PaymentCard       PaymentMethod = "CARD"
	PaymentNetBanking PaymentMethod = "NETBANKING"
	PaymentWallet     PaymentMethod = "WALLET"
)

const maxPaymentMethodLen = 20

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentUPI:        "UPI",
	PaymentCard:       "Card",
	PaymentNetBanking: "Net Banking",
	PaymentWallet:     "Wallet",
}

// NormalizePaymentMethod upper-cases free text and folds spellings of the known methods
// ("net banking", "Net-Banking") onto their constants. Blank or overlong input is rejected.
func NormalizePaymentMethod(s string) (PaymentMethod, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" || len(v) > maxPaymentMethodLen {
		return "", false
	}
	folded := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(v)
	if _, ok := paymentMethodLabels[PaymentMethod(folded)]; ok {
		return PaymentMethod(folded), true
	}
	return PaymentMethod(v), true
}

func (m PaymentMethod) Label() string {
	if l, ok := paymentMethodLabels[m]; ok {
		return l
	}
	return string(m)
}

type Appointment struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	PatientID      uint              `gorm:"not null;index" json:"patient_id"`
	DoctorID       uint              `gorm:"not null;index:idx_appointment_doctor_seen" json:"doctor_id"`
	Date           time.Time         `gorm:"type:date;not null" json:"date"`
	Time           string            `gorm:"type:varchar(5);not null" json:"time"`
	PatientName    string            `gorm:"type:varchar(100)" json:"patient_name"`
	ContactNumber  string            `gorm:"type:varchar(15)" json:"contact_number"`
	Symptoms       string            `gorm:"type:text" json:"symptoms"`
	ImageKey       *string           `gorm:"type:varchar(200)" json:"image_key,omitempty"`
	Status         AppointmentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PaymentMethod  *PaymentMethod    `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus  PaymentStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"payment_status"`
	IsSeenByDoctor bool              `gorm:"type:boolean;not null;default:false;index:idx_appointment_doctor_seen" json:"is_seen_by_doctor"`
	CreatedAt      time.Time         `gorm:"not null;index" json:"created_at"`

	ImageURL string `gorm:"-" json:"image_url,omitempty"`

	Patient User `gorm:"foreignKey:PatientID" json:"patient"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor"`
}
