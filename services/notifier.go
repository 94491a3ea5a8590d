package services

import (
	"context"
	"errors"
	"strings"

	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier sends guest-facing messages. Failures never affect the stay.
type Notifier interface {
	BookingConfirmed(ctx context.Context, stay *models.Stay, estimate float64) error
}

type EmailNotifier struct {
	DB   *gorm.DB
	Mail utils.MailConfig
	log  *zap.Logger
}

func NewEmailNotifier(db *gorm.DB, mail utils.MailConfig, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{DB: db, Mail: mail, log: log}
}

func (n *EmailNotifier) BookingConfirmed(ctx context.Context, stay *models.Stay, estimate float64) error {
	if strings.TrimSpace(stay.GuestEmail) == "" {
		return nil
	}

	var setting models.ResortSetting
	_ = n.DB.WithContext(ctx).Order("id").Limit(1).Find(&setting).Error

	rooms := make([]utils.RoomInfo, 0, len(stay.Rooms))
	for _, sr := range stay.Rooms {
		rooms = append(rooms, utils.RoomInfo{Number: sr.Room.RoomNumber, Type: sr.Room.Type})
	}
	msg := utils.BookingConfirmation{
		ResortName:  setting.Name,
		GuestName:   stay.GuestName,
		GuestEmail:  stay.GuestEmail,
		DisplayID:   stay.DisplayID(),
		CheckIn:     stay.CheckIn.Format(utils.DateLayout),
		CheckOut:    stay.CheckOut.Format(utils.DateLayout),
		Nights:      utils.StayDays(stay.CheckIn, stay.CheckOut),
		Rooms:       rooms,
		Adults:      stay.Adults,
		Children:    stay.Children,
		TotalAmount: estimate,
	}
	if stay.Package != nil {
		msg.PackageName = stay.Package.Title
	}

	err := utils.SendBookingConfirmationEmail(n.Mail, msg)
	if errors.Is(err, utils.ErrMailDisabled) {
		n.log.Info("mock email: booking confirmation",
			zap.String("to", stay.GuestEmail),
			zap.String("booking", msg.DisplayID),
		)
		return nil
	}
	return err
}
