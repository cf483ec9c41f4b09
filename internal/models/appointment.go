package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	AppointmentPending  AppointmentStatus = "pending"
	AppointmentAccepted AppointmentStatus = "accepted"
	AppointmentRejected AppointmentStatus = "rejected"
)

type AppointmentType string

const (
	AppointmentDomicile AppointmentType = "domicile"
	AppointmentCabinet  AppointmentType = "cabinet"
)

func (t AppointmentType) Valid() bool {
	return t == AppointmentDomicile || t == AppointmentCabinet
}

type Appointment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date            time.Time          `bson:"date" json:"date"`
	ClientID        primitive.ObjectID `bson:"clientId" json:"clientId"`
	VeterinaireID   primitive.ObjectID `bson:"veterinaireId" json:"veterinaireId"`
	AnimalID        primitive.ObjectID `bson:"animalId" json:"animalId"`
	Type            AppointmentType    `bson:"type" json:"type"`
	Status          AppointmentStatus  `bson:"status" json:"status"`
	Services        []string           `bson:"services" json:"services"`
	CaseDescription string             `bson:"caseDescription,omitempty" json:"caseDescription,omitempty"`
	ReminderSent    bool               `bson:"reminderSent" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
