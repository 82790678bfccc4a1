package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimStatus tracks where a claim sits in the review pipeline. There is no
// automatic workflow; admins move claims between states manually.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusReview   ClaimStatus = "under_review"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
	ClaimStatusSettled  ClaimStatus = "settled"
)

// ClaimPriority is derived from the estimated value at submission time and
// may be overridden by an admin afterwards.
type ClaimPriority string

const (
	ClaimPriorityMedium ClaimPriority = "medium"
	ClaimPriorityHigh   ClaimPriority = "high"
)

// AccidentInfo captures the where/when of the underlying accident.
type AccidentInfo struct {
	Date         time.Time `bson:"date,omitempty" json:"date,omitempty"`
	Location     string    `bson:"location,omitempty" json:"location,omitempty"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	PoliceReport string    `bson:"policeReport,omitempty" json:"policeReport,omitempty"`
}

// InsuranceInfo is the claimant's policy data as entered on the form.
type InsuranceInfo struct {
	Company      string `bson:"company,omitempty" json:"company,omitempty"`
	PolicyNumber string `bson:"policyNumber,omitempty" json:"policyNumber,omitempty"`
	AdjusterName string `bson:"adjusterName,omitempty" json:"adjusterName,omitempty"`
}

// VehicleInfo describes the claimant's vehicle.
type VehicleInfo struct {
	Make         string `bson:"make,omitempty" json:"make,omitempty"`
	Model        string `bson:"model,omitempty" json:"model,omitempty"`
	Year         int    `bson:"year,omitempty" json:"year,omitempty"`
	LicensePlate string `bson:"licensePlate,omitempty" json:"licensePlate,omitempty"`
}

// Injury is one normalized entry of the variably-shaped injuries form field.
type Injury struct {
	BodyPart    string `bson:"bodyPart,omitempty" json:"bodyPart,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Severity    string `bson:"severity,omitempty" json:"severity,omitempty"`
}

// Note is a free-text annotation with its author and timestamp.
type Note struct {
	Author    string    `bson:"author" json:"author"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Claim is a submitted no-fault accident record owned by one user.
type Claim struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           string             `bson:"userId" json:"userId"`
	ClaimNumber      string             `bson:"claimNumber" json:"claimNumber"`
	ClaimantName     string             `bson:"claimantName" json:"claimantName"`
	ClaimantEmail    string             `bson:"claimantEmail" json:"claimantEmail"`
	Status           ClaimStatus        `bson:"status" json:"status"`
	Priority         ClaimPriority      `bson:"priority" json:"priority"`
	EstimatedValue   float64            `bson:"estimatedValue" json:"estimatedValue"`
	SettlementAmount float64            `bson:"settlementAmount,omitempty" json:"settlementAmount,omitempty"`
	Accident         AccidentInfo       `bson:"accident,omitempty" json:"accident,omitempty"`
	Insurance        InsuranceInfo      `bson:"insurance,omitempty" json:"insurance,omitempty"`
	Vehicle          VehicleInfo        `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Injuries         []Injury           `bson:"injuries" json:"injuries"`
	Notes            []Note             `bson:"notes" json:"notes"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
