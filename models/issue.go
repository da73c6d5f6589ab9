package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Pothole            IssueCategory = "Pothole"
	BrokenStreetlight  IssueCategory = "Broken Streetlight"
	GarbageDumping     IssueCategory = "Garbage Dumping"
	Waterlogging       IssueCategory = "Waterlogging"
	BrokenRoad         IssueCategory = "Broken Road"
	TrafficSignalIssue IssueCategory = "Traffic Signal Issue"
	IllegalParking     IssueCategory = "Illegal Parking"
	NoisePollution     IssueCategory = "Noise Pollution"
	WaterLeakage       IssueCategory = "Water Leakage"
	OtherCategory      IssueCategory = "Other"
)

// ValidCategories is the closed set of reportable issue categories.
var ValidCategories = map[IssueCategory]bool{
	Pothole: true, BrokenStreetlight: true, GarbageDumping: true,
	Waterlogging: true, BrokenRoad: true, TrafficSignalIssue: true,
	IllegalParking: true, NoisePollution: true, WaterLeakage: true,
	OtherCategory: true,
}

// IssueStatus enum
type IssueStatus string

const (
	Open       IssueStatus = "Open"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

// AllStatuses lists every status; breakdowns always carry all three keys.
var AllStatuses = []IssueStatus{Open, InProgress, Resolved}

// ValidStatuses is the closed set of issue statuses.
var ValidStatuses = map[IssueStatus]bool{
	Open: true, InProgress: true, Resolved: true,
}

// Location is the reported position of an issue.
type Location struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
}

// Issue represents a civic issue reported by a user
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    IssueCategory      `bson:"category" json:"category"`
	Severity    int                `bson:"severity" json:"severity"`
	Status      IssueStatus        `bson:"status" json:"status"`
	Location    Location           `bson:"location" json:"location"`
	UserID      string             `bson:"userId" json:"userId"`
	Upvotes     int64              `bson:"upvotes" json:"upvotes"`
	ImageURL    *string            `bson:"imageURL,omitempty" json:"imageURL,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	ResolvedAt  *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResolvedBy  *string            `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
}
