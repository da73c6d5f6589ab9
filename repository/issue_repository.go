package repository

import (
	"context"
	"errors"
	"time"

	"citysense-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned when an identifier is not a valid object id.
	ErrInvalidID = errors.New("invalid id")
)

// IssueListQuery holds validated, coerced list parameters.
type IssueListQuery struct {
	Category  string
	Status    string
	Severity  int // 0 means unset
	Limit     int
	Page      int
	SortBy    string // timestamp | upvotes | severity
	SortOrder string // asc | desc
}

// ExportFilter holds filters for the CSV export query. Equality filters
// plus the one date-range special case on timestamp.
type ExportFilter struct {
	Category  string
	Status    string
	Severity  int
	StartDate *time.Time
	EndDate   *time.Time
}

// BulkResult is the per-id disposition of a bulk action.
type BulkResult struct {
	IssueID string `json:"issueId"`
	Status  string `json:"status"` // success | not_found
}

// IssueStore is the persistence boundary for issues.
type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, q IssueListQuery) ([]models.Issue, int64, error)
	ListByUser(ctx context.Context, userID string) ([]models.Issue, error)
	ListAll(ctx context.Context) ([]models.Issue, error)
	ListForExport(ctx context.Context, f ExportFilter) ([]models.Issue, error)
	SetStatus(ctx context.Context, id string, status models.IssueStatus, resolvedBy string) error
	Delete(ctx context.Context, id string) error
	BulkAction(ctx context.Context, action string, issueIDs []string, adminID string) ([]BulkResult, error)
	ToggleUpvote(ctx context.Context, issueID, userID string) (bool, int64, error)
}

// BuildIssueFilter translates list parameters into conjunctive equality
// predicates over the issues collection.
func BuildIssueFilter(q IssueListQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Severity != 0 {
		filter["severity"] = q.Severity
	}
	return filter
}

// BuildExportFilter translates export parameters into a query filter.
func BuildExportFilter(f ExportFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Severity != 0 {
		filter["severity"] = f.Severity
	}
	timeRange := bson.M{}
	if f.StartDate != nil {
		timeRange["$gte"] = *f.StartDate
	}
	if f.EndDate != nil {
		timeRange["$lte"] = *f.EndDate
	}
	if len(timeRange) > 0 {
		filter["timestamp"] = timeRange
	}
	return filter
}

// TotalPages computes ceil(totalCount/limit); 0 when nothing matches.
func TotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((totalCount + int64(limit) - 1) / int64(limit))
}

func sortSpec(sortBy, sortOrder string) bson.D {
	field := "timestamp"
	switch sortBy {
	case "upvotes", "severity":
		field = sortBy
	}
	order := -1
	if sortOrder == "asc" {
		order = 1
	}
	return bson.D{{Key: field, Value: order}}
}

type mongoIssueStore struct {
	issues *mongo.Collection
	votes  *mongo.Collection
	users  *mongo.Collection
}

// NewIssueStore returns a Mongo-backed IssueStore.
func NewIssueStore(db *mongo.Database) IssueStore {
	return &mongoIssueStore{
		issues: db.Collection("issues"),
		votes:  db.Collection("votes"),
		users:  db.Collection("users"),
	}
}

func (s *mongoIssueStore) Create(ctx context.Context, issue *models.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := s.issues.InsertOne(ctx, issue)
	return err
}

func (s *mongoIssueStore) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var issue models.Issue
	err = s.issues.FindOne(ctx, bson.M{"_id": objID}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *mongoIssueStore) List(ctx context.Context, q IssueListQuery) ([]models.Issue, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := BuildIssueFilter(q)

	// Total count over the same filter set, unaffected by pagination,
	// so totalPages stays exact.
	totalCount, err := s.issues.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (q.Page - 1) * q.Limit
	findOptions := options.Find().
		SetSort(sortSpec(q.SortBy, q.SortOrder)).
		SetSkip(int64(skip)).
		SetLimit(int64(q.Limit))

	cursor, err := s.issues.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, totalCount, nil
}

func (s *mongoIssueStore) ListByUser(ctx context.Context, userID string) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.issues.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *mongoIssueStore) ListAll(ctx context.Context) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := s.issues.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *mongoIssueStore) ListForExport(ctx context.Context, f ExportFilter) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.issues.Find(ctx, BuildExportFilter(f), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *mongoIssueStore) SetStatus(ctx context.Context, id string, status models.IssueStatus, resolvedBy string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var update bson.M
	if status == models.Resolved {
		update = bson.M{"$set": bson.M{
			"status":     status,
			"resolvedAt": time.Now(),
			"resolvedBy": resolvedBy,
		}}
	} else {
		// Leaving Resolved clears the resolution fields.
		update = bson.M{
			"$set":   bson.M{"status": status},
			"$unset": bson.M{"resolvedAt": "", "resolvedBy": ""},
		}
	}

	result, err := s.issues.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoIssueStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := s.issues.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	_, _ = s.votes.DeleteMany(ctx, bson.M{"issue": objID})
	return nil
}

// BulkAction applies resolve/delete/reopen over a set of issue ids in a
// single batch write. Missing ids are reported per-item; the writes for
// the ids that do exist commit as one unit.
func (s *mongoIssueStore) BulkAction(ctx context.Context, action string, issueIDs []string, adminID string) ([]BulkResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	results := make([]BulkResult, 0, len(issueIDs))
	writes := make([]mongo.WriteModel, 0, len(issueIDs))

	for _, id := range issueIDs {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			results = append(results, BulkResult{IssueID: id, Status: "not_found"})
			continue
		}

		count, err := s.issues.CountDocuments(ctx, bson.M{"_id": objID})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			results = append(results, BulkResult{IssueID: id, Status: "not_found"})
			continue
		}

		switch action {
		case "resolve":
			writes = append(writes, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": objID}).
				SetUpdate(bson.M{"$set": bson.M{
					"status":     models.Resolved,
					"resolvedAt": time.Now(),
					"resolvedBy": adminID,
				}}))
		case "reopen":
			writes = append(writes, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": objID}).
				SetUpdate(bson.M{
					"$set":   bson.M{"status": models.Open},
					"$unset": bson.M{"resolvedAt": "", "resolvedBy": ""},
				}))
		case "delete":
			writes = append(writes, mongo.NewDeleteOneModel().
				SetFilter(bson.M{"_id": objID}))
		}

		results = append(results, BulkResult{IssueID: id, Status: "success"})
	}

	if len(writes) > 0 {
		if _, err := s.issues.BulkWrite(ctx, writes); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ToggleUpvote casts or removes the user's upvote and keeps the
// denormalized counters in step with the votes collection.
func (s *mongoIssueStore) ToggleUpvote(ctx context.Context, issueID, userID string) (bool, int64, error) {
	issueObjID, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return false, 0, ErrInvalidID
	}
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, 0, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var issue models.Issue
	if err := s.issues.FindOne(ctx, bson.M{"_id": issueObjID}).Decode(&issue); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}

	pair := bson.M{"issue": issueObjID, "user": userObjID}
	count, err := s.votes.CountDocuments(ctx, pair)
	if err != nil {
		return false, 0, err
	}

	var voted bool
	var delta int
	if count > 0 {
		if _, err := s.votes.DeleteOne(ctx, pair); err != nil {
			return false, 0, err
		}
		voted, delta = false, -1
	} else {
		vote := models.Vote{
			ID:        primitive.NewObjectID(),
			Issue:     issueObjID,
			User:      userObjID,
			CreatedAt: time.Now(),
		}
		if _, err := s.votes.InsertOne(ctx, vote); err != nil {
			return false, 0, err
		}
		voted, delta = true, 1
	}

	if _, err := s.issues.UpdateOne(ctx, bson.M{"_id": issueObjID},
		bson.M{"$inc": bson.M{"upvotes": delta}}); err != nil {
		return false, 0, err
	}
	_, _ = s.users.UpdateOne(ctx, bson.M{"_id": userObjID},
		bson.M{"$inc": bson.M{"issuesUpvoted": delta}})

	if err := s.issues.FindOne(ctx, bson.M{"_id": issueObjID}).Decode(&issue); err != nil {
		return voted, 0, err
	}
	return voted, issue.Upvotes, nil
}
