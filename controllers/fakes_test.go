package controllers

import (
	"context"
	"sort"
	"time"

	"citysense-be/models"
	"citysense-be/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeIssueStore is an in-memory IssueStore preserving insertion order.
type fakeIssueStore struct {
	issues []*models.Issue
	votes  map[string]map[string]bool // issue id -> voter ids
}

func newFakeIssueStore(issues ...*models.Issue) *fakeIssueStore {
	s := &fakeIssueStore{votes: map[string]map[string]bool{}}
	for _, issue := range issues {
		if issue.ID.IsZero() {
			issue.ID = primitive.NewObjectID()
		}
		s.issues = append(s.issues, issue)
	}
	return s
}

func (s *fakeIssueStore) find(id string) *models.Issue {
	for _, issue := range s.issues {
		if issue.ID.Hex() == id {
			return issue
		}
	}
	return nil
}

func (s *fakeIssueStore) matches(issue *models.Issue, category, status string, severity int) bool {
	if category != "" && string(issue.Category) != category {
		return false
	}
	if status != "" && string(issue.Status) != status {
		return false
	}
	if severity != 0 && issue.Severity != severity {
		return false
	}
	return true
}

func (s *fakeIssueStore) Create(_ context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	s.issues = append(s.issues, issue)
	return nil
}

func (s *fakeIssueStore) GetByID(_ context.Context, id string) (*models.Issue, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	if issue := s.find(id); issue != nil {
		copied := *issue
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *fakeIssueStore) List(_ context.Context, q repository.IssueListQuery) ([]models.Issue, int64, error) {
	var matched []models.Issue
	for _, issue := range s.issues {
		if s.matches(issue, q.Category, q.Status, q.Severity) {
			matched = append(matched, *issue)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch q.SortBy {
		case "upvotes":
			less = matched[i].Upvotes < matched[j].Upvotes
		case "severity":
			less = matched[i].Severity < matched[j].Severity
		default:
			less = matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		if q.SortOrder == "asc" {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *fakeIssueStore) ListByUser(_ context.Context, userID string) ([]models.Issue, error) {
	var out []models.Issue
	for _, issue := range s.issues {
		if issue.UserID == userID {
			out = append(out, *issue)
		}
	}
	return out, nil
}

func (s *fakeIssueStore) ListAll(_ context.Context) ([]models.Issue, error) {
	out := make([]models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		out = append(out, *issue)
	}
	return out, nil
}

func (s *fakeIssueStore) ListForExport(_ context.Context, f repository.ExportFilter) ([]models.Issue, error) {
	var out []models.Issue
	for _, issue := range s.issues {
		if !s.matches(issue, f.Category, f.Status, f.Severity) {
			continue
		}
		if f.StartDate != nil && issue.Timestamp.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && issue.Timestamp.After(*f.EndDate) {
			continue
		}
		out = append(out, *issue)
	}
	return out, nil
}

func (s *fakeIssueStore) SetStatus(_ context.Context, id string, status models.IssueStatus, resolvedBy string) error {
	issue := s.find(id)
	if issue == nil {
		return repository.ErrNotFound
	}
	issue.Status = status
	if status == models.Resolved {
		now := time.Now()
		issue.ResolvedAt = &now
		issue.ResolvedBy = &resolvedBy
	} else {
		issue.ResolvedAt = nil
		issue.ResolvedBy = nil
	}
	return nil
}

func (s *fakeIssueStore) Delete(_ context.Context, id string) error {
	for i, issue := range s.issues {
		if issue.ID.Hex() == id {
			s.issues = append(s.issues[:i], s.issues[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeIssueStore) BulkAction(_ context.Context, action string, issueIDs []string, adminID string) ([]repository.BulkResult, error) {
	results := make([]repository.BulkResult, 0, len(issueIDs))
	for _, id := range issueIDs {
		if s.find(id) == nil {
			results = append(results, repository.BulkResult{IssueID: id, Status: "not_found"})
			continue
		}
		switch action {
		case "resolve":
			s.SetStatus(context.Background(), id, models.Resolved, adminID)
		case "reopen":
			s.SetStatus(context.Background(), id, models.Open, adminID)
		case "delete":
			s.Delete(context.Background(), id)
		}
		results = append(results, repository.BulkResult{IssueID: id, Status: "success"})
	}
	return results, nil
}

func (s *fakeIssueStore) ToggleUpvote(_ context.Context, issueID, userID string) (bool, int64, error) {
	issue := s.find(issueID)
	if issue == nil {
		return false, 0, repository.ErrNotFound
	}
	voters := s.votes[issueID]
	if voters == nil {
		voters = map[string]bool{}
		s.votes[issueID] = voters
	}
	if voters[userID] {
		delete(voters, userID)
		issue.Upvotes--
		return false, issue.Upvotes, nil
	}
	voters[userID] = true
	issue.Upvotes++
	return true, issue.Upvotes, nil
}

// fakeUserStore is an in-memory UserStore keyed by hex id.
type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		s.users[u.ID.Hex()] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID.Hex()] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, uid string) (*models.User, error) {
	if u, ok := s.users[uid]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) List(_ context.Context, page, limit int) ([]models.User, int64, error) {
	all := s.sorted()
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *fakeUserStore) ListAll(_ context.Context) ([]models.User, error) {
	return s.sorted(), nil
}

func (s *fakeUserStore) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range s.sorted() {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) sorted() []models.User {
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (s *fakeUserStore) UpdateRole(_ context.Context, uid string, role models.UserRole) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *fakeUserStore) UpdateDisplayName(_ context.Context, uid, displayName string) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.DisplayName = displayName
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, uid string) error {
	if _, ok := s.users[uid]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, uid)
	return nil
}

func (s *fakeUserStore) IncIssuesReported(_ context.Context, uid string, delta int) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.IssuesReported += delta
	return nil
}

func (s *fakeUserStore) TouchLastLogin(_ context.Context, uid string) error {
	u, ok := s.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}
