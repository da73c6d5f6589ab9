package middlewares

import (
	"errors"
	"fmt"
	"strconv"

	"citysense-be/models"
	"citysense-be/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ListQueryKey is the context key holding the coerced list query.
const ListQueryKey = "listQuery"

// ValidateQuery checks and coerces issue-list query parameters, writing
// the typed result back into the context for the handler.
func ValidateQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		var details []string
		q := repository.IssueListQuery{
			Limit:     50,
			Page:      1,
			SortBy:    "timestamp",
			SortOrder: "desc",
		}

		if v := c.Query("category"); v != "" {
			if !models.ValidCategories[models.IssueCategory(v)] {
				details = append(details, "category must be one of the supported issue categories")
			}
			q.Category = v
		}

		if v := c.Query("status"); v != "" {
			if !models.ValidStatuses[models.IssueStatus(v)] {
				details = append(details, "status must be one of Open, In Progress, Resolved")
			}
			q.Status = v
		}

		if v := c.Query("severity"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 5 {
				details = append(details, "severity must be an integer between 1 and 5")
			}
			q.Severity = n
		}

		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				details = append(details, "limit must be an integer between 1 and 100")
			} else {
				q.Limit = n
			}
		}

		if v := c.Query("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				details = append(details, "page must be a positive integer")
			} else {
				q.Page = n
			}
		}

		if v := c.Query("sortBy"); v != "" {
			switch v {
			case "timestamp", "upvotes", "severity":
				q.SortBy = v
			default:
				details = append(details, "sortBy must be one of timestamp, upvotes, severity")
			}
		}

		if v := c.Query("sortOrder"); v != "" {
			switch v {
			case "asc", "desc":
				q.SortOrder = v
			default:
				details = append(details, "sortOrder must be asc or desc")
			}
		}

		if len(details) > 0 {
			c.Error(BadRequest("Invalid query parameters", details...))
			c.Abort()
			return
		}

		c.Set(ListQueryKey, q)
		c.Next()
	}
}

// ListQueryFrom retrieves the coerced list query set by ValidateQuery.
func ListQueryFrom(c *gin.Context) repository.IssueListQuery {
	if v, exists := c.Get(ListQueryKey); exists {
		if q, ok := v.(repository.IssueListQuery); ok {
			return q
		}
	}
	return repository.IssueListQuery{Limit: 50, Page: 1, SortBy: "timestamp", SortOrder: "desc"}
}

// ValidationDetails turns binding failures into field-level messages.
func ValidationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			details = append(details, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			details = append(details, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return details
}
