package quiz

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that a quiz is complete enough to be stored: a title, a
// topic and at least one question, each with text, two to four options and
// an answer spec.
func Validate(q *Quiz) error {
	if strings.TrimSpace(q.Title) == "" || strings.TrimSpace(q.Topic) == "" || len(q.Questions) == 0 {
		return &ValidationError{Message: "Title, topic, and questions are required"}
	}

	err := structValidator().Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: describeTag(fe.Tag(), fe.Param()),
		}
	}
	return &ValidationError{Message: err.Error()}
}

// fieldPath turns "Quiz.Questions[2].Options" into "questions[2].options".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Quiz.")
	return strings.ToLower(ns)
}

func describeTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "needs at least " + param
	case "max":
		return "allows at most " + param
	case "gte":
		return "must be >= " + param
	case "oneof":
		return "must be one of " + param
	default:
		return "failed " + tag
	}
}
