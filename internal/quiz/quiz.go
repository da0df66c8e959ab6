// Package quiz defines the domain types shared by the scoring pipeline,
// persistence and transport layers.
package quiz

import "time"

// Difficulty is an advisory difficulty tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// OrDefault returns d, or Medium when d is empty or unknown.
func (d Difficulty) OrDefault() Difficulty {
	if d.Valid() {
		return d
	}
	return Medium
}

// Question is one multiple-choice question. AnswerSpec holds the answer
// exactly as authored or generated ("B", "B)", "Answer: B", or option text);
// it is resolved to a canonical option string at grading time.
type Question struct {
	Text       string     `json:"question" bson:"question" validate:"required"`
	Options    []string   `json:"options" bson:"options" validate:"min=2,max=4,dive,required"`
	AnswerSpec string     `json:"answer" bson:"answer" validate:"required"`
	Difficulty Difficulty `json:"difficulty,omitempty" bson:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
}

// Quiz is an ordered set of questions owned by the user who created it.
type Quiz struct {
	ID           string     `json:"id" bson:"_id"`
	Title        string     `json:"title" bson:"title" validate:"required"`
	Topic        string     `json:"topic" bson:"topic" validate:"required"`
	TimerSeconds int        `json:"timer" bson:"timer" validate:"gte=0"`
	Questions    []Question `json:"questions" bson:"questions" validate:"required,min=1,dive"`
	OwnerID      string     `json:"user" bson:"user"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
}

// Timed reports whether the quiz runs against a countdown.
func (q *Quiz) Timed() bool { return q.TimerSeconds > 0 }

// Selection is a raw pick made by a player, before grading.
type Selection struct {
	QuestionIndex    int    `json:"questionIndex" bson:"questionIndex"`
	SelectedOption   string `json:"selectedOption" bson:"selectedOption"`
	TimeSpentSeconds int    `json:"timeSpentSeconds" bson:"timeSpentSeconds"`
}

// AnswerRecord is a graded selection. QuestionText and Difficulty are
// denormalized copies taken from the quiz at grading time.
type AnswerRecord struct {
	QuestionIndex    int        `json:"questionIndex" bson:"questionIndex"`
	QuestionText     string     `json:"question" bson:"question"`
	SelectedOption   string     `json:"selectedOption" bson:"selectedOption"`
	IsCorrect        bool       `json:"isCorrect" bson:"isCorrect"`
	TimeSpentSeconds int        `json:"timeSpentSeconds" bson:"timeSpentSeconds"`
	Difficulty       Difficulty `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
}

// Attempt is one submitted play-through of a quiz. Score is always a
// percentage in [0, 100].
type Attempt struct {
	ID               string         `json:"id" bson:"_id"`
	UserID           string         `json:"user" bson:"user"`
	QuizID           string         `json:"quiz" bson:"quiz"`
	QuizTitle        string         `json:"quizTitle,omitempty" bson:"-"`
	QuizTopic        string         `json:"quizTopic,omitempty" bson:"-"`
	Score            float64        `json:"score" bson:"score"`
	CorrectAnswers   int            `json:"correctAnswers" bson:"correctAnswers"`
	TotalQuestions   int            `json:"totalQuestions" bson:"totalQuestions"`
	Answers          []AnswerRecord `json:"answers" bson:"answers"`
	TotalTimeSeconds int            `json:"totalTimeSeconds" bson:"totalTimeSeconds"`
	NextDifficulty   Difficulty     `json:"nextDifficulty,omitempty" bson:"nextDifficulty,omitempty"`
	CreatedAt        time.Time      `json:"createdAt" bson:"createdAt"`
}
