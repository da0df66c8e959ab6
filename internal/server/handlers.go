package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizcraft/internal/auth"
	"github.com/abhisek/quizcraft/internal/questiongen"
	"github.com/abhisek/quizcraft/internal/quiz"
	"github.com/abhisek/quizcraft/internal/service"
)

type generateRequest struct {
	Topic        string          `json:"topic"`
	NumQuestions int             `json:"numQuestions"`
	Difficulty   quiz.Difficulty `json:"difficulty"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.svc.Generate(c.Request.Context(), questiongen.GenerateInput{
		Topic:        req.Topic,
		NumQuestions: req.NumQuestions,
		Difficulty:   req.Difficulty,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	questions := res.Questions
	if questions == nil {
		questions = []quiz.Question{}
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

type createQuizRequest struct {
	Title     string          `json:"title"`
	Topic     string          `json:"topic"`
	Timer     int             `json:"timer"`
	Questions []quiz.Question `json:"questions"`
}

func (s *Server) handleCreateQuiz(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	q, err := s.svc.CreateQuiz(c.Request.Context(), auth.UserID(c), &quiz.Quiz{
		Title:        req.Title,
		Topic:        req.Topic,
		TimerSeconds: req.Timer,
		Questions:    req.Questions,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Quiz created successfully", "quiz": q})
}

func (s *Server) handleMyQuizzes(c *gin.Context) {
	qs, err := s.svc.ListMyQuizzes(c.Request.Context(), auth.UserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, qs)
}

func (s *Server) handleGetQuiz(c *gin.Context) {
	q, err := s.svc.GetQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) handleDeleteQuiz(c *gin.Context) {
	if err := s.svc.DeleteQuiz(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}

// answerIndex names the question an answer belongs to, as "questionIndex"
// or "index".
type answerIndex struct {
	QuestionIndex *int `json:"questionIndex"`
	Index         *int `json:"index"`
}

// at returns the named index, or pos when the client sent none.
func (a answerIndex) at(pos int) int {
	switch {
	case a.QuestionIndex != nil:
		return *a.QuestionIndex
	case a.Index != nil:
		return *a.Index
	}
	return pos
}

type selectionRequest struct {
	answerIndex
	SelectedOption   string `json:"selectedOption"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

func (r selectionRequest) selection(pos int) quiz.Selection {
	return quiz.Selection{
		QuestionIndex:    r.at(pos),
		SelectedOption:   r.SelectedOption,
		TimeSpentSeconds: r.TimeSpentSeconds,
	}
}

// attemptRequest carries raw selections. The quiz may be named "quiz" or
// "quizId". A selection without an index defaults to its position.
type attemptRequest struct {
	Quiz             string             `json:"quiz"`
	QuizID           string             `json:"quizId"`
	Answers          []selectionRequest `json:"answers"`
	TotalTimeSeconds int                `json:"totalTimeSeconds"`
}

func (s *Server) handleAttemptQuiz(c *gin.Context) {
	var req attemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	quizID := req.Quiz
	if quizID == "" {
		quizID = req.QuizID
	}
	selections := make([]quiz.Selection, len(req.Answers))
	for i, a := range req.Answers {
		selections[i] = a.selection(i)
	}
	sub, err := s.svc.AttemptQuiz(c.Request.Context(), auth.UserID(c), quizID, selections, req.TotalTimeSeconds)
	if err != nil {
		s.writeError(c, err)
		return
	}
	writeSubmitted(c, http.StatusCreated, "Attempt saved successfully!", sub)
}

// submittedAnswer is a client-graded answer. A missing index defaults to
// the answer's position.
type submittedAnswer struct {
	answerIndex
	Question         string          `json:"question"`
	SelectedOption   string          `json:"selectedOption"`
	IsCorrect        bool            `json:"isCorrect"`
	TimeSpentSeconds int             `json:"timeSpentSeconds"`
	Difficulty       quiz.Difficulty `json:"difficulty"`
}

type submitRequest struct {
	QuizID           string            `json:"quizId"`
	Answers          []submittedAnswer `json:"answers"`
	TotalTimeSeconds int               `json:"totalTimeSeconds"`
}

func (s *Server) handleSubmitAttempt(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := service.DirectSubmission{
		QuizID:           req.QuizID,
		TotalTimeSeconds: req.TotalTimeSeconds,
		Answers:          make([]quiz.AnswerRecord, len(req.Answers)),
	}
	for i, a := range req.Answers {
		in.Answers[i] = quiz.AnswerRecord{
			QuestionIndex:    a.at(i),
			QuestionText:     a.Question,
			SelectedOption:   a.SelectedOption,
			IsCorrect:        a.IsCorrect,
			TimeSpentSeconds: a.TimeSpentSeconds,
			Difficulty:       a.Difficulty,
		}
	}
	sub, err := s.svc.SubmitAttempt(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	writeSubmitted(c, http.StatusOK, "Attempt saved", sub)
}

type startSessionRequest struct {
	QuizID string `json:"quizId"`
}

func (s *Server) handleStartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.QuizID == "" {
		s.writeError(c, &quiz.ValidationError{Field: "quizId", Message: "Quiz ID is required"})
		return
	}
	d, err := s.svc.StartSession(c.Request.Context(), auth.UserID(c), req.QuizID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (s *Server) handleRecordAnswer(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.QuestionIndex == nil && req.Index == nil {
		s.writeError(c, &quiz.ValidationError{Field: "questionIndex", Message: "Question index is required"})
		return
	}
	if err := s.svc.RecordAnswer(c.Request.Context(), auth.UserID(c), c.Param("id"), req.selection(0)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSubmitSession(c *gin.Context) {
	sub, err := s.svc.SubmitSession(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	writeSubmitted(c, http.StatusOK, "Attempt saved", sub)
}

func (s *Server) handleAnalytics(c *gin.Context) {
	report, err := s.svc.Analytics(c.Request.Context(), auth.UserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDeleteAttempt(c *gin.Context) {
	if err := s.svc.DeleteAttempt(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Analysis deleted successfully"})
}

func writeSubmitted(c *gin.Context, status int, msg string, sub *service.Submitted) {
	c.JSON(status, gin.H{
		"message":        msg,
		"attempt":        sub.Attempt,
		"nextDifficulty": sub.NextDifficulty,
	})
}
