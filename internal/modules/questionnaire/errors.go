package questionnaire

import (
	"net/http"

	"github.com/delordemm1/psych-api/internal/domainerr"
)

var (
	ErrFieldsRequired   = domainerr.New("ErrFieldsRequired", http.StatusBadRequest, "userId and answers are required")
	ErrAnswerCount      = domainerr.New("ErrAnswerCount", http.StatusBadRequest, "Exactly 3 answers are required")
	ErrAnswerIncomplete = domainerr.New("ErrAnswerIncomplete", http.StatusBadRequest, "Question and selected answer are required")
	ErrAlreadySubmitted = domainerr.New("ErrAlreadySubmitted", http.StatusBadRequest, "Questionnaire already submitted")
	ErrUserNotFound     = domainerr.New("ErrUserNotFound", http.StatusNotFound, "User not found")
	ErrNotFound         = domainerr.New("ErrQuestionnaireNotFound", http.StatusNotFound, "Questionnaire not found")
)
