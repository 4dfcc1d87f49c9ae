package appointment

import (
	"net/http"

	"github.com/delordemm1/psych-api/internal/domainerr"
)

var (
	ErrNotLoggedIn           = domainerr.New("ErrNotLoggedIn", http.StatusUnauthorized, "Not logged in")
	ErrFieldsRequired        = domainerr.New("ErrFieldsRequired", http.StatusBadRequest, "Doctor, selectedDate and selectedTime are required")
	ErrUserNotFound          = domainerr.New("ErrUserNotFound", http.StatusNotFound, "User not found")
	ErrQuestionnaireNotFound = domainerr.New("ErrQuestionnaireNotFound", http.StatusBadRequest, "Questionnaire not found")
	ErrStudentEmail          = domainerr.New("ErrStudentEmail", http.StatusInternalServerError, "Unable to send email for appointment to student")
	ErrPsychiatristEmail     = domainerr.New("ErrPsychiatristEmail", http.StatusInternalServerError, "Unable to send email for appointment to psychiatrist")
)
