package templates

// OTPData feeds the auth.otp scenario.
type OTPData struct {
	Username      string
	Code          string
	ExpiryMinutes int
}

// OTP is the typed handle for the auth.otp template.
var OTP = Expect[OTPData]("auth.otp")

// StudentAppointmentData feeds the confirmation sent to the student.
type StudentAppointmentData struct {
	DoctorName     string
	Specialization string
	Date           string
	Time           string
	Fee            string
}

var StudentAppointment = Expect[StudentAppointmentData]("appointment.student")

// Answer is one questionnaire response shown to the psychiatrist.
type Answer struct {
	Question       string
	SelectedAnswer string
}

// PsychiatristAppointmentData feeds the notice sent to the psychiatrist.
type PsychiatristAppointmentData struct {
	StudentName string
	Date        string
	Time        string
	Answers     []Answer
}

var PsychiatristAppointment = Expect[PsychiatristAppointmentData]("appointment.psychiatrist")
