package user

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
)

func TestGetDetails(t *testing.T) {
	f := newFixture(t, verifiedUser(aliceID, "alice"), verifiedUser(bobID, "bob"))
	_, err := f.ques.Submit(context.Background(), aliceID, threeAnswers())
	require.NoError(t, err)

	u, q, err := f.svc.GetDetails(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, aliceID, u.ID)
	assert.Equal(t, threeAnswers(), q.Answers)

	// A user without a questionnaire reads as missing.
	_, _, err = f.svc.GetDetails(context.Background(), bobID)
	assert.ErrorIs(t, err, ErrDetailsNotFound)

	_, _, err = f.svc.GetDetails(context.Background(), "01956f4e-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, ErrDetailsNotFound)

	_, _, err = f.svc.GetDetails(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrDetailsNotFound)
}

func TestUpdateProfile_UpdatesUserAndReplacesQuestionnaire(t *testing.T) {
	f := newFixture(t, verifiedUser(aliceID, "alice"))
	_, err := f.ques.Submit(context.Background(), aliceID, threeAnswers())
	require.NoError(t, err)

	answers := threeAnswers()
	answers[1].SelectedAnswer = "Well"
	u, q, err := f.svc.UpdateProfile(context.Background(), aliceID, UpdateProfileInput{
		FirstName: strPtr("  Alicia "),
		Username:  strPtr("Alicia"),
		Answers:   answers,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", u.FirstName)
	assert.Equal(t, "Das", u.LastName)
	assert.Equal(t, "alicia", u.Username)
	assert.Equal(t, "Well", q.Answers[1].SelectedAnswer)
	assert.Equal(t, 1, f.tx.count)
	assert.Equal(t, []string{"replace"}, f.ques.calls)
}

func TestUpdateProfile_UploadsDataURIPicture(t *testing.T) {
	f := newFixture(t, verifiedUser(aliceID, "alice"))
	pic := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG"))

	u, _, err := f.svc.UpdateProfile(context.Background(), aliceID, UpdateProfileInput{
		ProfilePicture: &pic,
		Answers:        threeAnswers(),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/user_profiles/"+aliceID, u.ProfilePicture)
}

func TestUpdateProfile_FailedUploadKeepsCurrentPicture(t *testing.T) {
	existing := verifiedUser(aliceID, "alice")
	existing.ProfilePicture = "https://cdn.example.com/old.png"
	f := newFixture(t, existing)
	f.images.err = errors.New("bucket unavailable")
	pic := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))

	u, _, err := f.svc.UpdateProfile(context.Background(), aliceID, UpdateProfileInput{
		ProfilePicture: &pic,
		Answers:        threeAnswers(),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/old.png", u.ProfilePicture)
}

func TestUpdateProfile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		id   string
		in   UpdateProfileInput
		want error
	}{
		{"no questionnaire", aliceID, UpdateProfileInput{FirstName: strPtr("A")}, ErrProfileRequired},
		{"two answers", aliceID, UpdateProfileInput{Answers: threeAnswers()[:2]}, questionnaire.ErrAnswerCount},
		{"blank name", aliceID, UpdateProfileInput{LastName: strPtr(" "), Answers: threeAnswers()}, ErrMissingFields},
		{"bad username", aliceID, UpdateProfileInput{Username: strPtr("x"), Answers: threeAnswers()}, ErrInvalidUsername},
		{"taken username", aliceID, UpdateProfileInput{Username: strPtr("bob"), Answers: threeAnswers()}, ErrUsernameConflict},
		{"unknown user", "01956f4e-0000-7000-8000-000000000000", UpdateProfileInput{Answers: threeAnswers()}, ErrDetailsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, verifiedUser(aliceID, "alice"), verifiedUser(bobID, "bob"))

			_, _, err := f.svc.UpdateProfile(context.Background(), tt.id, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t, verifiedUser(aliceID, "alice"), verifiedUser(bobID, "bob"))
	_, err := f.ques.Submit(context.Background(), aliceID, threeAnswers())
	require.NoError(t, err)

	err = f.svc.DeleteAccount(context.Background(), bobID, aliceID)
	require.ErrorIs(t, err, ErrForbiddenDelete)
	assert.NotNil(t, f.repo.get(aliceID))

	err = f.svc.DeleteAccount(context.Background(), aliceID, "01956f4e-0000-7000-8000-000000000000")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.DeleteAccount(context.Background(), aliceID, aliceID))
	assert.Nil(t, f.repo.get(aliceID))
	assert.Equal(t, []string{"delete"}, f.ques.calls)
	_, err = f.ques.GetByUser(context.Background(), aliceID)
	assert.ErrorIs(t, err, questionnaire.ErrNotFound)
	assert.NotNil(t, f.repo.get(bobID))
}
