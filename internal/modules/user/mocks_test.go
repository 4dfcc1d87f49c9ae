package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/delordemm1/psych-api/internal/config"
	"github.com/delordemm1/psych-api/internal/modules/questionnaire"
	"github.com/delordemm1/psych-api/internal/notification"
	"github.com/delordemm1/psych-api/internal/notification/templates"
	"github.com/delordemm1/psych-api/internal/queue"
	"github.com/delordemm1/psych-api/internal/session"
)

var testNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			AllowedEmailDomain: "iiita.ac.in",
			OTPLength:          6,
			OTPTTL:             10 * time.Minute,
			SessionTTL:         7 * 24 * time.Hour,
			DeliveryTimeout:    200 * time.Millisecond,
			UploadTimeout:      100 * time.Millisecond,
		},
		Queue: config.QueueConfig{
			Attempts:     3,
			Backoff:      2 * time.Second,
			InitialDelay: 2 * time.Second,
		},
	}
}

// memRepo is an in-memory Repository with the same uniqueness rules as the
// users table.
type memRepo struct {
	mu    sync.Mutex
	users map[string]*User
	// failWith, when set, is returned by every call.
	failWith error
	marked   map[string]string
}

func newMemRepo(users ...*User) *memRepo {
	r := &memRepo{users: map[string]*User{}, marked: map[string]string{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memRepo) get(id string) *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrDuplicateInsert
		}
	}
	u.CreatedAt, u.UpdatedAt = testNow, testNow
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) SetOTP(_ context.Context, id, otp string, expiresAt time.Time) error {
	return r.mutate(id, func(u *User) { u.OTP, u.OTPExpiresAt = &otp, &expiresAt })
}

func (r *memRepo) ClearOTP(_ context.Context, id string) error {
	return r.mutate(id, func(u *User) { u.OTP, u.OTPExpiresAt = nil, nil })
}

func (r *memRepo) MarkEmailFailed(_ context.Context, id, reason string) error {
	return r.mutate(id, func(u *User) {
		u.EmailSendFailed = true
		u.LastEmailError = &reason
		r.marked[id] = reason
	})
}

func (r *memRepo) UpdateProfile(_ context.Context, id string, p ProfileUpdate) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrDetailsNotFound
	}
	if p.Username != nil {
		for _, other := range r.users {
			if other.ID != id && other.Username == *p.Username {
				return nil, ErrUsernameConflict
			}
		}
		u.Username = *p.Username
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) mutate(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	return nil
}

// memQuestionnaires is an in-memory questionnaire.Service that records the
// order of calls.
type memQuestionnaires struct {
	mu     sync.Mutex
	byUser map[string]*questionnaire.Questionnaire
	calls  []string
}

func newMemQuestionnaires() *memQuestionnaires {
	return &memQuestionnaires{byUser: map[string]*questionnaire.Questionnaire{}}
}

func (m *memQuestionnaires) Submit(_ context.Context, userID string, answers []questionnaire.Answer) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := &questionnaire.Questionnaire{ID: "q-" + userID, UserID: userID, Answers: answers}
	m.byUser[userID] = q
	return q, nil
}

func (m *memQuestionnaires) GetByUser(_ context.Context, userID string) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.byUser[userID]; ok {
		return q, nil
	}
	return nil, questionnaire.ErrNotFound
}

func (m *memQuestionnaires) Replace(_ context.Context, userID string, answers []questionnaire.Answer) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "replace")
	q := &questionnaire.Questionnaire{ID: "q-" + userID, UserID: userID, Answers: answers}
	m.byUser[userID] = q
	return q, nil
}

func (m *memQuestionnaires) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete")
	delete(m.byUser, userID)
	return nil
}

// fakeTx runs fn against the in-memory stores. It does not roll back.
type fakeTx struct {
	repo  *memRepo
	ques  *memQuestionnaires
	count int
}

func (t *fakeTx) WithinTx(_ context.Context, fn func(Repository, questionnaire.Service) error) error {
	t.count++
	return fn(t.repo, t.ques)
}

type addedJob struct {
	Name    string
	Payload any
	Opts    queue.JobOptions
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []addedJob
	err  error
}

func (q *fakeQueue) Add(_ context.Context, name string, payload any, opts queue.JobOptions) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, addedJob{Name: name, Payload: payload, Opts: opts})
	return "1", nil
}

func (q *fakeQueue) added() []addedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]addedJob(nil), q.jobs...)
}

// fakeMailer records sent messages; send, when set, decides the outcome.
type fakeMailer struct {
	mu   sync.Mutex
	sent []notification.Message
	send func(ctx context.Context, msg notification.Message) error
}

func (m *fakeMailer) Send(ctx context.Context, msg notification.Message) error {
	if m.send != nil {
		if err := m.send(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []notification.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.Message(nil), m.sent...)
}

type fakeImages struct {
	url string
	err error
	// block makes Upload wait for the context.
	block bool
	keys  []string
}

func (f *fakeImages) Upload(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	f.keys = append(f.keys, key)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, body)
	return f.url + key, nil
}

type fakeProvider struct {
	info        *oAuthUserInfo
	err         error
	gotVerifier string
}

func (p *fakeProvider) AuthCodeURL(state, verifier string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, _, verifier string) (*oAuthUserInfo, error) {
	p.gotVerifier = verifier
	return p.info, p.err
}

type memStates struct {
	mu     sync.Mutex
	states map[string]*OAuthState
}

func (m *memStates) Save(_ context.Context, s *OAuthState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = map[string]*OAuthState{}
	}
	m.states[s.State] = s
	return nil
}

func (m *memStates) Take(_ context.Context, state string) (*OAuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[state]
	if !ok {
		return nil, ErrOAuthStateInvalid
	}
	delete(m.states, state)
	return s, nil
}

type fixture struct {
	svc      Service
	repo     *memRepo
	ques     *memQuestionnaires
	tx       *fakeTx
	queue    *fakeQueue
	mailer   *fakeMailer
	images   *fakeImages
	states   *memStates
	google   *fakeProvider
	sessions *session.Manager
}

func newFixture(t *testing.T, users ...*User) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newMemRepo(users...),
		ques:     newMemQuestionnaires(),
		queue:    &fakeQueue{},
		mailer:   &fakeMailer{},
		images:   &fakeImages{url: "https://cdn.example.com/"},
		states:   &memStates{},
		google:   &fakeProvider{},
		sessions: session.NewManager(session.Config{Secret: "test-secret"}),
	}
	f.tx = &fakeTx{repo: f.repo, ques: f.ques}
	f.svc = NewService(&Config{
		Repo:           f.repo,
		States:         f.states,
		Questionnaires: f.ques,
		Tx:             f.tx,
		Notifier:       notification.NewService(discardLogger(), f.mailer, templates.NewEngine()),
		Queue:          f.queue,
		Images:         f.images,
		Sessions:       f.sessions,
		Google:         f.google,
		Logger:         discardLogger(),
		Config:         testConfig(),
		Now:            func() time.Time { return testNow },
	})
	return f
}

var errSMTP = errors.New("smtp: 421 service not available")

func strPtr(s string) *string { return &s }

const (
	aliceID = "01956f4e-8a3c-7b1d-9e2f-3a4b5c6d7e8f"
	bobID   = "01956f4e-8a3c-7b1d-9e2f-3a4b5c6d7e90"
)

// pendingUser is a local account awaiting OTP verification.
func pendingUser(otp string, expiresAt time.Time) *User {
	hash, _ := hashPassword("secret123")
	return &User{
		ID:           aliceID,
		FirstName:    "Alice",
		LastName:     "Rao",
		Email:        "alice@iiita.ac.in",
		Username:     "alice",
		PasswordHash: &hash,
		AuthProvider: AuthProviderLocal,
		OTP:          &otp,
		OTPExpiresAt: &expiresAt,
	}
}

func verifiedUser(id, username string) *User {
	hash, _ := hashPassword("secret123")
	return &User{
		ID:           id,
		FirstName:    "Bob",
		LastName:     "Das",
		Email:        username + "@iiita.ac.in",
		Username:     username,
		PasswordHash: &hash,
		AuthProvider: AuthProviderLocal,
	}
}

func threeAnswers() []questionnaire.Answer {
	return []questionnaire.Answer{
		{Question: "How often do you feel anxious?", SelectedAnswer: "Sometimes"},
		{Question: "How well do you sleep?", SelectedAnswer: "Poorly"},
		{Question: "Do you feel supported?", SelectedAnswer: "Yes"},
	}
}
