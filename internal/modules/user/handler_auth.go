package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/delordemm1/psych-api/internal/contextx"
	"github.com/delordemm1/psych-api/internal/httpx"
	"github.com/delordemm1/psych-api/internal/storage"
)

const maxPictureBytes = 5 << 20

var errUnsupportedBody = errors.New("unsupported request body")

// --- DTOs ---

// RegisterRequest accepts multipart/form-data (with an optional
// profilePicture file) or JSON (with an optional data URI picture).
type RegisterRequest struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

type registerDebug struct {
	OTPGenerated bool    `json:"otpGenerated"`
	EmailError   *string `json:"emailError"`
	EmailAddress string  `json:"emailAddress"`
}

type RegisterResponse struct {
	Body struct {
		Error     bool           `json:"error"`
		Message   string         `json:"message"`
		UserID    string         `json:"userId"`
		EmailSent bool           `json:"emailSent"`
		Debug     *registerDebug `json:"debug,omitempty"`
	}
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email,omitempty"`
		Password string `json:"password,omitempty"`
	}
}

type LoginResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Error   bool      `json:"error"`
		Message string    `json:"message"`
		User    *UserView `json:"user"`
	}
}

type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
}

type MeResponse struct {
	Body struct {
		Error bool      `json:"error"`
		User  *UserView `json:"user"`
	}
}

// --- Handlers ---

// RegisterHandler handles the user registration endpoint.
func (h *Handler) RegisterHandler(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	in, err := parseRegisterBody(input.ContentType, input.RawBody)
	if err != nil {
		h.logger.Warn("unreadable registration body", "content_type", input.ContentType, "error", err)
		if errors.Is(err, ErrPictureTooLarge) {
			return nil, httpx.ToProblem(ctx, err)
		}
		return nil, httpx.ToProblem(ctx, ErrMissingFields.WithCause(err))
	}

	res, err := h.service.Register(ctx, in)
	if err != nil {
		h.logger.Warn("registration failed", "email", in.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &RegisterResponse{}
	resp.Body.UserID = res.User.ID
	resp.Body.EmailSent = res.Delivery.EmailSent
	if res.Delivery.EmailSent {
		resp.Body.Message = "User registered successfully! OTP sent to email."
	} else {
		resp.Body.Message = "User registered successfully! OTP will be sent shortly."
	}
	if h.debug {
		d := &registerDebug{OTPGenerated: res.User.OTP != nil, EmailAddress: res.User.Email}
		if res.Delivery.Err != nil {
			msg := res.Delivery.Err.Error()
			d.EmailError = &msg
		}
		resp.Body.Debug = d
	}
	return resp, nil
}

// LoginHandler handles the user login endpoint.
func (h *Handler) LoginHandler(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	u, token, err := h.service.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		h.logger.Warn("login attempt failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &LoginResponse{SetCookie: h.sessions.Cookie(token)}
	resp.Body.Message = "Login successful!"
	resp.Body.User = toView(u)
	return resp, nil
}

// LogoutHandler clears the session cookie. Tokens are stateless, so there
// is nothing to revoke server-side.
func (h *Handler) LogoutHandler(ctx context.Context, _ *struct{}) (*LogoutResponse, error) {
	resp := &LogoutResponse{SetCookie: h.sessions.ClearCookie()}
	resp.Body.Message = "User has been logged out!"
	return resp, nil
}

func (h *Handler) MeHandler(ctx context.Context, _ *struct{}) (*MeResponse, error) {
	userID, _ := contextx.UserID(ctx)
	u, err := h.service.GetProfile(ctx, userID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &MeResponse{}
	resp.Body.User = toView(u)
	return resp, nil
}

// --- Body parsing ---

type registerJSON struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

func parseRegisterBody(contentType string, body []byte) (RegisterInput, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return RegisterInput{}, err
	}

	switch {
	case mediaType == "multipart/form-data":
		return parseRegisterForm(body, params["boundary"])
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var j registerJSON
		if err := json.Unmarshal(body, &j); err != nil {
			return RegisterInput{}, err
		}
		in := RegisterInput{FirstName: j.FirstName, LastName: j.LastName, Email: j.Email, Password: j.Password, Username: j.Username}
		if storage.IsDataURI(j.ProfilePicture) {
			if data, mimeType, err := storage.DecodeDataURI(j.ProfilePicture); err == nil {
				if len(data) > maxPictureBytes {
					return RegisterInput{}, ErrPictureTooLarge
				}
				in.Picture = &ImageUpload{Data: data, ContentType: mimeType}
			}
		}
		return in, nil
	}
	return RegisterInput{}, errUnsupportedBody
}

func parseRegisterForm(body []byte, boundary string) (RegisterInput, error) {
	if boundary == "" {
		return RegisterInput{}, errUnsupportedBody
	}
	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxPictureBytes)
	if err != nil {
		return RegisterInput{}, err
	}
	defer form.RemoveAll()

	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	in := RegisterInput{
		FirstName: value("firstName"),
		LastName:  value("lastName"),
		Email:     value("email"),
		Password:  value("password"),
		Username:  value("username"),
	}

	if files := form.File["profilePicture"]; len(files) > 0 {
		fh := files[0]
		if fh.Size > maxPictureBytes {
			return RegisterInput{}, ErrPictureTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return RegisterInput{}, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxPictureBytes+1))
		if err != nil {
			return RegisterInput{}, err
		}
		if len(data) > maxPictureBytes {
			return RegisterInput{}, ErrPictureTooLarge
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		in.Picture = &ImageUpload{Data: data, ContentType: ct}
	}
	return in, nil
}
