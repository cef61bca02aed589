package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/internal/remote"
	"github.com/BuzzLyutic/tasks-client/internal/store"
)

// MockAuthAPI - мок сервиса авторизации
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) SignIn(ctx context.Context, creds model.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockAuthAPI) SignUp(ctx context.Context, reg model.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return tok
}

func TestSessionService_SignIn(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"id": 7, "name": "Ana", "email": "ana@example.com"})

	tests := []struct {
		name        string
		email       string
		password    string
		setupMock   func(*MockAuthAPI)
		wantErr     error
		wantMessage string
	}{
		{
			name:     "successful sign in",
			email:    "ana@example.com",
			password: "segredo1",
			setupMock: func(m *MockAuthAPI) {
				m.On("SignIn", mock.Anything, model.Credentials{Email: "ana@example.com", Password: "segredo1"}).
					Return(token, nil)
			},
		},
		{
			name:      "validation error - bad email",
			email:     "ana@",
			password:  "segredo1",
			setupMock: func(m *MockAuthAPI) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "validation error - short password",
			email:     "ana@example.com",
			password:  "123",
			setupMock: func(m *MockAuthAPI) {},
			wantErr:   ErrValidation,
		},
		{
			name:     "server message is surfaced",
			email:    "ana@example.com",
			password: "errada1",
			setupMock: func(m *MockAuthAPI) {
				m.On("SignIn", mock.Anything, mock.Anything).
					Return("", &remote.APIError{StatusCode: 401, Message: "Email/Senha inválidos!"})
			},
			wantMessage: "Email/Senha inválidos!",
		},
		{
			name:     "network failure falls back to generic message",
			email:    "ana@example.com",
			password: "segredo1",
			setupMock: func(m *MockAuthAPI) {
				m.On("SignIn", mock.Anything, mock.Anything).
					Return("", remote.ErrNetwork)
			},
			wantMessage: fallbackAuthMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAuthAPI)
			tt.setupMock(api)
			kv := store.NewMemory()
			svc := NewSessionService(api, kv, zap.NewNop())

			got, err := svc.SignIn(context.Background(), tt.email, tt.password)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				api.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
				assert.False(t, svc.Authenticated())
			case tt.wantMessage != "":
				var authErr *AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, tt.wantMessage, authErr.Message)
				assert.False(t, svc.Authenticated())
				_, getErr := kv.Get(context.Background(), store.KeyToken)
				assert.ErrorIs(t, getErr, store.ErrorNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, token, got)
				assert.True(t, svc.Authenticated())
				assert.Equal(t, "Ana", svc.Username())
				stored, getErr := kv.Get(context.Background(), store.KeyToken)
				require.NoError(t, getErr)
				assert.Equal(t, token, stored)
			}
			api.AssertExpectations(t)
		})
	}
}

func TestSessionService_SignUp(t *testing.T) {
	tests := []struct {
		name        string
		form        AuthForm
		setupMock   func(*MockAuthAPI)
		wantErr     error
		wantMessage string
	}{
		{
			name: "passwords differ",
			form: AuthForm{Name: "Ana", Email: "ana@example.com", Password: "segredo1", ConfirmPassword: "segredo2"},
			setupMock: func(m *MockAuthAPI) {},
			wantErr:   ErrValidation,
		},
		{
			name: "blank name",
			form: AuthForm{Name: "   ", Email: "ana@example.com", Password: "segredo1", ConfirmPassword: "segredo1"},
			setupMock: func(m *MockAuthAPI) {},
			wantErr:   ErrValidation,
		},
		{
			name: "registered",
			form: AuthForm{Name: "Ana", Email: "ana@example.com", Password: "segredo1", ConfirmPassword: "segredo1"},
			setupMock: func(m *MockAuthAPI) {
				m.On("SignUp", mock.Anything, model.Registration{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}).
					Return(nil)
			},
		},
		{
			name: "server rejects",
			form: AuthForm{Name: "Ana", Email: "ana@example.com", Password: "segredo1", ConfirmPassword: "segredo1"},
			setupMock: func(m *MockAuthAPI) {
				m.On("SignUp", mock.Anything, mock.Anything).
					Return(&remote.APIError{StatusCode: 400, Message: "E-mail já cadastrado"})
			},
			wantMessage: "E-mail já cadastrado",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAuthAPI)
			tt.setupMock(api)
			svc := NewSessionService(api, store.NewMemory(), zap.NewNop())

			err := svc.SignUp(context.Background(), tt.form.Name, tt.form.Email, tt.form.Password, tt.form.ConfirmPassword)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				api.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
			case tt.wantMessage != "":
				var authErr *AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, tt.wantMessage, authErr.Message)
			default:
				require.NoError(t, err)
				assert.False(t, svc.Authenticated(), "sign up must not sign in")
			}
			api.AssertExpectations(t)
		})
	}
}

func TestSessionService_RestoreAndSignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		svc := NewSessionService(new(MockAuthAPI), store.NewMemory(), zap.NewNop())
		sess, ok := svc.RestoreSession(ctx)
		assert.False(t, ok)
		assert.Nil(t, sess)
	})

	t.Run("token with name", func(t *testing.T) {
		kv := store.NewMemory()
		token := signedToken(t, jwt.MapClaims{"name": "Ana"})
		require.NoError(t, kv.Set(ctx, store.KeyToken, token))

		svc := NewSessionService(new(MockAuthAPI), kv, zap.NewNop())
		sess, ok := svc.RestoreSession(ctx)
		require.True(t, ok)
		assert.Equal(t, "Ana", sess.Username)
		assert.True(t, svc.Authenticated())

		require.NoError(t, svc.SignOut(ctx))
		assert.False(t, svc.Authenticated())
		_, err := svc.Token(ctx)
		assert.ErrorIs(t, err, store.ErrorNotFound)
	})

	t.Run("token without name", func(t *testing.T) {
		kv := store.NewMemory()
		require.NoError(t, kv.Set(ctx, store.KeyToken, signedToken(t, jwt.MapClaims{"id": 1})))

		sess, ok := NewSessionService(new(MockAuthAPI), kv, zap.NewNop()).RestoreSession(ctx)
		require.True(t, ok)
		assert.Equal(t, fallbackUsername, sess.Username)
	})

	t.Run("undecodable token", func(t *testing.T) {
		kv := store.NewMemory()
		require.NoError(t, kv.Set(ctx, store.KeyToken, "garbage"))

		svc := NewSessionService(new(MockAuthAPI), kv, zap.NewNop())
		_, ok := svc.RestoreSession(ctx)
		assert.False(t, ok)
		assert.False(t, svc.Authenticated())
	})
}

func TestDecodeUsername_DoesNotVerifySignature(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"name": "Bia"})
	// Tamper with the signature segment.
	tampered := token[:len(token)-2] + "xx"

	name, err := DecodeUsername(tampered)
	require.NoError(t, err)
	assert.Equal(t, "Bia", name)
}

func TestAuthForm_CanSubmit(t *testing.T) {
	tests := []struct {
		name string
		form AuthForm
		want bool
	}{
		{"sign in ok", AuthForm{Email: "a@b.co", Password: "123456"}, true},
		{"short password", AuthForm{Email: "a@b.co", Password: "12345"}, false},
		{"bad email", AuthForm{Email: "a b@c.d", Password: "123456"}, false},
		{"register needs name", AuthForm{Registering: true, Email: "a@b.co", Password: "123456", ConfirmPassword: "123456"}, false},
		{"register needs confirm", AuthForm{Registering: true, Name: "Ana", Email: "a@b.co", Password: "123456"}, false},
		{"register ok", AuthForm{Registering: true, Name: "Ana", Email: "a@b.co", Password: "123456", ConfirmPassword: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.form.CanSubmit())
		})
	}
}

func TestAuthError_Unwraps(t *testing.T) {
	err := authError(errors.Join(remote.ErrNetwork, errors.New("dial tcp: refused")))
	assert.ErrorIs(t, err, remote.ErrNetwork)
	assert.Equal(t, fallbackAuthMessage, err.Error())
}
