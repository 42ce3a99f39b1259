package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dtroode/authcore/internal/api/grpc/authv1"
	"github.com/dtroode/authcore/internal/api/grpc/router"
	"github.com/dtroode/authcore/internal/api/identity"
	"github.com/dtroode/authcore/internal/mocks"
	"github.com/dtroode/authcore/internal/model"
	"github.com/dtroode/authcore/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGRPCServer_Address(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	assert.Equal(t, ":0", s.Address())
}

func TestGRPCServer_Stop(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	err := s.Stop(context.Background())
	assert.NoError(t, err)
}

func TestGRPCServer_Stop_ForcesAfterDeadline(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	srv := NewGRPCServer(gs, "bufnet")

	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", "bufnet").Return(lis, nil)

	served := make(chan error, 1)
	go func() { served <- srv.Start(sec) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	// An open Watch stream keeps GracefulStop waiting.
	stream, err := healthpb.NewHealthClient(conn).Watch(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = srv.Stop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)

	_, err = stream.Recv()
	assert.Error(t, err)
	assert.NoError(t, <-served)
}

func TestGRPCServer_Start_ListensAndServes(t *testing.T) {
	t.Parallel()

	gs := grpc.NewServer()
	srv := NewGRPCServer(gs, ":0")
	sec := mocks.NewSecurityLayer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	sec.On("Listen", "tcp", ":0").Return(ln, nil).Run(func(args mock.Arguments) { close(done) })

	stopped := make(chan struct{})
	go func() {
		_ = srv.Start(sec)
		close(stopped)
	}()
	<-done
	time.Sleep(10 * time.Millisecond)
	_ = srv.Stop(context.Background())
	<-stopped
}

func TestGRPCServer_Start_ListenError(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(grpc.NewServer(), ":0")
	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", ":0").Return(nil, assert.AnError)

	err := srv.Start(sec)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// startBufServer serves the full router over an in-memory listener and returns
// a JSON-codec client.
func startBufServer(t *testing.T, authService *mocks.AuthService, tokenService *mocks.TokenService) authv1.AuthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	r := router.New(authService, tokenService, identity.NewManager(), testutil.MakeNoopLogger())
	srv := NewGRPCServer(r.Register(), "bufnet")

	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", "bufnet").Return(lis, nil)

	stopped := make(chan struct{})
	go func() {
		_ = srv.Start(sec)
		close(stopped)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		r.Shutdown()
		_ = srv.Stop(context.Background())
		<-stopped
	})

	return authv1.NewAuthClient(conn)
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()

	st, ok := status.FromError(err)
	require.True(t, ok)
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

func TestGRPCServer_RoundTrip(t *testing.T) {
	identityID := uuid.New()
	expiresAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	authService := mocks.NewAuthService(t)
	tokenService := mocks.NewTokenService(t)
	client := startBufServer(t, authService, tokenService)

	t.Run("login issues a bearer token", func(t *testing.T) {
		authService.On("Login", mock.Anything, "alice@example.com", "hunter2").
			Return(model.BearerToken{AccessToken: "signed", TokenType: model.TokenTypeBearer, ExpiresAt: expiresAt}, nil).Once()

		resp, err := client.Login(context.Background(), &authv1.LoginRequest{Email: "alice@example.com", Password: "hunter2"})
		require.NoError(t, err)
		assert.Equal(t, "signed", resp.AccessToken)
		assert.Equal(t, model.TokenTypeBearer, resp.TokenType)
		assert.True(t, expiresAt.Equal(resp.ExpiresAt))
	})

	t.Run("banned login carries error info", func(t *testing.T) {
		authService.On("Login", mock.Anything, "mallory@example.com", "pw").
			Return(model.BearerToken{}, model.ErrAccountBanned).Once()

		_, err := client.Login(context.Background(), &authv1.LoginRequest{Email: "mallory@example.com", Password: "pw"})
		require.Error(t, err)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
		assert.Equal(t, "ACCOUNT_BANNED", reasonOf(t, err))
	})

	t.Run("me without token is rejected before the handler", func(t *testing.T) {
		_, err := client.Me(context.Background(), &authv1.MeRequest{})
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, "MISSING_TOKEN", reasonOf(t, err))
	})

	t.Run("me with invalid token", func(t *testing.T) {
		tokenService.On("GetIdentityID", mock.Anything, "forged").Return(uuid.Nil, assert.AnError).Once()

		ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer forged")
		_, err := client.Me(ctx, &authv1.MeRequest{})
		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, "INVALID_TOKEN", reasonOf(t, err))
	})

	t.Run("me with valid token returns private data", func(t *testing.T) {
		createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		tokenService.On("GetIdentityID", mock.Anything, "signed").Return(identityID, nil).Once()
		authService.On("Me", mock.Anything, identityID).
			Return(model.Identity{ID: identityID, Email: "alice@example.com", Username: "alice", CreatedAt: createdAt}, nil).Once()

		ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer signed")
		resp, err := client.Me(ctx, &authv1.MeRequest{})
		require.NoError(t, err)
		assert.Equal(t, identityID.String(), resp.ID)
		assert.Equal(t, "alice", resp.Username)
		assert.True(t, createdAt.Equal(resp.CreatedAt))
	})

	t.Run("reset request unavailable when dispatch fails", func(t *testing.T) {
		authService.On("RequestReset", mock.Anything, "alice@example.com").Return(model.ErrNotificationFailure).Once()

		_, err := client.RequestReset(context.Background(), &authv1.RequestResetRequest{Email: "alice@example.com"})
		require.Error(t, err)
		assert.Equal(t, codes.Unavailable, status.Code(err))
		assert.Equal(t, "NOTIFICATION_FAILURE", reasonOf(t, err))
	})
}
