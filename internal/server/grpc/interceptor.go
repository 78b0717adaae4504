package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/taskauth/internal/logging"
	"github.com/dmitrijs2005/taskauth/internal/server/auth"
	"github.com/dmitrijs2005/taskauth/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// HealthMethodPrefix covers the standard health service, which is public.
const HealthMethodPrefix = "/grpc.health.v1.Health/"

// UserIDFromContext returns the principal stored by AuthInterceptor.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// AuthInterceptor resolves the caller from the "authorization" metadata
// entry ("Bearer <token>") for every method except the public ones, and
// rejects unauthenticated calls with codes.Unauthenticated.
type AuthInterceptor struct {
	verifier      auth.TokenVerifier
	publicMethods []string
	logger        logging.Logger
	metrics       *metrics.Metrics
}

// NewAuthInterceptor builds an interceptor. publicMethods holds full method
// names or, when ending in "/", service prefixes that skip authentication.
func NewAuthInterceptor(v auth.TokenVerifier, l logging.Logger, m *metrics.Metrics, publicMethods ...string) *AuthInterceptor {
	if l == nil {
		l = logging.Nop{}
	}
	return &AuthInterceptor{
		verifier:      v,
		publicMethods: publicMethods,
		logger:        l.With("module", "grpc_auth"),
		metrics:       m,
	}
}

func (i *AuthInterceptor) isPublic(fullMethod string) bool {
	for _, p := range i.publicMethods {
		if fullMethod == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(fullMethod, p)) {
			return true
		}
	}
	return false
}

func (i *AuthInterceptor) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	userID, err := auth.ResolvePrincipal(i.verifier, md)
	reason := auth.FailureReason(err)
	i.metrics.RecordTokenVerification(reason)
	if err != nil {
		i.logger.Debug(ctx, "call not authenticated", "method", fullMethod, "reason", reason)
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return context.WithValue(ctx, userIDKey, userID), nil
}

// Unary is the grpc.UnaryServerInterceptor.
func (i *AuthInterceptor) Unary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if i.isPublic(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := i.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

// Stream is the grpc.StreamServerInterceptor.
func (i *AuthInterceptor) Stream(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if i.isPublic(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := i.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authenticatedStream{ServerStream: ss, ctx: ctx})
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context { return s.ctx }
