// Package session exchanges a role ARN for temporary credentials and keeps
// them under an opaque session id.
package session

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"awsdocs/awsd"
	"awsdocs/errors"
	"awsdocs/metrics"
)

const (
	packageName = "session"

	roleSessionPrefix = "aws-doc-app-"
)

var errNoCredentials = stderrors.New("response carried no credentials")

// STSProvider hands out a region-scoped STS client.
type STSProvider interface {
	STS(ctx context.Context, region string) (awsd.STSAPI, error)
}

// Manager performs role assumptions and resolves sessions.
type Manager struct {
	provider      STSProvider
	store         Store
	defaultRegion string
	logger        *zap.Logger
}

// NewManager creates a Manager. An empty region in Assume falls back to
// defaultRegion.
func NewManager(provider STSProvider, store Store, defaultRegion string, logger *zap.Logger) *Manager {
	return &Manager{
		provider:      provider,
		store:         store,
		defaultRegion: defaultRegion,
		logger:        logger.With(zap.String("package", packageName)),
	}
}

// Assume exchanges roleARN for temporary credentials and stores them under a
// fresh session id. Every call creates a new session, even for the same role.
func (m *Manager) Assume(ctx context.Context, roleARN, region string) (string, Credentials, error) {
	roleARN = strings.TrimSpace(roleARN)
	if roleARN == "" {
		return "", Credentials{}, errors.New(errors.ErrBadRequest, "role_arn is required", nil, nil)
	}
	region = strings.TrimSpace(region)
	if region == "" {
		region = m.defaultRegion
	}

	logger := m.logger.With(
		zap.String("function", "Assume"),
		zap.String("role_arn", roleARN),
		zap.String("region", region),
	)
	errContext := map[string]interface{}{
		"role_arn": roleARN,
		"region":   region,
	}

	client, err := m.provider.STS(ctx, region)
	if err != nil {
		logger.Error("Failed to create STS client",
			zap.String("operation", "assume_role"),
			zap.Error(err),
		)
		return "", Credentials{}, errors.New(errors.ErrRoleAssumption, "Failed to assume role", errContext, err)
	}

	out, err := client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(roleSessionPrefix + uuid.New().String()),
	})
	if err != nil {
		logger.Error("Role assumption failed",
			zap.String("operation", "assume_role"),
			zap.Error(err),
		)
		return "", Credentials{}, errors.New(errors.ErrRoleAssumption, "Failed to assume role", errContext, err)
	}
	if out.Credentials == nil {
		return "", Credentials{}, errors.New(errors.ErrRoleAssumption, "Failed to assume role", errContext, errNoCredentials)
	}

	creds := Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Expiration:      formatExpiration(out.Credentials.Expiration),
		Region:          region,
	}

	id := uuid.New().String()
	m.store.Put(id, creds)
	metrics.SessionsCreated.Inc()

	logger.Info("Session created",
		zap.String("operation", "assume_role"),
		zap.String("session_id", id),
		zap.String("expiration", creds.Expiration),
	)
	return id, creds, nil
}

// Lookup returns the credentials stored under id.
func (m *Manager) Lookup(id string) (Credentials, error) {
	creds, ok := m.store.Get(id)
	if !ok {
		return Credentials{}, errors.New(errors.ErrSessionNotFound, "Session not found",
			map[string]interface{}{
				"session_id": id,
			}, nil)
	}
	return creds, nil
}

func formatExpiration(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
