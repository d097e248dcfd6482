package server

import (
	"context"

	"awsdocs/awsd/models"
	"awsdocs/session"
	"awsdocs/sgjoin"
)

// InventoryService lists provider resources for one region.
type InventoryService interface {
	Instances(ctx context.Context, region string) ([]models.Instance, error)
	Network(ctx context.Context, region string) (*models.NetworkDocument, error)
	Buckets(ctx context.Context, region string) ([]models.Bucket, error)
	SecurityGroups(ctx context.Context, region string) ([]models.SecurityGroup, error)
	SecurityGroupRules(ctx context.Context, region string) ([]sgjoin.Group, error)
}

// SessionService assumes roles and resolves the resulting sessions.
type SessionService interface {
	Assume(ctx context.Context, roleARN, region string) (string, session.Credentials, error)
	Lookup(id string) (session.Credentials, error)
}
