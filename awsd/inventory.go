package awsd

import (
	"context"

	"awsdocs/awsd/models"
	"awsdocs/errors"
	"awsdocs/metrics"
	"awsdocs/sgjoin"
)

// Inventory resolves a region-scoped client per call and runs one listing
// operation against it.
type Inventory struct {
	factory ClientFactory
}

// NewInventory creates an Inventory over the given client factory
func NewInventory(factory ClientFactory) *Inventory {
	return &Inventory{factory: factory}
}

// Instances lists the instance documents of a region.
func (inv *Inventory) Instances(ctx context.Context, region string) ([]models.Instance, error) {
	client, err := inv.factory.ForRegion(ctx, region)
	if err != nil {
		return nil, record("ec2", err)
	}
	out, err := GetInstances(ctx, client)
	return out, record("ec2", err)
}

// Network returns the VPC, subnet and NAT gateway document of a region.
func (inv *Inventory) Network(ctx context.Context, region string) (*models.NetworkDocument, error) {
	client, err := inv.factory.ForRegion(ctx, region)
	if err != nil {
		return nil, record("network", err)
	}
	out, err := GetNetwork(ctx, client)
	return out, record("network", err)
}

// Buckets lists the bucket documents visible from a region.
func (inv *Inventory) Buckets(ctx context.Context, region string) ([]models.Bucket, error) {
	client, err := inv.factory.ForRegion(ctx, region)
	if err != nil {
		return nil, record("s3", err)
	}
	out, err := GetBuckets(ctx, client)
	return out, record("s3", err)
}

// SecurityGroups returns the joined security groups of a region.
func (inv *Inventory) SecurityGroups(ctx context.Context, region string) ([]models.SecurityGroup, error) {
	client, err := inv.factory.ForRegion(ctx, region)
	if err != nil {
		return nil, record("security-groups", err)
	}
	out, err := GetSecurityGroups(ctx, client)
	return out, record("security-groups", err)
}

// SecurityGroupRules returns the unjoined security groups of a region.
func (inv *Inventory) SecurityGroupRules(ctx context.Context, region string) ([]sgjoin.Group, error) {
	client, err := inv.factory.ForRegion(ctx, region)
	if err != nil {
		return nil, record("security-groups", err)
	}
	out, err := GetSecurityGroupRules(ctx, client)
	return out, record("security-groups", err)
}

// STS returns the STS client of a region.
func (inv *Inventory) STS(ctx context.Context, region string) (STSAPI, error) {
	client, err := inv.factory.ForRegion(ctx, region)
	if err != nil {
		return nil, record("auth", err)
	}
	return client.sts, nil
}

func record(service string, err error) error {
	if err == nil {
		return nil
	}
	errType := errors.ErrAWSListing
	if customErr, ok := errors.As(err); ok {
		errType = customErr.Type
	}
	metrics.ProviderErrors.WithLabelValues(service, string(errType)).Inc()
	return err
}
