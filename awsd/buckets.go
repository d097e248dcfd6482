package awsd

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"awsdocs/awsd/models"
	"awsdocs/metrics"
)

const (
	defaultBucketRegion = "us-east-1"
	unknownBucketRegion = "Unknown"
)

// BucketConcurrency caps how many buckets are described at once. Each bucket
// costs eight S3 calls, and throttled calls degrade to defaults.
var BucketConcurrency = 4

var errNoEncryptionRules = stderrors.New("encryption configuration has no default rule")

// Attribute is the outcome of one per-bucket lookup: either a fetched value or
// the documented default together with the reason the lookup failed.
type Attribute[T any] struct {
	Value  T
	Reason error
}

// Fetched reports whether the value came from the provider.
func (a Attribute[T]) Fetched() bool {
	return a.Reason == nil
}

func fetched[T any](v T) Attribute[T] {
	return Attribute[T]{Value: v}
}

func absent[T any](def T, reason error) Attribute[T] {
	return Attribute[T]{Value: def, Reason: reason}
}

type versioning struct {
	Enabled   bool
	MFADelete bool
}

type encryption struct {
	Enabled  bool
	KMSKeyID *string
}

// GetBuckets lists every bucket and aggregates its attributes. Only a failure
// of the listing call itself is returned; attribute failures degrade.
func GetBuckets(ctx context.Context, awS *AwsClient) ([]models.Bucket, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "GetBuckets"),
		zap.String("region", awS.Region),
	)

	output, err := awS.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		logger.Error("Failed to list buckets",
			zap.String("operation", "list_buckets"),
			zap.Error(err),
		)
		return nil, Classify(err, "Failed to list buckets",
			map[string]interface{}{
				"region": awS.Region,
			})
	}

	result := make([]models.Bucket, len(output.Buckets))
	var g errgroup.Group
	g.SetLimit(max(BucketConcurrency, 1))
	for idx, bucket := range output.Buckets {
		idx, name := idx, aws.ToString(bucket.Name)
		g.Go(func() error {
			result[idx] = describeBucket(ctx, awS, name, logger)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("Buckets listed",
		zap.String("operation", "list_buckets"),
		zap.Int("count", len(result)),
	)
	return result, nil
}

func describeBucket(ctx context.Context, awS *AwsClient, name string, logger *zap.Logger) models.Bucket {
	logger = logger.With(zap.String("bucket", name))
	logger.Debug("Fetching bucket attributes",
		zap.String("operation", "describe_bucket"),
	)

	region := bucketRegion(ctx, awS.s3, name)
	website := bucketWebsite(ctx, awS.s3, name)
	version := bucketVersioning(ctx, awS.s3, name)
	lifecycle := bucketLifecycleRules(ctx, awS.s3, name)
	replication := bucketReplication(ctx, awS.s3, name)
	enc := bucketEncryption(ctx, awS.s3, name)
	publicBlock := bucketPublicAccessBlock(ctx, awS.s3, name)
	tags := bucketTags(ctx, awS.s3, name)

	degrade(logger, "region", region.Reason)
	degrade(logger, "static_website", website.Reason)
	degrade(logger, "versioning", version.Reason)
	degrade(logger, "lifecycle", lifecycle.Reason)
	degrade(logger, "replication", replication.Reason)
	degrade(logger, "encryption", enc.Reason)
	degrade(logger, "public_access_block", publicBlock.Reason)
	degrade(logger, "tags", tags.Reason)

	return models.Bucket{
		Name:                name,
		Region:              region.Value,
		StaticWebsite:       website.Value,
		VersioningEnabled:   version.Value.Enabled,
		MFADelete:           version.Value.MFADelete,
		LifecycleRules:      lifecycle.Value,
		ReplicationEnabled:  replication.Value,
		CopySettingsEnabled: replication.Value,
		Encrypted:           enc.Value.Enabled,
		KMSKeyID:            enc.Value.KMSKeyID,
		BlockPublicAccess:   publicBlock.Value,
		Tags:                tags.Value,
	}
}

func degrade(logger *zap.Logger, attribute string, reason error) {
	if reason == nil {
		return
	}
	metrics.DegradedAttributes.WithLabelValues(attribute).Inc()
	logger.Warn("Bucket attribute unavailable, using default",
		zap.String("operation", "describe_bucket"),
		zap.String("attribute", attribute),
		zap.Error(reason),
	)
}

func bucketRegion(ctx context.Context, api S3API, name string) Attribute[string] {
	out, err := api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(name)})
	if err != nil {
		return absent(unknownBucketRegion, err)
	}
	if out.LocationConstraint == "" {
		return fetched(defaultBucketRegion)
	}
	return fetched(string(out.LocationConstraint))
}

func bucketWebsite(ctx context.Context, api S3API, name string) Attribute[bool] {
	if _, err := api.GetBucketWebsite(ctx, &s3.GetBucketWebsiteInput{Bucket: aws.String(name)}); err != nil {
		return absent(false, err)
	}
	return fetched(true)
}

func bucketVersioning(ctx context.Context, api S3API, name string) Attribute[versioning] {
	out, err := api.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(name)})
	if err != nil {
		return absent(versioning{}, err)
	}
	return fetched(versioning{
		Enabled:   out.Status == s3types.BucketVersioningStatusEnabled,
		MFADelete: out.MFADelete == s3types.MFADeleteStatusEnabled,
	})
}

func bucketLifecycleRules(ctx context.Context, api S3API, name string) Attribute[int] {
	out, err := api.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{Bucket: aws.String(name)})
	if err != nil {
		return absent(0, err)
	}
	return fetched(len(out.Rules))
}

func bucketReplication(ctx context.Context, api S3API, name string) Attribute[bool] {
	out, err := api.GetBucketReplication(ctx, &s3.GetBucketReplicationInput{Bucket: aws.String(name)})
	if err != nil {
		return absent(false, err)
	}
	return fetched(out.ReplicationConfiguration != nil)
}

func bucketEncryption(ctx context.Context, api S3API, name string) Attribute[encryption] {
	out, err := api.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(name)})
	if err != nil {
		return absent(encryption{}, err)
	}
	if out.ServerSideEncryptionConfiguration == nil || len(out.ServerSideEncryptionConfiguration.Rules) == 0 {
		return absent(encryption{}, errNoEncryptionRules)
	}
	def := out.ServerSideEncryptionConfiguration.Rules[0].ApplyServerSideEncryptionByDefault
	if def == nil {
		return absent(encryption{}, errNoEncryptionRules)
	}
	return fetched(encryption{Enabled: true, KMSKeyID: def.KMSMasterKeyID})
}

func bucketPublicAccessBlock(ctx context.Context, api S3API, name string) Attribute[bool] {
	out, err := api.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(name)})
	if err != nil {
		return absent(false, err)
	}
	conf := out.PublicAccessBlockConfiguration
	if conf == nil {
		return fetched(false)
	}
	blocked := aws.ToBool(conf.BlockPublicAcls) &&
		aws.ToBool(conf.IgnorePublicAcls) &&
		aws.ToBool(conf.BlockPublicPolicy) &&
		aws.ToBool(conf.RestrictPublicBuckets)
	return fetched(blocked)
}

func bucketTags(ctx context.Context, api S3API, name string) Attribute[[]models.BucketTag] {
	out, err := api.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
	if err != nil {
		return absent(make([]models.BucketTag, 0), err)
	}
	tags := make([]models.BucketTag, 0, len(out.TagSet))
	for _, tag := range out.TagSet {
		tags = append(tags, models.BucketTag{
			Key:   aws.ToString(tag.Key),
			Value: aws.ToString(tag.Value),
		})
	}
	return fetched(tags)
}
