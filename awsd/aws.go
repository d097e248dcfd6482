package awsd

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"awsdocs/configuration"
	"awsdocs/errors"
)

const (
	packageName = "awsd"

	// maxCachedRegions bounds the per-region client cache; the least recently
	// used region is rebuilt on its next request.
	maxCachedRegions = 32
)

// EC2API is the subset of the EC2 client used by the inventory services.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error)
}

// S3API is the subset of the S3 client used to build bucket documents.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	GetBucketWebsite(ctx context.Context, params *s3.GetBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.GetBucketWebsiteOutput, error)
	GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
	GetBucketReplication(ctx context.Context, params *s3.GetBucketReplicationInput, optFns ...func(*s3.Options)) (*s3.GetBucketReplicationOutput, error)
	GetBucketEncryption(ctx context.Context, params *s3.GetBucketEncryptionInput, optFns ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error)
	GetPublicAccessBlock(ctx context.Context, params *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
}

// STSAPI is the subset of the STS client used for role assumption.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// AwsClient bundles the service clients for one region.
type AwsClient struct {
	Region string
	ec2    EC2API
	s3     S3API
	sts    STSAPI
}

// NewAwsClient assembles a client from already-built service clients.
func NewAwsClient(region string, ec2Client EC2API, s3Client S3API, stsClient STSAPI) *AwsClient {
	return &AwsClient{
		Region: region,
		ec2:    ec2Client,
		s3:     s3Client,
		sts:    stsClient,
	}
}

// NewAwsClientWithConfig builds service clients from an SDK config. A non-empty
// endpoint overrides the resolved endpoint (LocalStack and similar).
func NewAwsClientWithConfig(cfg aws.Config, endpoint string) *AwsClient {
	return &AwsClient{
		Region: cfg.Region,
		ec2: ec2.NewFromConfig(cfg, func(o *ec2.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
		s3: s3.NewFromConfig(cfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		}),
		sts: sts.NewFromConfig(cfg, func(o *sts.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
	}
}

// ClientFactory hands out region-scoped clients.
type ClientFactory interface {
	ForRegion(ctx context.Context, region string) (*AwsClient, error)
}

// SDKFactory loads the default credential chain once per region and caches
// the resulting clients.
type SDKFactory struct {
	cfg    *configuration.Config
	logger *zap.Logger

	mu      sync.Mutex
	clients *lru.Cache
}

// NewSDKFactory creates a factory backed by the AWS SDK
func NewSDKFactory(cfg *configuration.Config, logger *zap.Logger) *SDKFactory {
	// lru.New only fails for a non-positive size.
	clients, _ := lru.New(maxCachedRegions)
	return &SDKFactory{
		cfg:     cfg,
		logger:  logger.With(zap.String("package", packageName)),
		clients: clients,
	}
}

// ForRegion implements ClientFactory
func (f *SDKFactory) ForRegion(ctx context.Context, region string) (*AwsClient, error) {
	if err := ValidateRegion(region); err != nil {
		return nil, err
	}
	if client, ok := f.clients.Get(region); ok {
		return client.(*AwsClient), nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Another caller may have built it while we waited.
	if client, ok := f.clients.Get(region); ok {
		return client.(*AwsClient), nil
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(f.cfg.ProviderTimeoutDuration())),
	}
	if f.cfg.AccessKeyID != "" && f.cfg.AccessSecret != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.cfg.AccessKeyID, f.cfg.AccessSecret, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New(errors.ErrAWSClient, "failed to load AWS config",
			map[string]interface{}{
				"region": region,
			}, err)
	}

	client := NewAwsClientWithConfig(awsCfg, f.cfg.EndpointURL)
	if evicted := f.clients.Add(region, client); evicted {
		f.logger.Debug("Evicted least recently used region client",
			zap.String("operation", "aws_client_creation"),
		)
	}

	f.logger.Info("AWS client created",
		zap.String("operation", "aws_client_creation"),
		zap.String("region", region),
		zap.Bool("endpoint_override", f.cfg.EndpointURL != ""),
	)
	return client, nil
}

// Cached reports how many region clients are currently held.
func (f *SDKFactory) Cached() int {
	return f.clients.Len()
}
