package awsd

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"awsdocs/awsd/models"
	"awsdocs/errors"
)

var errNotConfigured = fmt.Errorf("not configured")

// configuredBucketMock answers every attribute call successfully.
func configuredBucketMock(names ...string) *MockS3Client {
	buckets := make([]s3types.Bucket, 0, len(names))
	for _, n := range names {
		buckets = append(buckets, s3types.Bucket{Name: aws.String(n)})
	}
	return &MockS3Client{
		ListBucketsFunc: func(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
			return &s3.ListBucketsOutput{Buckets: buckets}, nil
		},
		GetBucketLocationFunc: func(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
			return &s3.GetBucketLocationOutput{LocationConstraint: s3types.BucketLocationConstraintApNortheast2}, nil
		},
		GetBucketWebsiteFunc: func(ctx context.Context, params *s3.GetBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.GetBucketWebsiteOutput, error) {
			return &s3.GetBucketWebsiteOutput{}, nil
		},
		GetBucketVersioningFunc: func(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error) {
			return &s3.GetBucketVersioningOutput{
				Status:    s3types.BucketVersioningStatusEnabled,
				MFADelete: s3types.MFADeleteStatusDisabled,
			}, nil
		},
		GetBucketLifecycleConfigurationFunc: func(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
			return &s3.GetBucketLifecycleConfigurationOutput{
				Rules: []s3types.LifecycleRule{{ID: aws.String("a")}, {ID: aws.String("b")}},
			}, nil
		},
		GetBucketReplicationFunc: func(ctx context.Context, params *s3.GetBucketReplicationInput, optFns ...func(*s3.Options)) (*s3.GetBucketReplicationOutput, error) {
			return &s3.GetBucketReplicationOutput{ReplicationConfiguration: &s3types.ReplicationConfiguration{}}, nil
		},
		GetBucketEncryptionFunc: func(ctx context.Context, params *s3.GetBucketEncryptionInput, optFns ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error) {
			return &s3.GetBucketEncryptionOutput{
				ServerSideEncryptionConfiguration: &s3types.ServerSideEncryptionConfiguration{
					Rules: []s3types.ServerSideEncryptionRule{
						{ApplyServerSideEncryptionByDefault: &s3types.ServerSideEncryptionByDefault{
							SSEAlgorithm:   s3types.ServerSideEncryptionAwsKms,
							KMSMasterKeyID: aws.String("kms-1"),
						}},
					},
				},
			}, nil
		},
		GetPublicAccessBlockFunc: func(ctx context.Context, params *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error) {
			return &s3.GetPublicAccessBlockOutput{
				PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
					BlockPublicAcls:       aws.Bool(true),
					IgnorePublicAcls:      aws.Bool(true),
					BlockPublicPolicy:     aws.Bool(true),
					RestrictPublicBuckets: aws.Bool(true),
				},
			}, nil
		},
		GetBucketTaggingFunc: func(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
			return &s3.GetBucketTaggingOutput{
				TagSet: []s3types.Tag{{Key: aws.String("team"), Value: aws.String("infra")}},
			}, nil
		},
	}
}

func TestGetBuckets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *MockS3Client)
		check  func(t *testing.T, b models.Bucket)
	}{
		{
			name: "all attributes configured",
			check: func(t *testing.T, b models.Bucket) {
				assert.Equal(t, "ap-northeast-2", b.Region)
				assert.True(t, b.StaticWebsite)
				assert.True(t, b.VersioningEnabled)
				assert.False(t, b.MFADelete)
				assert.Equal(t, 2, b.LifecycleRules)
				assert.True(t, b.ReplicationEnabled)
				assert.True(t, b.CopySettingsEnabled)
				assert.True(t, b.Encrypted)
				assert.Equal(t, "kms-1", *b.KMSKeyID)
				assert.True(t, b.BlockPublicAccess)
				assert.Equal(t, []models.BucketTag{{Key: "team", Value: "infra"}}, b.Tags)
			},
		},
		{
			name: "encryption failure leaves other attributes intact",
			mutate: func(m *MockS3Client) {
				m.GetBucketEncryptionFunc = func(ctx context.Context, params *s3.GetBucketEncryptionInput, optFns ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error) {
					return nil, errNotConfigured
				}
			},
			check: func(t *testing.T, b models.Bucket) {
				assert.False(t, b.Encrypted)
				assert.Nil(t, b.KMSKeyID)
				assert.True(t, b.VersioningEnabled)
				assert.Equal(t, []models.BucketTag{{Key: "team", Value: "infra"}}, b.Tags)
			},
		},
		{
			name: "every attribute call fails",
			mutate: func(m *MockS3Client) {
				m.GetBucketLocationFunc = func(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
					return nil, errNotConfigured
				}
				m.GetBucketWebsiteFunc = func(ctx context.Context, params *s3.GetBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.GetBucketWebsiteOutput, error) {
					return nil, errNotConfigured
				}
				m.GetBucketVersioningFunc = func(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error) {
					return nil, errNotConfigured
				}
				m.GetBucketLifecycleConfigurationFunc = func(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
					return nil, errNotConfigured
				}
				m.GetBucketReplicationFunc = func(ctx context.Context, params *s3.GetBucketReplicationInput, optFns ...func(*s3.Options)) (*s3.GetBucketReplicationOutput, error) {
					return nil, errNotConfigured
				}
				m.GetBucketEncryptionFunc = func(ctx context.Context, params *s3.GetBucketEncryptionInput, optFns ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error) {
					return nil, errNotConfigured
				}
				m.GetPublicAccessBlockFunc = func(ctx context.Context, params *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error) {
					return nil, errNotConfigured
				}
				m.GetBucketTaggingFunc = func(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
					return nil, errNotConfigured
				}
			},
			check: func(t *testing.T, b models.Bucket) {
				assert.Equal(t, models.Bucket{
					Name:   "logs",
					Region: "Unknown",
					Tags:   []models.BucketTag{},
				}, b)
			},
		},
		{
			name: "empty location constraint means us-east-1",
			mutate: func(m *MockS3Client) {
				m.GetBucketLocationFunc = func(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
					return &s3.GetBucketLocationOutput{}, nil
				}
			},
			check: func(t *testing.T, b models.Bucket) {
				assert.Equal(t, "us-east-1", b.Region)
			},
		},
		{
			name: "partial public access block",
			mutate: func(m *MockS3Client) {
				m.GetPublicAccessBlockFunc = func(ctx context.Context, params *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error) {
					return &s3.GetPublicAccessBlockOutput{
						PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
							BlockPublicAcls: aws.Bool(true),
						},
					}, nil
				}
			},
			check: func(t *testing.T, b models.Bucket) {
				assert.False(t, b.BlockPublicAccess)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := configuredBucketMock("logs")
			if tt.mutate != nil {
				tt.mutate(mock)
			}
			client := NewAwsClient("ap-northeast-2", nil, mock, nil)

			got, err := GetBuckets(context.Background(), client)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "logs", got[0].Name)
			tt.check(t, got[0])
		})
	}
}

func TestGetBuckets_PreservesOrder(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	client := NewAwsClient("ap-northeast-2", nil, configuredBucketMock(names...), nil)

	got, err := GetBuckets(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, got, len(names))
	for i, n := range names {
		assert.Equal(t, n, got[i].Name)
	}
}

func TestGetBuckets_ListFailure(t *testing.T) {
	mock := configuredBucketMock()
	mock.ListBucketsFunc = func(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
		return nil, fmt.Errorf("access denied")
	}
	client := NewAwsClient("ap-northeast-2", nil, mock, nil)

	got, err := GetBuckets(context.Background(), client)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, errors.ErrAWSListing))
	assert.Contains(t, err.Error(), "Failed to list buckets")
	assert.Contains(t, err.Error(), "access denied")
}

func TestAttribute(t *testing.T) {
	ok := fetched(3)
	assert.True(t, ok.Fetched())
	assert.Equal(t, 3, ok.Value)

	missing := absent(0, errNotConfigured)
	assert.False(t, missing.Fetched())
	assert.Equal(t, 0, missing.Value)
	assert.Equal(t, errNotConfigured, missing.Reason)
}

func TestGetBuckets_BoundedConcurrency(t *testing.T) {
	names := make([]string, 200)
	for i := range names {
		names[i] = fmt.Sprintf("bucket-%03d", i)
	}

	var inFlight, peak int32
	mock := configuredBucketMock(names...)
	mock.GetBucketLocationFunc = func(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return &s3.GetBucketLocationOutput{}, nil
	}
	client := NewAwsClient("ap-northeast-2", nil, mock, nil)

	got, err := GetBuckets(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, got, len(names))
	assert.Equal(t, "bucket-199", got[199].Name)
	assert.Equal(t, "us-east-1", got[199].Region)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(BucketConcurrency))
	assert.Positive(t, atomic.LoadInt32(&peak))
}

func TestDegrade_LogsAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	degrade(logger, "versioning", nil)
	degrade(logger, "tags", errNotConfigured)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "tags", entry.ContextMap()["attribute"])
	assert.Equal(t, "not configured", entry.ContextMap()["error"])
}
