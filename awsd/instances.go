package awsd

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"awsdocs/awsd/models"
	"awsdocs/metrics"
)

var errVolumeNotFound = stderrors.New("volume not found")

// describeInstances returns every instance across all reservations.
func describeInstances(ctx context.Context, awS *AwsClient) ([]types.Instance, error) {
	output, err := awS.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, Classify(err, "Failed to describe EC2 instances",
			map[string]interface{}{
				"region": awS.Region,
			})
	}

	var instances []types.Instance
	for _, reservation := range output.Reservations {
		instances = append(instances, reservation.Instances...)
	}
	return instances, nil
}

// GetInstances fetches and normalizes every EC2 instance in the client's region.
func GetInstances(ctx context.Context, awS *AwsClient) ([]models.Instance, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "GetInstances"),
		zap.String("region", awS.Region),
	)

	raw, err := describeInstances(ctx, awS)
	if err != nil {
		logger.Error("Failed to describe instances",
			zap.String("operation", "describe_instances"),
			zap.Error(err),
		)
		return nil, err
	}

	result := make([]models.Instance, 0, len(raw))
	for _, inst := range raw {
		result = append(result, normalizeInstance(ctx, awS, inst, logger))
	}

	logger.Info("Instances listed",
		zap.String("operation", "describe_instances"),
		zap.Int("count", len(result)),
	)
	return result, nil
}

func normalizeInstance(ctx context.Context, awS *AwsClient, i types.Instance, logger *zap.Logger) models.Instance {
	doc := models.Instance{
		InstanceID:     aws.ToString(i.InstanceId),
		Name:           nameTag(i.Tags),
		InstanceType:   string(i.InstanceType),
		OS:             i.PlatformDetails,
		VpcID:          i.VpcId,
		SubnetID:       i.SubnetId,
		PrivateIP:      i.PrivateIpAddress,
		PublicIP:       i.PublicIpAddress,
		SecurityGroups: parseSecurityGroups(i.SecurityGroups),
		KeyPair:        i.KeyName,
		AMIID:          i.ImageId,
		LaunchTime:     isoTime(i.LaunchTime),
		DataVolumes:    make([]models.Volume, 0),
	}
	if i.State != nil {
		doc.State = string(i.State.Name)
	}
	if i.Placement != nil {
		doc.AZ = i.Placement.AvailabilityZone
	}

	rootDevice := aws.ToString(i.RootDeviceName)
	for _, mapping := range i.BlockDeviceMappings {
		if mapping.Ebs == nil || aws.ToString(mapping.Ebs.VolumeId) == "" {
			continue
		}
		volumeID := aws.ToString(mapping.Ebs.VolumeId)

		vol, err := describeVolume(ctx, awS, volumeID)
		if err != nil {
			// A failed lookup drops this volume only; the instance document stays.
			metrics.DegradedAttributes.WithLabelValues("volume").Inc()
			logger.Warn("Volume lookup failed",
				zap.String("operation", "describe_volumes"),
				zap.String("instance_id", doc.InstanceID),
				zap.String("volume_id", volumeID),
				zap.Error(err),
			)
			continue
		}

		if aws.ToString(mapping.DeviceName) == rootDevice {
			doc.RootVolumeID = aws.String(vol.VolumeID)
			doc.RootVolumeType = vol.Type
			doc.RootVolumeSize = vol.SizeGB
			doc.KMSKeyID = vol.KMSKeyID
		} else {
			doc.DataVolumes = append(doc.DataVolumes, vol)
		}
	}

	return doc
}

func describeVolume(ctx context.Context, awS *AwsClient, volumeID string) (models.Volume, error) {
	output, err := awS.ec2.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{
		VolumeIds: []string{volumeID},
	})
	if err != nil {
		return models.Volume{}, err
	}
	if len(output.Volumes) == 0 {
		return models.Volume{}, errVolumeNotFound
	}

	v := output.Volumes[0]
	return models.Volume{
		VolumeID: volumeID,
		SizeGB:   v.Size,
		Type:     optionalString(string(v.VolumeType)),
		KMSKeyID: v.KmsKeyId,
	}, nil
}

// Helper function to parse security groups
func parseSecurityGroups(groups []types.GroupIdentifier) []models.SecurityGroupRef {
	result := make([]models.SecurityGroupRef, 0, len(groups))
	for _, group := range groups {
		result = append(result, models.SecurityGroupRef{
			GroupID:   aws.ToString(group.GroupId),
			GroupName: aws.ToString(group.GroupName),
		})
	}
	return result
}
