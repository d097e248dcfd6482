package awsd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"awsdocs/awsd/models"
	"awsdocs/sgjoin"
)

// GetSecurityGroupRules describes the security groups only, for exports
// that do not need instance references.
func GetSecurityGroupRules(ctx context.Context, awS *AwsClient) ([]sgjoin.Group, error) {
	output, err := awS.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, Classify(err, "Failed to describe security groups from AWS",
			map[string]interface{}{
				"region": awS.Region,
			})
	}
	return parseGroups(output.SecurityGroups), nil
}

// GetSecurityGroups describes groups and instances and joins them.
func GetSecurityGroups(ctx context.Context, awS *AwsClient) ([]models.SecurityGroup, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "GetSecurityGroups"),
		zap.String("region", awS.Region),
	)

	groups, err := GetSecurityGroupRules(ctx, awS)
	if err != nil {
		logger.Error("Error describing security groups",
			zap.String("operation", "describe_security_groups"),
			zap.Error(err),
		)
		return nil, err
	}

	raw, err := describeInstances(ctx, awS)
	if err != nil {
		logger.Error("Error describing instances",
			zap.String("operation", "describe_instances"),
			zap.Error(err),
		)
		return nil, err
	}

	result := sgjoin.Join(groups, parseJoinInstances(raw), awS.Region)

	logger.Info("Security groups joined",
		zap.String("operation", "join_security_groups"),
		zap.Int("groups", len(result)),
		zap.Int("instances", len(raw)),
	)
	return result, nil
}

func parseGroups(groups []types.SecurityGroup) []sgjoin.Group {
	result := make([]sgjoin.Group, 0, len(groups))
	for _, g := range groups {
		result = append(result, sgjoin.Group{
			ID:       aws.ToString(g.GroupId),
			Name:     aws.ToString(g.GroupName),
			VpcID:    aws.ToString(g.VpcId),
			Inbound:  parsePermissions(g.IpPermissions),
			Outbound: parsePermissions(g.IpPermissionsEgress),
		})
	}
	return result
}

func parsePermissions(perms []types.IpPermission) []sgjoin.Permission {
	result := make([]sgjoin.Permission, 0, len(perms))
	for _, p := range perms {
		cidrs := make([]string, 0, len(p.IpRanges))
		for _, r := range p.IpRanges {
			cidrs = append(cidrs, aws.ToString(r.CidrIp))
		}
		result = append(result, sgjoin.Permission{
			Protocol: p.IpProtocol,
			FromPort: p.FromPort,
			CIDRs:    cidrs,
		})
	}
	return result
}

func parseJoinInstances(instances []types.Instance) []sgjoin.Instance {
	result := make([]sgjoin.Instance, 0, len(instances))
	for _, inst := range instances {
		groupIDs := make([]string, 0, len(inst.SecurityGroups))
		for _, g := range inst.SecurityGroups {
			groupIDs = append(groupIDs, aws.ToString(g.GroupId))
		}
		result = append(result, sgjoin.Instance{
			ID:        aws.ToString(inst.InstanceId),
			Name:      nameTag(inst.Tags),
			PrivateIP: inst.PrivateIpAddress,
			PublicIP:  inst.PublicIpAddress,
			GroupIDs:  groupIDs,
		})
	}
	return result
}
