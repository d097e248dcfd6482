package awsd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"awsdocs/awsd/models"
)

// GetNetwork describes the VPCs, subnets and NAT gateways of the client's region.
func GetNetwork(ctx context.Context, awS *AwsClient) (*models.NetworkDocument, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "GetNetwork"),
		zap.String("region", awS.Region),
	)
	errContext := map[string]interface{}{"region": awS.Region}

	vpcOut, err := awS.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		logger.Error("Failed to describe VPCs",
			zap.String("operation", "describe_vpcs"),
			zap.Error(err),
		)
		return nil, Classify(err, "Failed to describe VPCs", errContext)
	}

	subnetOut, err := awS.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{})
	if err != nil {
		logger.Error("Failed to describe subnets",
			zap.String("operation", "describe_subnets"),
			zap.Error(err),
		)
		return nil, Classify(err, "Failed to describe subnets", errContext)
	}

	natOut, err := awS.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{})
	if err != nil {
		logger.Error("Failed to describe NAT gateways",
			zap.String("operation", "describe_nat_gateways"),
			zap.Error(err),
		)
		return nil, Classify(err, "Failed to describe NAT gateways", errContext)
	}

	doc := &models.NetworkDocument{
		VPCs:        parseVPCs(vpcOut.Vpcs),
		Subnets:     parseSubnets(subnetOut.Subnets),
		NATGateways: parseNATGateways(natOut.NatGateways),
	}

	logger.Info("Network listed",
		zap.String("operation", "describe_network"),
		zap.Int("vpcs", len(doc.VPCs)),
		zap.Int("subnets", len(doc.Subnets)),
		zap.Int("nat_gateways", len(doc.NATGateways)),
	)
	return doc, nil
}

func parseVPCs(vpcs []types.Vpc) []models.VPC {
	result := make([]models.VPC, 0, len(vpcs))
	for _, vpc := range vpcs {
		name := displayName(vpc.Tags)
		result = append(result, models.VPC{
			VPC:       name,
			Name:      name,
			VpcID:     aws.ToString(vpc.VpcId),
			CIDRBlock: aws.ToString(vpc.CidrBlock),
			Tags:      parseTags(vpc.Tags),
		})
	}
	return result
}

func parseSubnets(subnets []types.Subnet) []models.Subnet {
	result := make([]models.Subnet, 0, len(subnets))
	for _, subnet := range subnets {
		result = append(result, models.Subnet{
			SubnetName:       displayName(subnet.Tags),
			SubnetID:         aws.ToString(subnet.SubnetId),
			CIDRBlock:        aws.ToString(subnet.CidrBlock),
			VpcID:            aws.ToString(subnet.VpcId),
			AvailabilityZone: aws.ToString(subnet.AvailabilityZone),
			AvailableIPs:     aws.ToInt32(subnet.AvailableIpAddressCount),
			Tags:             parseTags(subnet.Tags),
		})
	}
	return result
}

func parseNATGateways(gateways []types.NatGateway) []models.NATGateway {
	result := make([]models.NATGateway, 0, len(gateways))
	for _, nat := range gateways {
		doc := models.NATGateway{
			NATName:            displayName(nat.Tags),
			NATGatewayID:       aws.ToString(nat.NatGatewayId),
			VpcID:              aws.ToString(nat.VpcId),
			Type:               optionalString(string(nat.ConnectivityType)),
			State:              optionalString(string(nat.State)),
			SubnetID:           aws.ToString(nat.SubnetId),
			ElasticIP:          NotAvailable,
			PrivateIP:          NotAvailable,
			NetworkInterfaceID: NotAvailable,
			CreatedAt:          isoTime(nat.CreateTime),
			Tags:               parseTags(nat.Tags),
		}
		// Only the first address is documented.
		if len(nat.NatGatewayAddresses) > 0 {
			addr := nat.NatGatewayAddresses[0]
			doc.ElasticIP = valueOr(addr.PublicIp, NotAvailable)
			doc.PrivateIP = valueOr(addr.PrivateIp, NotAvailable)
			doc.NetworkInterfaceID = valueOr(addr.NetworkInterfaceId, NotAvailable)
		}
		result = append(result, doc)
	}
	return result
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
