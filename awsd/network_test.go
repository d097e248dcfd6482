package awsd

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awsdocs/awsd/models"
	"awsdocs/errors"
)

func networkMock() *MockEC2Client {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	return &MockEC2Client{
		DescribeVpcsFunc: func(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
			return &ec2.DescribeVpcsOutput{Vpcs: []types.Vpc{
				{
					VpcId:     aws.String("vpc-1"),
					CidrBlock: aws.String("10.0.0.0/16"),
					Tags:      []types.Tag{{Key: aws.String("Name"), Value: aws.String("main")}},
				},
				{VpcId: aws.String("vpc-2"), CidrBlock: aws.String("10.1.0.0/16")},
			}}, nil
		},
		DescribeSubnetsFunc: func(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
			return &ec2.DescribeSubnetsOutput{Subnets: []types.Subnet{
				{
					SubnetId:                aws.String("subnet-1"),
					CidrBlock:               aws.String("10.0.1.0/24"),
					VpcId:                   aws.String("vpc-1"),
					AvailabilityZone:        aws.String("ap-northeast-2a"),
					AvailableIpAddressCount: aws.Int32(251),
				},
			}}, nil
		},
		DescribeNatGatewaysFunc: func(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
			return &ec2.DescribeNatGatewaysOutput{NatGateways: []types.NatGateway{
				{
					NatGatewayId:     aws.String("nat-1"),
					VpcId:            aws.String("vpc-1"),
					SubnetId:         aws.String("subnet-1"),
					ConnectivityType: types.ConnectivityTypePublic,
					State:            types.NatGatewayStateAvailable,
					CreateTime:       &created,
					NatGatewayAddresses: []types.NatGatewayAddress{
						{
							PublicIp:           aws.String("3.3.3.3"),
							PrivateIp:          aws.String("10.0.1.5"),
							NetworkInterfaceId: aws.String("eni-1"),
						},
						{PublicIp: aws.String("4.4.4.4")},
					},
					Tags: []types.Tag{{Key: aws.String("Name"), Value: aws.String("egress")}},
				},
				{NatGatewayId: aws.String("nat-2"), VpcId: aws.String("vpc-2")},
			}}, nil
		},
	}
}

func TestGetNetwork(t *testing.T) {
	client := NewAwsClient("ap-northeast-2", networkMock(), nil, nil)

	doc, err := GetNetwork(context.Background(), client)
	require.NoError(t, err)

	require.Len(t, doc.VPCs, 2)
	assert.Equal(t, models.VPC{
		VPC:       "main",
		Name:      "main",
		VpcID:     "vpc-1",
		CIDRBlock: "10.0.0.0/16",
		Tags:      []models.Tag{{Key: "Name", Value: "main"}},
	}, doc.VPCs[0])
	assert.Equal(t, NotAvailable, doc.VPCs[1].Name)
	assert.Equal(t, []models.Tag{}, doc.VPCs[1].Tags)

	require.Len(t, doc.Subnets, 1)
	assert.Equal(t, NotAvailable, doc.Subnets[0].SubnetName)
	assert.Equal(t, int32(251), doc.Subnets[0].AvailableIPs)
	assert.Nil(t, doc.Subnets[0].RouteTable)

	require.Len(t, doc.NATGateways, 2)
	nat := doc.NATGateways[0]
	assert.Equal(t, "egress", nat.NATName)
	assert.Equal(t, "3.3.3.3", nat.ElasticIP)
	assert.Equal(t, "10.0.1.5", nat.PrivateIP)
	assert.Equal(t, "eni-1", nat.NetworkInterfaceID)
	assert.Equal(t, "public", *nat.Type)
	assert.Equal(t, "available", *nat.State)
	assert.Equal(t, "2024-03-01T10:30:00Z", *nat.CreatedAt)

	bare := doc.NATGateways[1]
	assert.Equal(t, NotAvailable, bare.NATName)
	assert.Equal(t, NotAvailable, bare.ElasticIP)
	assert.Equal(t, NotAvailable, bare.PrivateIP)
	assert.Equal(t, NotAvailable, bare.NetworkInterfaceID)
	assert.Nil(t, bare.Type)
	assert.Nil(t, bare.State)
	assert.Nil(t, bare.CreatedAt)
}

func TestGetNetwork_Errors(t *testing.T) {
	failure := fmt.Errorf("UnauthorizedOperation")

	tests := []struct {
		name    string
		mutate  func(m *MockEC2Client)
		message string
	}{
		{
			name: "vpcs fail",
			mutate: func(m *MockEC2Client) {
				m.DescribeVpcsFunc = func(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
					return nil, failure
				}
			},
			message: "Failed to describe VPCs",
		},
		{
			name: "subnets fail",
			mutate: func(m *MockEC2Client) {
				m.DescribeSubnetsFunc = func(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
					return nil, failure
				}
			},
			message: "Failed to describe subnets",
		},
		{
			name: "nat gateways fail",
			mutate: func(m *MockEC2Client) {
				m.DescribeNatGatewaysFunc = func(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
					return nil, failure
				}
			},
			message: "Failed to describe NAT gateways",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := networkMock()
			tt.mutate(mock)
			client := NewAwsClient("ap-northeast-2", mock, nil, nil)

			doc, err := GetNetwork(context.Background(), client)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, errors.ErrAWSListing))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
