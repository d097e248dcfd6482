package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"awsdocs/awsd/models"
	"awsdocs/session"
	"awsdocs/sgjoin"
)

// MockInventory is a mock implementation of InventoryService
type MockInventory struct {
	mock.Mock
}

// Instances mocks the Instances method
func (m *MockInventory) Instances(ctx context.Context, region string) ([]models.Instance, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Instance), args.Error(1)
}

// Network mocks the Network method
func (m *MockInventory) Network(ctx context.Context, region string) (*models.NetworkDocument, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NetworkDocument), args.Error(1)
}

// Buckets mocks the Buckets method
func (m *MockInventory) Buckets(ctx context.Context, region string) ([]models.Bucket, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bucket), args.Error(1)
}

// SecurityGroups mocks the SecurityGroups method
func (m *MockInventory) SecurityGroups(ctx context.Context, region string) ([]models.SecurityGroup, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SecurityGroup), args.Error(1)
}

// SecurityGroupRules mocks the SecurityGroupRules method
func (m *MockInventory) SecurityGroupRules(ctx context.Context, region string) ([]sgjoin.Group, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sgjoin.Group), args.Error(1)
}

// MockSessions is a mock implementation of SessionService
type MockSessions struct {
	mock.Mock
}

// Assume mocks the Assume method
func (m *MockSessions) Assume(ctx context.Context, roleARN, region string) (string, session.Credentials, error) {
	args := m.Called(ctx, roleARN, region)
	return args.String(0), args.Get(1).(session.Credentials), args.Error(2)
}

// Lookup mocks the Lookup method
func (m *MockSessions) Lookup(id string) (session.Credentials, error) {
	args := m.Called(id)
	return args.Get(0).(session.Credentials), args.Error(1)
}
