package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

func TestNewTokenProvider_AWS(t *testing.T) {
	access := dbhandler.AccessInformation{
		Host:       "mydb.cluster.eu-west-1.rds.amazonaws.com",
		User:       "iam_user",
		AuthMethod: dbhandler.AuthMethodAWSIAM,
		AWSRegion:  "eu-west-1",
	}

	p, err := NewTokenProvider(access)
	require.NoError(t, err)
	assert.Equal(t,
		"AWSIAMTokenProvider(endpoint=mydb.cluster.eu-west-1.rds.amazonaws.com:5432, region=eu-west-1, user=iam_user)",
		p.String())
}

func TestNewTokenProvider_AWSRequiresRegion(t *testing.T) {
	access := dbhandler.AccessInformation{Host: "h", User: "u", AuthMethod: dbhandler.AuthMethodAWSIAM}

	p, err := NewTokenProvider(access)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, dbhandler.ErrInvalidConfig))
}

func TestNewTokenProvider_AzureServicePrincipal(t *testing.T) {
	access := dbhandler.AccessInformation{
		Host:              "srv.postgres.database.azure.com",
		User:              "app",
		AuthMethod:        dbhandler.AuthMethodAzureEntraID,
		AzureTenantID:     "tenant",
		AzureClientID:     "client",
		AzureClientSecret: "secret",
	}

	p, err := NewTokenProvider(access)
	require.NoError(t, err)
	assert.Equal(t, "AzureServicePrincipal(tenant=tenant, client=client)", p.String())
	assert.NotContains(t, p.String(), "secret")
}

func TestNewTokenProvider_Standard(t *testing.T) {
	_, err := NewTokenProvider(dbhandler.AccessInformation{AuthMethod: dbhandler.AuthMethodStandard})
	assert.True(t, errors.Is(err, dbhandler.ErrUnsupportedAuthMethod))
}

func TestNewAzureServicePrincipalProvider_MissingFields(t *testing.T) {
	_, err := NewAzureServicePrincipalProvider("tenant", "", "secret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbhandler.ErrInvalidConfig))
}

func TestStaticTokenProvider(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	p := &StaticTokenProvider{Token: "tok", ExpiresOn: exp}

	token, got, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, exp, got)
}
