package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// CreateTablesIfNotExist creates the decisions table when it does not exist.
// Used in local mode; in AWS the tables are provisioned by infrastructure.
func CreateTablesIfNotExist(ctx context.Context, client *dynamodb.Client, cfg DynamoConfig, logger zerolog.Logger) error {
	if err := createTable(ctx, client, cfg.DecisionsTable, "DateKey", "DecisionID", logger); err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.DecisionsTable, err)
	}
	return nil
}

func createTable(ctx context.Context, client *dynamodb.Client, tableName, pk, sk string, logger zerolog.Logger) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err == nil {
		return nil
	}

	var notFound *dbtypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{AttributeName: aws.String(pk), AttributeType: dbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String(sk), AttributeType: dbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []dbtypes.KeySchemaElement{
			{AttributeName: aws.String(pk), KeyType: dbtypes.KeyTypeHash},
			{AttributeName: aws.String(sk), KeyType: dbtypes.KeyTypeRange},
		},
		BillingMode: dbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		return err
	}

	logger.Info().Str("table", tableName).Msg("created DynamoDB table")
	return nil
}
