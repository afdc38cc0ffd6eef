package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
)

// DynamoDBKey identifies the DynamoDB client fixture. Its value is a
// *DynamoDBStore, global-scoped. It is normally pointed at a DynamoDB Local
// endpoint rather than real AWS.
var DynamoDBKey = fixtest.Key("dynamodb")

const (
	dynamoTableName    = "fixture-harness-tests"
	dynamoPartitionKey = "namespace"
	dynamoSortKey      = "key"
	dynamoItemAttr     = "item"
)

// DynamoDBStore wraps a DynamoDB client together with the test table it
// manages.
type DynamoDBStore struct {
	Client *dynamodb.Client
	Table  string
}

// Reset recreates the test table from scratch.
func (d *DynamoDBStore) Reset(ctx context.Context) error {
	_, err := d.Client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(d.Table)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return d.createTable(ctx)
}

func (d *DynamoDBStore) createTable(ctx context.Context) error {
	_, err := d.Client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.Table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(dynamoPartitionKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(dynamoSortKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(dynamoPartitionKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(dynamoSortKey), KeyType: types.KeyTypeRange},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(1),
			WriteCapacityUnits: aws.Int64(1),
		},
	})
	return err
}

func (d *DynamoDBStore) Put(ctx context.Context, namespace, key, value string) error {
	_, err := d.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.Table),
		Item: map[string]types.AttributeValue{
			dynamoPartitionKey: &types.AttributeValueMemberS{Value: namespace},
			dynamoSortKey:      &types.AttributeValueMemberS{Value: key},
			dynamoItemAttr:     &types.AttributeValueMemberS{Value: value},
		},
	})
	return err
}

func (d *DynamoDBStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	result, err := d.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.Table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			dynamoPartitionKey: &types.AttributeValueMemberS{Value: namespace},
			dynamoSortKey:      &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil || result.Item == nil {
		return "", false, err
	}
	item, ok := result.Item[dynamoItemAttr].(*types.AttributeValueMemberS)
	if !ok {
		return "", false, nil
	}
	return item.Value, true, nil
}

// RegisterDynamoDB adds the DynamoDB fixture for the given endpoint URL, e.g.
// "http://localhost:8000" for DynamoDB Local. The constructor creates the test
// table if it does not exist.
func RegisterDynamoDB(reg *fixtest.Registry, endpoint string) error {
	spec, err := fixtest.NewFixture(DynamoDBKey.Name,
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			cfg, err := awsconfig.LoadDefaultConfig(ctx,
				awsconfig.WithRegion("us-east-1"),
				awsconfig.WithCredentialsProvider(
					credentials.NewStaticCredentialsProvider("dummy", "dummy", "")),
			)
			if err != nil {
				return nil, err
			}
			client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String(endpoint)
			})
			store := &DynamoDBStore{Client: client, Table: dynamoTableName}
			if err := store.Reset(ctx); err != nil {
				return nil, fmt.Errorf("cannot prepare DynamoDB table at %s: %w", endpoint, err)
			}
			deps.Logger().Printf("connected to DynamoDB at %s", endpoint)
			return store, nil
		},
		fixtest.WithScope(fixtest.ScopeGlobal))
	if err != nil {
		return err
	}
	return reg.Register(spec)
}
