package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoDB is a catalog backed by a DynamoDB table with one item per source.
//
// Table schema:
//   - Partition key: graph (string)
//   - Sort key: part (number) - position of the source in the stream
//   - Attribute: locator (string)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name edgestream-catalog \
//	  --attribute-definitions AttributeName=graph,AttributeType=S AttributeName=part,AttributeType=N \
//	  --key-schema AttributeName=graph,KeyType=HASH AttributeName=part,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DynamoDB struct {
	client    DDBClient
	tableName string
}

// NewDynamoDB creates a catalog over an existing client.
func NewDynamoDB(client DDBClient, tableName string) *DynamoDB {
	return &DynamoDB{client: client, tableName: tableName}
}

// OpenDynamoDB creates a catalog using the default AWS credential chain.
func OpenDynamoDB(ctx context.Context, tableName, region string) (*DynamoDB, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewDynamoDB(dynamodb.NewFromConfig(cfg), tableName), nil
}

// Sources implements Catalog. Items are returned in ascending part order;
// all result pages are followed.
func (d *DynamoDB) Sources(ctx context.Context, graph string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("#g = :graph"),
		ExpressionAttributeNames: map[string]string{
			"#g": "graph",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":graph": &types.AttributeValueMemberS{Value: graph},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var sources []string
	p := dynamodb.NewQueryPaginator(d.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range page.Items {
			loc, ok := item["locator"].(*types.AttributeValueMemberS)
			if !ok {
				return nil, fmt.Errorf("catalog: invalid locator attribute for graph %q", graph)
			}
			sources = append(sources, loc.Value)
		}
	}

	if len(sources) == 0 {
		return nil, ErrUnknownGraph
	}
	return sources, nil
}

// Register writes the sources of graph, numbering parts from 0 in order.
// Existing parts with the same numbers are overwritten.
func (d *DynamoDB) Register(ctx context.Context, graph string, sources []string) error {
	for i, loc := range sources {
		_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(d.tableName),
			Item: map[string]types.AttributeValue{
				"graph":   &types.AttributeValueMemberS{Value: graph},
				"part":    &types.AttributeValueMemberN{Value: strconv.Itoa(i)},
				"locator": &types.AttributeValueMemberS{Value: loc},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to register part %d of %q: %w", i, graph, err)
		}
	}
	return nil
}
