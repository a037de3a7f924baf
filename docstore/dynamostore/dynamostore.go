// Package dynamostore implements docstore.Store on a DynamoDB table. The
// whole document payload is one item keyed by the "_id" attribute, and the
// version-tag check rides on a PutItem condition expression so replacement
// stays a single atomic operation.
package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/internal/hexid"
)

// Config holds configuration for the DynamoDB store.
type Config struct {
	// Table is the DynamoDB table holding the documents.
	// The table's partition key must be the string attribute "_id".
	// Default: "docmap_documents"
	Table string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Table: "docmap_documents"}
}

func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "docmap_documents"
	}
}

// Store is a DynamoDB-backed docstore.Store.
type Store struct {
	client *dynamodb.Client
	config Config
}

var _ docstore.Store = (*Store)(nil)

// New creates a Store using the given DynamoDB client.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{client: client, config: config}
}

// Insert stores a new document under a fresh primary key.
func (s *Store) Insert(ctx context.Context, payload docstore.Payload) (string, error) {
	id := hexid.New()
	payload[docstore.FieldID] = id

	item, err := attributevalue.MarshalMap(payload)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.config.Table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": docstore.FieldID},
	})
	if err != nil {
		return "", fmt.Errorf("insert document %s: %w", id, err)
	}
	return id, nil
}

// ConditionalReplace replaces the item only if its stored version tag still
// equals expectedTag. A failed condition is reported as (false, nil).
func (s *Store) ConditionalReplace(ctx context.Context, id, expectedTag string, payload docstore.Payload) (bool, error) {
	item, err := attributevalue.MarshalMap(payload)
	if err != nil {
		return false, fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(#id) AND #updated = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#id":      docstore.FieldID,
			"#updated": docstore.FieldUpdated,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberS{Value: expectedTag},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, fmt.Errorf("replace document %s: %w", id, err)
	}
	return true, nil
}

// Replace upserts the item regardless of its version tag.
func (s *Store) Replace(ctx context.Context, id string, payload docstore.Payload) error {
	item, err := attributevalue.MarshalMap(payload)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", id, err)
	}
	return nil
}

// Delete removes the item at id, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.Table),
		Key: map[string]types.AttributeValue{
			docstore.FieldID: &types.AttributeValueMemberS{Value: id},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	return len(out.Attributes) > 0, nil
}

// Find scans the table with filter translated to a filter expression.
func (s *Store) Find(ctx context.Context, filter docstore.Filter, projection docstore.Projection) ([]docstore.Payload, error) {
	input, err := s.scanInput(filter, projection)
	if err != nil {
		return nil, err
	}

	var results []docstore.Payload
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan documents: %w", err)
		}
		for _, raw := range page.Items {
			doc, err := unmarshalItem(raw)
			if err != nil {
				return nil, err
			}
			results = append(results, doc)
		}
	}
	return results, nil
}

// FindOne returns the first matching item, or ErrNotFound.
func (s *Store) FindOne(ctx context.Context, filter docstore.Filter, projection docstore.Projection) (docstore.Payload, error) {
	input, err := s.scanInput(filter, projection)
	if err != nil {
		return nil, err
	}

	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan documents: %w", err)
		}
		if len(page.Items) > 0 {
			return unmarshalItem(page.Items[0])
		}
	}
	return nil, docstore.ErrNotFound
}

// scanInput builds the Scan request for a flat equality filter and an
// optional projection.
func (s *Store) scanInput(filter docstore.Filter, projection docstore.Projection) (*dynamodb.ScanInput, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.config.Table),
	}

	exprNames := map[string]string{}
	exprValues := map[string]types.AttributeValue{}

	expr, err := filterExpression(filter, exprNames, exprValues)
	if err != nil {
		return nil, err
	}
	if expr != "" {
		input.FilterExpression = aws.String(expr)
	}

	if proj := projectionExpression(projection, exprNames); proj != "" {
		input.ProjectionExpression = aws.String(proj)
	}

	if len(exprNames) > 0 {
		input.ExpressionAttributeNames = exprNames
	}
	if len(exprValues) > 0 {
		input.ExpressionAttributeValues = exprValues
	}
	return input, nil
}

func filterExpression(filter docstore.Filter, exprNames map[string]string, exprValues map[string]types.AttributeValue) (string, error) {
	if len(filter) == 0 {
		return "", nil
	}
	var clauses []string
	i := 0
	for field, value := range filter {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("marshal filter value for %s: %w", field, err)
		}
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		exprNames[nameKey] = field
		exprValues[valueKey] = av
		clauses = append(clauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
		i++
	}
	return strings.Join(clauses, " AND "), nil
}

func projectionExpression(projection docstore.Projection, exprNames map[string]string) string {
	if projection == nil {
		return ""
	}
	exprNames["#id"] = docstore.FieldID
	clauses := []string{"#id"}
	for i, field := range projection {
		if field == docstore.FieldID {
			continue
		}
		nameKey := fmt.Sprintf("#p%d", i)
		exprNames[nameKey] = field
		clauses = append(clauses, nameKey)
	}
	return strings.Join(clauses, ", ")
}

func unmarshalItem(raw map[string]types.AttributeValue) (docstore.Payload, error) {
	var doc docstore.Payload
	if err := attributevalue.UnmarshalMap(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}
